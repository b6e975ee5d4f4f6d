package runner

import (
	"bytes"
	"strings"
	"sync"
)

// output collects both streams of a child process, splitting them into
// lines for the callback and keeping at most MaxOutput bytes of each.
type output struct {
	mu     sync.Mutex
	onLine func(Stream, string)
	bufs   map[Stream]*streamBuf
}

type streamBuf struct {
	out       *output
	stream    Stream
	kept      bytes.Buffer
	truncated bool
	partial   []byte
}

func newOutput(onLine func(Stream, string)) *output {
	o := &output{onLine: onLine, bufs: map[Stream]*streamBuf{}}
	for _, s := range []Stream{Stdout, Stderr} {
		o.bufs[s] = &streamBuf{out: o, stream: s}
	}
	return o
}

func (o *output) writer(s Stream) *streamBuf {
	return o.bufs[s]
}

func (b *streamBuf) Write(p []byte) (int, error) {
	b.out.mu.Lock()
	defer b.out.mu.Unlock()

	if room := MaxOutput - b.kept.Len(); room > 0 {
		if len(p) > room {
			b.kept.Write(p[:room])
			b.truncated = true
		} else {
			b.kept.Write(p)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}

	if b.out.onLine == nil {
		return len(p), nil
	}
	b.partial = append(b.partial, p...)
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			break
		}
		b.emit(b.partial[:i])
		b.partial = b.partial[i+1:]
	}
	// A child printing megabytes without a newline still gets flushed.
	if len(b.partial) > MaxOutput {
		b.emit(b.partial)
		b.partial = nil
	}
	return len(p), nil
}

func (b *streamBuf) emit(line []byte) {
	b.out.onLine(b.stream, strings.TrimRight(string(line), "\r"))
}

// finish flushes unterminated lines and returns both streams.
func (o *output) finish() (stdout, stderr string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, s := range []Stream{Stdout, Stderr} {
		b := o.bufs[s]
		if o.onLine != nil && len(b.partial) > 0 {
			b.emit(b.partial)
			b.partial = nil
		}
	}
	return o.bufs[Stdout].String(), o.bufs[Stderr].String()
}

func (b *streamBuf) String() string {
	if b.truncated {
		return b.kept.String() + "\n[output truncated]"
	}
	return b.kept.String()
}
