package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Probe reports whether the watched condition currently holds.
type Probe func(ctx context.Context) (bool, error)

// StatusPoller polls a Probe and publishes a steam_status event whenever the
// answer changes. The TUI uses it for the Steam-running indicator; the
// orchestrator only touches processes when a run is started.
type StatusPoller struct {
	bus      *Bus
	probe    Probe
	interval time.Duration
	log      *slog.Logger

	mu    sync.Mutex
	known bool
	last  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatusPoller creates a poller publishing to bus.
func NewStatusPoller(bus *Bus, probe Probe, interval time.Duration, log *slog.Logger) *StatusPoller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &StatusPoller{
		bus:      bus,
		probe:    probe,
		interval: interval,
		log:      log,
	}
}

// Start begins polling. Call Stop() to shut down.
func (p *StatusPoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop shuts down the poller and waits for it to finish.
func (p *StatusPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Last returns the most recent answer and whether one has been seen.
func (p *StatusPoller) Last() (value, known bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.known
}

func (p *StatusPoller) run(ctx context.Context) {
	defer p.wg.Done()

	// Publish the initial state right away.
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context) {
	running, err := p.probe(ctx)
	if err != nil {
		// The process table may be briefly unreadable; keep the last answer.
		p.log.Debug("status probe failed", "error", err)
		return
	}

	p.mu.Lock()
	changed := !p.known || running != p.last
	p.known, p.last = true, running
	p.mu.Unlock()

	if changed {
		p.bus.PublishSteamStatus(running)
	}
}
