//go:build !windows

package process

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePS(t *testing.T) {
	out := `    1 Ss   systemd
  412 S    steam
  413 Z    steamwebhelper
  bad S    nope
  900 S    Steam ROM Manager
 1001 R+
`
	procs := parsePS(out)
	assert.Equal(t, []Info{
		{PID: 1, Name: "systemd"},
		{PID: 412, Name: "steam"},
		{PID: 900, Name: "Steam ROM Manager"},
	}, procs)
}

func TestOSTable_AliveSelf(t *testing.T) {
	table := NewOSTable()
	assert.True(t, table.Alive(os.Getpid()))
	assert.False(t, table.Alive(0))
	assert.False(t, table.Alive(-1))
}

func TestOSTable_SignalMissingPID(t *testing.T) {
	err := NewOSTable().Terminate(-5)
	assert.ErrorIs(t, err, ErrNotFound)
}

// uniqueSleeper copies sleep(1) under a random name so the test only ever
// matches its own children.
func uniqueSleeper(t *testing.T) (string, string) {
	t.Helper()
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	if _, err := exec.LookPath("ps"); err != nil {
		t.Skip("ps not available")
	}
	data, err := os.ReadFile(sleep)
	require.NoError(t, err)

	b := make([]byte, 4)
	_, _ = rand.Read(b)
	name := "srmfk" + hex.EncodeToString(b)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0755))
	return name, path
}

func startReaped(t *testing.T, cmd *exec.Cmd) {
	t.Helper()
	require.NoError(t, cmd.Start())
	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-done
	})
}

func waitListed(t *testing.T, table Table, name string, want int) {
	t.Helper()
	target := Target{Names: []string{name}}
	require.Eventually(t, func() bool {
		procs, err := table.List()
		if err != nil {
			return false
		}
		n := 0
		for _, p := range procs {
			if target.Matches(p.Name) {
				n++
			}
		}
		return n == want
	}, 5*time.Second, 50*time.Millisecond)
}

func TestTerminator_RealProcesses(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns processes")
	}
	name, path := uniqueSleeper(t)

	startReaped(t, exec.Command(path, "30"))
	// The shell ignores TERM and exec keeps the disposition.
	startReaped(t, exec.Command("/bin/sh", "-c", "trap '' TERM; exec "+path+" 30"))

	table := NewOSTable()
	waitListed(t, table, name, 2)

	term := newTestTerminator(t, table, nil)
	term.SetConfirmWait(2 * time.Second)
	report := term.Stop(context.Background(), Target{
		Names: []string{name},
		Grace: 500 * time.Millisecond,
		Force: true,
	})

	require.NoError(t, report.Err)
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 1, report.Terminated)
	assert.Equal(t, 1, report.ForceKilled)
	assert.Empty(t, report.Failures)

	waitListed(t, table, name, 0)
}
