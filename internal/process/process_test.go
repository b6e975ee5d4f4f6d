package process

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetMatches(t *testing.T) {
	target := Target{Pattern: "steam", Names: []string{"steamwebhelper.exe", "SteamService"}}
	exactOnly := Target{Names: []string{"steam.exe"}}

	tests := []struct {
		name   string
		target Target
		image  string
		want   bool
	}{
		{"substring", target, "steam", true},
		{"substring case", target, "STEAM.EXE", true},
		{"substring inside", target, "gamescope-steam", true},
		{"full path", target, "/usr/lib/steam/steam", true},
		{"windows path", target, `C:\Program Files (x86)\Steam\steam.exe`, true},
		{"unrelated", target, "firefox", false},
		{"empty", target, "", false},
		{"exact with exe", exactOnly, "Steam.exe", true},
		{"exact without exe", exactOnly, "steam", true},
		{"exact rejects prefix", exactOnly, "steamwebhelper.exe", false},
		{"empty pattern matches nothing", Target{}, "steam", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.Matches(tt.image))
		})
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "*steam*, steam.exe", Target{Pattern: "steam", Names: []string{"steam.exe"}}.String())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ReasonNotFound, classify(fmt.Errorf("pid 1: %w", ErrNotFound)))
	assert.Equal(t, ReasonAccessDenied, classify(fmt.Errorf("pid 1: %w", ErrAccessDenied)))
	assert.Equal(t, ReasonError, classify(errors.New("other")))
}

func TestReportSummary(t *testing.T) {
	r := Report{Matched: 3, Terminated: 1, ForceKilled: 1, Failures: []Failure{{PID: 9, Name: "steam", Reason: ReasonTimeout}}}
	assert.Equal(t, "3 matched: 1 terminated, 1 force-killed, 1 failed", r.Summary())
	assert.Equal(t, "steam (PID 9): timeout", r.Failures[0].String())
}
