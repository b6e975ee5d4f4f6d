package constants

import (
	"testing"
)

func TestStatusEmoji(t *testing.T) {
	tests := []struct {
		status string
		expect string
	}{
		{StatusReady, "○"},
		{StatusRunning, "◐"},
		{StatusSuccess, "✓"},
		{StatusFailed, "✗"},
		{StatusCancelled, "⊘"},
		{"unknown", "?"},
		{"", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := StatusEmoji(tt.status)
			if got != tt.expect {
				t.Errorf("StatusEmoji(%q) = %q, want %q", tt.status, got, tt.expect)
			}
		})
	}
}

func TestDefaultTimeoutsOrdered(t *testing.T) {
	if DefaultGracePeriod >= DefaultSteamTimeout {
		t.Errorf("grace period %v must be shorter than steam timeout %v", DefaultGracePeriod, DefaultSteamTimeout)
	}
	if PollInterval >= DefaultGracePeriod {
		t.Errorf("poll interval %v must be shorter than grace period %v", PollInterval, DefaultGracePeriod)
	}
}
