package workflow

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// State is a step of the workflow state machine.
type State int

const (
	Idle State = iota
	KillingSteam
	RunningTool
	Completed
	Failed
)

var stateNames = [...]string{
	Idle:         "idle",
	KillingSteam: "killing_steam",
	RunningTool:  "running_tool",
	Completed:    "completed",
	Failed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Label renders the state for display, e.g. "Killing Steam".
func (s State) Label() string {
	// A Caser is stateful, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(s.String(), "_", " "))
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// Active reports whether a run is in progress.
func (s State) Active() bool {
	return s == KillingSteam || s == RunningTool
}
