package core

import (
	"time"

	"github.com/lumipallolabs/rex/internal/scanner"
)

// Phase is the current step of a run
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCarving
	PhaseMirroring
	PhaseComplete
)

// String returns a human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return ""
	case PhaseCarving:
		return "Carving"
	case PhaseMirroring:
		return "Mirroring live files"
	case PhaseComplete:
		return "Complete"
	default:
		return ""
	}
}

// RunState holds the current run state
type RunState struct {
	Phase      Phase
	StartTime  time.Time
	Target     string
	SessionDir string
	Progress   scanner.Progress
	Failed     int
}

// IsRunning returns true while carving or mirroring
func (s RunState) IsRunning() bool {
	return s.Phase == PhaseCarving || s.Phase == PhaseMirroring
}

// Elapsed returns time since the run started
func (s RunState) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime).Truncate(time.Second)
}
