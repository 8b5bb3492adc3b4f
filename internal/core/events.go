package core

import (
	"github.com/lumipallolabs/rex/internal/live"
	"github.com/lumipallolabs/rex/internal/scanner"
)

// Event represents a state change from the controller
type Event interface {
	isEvent()
}

// RunStartedEvent is emitted once the source is open and the session
// directory exists
type RunStartedEvent struct {
	Target     string
	SessionID  string
	SessionDir string
	Size       int64
}

func (RunStartedEvent) isEvent() {}

// ProgressEvent is emitted while carving
type ProgressEvent struct {
	Progress scanner.Progress
}

func (ProgressEvent) isEvent() {}

// PhaseChangedEvent is emitted when the run phase changes
type PhaseChangedEvent struct {
	Phase Phase
}

func (PhaseChangedEvent) isEvent() {}

// CarvedEvent is emitted for every recovered file
type CarvedEvent struct {
	Result scanner.CarveResult
}

func (CarvedEvent) isEvent() {}

// CarveFailedEvent is emitted when a carved file could not be written
type CarveFailedEvent struct {
	Err error
}

func (CarveFailedEvent) isEvent() {}

// MirrorCompletedEvent is emitted after the live bridge ran. Err is a
// warning; carving results are unaffected.
type MirrorCompletedEvent struct {
	Stats live.Stats
	Err   error
}

func (MirrorCompletedEvent) isEvent() {}

// RunCompletedEvent is the last event of a run
type RunCompletedEvent struct {
	Summary Summary
	Err     error
}

func (RunCompletedEvent) isEvent() {}
