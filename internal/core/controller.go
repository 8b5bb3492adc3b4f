// Package core sequences a recovery run: open the source, carve it into a
// fresh session directory and optionally mirror the live filesystem.
package core

import (
	"errors"
	"sync"
	"time"

	"github.com/lumipallolabs/rex/internal/device"
	"github.com/lumipallolabs/rex/internal/live"
	"github.com/lumipallolabs/rex/internal/logging"
	"github.com/lumipallolabs/rex/internal/scanner"
	"github.com/lumipallolabs/rex/internal/session"
	"github.com/lumipallolabs/rex/internal/signature"
)

// Options configure one run
type Options struct {
	Target string
	Flags  session.Flags

	// OutputRoot defaults to session.DefaultRoot
	OutputRoot string

	// Detector defaults to the built-in signature detector
	Detector scanner.Detector
	Digest   scanner.DigestKind

	// Mounter defaults to the platform mounter
	Mounter live.Mounter
	Exclude []string

	// Open opens the target; defaults to device.Open
	Open func(path string) (device.Source, error)
}

// Summary is the outcome of a run
type Summary struct {
	SessionID  string
	SessionDir string
	Scan       scanner.Summary
	Mirrored   bool
	Mirror     live.Stats
	MirrorErr  error
	Duration   time.Duration
}

// Controller runs the recovery pipeline without UI dependencies
type Controller struct {
	mu sync.RWMutex

	opts  Options
	state RunState

	listeners []func(Event)
}

// NewController creates a controller for one run
func NewController(opts Options) *Controller {
	if opts.OutputRoot == "" {
		opts.OutputRoot = session.DefaultRoot
	}
	if opts.Detector == nil {
		opts.Detector = signature.NewDetector()
	}
	if opts.Mounter == nil {
		opts.Mounter = live.NewMounter()
	}
	if opts.Open == nil {
		opts.Open = device.Open
	}
	return &Controller{opts: opts}
}

// OnEvent registers fn to be called on the running goroutine for every
// event. It must be called before Run or Start.
func (c *Controller) OnEvent(fn func(Event)) {
	c.listeners = append(c.listeners, fn)
}

// State returns a snapshot of the current run state
func (c *Controller) State() RunState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Run executes the pipeline on the calling goroutine. Only a source failure
// or a failure to create the session directory is returned.
func (c *Controller) Run() (Summary, error) {
	return c.run(c.emit)
}

// Start runs the pipeline in a goroutine and streams its events. The
// channel is closed after RunCompletedEvent.
func (c *Controller) Start() <-chan Event {
	eventCh := make(chan Event, 100)
	go func() {
		defer close(eventCh)
		c.run(func(e Event) {
			c.emit(e)
			eventCh <- e
		})
	}()
	return eventCh
}

func (c *Controller) run(emit func(Event)) (sum Summary, err error) {
	start := time.Now()
	c.setState(func(s *RunState) {
		*s = RunState{Phase: PhaseIdle, StartTime: start, Target: c.opts.Target}
	})

	defer func() {
		sum.Duration = time.Since(start)
		c.setPhase(PhaseComplete, emit)
		emit(RunCompletedEvent{Summary: sum, Err: err})
		logging.Debug.Printf("[Controller] run finished in %s: %+v err=%v", sum.Duration, sum.Scan, err)
	}()

	logging.Debug.Printf("[Controller] opening %s (%s)", c.opts.Target, device.KindOf(c.opts.Target))
	src, err := c.opts.Open(c.opts.Target)
	if err != nil {
		var srcErr *scanner.SourceError
		if !errors.As(err, &srcErr) {
			err = &scanner.SourceError{Op: "open", Path: c.opts.Target, Err: err}
		}
		return sum, err
	}

	sess, err := session.New(c.opts.OutputRoot, c.opts.Flags)
	if err != nil {
		src.Close()
		return sum, err
	}
	sum.SessionID, sum.SessionDir = sess.ID, sess.Dir
	c.setState(func(s *RunState) { s.SessionDir = sess.Dir })

	emit(RunStartedEvent{
		Target:     c.opts.Target,
		SessionID:  sess.ID,
		SessionDir: sess.Dir,
		Size:       src.Size(),
	})

	c.setPhase(PhaseCarving, emit)
	carver := scanner.NewCarver(src, c.opts.Detector, sess, scanner.Options{
		Path:     c.opts.Target,
		Digest:   c.opts.Digest,
		Reporter: &eventReporter{c: c, emit: emit},
	})
	sum.Scan, err = carver.Run()
	if cerr := src.Close(); cerr != nil {
		logging.Debug.Printf("[Controller] close %s: %v", c.opts.Target, cerr)
	}
	if err != nil {
		return sum, err
	}

	if c.opts.Flags.OnlyDeleted {
		logging.Debug.Printf("[Controller] only-deleted: live bridge skipped")
		return sum, nil
	}

	c.setPhase(PhaseMirroring, emit)
	sum.Mirrored = true
	sum.Mirror, sum.MirrorErr = live.Mirror(c.opts.Mounter, c.opts.Target, sess.Dir, live.MirrorOptions{
		Exclude: c.opts.Exclude,
	})
	if sum.MirrorErr != nil {
		logging.Warn.Printf("live files not mirrored: %v", sum.MirrorErr)
	}
	emit(MirrorCompletedEvent{Stats: sum.Mirror, Err: sum.MirrorErr})

	return sum, nil
}

func (c *Controller) setState(fn func(s *RunState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
}

func (c *Controller) setPhase(p Phase, emit func(Event)) {
	c.setState(func(s *RunState) { s.Phase = p })
	emit(PhaseChangedEvent{Phase: p})
}

// emit sends an event to all listeners
func (c *Controller) emit(event Event) {
	for _, fn := range c.listeners {
		fn(event)
	}
}

// eventReporter turns scanner notifications into controller events
type eventReporter struct {
	c    *Controller
	emit func(Event)
}

func (r *eventReporter) Progress(p scanner.Progress) {
	r.c.setState(func(s *RunState) { s.Progress = p })
	r.emit(ProgressEvent{Progress: p})
}

func (r *eventReporter) Carved(res scanner.CarveResult) {
	r.c.setState(func(s *RunState) { s.Progress.Carved++ })
	r.emit(CarvedEvent{Result: res})
}

func (r *eventReporter) Failed(err error) {
	r.c.setState(func(s *RunState) { s.Failed++ })
	r.emit(CarveFailedEvent{Err: err})
}
