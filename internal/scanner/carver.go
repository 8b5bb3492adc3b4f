package scanner

import (
	"errors"
	"io"

	"github.com/lumipallolabs/rex/internal/logging"
	"github.com/lumipallolabs/rex/internal/session"
)

// Options tune a Carver
type Options struct {
	// Path names the source in errors and logs
	Path string
	// Digest adds a checksum of every carved file to its CarveResult
	Digest DigestKind
	// Reporter receives progress and carve notifications (may be nil)
	Reporter Reporter
}

// Carver walks a source front to back, probing fixed windows for file
// signatures and copying a fixed block at every accepted hit.
//
// Probing is first-match-wins on a 64-byte stride, and every carve skips a
// whole block. Signatures that are not 64-byte aligned relative to the
// cursor, or that sit inside a carved block, are not found, and files
// longer than BlockSize are truncated.
type Carver struct {
	src      Source
	detector Detector
	sess     *session.Session
	opts     Options
	reporter Reporter

	window []byte
	block  []byte
}

// NewCarver creates a carver writing into sess. The carver reads src
// exclusively until Run returns.
func NewCarver(src Source, detector Detector, sess *session.Session, opts Options) *Carver {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Carver{
		src:      src,
		detector: detector,
		sess:     sess,
		opts:     opts,
		reporter: reporter,
		window:   make([]byte, WindowSize),
		block:    make([]byte, BlockSize),
	}
}

// scanState is the loop state; it only lives inside Run
type scanState struct {
	cursor     int64
	nextReport int64
	failed     int
}

// Run scans until the source is exhausted or the session's carve cap is
// reached. Only source failures are returned; output failures are logged,
// reported and skipped.
func (c *Carver) Run() (Summary, error) {
	st := scanState{nextReport: progressInterval}
	c.report(st)

	for {
		full, err := c.readWindow(st.cursor)
		if err != nil {
			return c.summary(st), err
		}
		if !full {
			logging.Scanner.Printf("short read at %d, scan done", st.cursor)
			break
		}

		found, ext, ok := c.probe(st.cursor)
		if ok {
			if err := c.carve(&st, found, ext); err != nil {
				return c.summary(st), err
			}
			st.cursor = found + BlockSize
		} else {
			st.cursor += MissStride
		}

		if st.cursor >= st.nextReport {
			c.report(st)
			st.nextReport = st.cursor + progressInterval
		}

		if c.sess.LimitReached() {
			logging.Scanner.Printf("carve limit %d reached at %d", session.MaxCarves, st.cursor)
			break
		}
	}

	c.report(st)
	return c.summary(st), nil
}

// readWindow fills the window at offset. It reports false on a short read.
func (c *Carver) readWindow(offset int64) (bool, error) {
	n, err := c.src.ReadAt(c.window, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, &SourceError{Op: "read", Path: c.opts.Path, Offset: offset, Err: err}
	}
	return n == len(c.window), nil
}

// probe slides the detector across the window and returns the first
// accepted hit.
func (c *Carver) probe(cursor int64) (int64, string, bool) {
	for pos := 0; pos < len(c.window)-MinTail; pos += ProbeStride {
		ext := c.detector.Detect(c.window[pos:])
		if ext == "" {
			continue
		}
		found := cursor + int64(pos)
		if c.sess.Flags.OnlyDeleted && found < ReservedThreshold {
			logging.Scanner.Printf("skip %s at %d: inside reserved area", ext, found)
			continue
		}
		return found, ext, true
	}
	return 0, "", false
}

// carve copies up to one block starting at found into the session
func (c *Carver) carve(st *scanState, found int64, ext string) error {
	n, err := c.src.ReadAt(c.block, found)
	if err != nil && !errors.Is(err, io.EOF) {
		return &SourceError{Op: "read", Path: c.opts.Path, Offset: found, Err: err}
	}
	data := c.block[:n]

	path, err := c.sess.WriteCarve(found, ext, data)
	if err != nil {
		st.failed++
		logging.Warn.Printf("carve %s at offset %d: %v", ext, found, err)
		c.reporter.Failed(err)
		return nil
	}

	logging.Scanner.Printf("carved %s at %d (%d bytes) -> %s", ext, found, n, path)
	c.reporter.Carved(CarveResult{
		Offset: found,
		Ext:    ext,
		Size:   int64(n),
		Path:   path,
		Digest: c.opts.Digest.Sum(data),
	})
	return nil
}

func (c *Carver) report(st scanState) {
	c.reporter.Progress(Progress{
		Offset: st.cursor,
		Size:   c.src.Size(),
		Carved: c.sess.Count(),
	})
}

func (c *Carver) summary(st scanState) Summary {
	return Summary{
		BytesScanned: st.cursor,
		Carved:       c.sess.Count(),
		Failed:       st.failed,
	}
}
