package scanner

import (
	"io"
)

const (
	// WindowSize is the number of bytes read per scan iteration
	WindowSize = 8 * 1024
	// ProbeStride is the distance between detector probes inside a window
	ProbeStride = 64
	// MinTail is how many bytes must remain after a probe position; the
	// detector therefore always sees more than MinTail bytes.
	MinTail = 32
	// MissStride is how far the cursor moves when a window has no match.
	// It is smaller than WindowSize so signatures near a window edge get
	// another chance in the next window.
	MissStride = 512
	// BlockSize is the carve length and the skip after every carve
	BlockSize = 1024 * 1024
	// ReservedThreshold is the offset below which hits are ignored in
	// only-deleted mode
	ReservedThreshold = 512 * 1024

	progressInterval = 8 * 1024 * 1024
)

// Source is the random-access byte source being carved
type Source interface {
	io.ReaderAt
	// Size returns the source length in bytes, or -1 when unknown
	Size() int64
}

// Detector classifies a byte slice; "" means no match
type Detector interface {
	Detect(b []byte) string
}

// Progress reports scanning progress
type Progress struct {
	Offset int64 // current cursor
	Size   int64 // source size, -1 if unknown
	Carved int
}

// Percent returns the scanned fraction in [0, 1], or 0 if the size is unknown
func (p Progress) Percent() float64 {
	if p.Size <= 0 {
		return 0
	}
	f := float64(p.Offset) / float64(p.Size)
	if f > 1 {
		return 1
	}
	return f
}

// CarveResult describes one recovered file. Results are reported as they
// are written and not kept by the scanner.
type CarveResult struct {
	Offset int64
	Ext    string
	Size   int64
	Path   string
	Digest string // empty unless a digest was requested
}

// Reporter receives notifications on the scanning goroutine
type Reporter interface {
	Progress(p Progress)
	Carved(r CarveResult)
	Failed(err error)
}

// Summary is returned when a scan ends
type Summary struct {
	BytesScanned int64 // final cursor position
	Carved       int
	Failed       int
}

type nopReporter struct{}

func (nopReporter) Progress(Progress)  {}
func (nopReporter) Carved(CarveResult) {}
func (nopReporter) Failed(error)       {}
