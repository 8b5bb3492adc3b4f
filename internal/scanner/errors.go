package scanner

import "fmt"

// SourceError is a failure to open, seek or read the scanned source. It
// aborts the scan.
type SourceError struct {
	Op     string
	Path   string
	Offset int64
	Err    error
}

// Error implements the error interface
func (e *SourceError) Error() string {
	if e.Op == "open" {
		return fmt.Sprintf("open %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s at offset %d: %v", e.Op, e.Path, e.Offset, e.Err)
}

// Unwrap returns the underlying error
func (e *SourceError) Unwrap() error {
	return e.Err
}
