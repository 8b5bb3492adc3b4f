package session

import (
	"fmt"
	"io"
	"os"
)

// OutputError records a failure to create or write one recovered file.
// It is never fatal to a run.
type OutputError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *OutputError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *OutputError) Unwrap() error {
	return e.Err
}

// WriteOnce creates path and writes data in full, then closes it
func WriteOnce(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &OutputError{Op: "create", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &OutputError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &OutputError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// CopyFile streams src into a newly created dst
func CopyFile(dst, src string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, &OutputError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, &OutputError{Op: "create", Path: dst, Err: err}
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, &OutputError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return n, &OutputError{Op: "close", Path: dst, Err: err}
	}
	return n, nil
}
