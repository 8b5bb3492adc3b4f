// Package session owns the per-run output directory and carve counter.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultRoot is the directory session folders are created under
const DefaultRoot = "recovered"

// MaxCarves is the carve cap applied unless Flags.All is set
const MaxCarves = 10

// Flags are the two run switches that change scanning behavior
type Flags struct {
	All         bool // lift the MaxCarves cap
	OnlyDeleted bool // skip the reserved area and the live mirror
}

// Session is one invocation's isolated output context
type Session struct {
	ID    string
	Dir   string
	Flags Flags

	carved int
}

// New generates a fresh session id and creates <root>/<id>
func New(root string, flags Flags) (*Session, error) {
	if root == "" {
		root = DefaultRoot
	}
	id := uuid.New().String()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Session{
		ID:    id,
		Dir:   dir,
		Flags: flags,
	}, nil
}

// CarvePath returns the output path for the next carve
func (s *Session) CarvePath(offset int64, ext string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("file_%d_%d.%s", s.carved, offset, ext))
}

// WriteCarve writes data to the next carve path in one shot and counts it.
// A failed write leaves the counter unchanged and returns an *OutputError.
func (s *Session) WriteCarve(offset int64, ext string, data []byte) (string, error) {
	path := s.CarvePath(offset, ext)
	if err := WriteOnce(path, data); err != nil {
		return path, err
	}
	s.carved++
	return path, nil
}

// Count returns the number of carves written so far
func (s *Session) Count() int {
	return s.carved
}

// LimitReached reports whether the capped scan should stop
func (s *Session) LimitReached() bool {
	return !s.Flags.All && s.carved >= MaxCarves
}
