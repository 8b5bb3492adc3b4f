package live

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/lumipallolabs/rex/internal/logging"
	"github.com/lumipallolabs/rex/internal/session"
)

// counters is updated from concurrent walk callbacks
type counters struct {
	files   atomic.Int64
	dirs    atomic.Int64
	bytes   atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Files:   c.files.Load(),
		Dirs:    c.dirs.Load(),
		Bytes:   c.bytes.Load(),
		Skipped: c.skipped.Load(),
		Failed:  c.failed.Load(),
	}
}

// dirOnOtherDevice is replaced in tests
var dirOnOtherDevice = onOtherDevice

// copyTree copies the regular files under root into dest. Per-file
// failures are logged and counted; only a failure to walk root itself is
// returned.
func copyTree(root, dest string, exclude []string) (Stats, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Stats{}, err
	}
	rootDev := deviceOf(absRoot)

	var c counters
	conf := &fastwalk.Config{
		Follow: false, // never leave the mounted tree through symlinks
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			logging.Live.Printf("walk %s: %v", path, err)
			c.failed.Add(1)
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if excluded(filepath.ToSlash(rel), exclude) {
			c.skipped.Add(1)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		target := filepath.Join(dest, rel)

		if d.IsDir() {
			if dirOnOtherDevice(d, rootDev) {
				logging.Live.Printf("skip nested mount %s", path)
				c.skipped.Add(1)
				return fs.SkipDir
			}
			if err := os.MkdirAll(target, 0755); err != nil {
				logging.Warn.Printf("mirror %s: %v", rel, err)
				c.failed.Add(1)
				return fs.SkipDir
			}
			c.dirs.Add(1)
			return nil
		}

		if !d.Type().IsRegular() {
			c.skipped.Add(1)
			return nil
		}

		// fastwalk may reach a file before its parent's callback has run
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			logging.Warn.Printf("mirror %s: %v", rel, err)
			c.failed.Add(1)
			return nil
		}
		n, err := session.CopyFile(target, path)
		if err != nil {
			logging.Warn.Printf("mirror %s: %v", rel, err)
			c.failed.Add(1)
			return nil
		}
		c.files.Add(1)
		c.bytes.Add(n)
		return nil
	})

	return c.stats(), walkErr
}

// excluded reports whether rel matches any exclude glob
func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
