//go:build linux

package device

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential tells the kernel the scan reads front to back so it can
// read ahead aggressively. Failure only costs performance.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
