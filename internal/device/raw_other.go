//go:build !linux

package device

import "os"

func adviseSequential(f *os.File) {}
