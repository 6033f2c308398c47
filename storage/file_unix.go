// +build darwin dragonfly freebsd linux netbsd openbsd

package storage

import (
	"os"
	"syscall"
)

// lockFile applies the flock(2) policy matching share. ShareNone skips
// locking entirely; Exclusive and ShareRead map onto LOCK_EX/LOCK_SH,
// both non-blocking so a second session fails fast instead of
// stalling on contention.
func lockFile(f *os.File, share ShareMode) error {
	if share == ShareNone {
		return nil
	}
	how := syscall.LOCK_EX
	if share == ShareRead {
		how = syscall.LOCK_SH
	}
	return syscall.Flock(int(f.Fd()), how|syscall.LOCK_NB)
}

func unlockFile(f *os.File, share ShareMode) error {
	if share == ShareNone {
		return nil
	}
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
