// Package storage wraps *os.File with the minimal contract the
// journal and jfile packages need: open/close, seek, byte-at-a-time
// and bulk read/write, flush-to-userspace, sync-to-disk, and a way to
// query the current offset. It also carries the platform sharing
// policy the main and journal files are opened with.
package storage

import (
	"io"
	"os"
)

// ShareMode names the sharing policy a file is opened with, in place
// of passing an opaque OS constant around. JFile always opens both of
// its files Exclusive; ShareRead and ShareNone exist so the policy is
// a visible, testable argument rather than a hardcoded flag.
type ShareMode int

const (
	// Exclusive takes an exclusive advisory flock: any other open of the
	// file with Exclusive or ShareRead fails. Access that takes no lock
	// is not blocked.
	Exclusive ShareMode = iota
	// ShareRead takes a shared advisory flock: other ShareRead opens
	// succeed and Exclusive opens fail. Access that takes no lock is not
	// blocked.
	ShareRead
	// ShareNone applies no OS-level sharing restriction at all.
	ShareNone
)

// File is a raw byte file with the operations the byte codec and
// journal block builder are defined over.
type File struct {
	*os.File
	share ShareMode
}

// OpenFile opens path under mode (an ISO fopen-style mode string) with
// the given sharing policy.
func OpenFile(path, mode string, share ShareMode) (*File, error) {
	flag, err := parseMode(mode)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}

	file := &File{File: f, share: share}
	if err := lockFile(file.File, share); err != nil {
		f.Close()
		return nil, err
	}

	return file, nil
}

// ReadByte reads a single byte, satisfying io.ByteReader.
func (f *File) ReadByte() (byte, error) {
	var buf [1]byte
	n, err := f.File.Read(buf[:])
	if n == 1 {
		return buf[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// WriteByte writes a single byte, satisfying io.ByteWriter.
func (f *File) WriteByte(b byte) error {
	_, err := f.File.Write([]byte{b})
	return err
}

// Offset reports the file's current position without moving it.
func (f *File) Offset() (int64, error) {
	return f.File.Seek(0, io.SeekCurrent)
}

// Flush is a no-op: *os.File carries no userspace buffer of its own.
// It exists so File satisfies the same flush-to-userspace contract the
// underlying byte file abstraction is specified against.
func (f *File) Flush() error {
	return nil
}

// Sync commits the file's content to durable storage.
func (f *File) Sync() error {
	return f.File.Sync()
}

// Close releases the file, unlocking it first.
func (f *File) Close() error {
	unlockFile(f.File, f.share)
	return f.File.Close()
}
