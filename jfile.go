// Package jfile turns an ordinary random-access byte file into a
// crash-safe, transactionally updatable one. Writes are buffered into
// a companion journal file and only become visible in the main file
// once committed by Flush, or replayed automatically by the next Open
// after a crash.
package jfile

import (
	"bytes"
	"fmt"
	"io"

	jerr "jfile/error"
	"jfile/journal"
	"jfile/storage"
)

// JFile is a session over a main file and its journal.
type JFile struct {
	main    *storage.File
	journal *storage.File
	builder *journal.Builder

	pos                 int64
	maxPos              int64
	lastPersistedPos    int64
	lastPersistedMaxPos int64
}

// journalModeExisting and journalModeCreate are the fixed "existing,
// else create" pair the
// journal file is always opened with, independent of the caller's
// modeA/modeB for the main file.
const (
	journalModeExisting = "r+"
	journalModeCreate   = "w+"
)

// Open opens mainPath with modeA, falling back to modeB on failure,
// opens or creates journalPath, and recovers any ready journal left
// behind by a crash before the previous session's flush drained it.
func Open(mainPath, journalPath, modeA, modeB string) (*JFile, error) {
	main, err := openWithFallback(mainPath, modeA, modeB)
	if err != nil {
		return nil, err
	}

	jrnl, err := openWithFallback(journalPath, journalModeExisting, journalModeCreate)
	if err != nil {
		main.Close()
		return nil, err
	}

	f := &JFile{
		main:    main,
		journal: jrnl,
		builder: journal.NewBuilder(jrnl),
	}

	applied, err := journal.Recover(jrnl, main)
	if err != nil {
		main.Close()
		jrnl.Close()
		return nil, err
	}

	if applied {
		if err := f.main.Close(); err != nil {
			jrnl.Close()
			return nil, jerr.NewOpenError(err)
		}
		reopened, err := openWithFallback(mainPath, modeA, modeB)
		if err != nil {
			jrnl.Close()
			return nil, err
		}
		f.main = reopened
	}

	pos, err := f.main.Offset()
	if err != nil {
		f.Close()
		return nil, jerr.NewBackendError(err)
	}
	maxPos, err := f.main.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, jerr.NewBackendError(err)
	}
	if _, err := f.main.Seek(pos, io.SeekStart); err != nil {
		f.Close()
		return nil, jerr.NewBackendError(err)
	}

	f.pos = pos
	f.maxPos = maxPos
	f.lastPersistedPos = pos
	f.lastPersistedMaxPos = maxPos

	return f, nil
}

func openWithFallback(path, modeA, modeB string) (*storage.File, error) {
	f, err := storage.OpenFile(path, modeA, storage.Exclusive)
	if err == nil {
		return f, nil
	}
	f, err = storage.OpenFile(path, modeB, storage.Exclusive)
	if err != nil {
		return nil, jerr.NewOpenError(fmt.Errorf("open %s: %w", path, err))
	}
	return f, nil
}

// Tell reports the caller-visible position.
func (f *JFile) Tell() int64 {
	return f.pos
}

// Len reports the logical file length, the highest position ever
// reached.
func (f *JFile) Len() int64 {
	return f.maxPos
}

// IsWriting reports whether a journaling session is in progress. While
// true, reads are forbidden.
func (f *JFile) IsWriting() bool {
	return f.builder.Active()
}

// Seek moves the caller-visible position. Origin is one of
// io.SeekStart, io.SeekCurrent or io.SeekEnd.
//
// While a journaling session is open, io.SeekCurrent is computed from
// maxPos rather than pos -- preserved because it is the semantics
// callers of this format have always gotten, not fixed here.
func (f *JFile) Seek(offset int64, origin int) (int64, error) {
	if !f.builder.Active() {
		if _, err := f.main.Seek(offset, origin); err != nil {
			return 0, jerr.NewBackendError(err)
		}
		p, err := f.main.Offset()
		if err != nil {
			return 0, jerr.NewBackendError(err)
		}
		f.pos = p
		return f.pos, nil
	}

	if err := f.builder.EnsureHeader(); err != nil {
		return 0, err
	}
	if err := f.builder.CloseBlock(); err != nil {
		return 0, err
	}

	var newPos int64
	switch origin {
	case io.SeekStart:
		newPos = offset
		if newPos < 0 || newPos > f.maxPos {
			return 0, jerr.NewInvalidArgumentError(fmt.Errorf("seek target %d out of [0, %d]", newPos, f.maxPos))
		}
	case io.SeekCurrent:
		newPos = f.maxPos + offset
		if newPos < 0 || newPos > f.maxPos {
			return 0, jerr.NewInvalidArgumentError(fmt.Errorf("seek target %d out of [0, %d]", newPos, f.maxPos))
		}
	case io.SeekEnd:
		if offset > 0 {
			return 0, jerr.NewInvalidArgumentError(fmt.Errorf("seek from end requires offset <= 0, got %d", offset))
		}
		newPos = f.maxPos + offset
		if newPos < 0 {
			return 0, jerr.NewInvalidArgumentError(fmt.Errorf("seek target %d is negative", newPos))
		}
	default:
		return 0, jerr.NewInvalidArgumentError(fmt.Errorf("unknown seek origin %d", origin))
	}

	f.pos = newPos
	if err := f.builder.OpenBlock(f.pos); err != nil {
		return 0, err
	}
	return f.pos, nil
}

func (f *JFile) startWrite() error {
	if err := f.builder.EnsureHeader(); err != nil {
		return err
	}
	return f.builder.OpenBlock(f.pos)
}

func (f *JFile) advance(n int64) {
	f.pos += n
	if f.pos > f.maxPos {
		f.maxPos = f.pos
	}
}

// PutByte appends a single byte at the current position.
func (f *JFile) PutByte(b byte) error {
	if err := f.startWrite(); err != nil {
		return err
	}
	if err := f.builder.PutByte(b); err != nil {
		return err
	}
	f.advance(1)
	return nil
}

// PutCString writes s up to, but not including, its first zero byte
// and returns the number of bytes written.
func (f *JFile) PutCString(s string) (int, error) {
	if err := f.startWrite(); err != nil {
		return 0, err
	}
	b := []byte(s)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if err := f.builder.PutBytes(b); err != nil {
		return 0, err
	}
	f.advance(int64(len(b)))
	return len(b), nil
}

// PutBytes writes exactly n bytes from buf at the current position.
func (f *JFile) PutBytes(buf []byte, n int) error {
	if err := f.startWrite(); err != nil {
		return err
	}
	if err := f.builder.PutBytes(buf[:n]); err != nil {
		return err
	}
	f.advance(int64(n))
	return nil
}

// PutI32 writes v as a big-endian int32 at the current position.
func (f *JFile) PutI32(v int32) error {
	if err := f.startWrite(); err != nil {
		return err
	}
	if err := f.builder.PutI32(v); err != nil {
		return err
	}
	f.advance(4)
	return nil
}

// PutI64 writes v as a big-endian int64 at the current position.
func (f *JFile) PutI64(v int64) error {
	if err := f.startWrite(); err != nil {
		return err
	}
	if err := f.builder.PutI64(v); err != nil {
		return err
	}
	f.advance(8)
	return nil
}

// EOF is the sentinel GetByte and GetBytes return in place of an error
// on end of stream, matching the ISO fgetc/read convention.
const EOF = -1

// GetByte reads one byte from the main file, or returns EOF if a
// journaling session is open or the file has no more content.
func (f *JFile) GetByte() (int, error) {
	if f.builder.Active() {
		return EOF, nil
	}
	v, err := journal.GetByte(f.main)
	if err != nil {
		return 0, jerr.NewBackendError(err)
	}
	if v == EOF {
		return EOF, nil
	}
	f.pos++
	return v, nil
}

// GetBytes reads at most count bytes into buf, stopping at end of
// file, and returns the number read, or EOF if a journaling session is
// open or nothing could be read.
func (f *JFile) GetBytes(buf []byte, count int) (int, error) {
	if f.builder.Active() {
		return EOF, nil
	}
	n, err := journal.GetBytes(f.main, buf, count)
	if err != nil {
		return 0, jerr.NewBackendError(err)
	}
	if n == 0 && count > 0 {
		return EOF, nil
	}
	f.pos += int64(n)
	return n, nil
}

// GetI32 reads a big-endian int32 from the main file.
func (f *JFile) GetI32() (int32, error) {
	if f.builder.Active() {
		return 0, jerr.NewReadDuringWriteError()
	}
	v, err := journal.GetI32(f.main)
	if err != nil {
		return 0, err
	}
	f.pos += 4
	return v, nil
}

// GetI64 reads a big-endian int64 from the main file.
func (f *JFile) GetI64() (int64, error) {
	if f.builder.Active() {
		return 0, jerr.NewReadDuringWriteError()
	}
	v, err := journal.GetI64(f.main)
	if err != nil {
		return 0, err
	}
	f.pos += 8
	return v, nil
}

// Flush commits the current session: it closes the open block,
// durably marks the journal ready, replays it into the main file, and
// resets session state. A no-op if nothing has been written.
func (f *JFile) Flush() error {
	if !f.builder.Active() {
		return nil
	}

	if err := f.builder.CloseBlock(); err != nil {
		return err
	}
	if err := journal.MarkReady(f.journal); err != nil {
		return err
	}

	applied, err := journal.Recover(f.journal, f.main)
	if err != nil {
		return err
	}
	if !applied {
		return jerr.NewBackendError(fmt.Errorf("commit: journal was not ready for replay"))
	}

	f.lastPersistedPos = f.pos
	f.lastPersistedMaxPos = f.maxPos
	f.builder.Reset()

	if _, err := f.main.Seek(f.pos, io.SeekStart); err != nil {
		return jerr.NewBackendError(err)
	}
	return nil
}

// Clear aborts the current session's unflushed writes, rewinding pos
// and maxPos to the last successful Flush. The journal's on-disk bytes
// are left untouched -- they were never marked ready, so the next Open
// or Flush ignores them.
func (f *JFile) Clear() error {
	f.pos = f.lastPersistedPos
	f.maxPos = f.lastPersistedMaxPos
	f.builder.Reset()
	return nil
}

// Close releases both files. Safe to call more than once.
func (f *JFile) Close() error {
	var firstErr error
	if f.main != nil {
		if err := f.main.Close(); err != nil {
			firstErr = jerr.NewBackendError(err)
		}
		f.main = nil
	}
	if f.journal != nil {
		if err := f.journal.Close(); err != nil && firstErr == nil {
			firstErr = jerr.NewBackendError(err)
		}
		f.journal = nil
	}
	return firstErr
}
