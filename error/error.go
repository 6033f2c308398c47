// Package error defines the closed taxonomy of failures the journaled
// file layer can return. Each kind is its own type embedding error so
// callers can type-assert instead of matching strings.
package error

import "fmt"

// OpenError means neither modeA nor modeB could open the main file, or
// the journal file could not be opened/created, or a post-recovery
// reopen of the main file failed.
type OpenError struct{ error }

func NewOpenError(err error) error {
	return &OpenError{fmt.Errorf("jfile: open: %w", err)}
}

func IsOpenError(err error) bool {
	_, ok := err.(*OpenError)
	return ok
}

// BackendError wraps any failure surfaced by the underlying OS file --
// seek, read, write, flush or sync.
type BackendError struct{ error }

func NewBackendError(err error) error {
	return &BackendError{fmt.Errorf("jfile: backend: %w", err)}
}

func IsBackendError(err error) bool {
	_, ok := err.(*BackendError)
	return ok
}

// TruncatedIntegerError means fewer than the required 4 or 8 bytes
// were available while decoding a fixed-width integer.
type TruncatedIntegerError struct {
	error
	Want int
	Got  int
}

func NewTruncatedIntegerError(want, got int) error {
	return &TruncatedIntegerError{
		error: fmt.Errorf("jfile: truncated integer: want %d bytes, got %d", want, got),
		Want:  want,
		Got:   got,
	}
}

func IsTruncatedIntegerError(err error) bool {
	_, ok := err.(*TruncatedIntegerError)
	return ok
}

// CorruptJournalError means a block's declared content length exceeded
// the bytes actually available in the journal during replay.
type CorruptJournalError struct{ error }

func NewCorruptJournalError(err error) error {
	return &CorruptJournalError{fmt.Errorf("jfile: corrupt journal: %w", err)}
}

func IsCorruptJournalError(err error) bool {
	_, ok := err.(*CorruptJournalError)
	return ok
}

// VersionError means the journal header carried a version this layer
// does not understand.
type VersionError struct {
	error
	Want int32
	Got  int32
}

func NewVersionError(want, got int32) error {
	return &VersionError{
		error: fmt.Errorf("jfile: journal version mismatch: want %d, got %d", want, got),
		Want:  want,
		Got:   got,
	}
}

func IsVersionError(err error) bool {
	_, ok := err.(*VersionError)
	return ok
}

// InvalidArgumentError means a seek used an unrecognized origin or
// landed outside [0, maxPos].
type InvalidArgumentError struct{ error }

func NewInvalidArgumentError(err error) error {
	return &InvalidArgumentError{fmt.Errorf("jfile: invalid argument: %w", err)}
}

func IsInvalidArgumentError(err error) bool {
	_, ok := err.(*InvalidArgumentError)
	return ok
}

// ReadDuringWriteError means a fixed-width integer read was attempted
// while a journaling session is open.
type ReadDuringWriteError struct{ error }

func NewReadDuringWriteError() error {
	return &ReadDuringWriteError{fmt.Errorf("jfile: read attempted during open write session")}
}

func IsReadDuringWriteError(err error) bool {
	_, ok := err.(*ReadDuringWriteError)
	return ok
}
