package journal

import (
	"io"

	jerr "jfile/error"
)

// Journal flag values, occupying byte 0 of every journal file.
const (
	FlagJournaling byte = 'J' // a session is mid-flight, not yet committed
	FlagReady      byte = 'R' // closed and durable, waiting to be drained
	FlagCleared    byte = 'C' // drained; content is stale garbage
)

// Version is the only journal format version this package understands.
const Version int32 = 1

const (
	headerSize      = 13 // flag(1) + version(4) + blockCount(8)
	blockHeaderSize = 16 // blockLength(8) + targetPos(8)

	versionOffset    = 1
	blockCountOffset = 5
)

// Builder assembles a journal file's header and blocks as a caller's
// writes and seeks arrive. It owns exactly the session counters
// spec'd for journal state: journalEndPos, numCompletedBlocks,
// journalBlockStartPos and currentBlockLength.
type Builder struct {
	backend Backend

	journalEndPos        int64
	numCompletedBlocks   int64
	journalBlockStartPos int64
	currentBlockLength   int64
}

// NewBuilder wraps backend, the journal file, for block assembly.
func NewBuilder(backend Backend) *Builder {
	return &Builder{backend: backend}
}

// Active reports whether a journaling session is in progress.
func (b *Builder) Active() bool {
	return b.journalEndPos != 0 || b.currentBlockLength != 0
}

// Reset clears session state back to idle, used after a commit lands
// or an abort discards the in-progress session.
func (b *Builder) Reset() {
	b.journalEndPos = 0
	b.numCompletedBlocks = 0
	b.journalBlockStartPos = 0
	b.currentBlockLength = 0
}

// EnsureHeader writes the 13-byte journal header the first time a
// session starts writing. Idempotent within a session.
func (b *Builder) EnsureHeader() error {
	if b.journalEndPos != 0 {
		return nil
	}
	if _, err := b.backend.Seek(0, io.SeekStart); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putU8(b.backend, FlagJournaling); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putI32(b.backend, Version); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putI64(b.backend, 0); err != nil {
		return jerr.NewBackendError(err)
	}
	b.journalEndPos = headerSize
	return nil
}

// OpenBlock opens a new block bound to the logical position pos,
// writing a zero length placeholder to be back-patched at close. A
// no-op if a block is already open.
func (b *Builder) OpenBlock(pos int64) error {
	if b.currentBlockLength != 0 {
		return nil
	}
	b.journalBlockStartPos = b.journalEndPos
	if _, err := b.backend.Seek(b.journalBlockStartPos, io.SeekStart); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putI64(b.backend, 0); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putI64(b.backend, pos); err != nil {
		return jerr.NewBackendError(err)
	}
	b.currentBlockLength = blockHeaderSize
	b.journalEndPos = b.journalBlockStartPos + blockHeaderSize
	return nil
}

// CloseBlock back-patches the open block's length, bumps and persists
// numCompletedBlocks, and restores the file cursor to journalEndPos.
// A no-op if no block is open.
func (b *Builder) CloseBlock() error {
	if b.currentBlockLength == 0 {
		return nil
	}
	if _, err := b.backend.Seek(b.journalBlockStartPos, io.SeekStart); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putI64(b.backend, b.currentBlockLength); err != nil {
		return jerr.NewBackendError(err)
	}

	b.numCompletedBlocks++
	if _, err := b.backend.Seek(blockCountOffset, io.SeekStart); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putI64(b.backend, b.numCompletedBlocks); err != nil {
		return jerr.NewBackendError(err)
	}

	if _, err := b.backend.Seek(b.journalEndPos, io.SeekStart); err != nil {
		return jerr.NewBackendError(err)
	}
	b.currentBlockLength = 0
	return nil
}

func (b *Builder) advance(n int64) {
	b.currentBlockLength += n
	b.journalEndPos += n
}

// PutByte appends a single byte to the currently open block.
func (b *Builder) PutByte(v byte) error {
	if err := putU8(b.backend, v); err != nil {
		return jerr.NewBackendError(err)
	}
	b.advance(1)
	return nil
}

// PutBytes appends buf to the currently open block.
func (b *Builder) PutBytes(buf []byte) error {
	if err := putBytes(b.backend, buf, len(buf)); err != nil {
		return jerr.NewBackendError(err)
	}
	b.advance(int64(len(buf)))
	return nil
}

// PutI32 appends a big-endian int32 to the currently open block.
func (b *Builder) PutI32(v int32) error {
	if err := putI32(b.backend, v); err != nil {
		return jerr.NewBackendError(err)
	}
	b.advance(4)
	return nil
}

// PutI64 appends a big-endian int64 to the currently open block.
func (b *Builder) PutI64(v int64) error {
	if err := putI64(b.backend, v); err != nil {
		return jerr.NewBackendError(err)
	}
	b.advance(8)
	return nil
}
