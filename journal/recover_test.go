package journal

import (
	jerr "jfile/error"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecover_IgnoresNonReadyFlags(t *testing.T) {
	for _, flag := range []byte{FlagJournaling, FlagCleared} {
		jrnl := &memBackend{buf: []byte{flag}}
		main := &memBackend{}
		applied, err := Recover(jrnl, main)
		assert.Nil(t, err)
		assert.False(t, applied)
		assert.Equal(t, 0, len(main.buf))
	}
}

func TestRecover_IgnoresEmptyJournal(t *testing.T) {
	jrnl := &memBackend{}
	main := &memBackend{}
	applied, err := Recover(jrnl, main)
	assert.Nil(t, err)
	assert.False(t, applied)
}

func TestRecover_ReplaysReadyJournalAndClears(t *testing.T) {
	jrnl := &memBackend{}
	builder := NewBuilder(jrnl)

	assert.Nil(t, builder.EnsureHeader())
	assert.Nil(t, builder.OpenBlock(0))
	assert.Nil(t, builder.PutBytes([]byte("Hello")))
	assert.Nil(t, builder.CloseBlock())
	assert.Nil(t, MarkReady(jrnl))

	main := &memBackend{}
	applied, err := Recover(jrnl, main)
	assert.Nil(t, err)
	assert.True(t, applied)
	assert.Equal(t, "Hello", string(main.buf))
	assert.Equal(t, FlagCleared, jrnl.buf[0])
}

func TestRecover_SkipsEmptyContentBlocks(t *testing.T) {
	jrnl := &memBackend{}
	builder := NewBuilder(jrnl)

	assert.Nil(t, builder.EnsureHeader())
	assert.Nil(t, builder.OpenBlock(0))
	assert.Nil(t, builder.CloseBlock())
	assert.Nil(t, builder.OpenBlock(0))
	assert.Nil(t, builder.PutBytes([]byte("X")))
	assert.Nil(t, builder.CloseBlock())
	assert.Nil(t, MarkReady(jrnl))

	main := &memBackend{}
	applied, err := Recover(jrnl, main)
	assert.Nil(t, err)
	assert.True(t, applied)
	assert.Equal(t, "X", string(main.buf))
}

func TestRecover_RejectsWrongVersion(t *testing.T) {
	jrnl := &memBackend{}
	builder := NewBuilder(jrnl)
	assert.Nil(t, builder.EnsureHeader())
	assert.Nil(t, builder.CloseBlock())
	assert.Nil(t, MarkReady(jrnl))

	// Corrupt the version field in place.
	jrnl.pos = versionOffset
	assert.Nil(t, putI32(jrnl, 2))

	main := &memBackend{}
	_, err := Recover(jrnl, main)
	assert.NotNil(t, err)
	assert.True(t, jerr.IsVersionError(err))
}

func TestRecover_CorruptContentLengthFails(t *testing.T) {
	jrnl := &memBackend{}
	builder := NewBuilder(jrnl)
	assert.Nil(t, builder.EnsureHeader())
	assert.Nil(t, builder.OpenBlock(0))
	assert.Nil(t, builder.PutBytes([]byte("Hello")))
	assert.Nil(t, builder.CloseBlock())
	assert.Nil(t, MarkReady(jrnl))

	// Truncate the journal after the block header so the declared
	// content length can't be satisfied.
	jrnl.buf = jrnl.buf[:headerSize+blockHeaderSize+2]

	main := &memBackend{}
	_, err := Recover(jrnl, main)
	assert.NotNil(t, err)
	assert.True(t, jerr.IsCorruptJournalError(err))
}
