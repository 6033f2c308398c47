package journal

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// memBackend is a Backend over an in-memory buffer, used to unit test
// the codec and block builder without touching a real file.
type memBackend struct {
	buf []byte
	pos int64
}

func (m *memBackend) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memBackend) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memBackend) ReadByte() (byte, error) {
	var b [1]byte
	n, err := m.Read(b[:])
	if n == 1 {
		return b[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

func (m *memBackend) WriteByte(b byte) error {
	_, err := m.Write([]byte{b})
	return err
}

func (m *memBackend) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	}
	return m.pos, nil
}

func (m *memBackend) Offset() (int64, error) { return m.pos, nil }
func (m *memBackend) Flush() error           { return nil }
func (m *memBackend) Sync() error            { return nil }
func (m *memBackend) Close() error           { return nil }

func TestCodec_I32RoundTrip(t *testing.T) {
	b := &memBackend{}
	assert.Nil(t, putI32(b, -12345))
	b.Seek(0, io.SeekStart)
	v, err := getI32(b)
	assert.Nil(t, err)
	assert.EqualValues(t, -12345, v)
}

func TestCodec_I64RoundTrip(t *testing.T) {
	b := &memBackend{}
	assert.Nil(t, putI64(b, -999888777666))
	b.Seek(0, io.SeekStart)
	v, err := getI64(b)
	assert.Nil(t, err)
	assert.EqualValues(t, -999888777666, v)
}

func TestCodec_I32BigEndianLayout(t *testing.T) {
	b := &memBackend{}
	assert.Nil(t, putI32(b, 1))
	assert.Equal(t, []byte{0, 0, 0, 1}, b.buf)
}

func TestCodec_GetI32Truncated(t *testing.T) {
	b := &memBackend{buf: []byte{0, 1}}
	_, err := getI32(b)
	assert.NotNil(t, err)
}

func TestCodec_GetU8EOF(t *testing.T) {
	b := &memBackend{}
	v, err := getU8(b)
	assert.Nil(t, err)
	assert.Equal(t, -1, v)
}

func TestCodec_GetBytesStopsAtCount(t *testing.T) {
	b := &memBackend{buf: bytes.Repeat([]byte{'x'}, 10)}
	out := make([]byte, 20)
	n, err := getBytes(b, out, 4)
	assert.Nil(t, err)
	assert.Equal(t, 4, n)
	assert.EqualValues(t, 4, b.pos)
}

func TestCodec_GetBytesStopsAtEOF(t *testing.T) {
	b := &memBackend{buf: []byte("ab")}
	out := make([]byte, 5)
	n, err := getBytes(b, out, 5)
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
}
