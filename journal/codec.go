// Package journal implements the on-disk journal format: the 13-byte
// header, the block layout, the stateful block builder that a writing
// session drives, and the replay routine that drains a ready journal
// into a main file. Everything here is grounded on big-endian,
// fixed-width integers and knows nothing about the caller-facing
// position/seek semantics layered on top by the jfile package.
package journal

import (
	"encoding/binary"
	"io"

	jerr "jfile/error"
)

// Backend is the minimal raw byte file contract the codec and block
// builder are defined over: open/close is the caller's job, everything
// else -- seek, byte and bulk read/write, flush-to-userspace,
// sync-to-disk, offset query -- is exercised here.
type Backend interface {
	io.Closer
	io.ReadWriter
	io.ByteReader
	io.ByteWriter
	Seek(offset int64, whence int) (int64, error)
	Offset() (int64, error)
	Flush() error
	Sync() error
}

// putU8 writes a single byte.
func putU8(b Backend, v byte) error {
	return b.WriteByte(v)
}

// getU8 reads a single byte, returning -1 on end of stream instead of
// an error, matching the byte codec's explicit EOF sentinel.
func getU8(b Backend) (int, error) {
	v, err := b.ReadByte()
	if err == io.EOF {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return int(v), nil
}

// putI32 writes v as a big-endian, two's complement 32-bit integer.
func putI32(b Backend, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return writeFull(b, buf[:])
}

// getI32 reads a big-endian 32-bit integer, failing with
// TruncatedIntegerError if fewer than 4 bytes are available.
func getI32(b Backend) (int32, error) {
	var buf [4]byte
	n, err := io.ReadFull(b, buf[:])
	if err != nil {
		return 0, jerr.NewTruncatedIntegerError(4, n)
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// putI64 writes v as a big-endian, two's complement 64-bit integer.
func putI64(b Backend, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return writeFull(b, buf[:])
}

// getI64 reads a big-endian 64-bit integer, failing with
// TruncatedIntegerError if fewer than 8 bytes are available.
func getI64(b Backend) (int64, error) {
	var buf [8]byte
	n, err := io.ReadFull(b, buf[:])
	if err != nil {
		return 0, jerr.NewTruncatedIntegerError(8, n)
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// putBytes writes exactly n bytes from buf.
func putBytes(b Backend, buf []byte, n int) error {
	return writeFull(b, buf[:n])
}

// getBytes copies at most n bytes into buf, stopping at end of stream
// rather than treating a short read as an error, and returns the
// number of bytes actually copied.
func getBytes(b Backend, buf []byte, n int) (int, error) {
	total := 0
	for total < n {
		m, err := b.Read(buf[total:n])
		total += m
		if err != nil {
			if err == io.EOF {
				break
			}
			return total, err
		}
		if m == 0 {
			break
		}
	}
	return total, nil
}

func writeFull(b Backend, buf []byte) error {
	n, err := b.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}
