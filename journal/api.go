package journal

// GetByte reads a single byte from b, the byte codec's raw primitive.
// Returns -1 on end of stream instead of an error.
func GetByte(b Backend) (int, error) {
	return getU8(b)
}

// GetBytes copies at most n bytes into buf, stopping at end of stream,
// and returns the number of bytes actually copied.
func GetBytes(b Backend, buf []byte, n int) (int, error) {
	return getBytes(b, buf, n)
}

// GetI32 reads a big-endian int32 from b.
func GetI32(b Backend) (int32, error) {
	return getI32(b)
}

// GetI64 reads a big-endian int64 from b.
func GetI64(b Backend) (int64, error) {
	return getI64(b)
}
