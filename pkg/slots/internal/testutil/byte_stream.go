package testutil

// ByteStream reads bytes sequentially from a byte slice.
//
// Used by fuzz tests to deterministically derive operations from fuzz input.
// When the stream is exhausted, all reads return zero values, so the same
// input always produces the same sequence of operations. That is required
// for Go's fuzzer to minimize failing inputs.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream creates a stream over the given bytes.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 if exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextInt8 returns the next byte reinterpreted as a signed value.
func (s *ByteStream) NextInt8() int8 {
	return int8(s.NextByte())
}

// NextUint32 reads 4 bytes as a little-endian uint32.
func (s *ByteStream) NextUint32() uint32 {
	var v uint32

	v |= uint32(s.NextByte())
	v |= uint32(s.NextByte()) << 8
	v |= uint32(s.NextByte()) << 16
	v |= uint32(s.NextByte()) << 24

	return v
}
