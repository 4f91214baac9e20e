package codec

import "math/bits"

// Stream is a cursor over an immutable byte slice. Parse and Skip
// functions consume bytes from it and report *ParsingError on
// truncation. A failed parse aborts the whole operation, so top-level
// entry points hand each input its own Stream and the caller never
// observes a moved offset on failure.
type Stream struct {
	data []byte
	pos  int
}

// NewStream returns a Stream positioned at the start of data. The
// slice is not copied.
func NewStream(data []byte) *Stream {
	return &Stream{data: data}
}

// Pos returns the current offset from the start of the input.
func (s *Stream) Pos() int {
	return s.pos
}

// Remaining returns the number of unconsumed bytes.
func (s *Stream) Remaining() int {
	return len(s.data) - s.pos
}

// Read consumes the next n bytes. The returned slice aliases the
// input; callers that retain it must copy.
func (s *Stream) Read(n int) ([]byte, error) {
	if n < 0 || s.Remaining() < n {
		return nil, NewParsingError(s.pos, len(s.data),
			"unexpected end of input: need %d bytes, have %d", n, s.Remaining())
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// Skip advances past the next n bytes.
func (s *Stream) Skip(n int) error {
	if n < 0 || s.Remaining() < n {
		return NewParsingError(s.pos, len(s.data),
			"unexpected end of input: need %d bytes, have %d", n, s.Remaining())
	}
	s.pos += n
	return nil
}

// ReadUint consumes a big-endian unsigned integer of the given byte
// width.
func (s *Stream) ReadUint(width int) (uint64, error) {
	b, err := s.Read(width)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// BytesNeeded returns the minimum number of bytes that can represent n
// unsigned. It is the marker width of a vector whose maximum payload
// length is n.
func BytesNeeded(n uint64) int {
	return (bits.Len64(n) + 7) / 8
}

// AppendUint appends the big-endian encoding of v in the given byte
// width to dst.
func AppendUint(dst []byte, v uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst
}
