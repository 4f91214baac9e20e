package codec

// Bounds declares the payload byte-length bounds of a vector type.
// The width of the length-prefix marker is derived from Max.
type Bounds struct {
	Min uint64
	Max uint64
}

// MarkerSize returns the width in bytes of the vector's length-prefix
// marker.
func (b Bounds) MarkerSize() int {
	return BytesNeeded(b.Max)
}

// AppendOpaque appends the marker and raw payload of an opaque vector
// to dst.
func AppendOpaque(dst []byte, b Bounds, v []byte) []byte {
	dst = AppendUint(dst, uint64(len(v)), b.MarkerSize())
	return append(dst, v...)
}

// ReadOpaque parses an opaque vector: marker, bounds check, payload.
// The returned slice aliases the input.
func ReadOpaque(s *Stream, b Bounds, name string) ([]byte, error) {
	start := s.Pos()
	size, err := s.ReadUint(b.MarkerSize())
	if err != nil {
		return nil, err
	}
	if size < b.Min || size > b.Max {
		return nil, NewParsingError(start, s.Pos(),
			"invalid %s size %d outside %d-%d", name, size, b.Min, b.Max)
	}
	return s.Read(int(size))
}

// SkipOpaque advances past an opaque vector without materializing it.
func SkipOpaque(s *Stream, b Bounds, name string) error {
	start := s.Pos()
	size, err := s.ReadUint(b.MarkerSize())
	if err != nil {
		return err
	}
	if size < b.Min || size > b.Max {
		return NewParsingError(start, s.Pos(),
			"invalid %s size %d outside %d-%d", name, size, b.Min, b.Max)
	}
	return s.Skip(int(size))
}

// CheckOpaque validates an opaque payload against its declared bounds.
func CheckOpaque(b Bounds, v []byte, name string) error {
	if uint64(len(v)) < b.Min || uint64(len(v)) > b.Max {
		return NewValidationError("invalid %s size %d, must be between %d and %d",
			name, len(v), b.Min, b.Max)
	}
	return nil
}

// AppendVector appends the marker and the concatenated item
// serializations of a vector to dst.
func AppendVector[T Value](dst []byte, b Bounds, items []T) []byte {
	var payload []byte
	for _, item := range items {
		payload = append(payload, item.Bytes()...)
	}
	return AppendOpaque(dst, b, payload)
}

// ReadVector parses a length-prefixed vector of items, calling parse
// until exactly the announced payload has been consumed.
func ReadVector[T any](s *Stream, b Bounds, name string, parse func(*Stream) (T, error)) ([]T, error) {
	start := s.Pos()
	size, err := s.ReadUint(b.MarkerSize())
	if err != nil {
		return nil, err
	}
	if size < b.Min || size > b.Max {
		return nil, NewParsingError(start, s.Pos(),
			"invalid %s size %d outside %d-%d", name, size, b.Min, b.Max)
	}
	if uint64(s.Remaining()) < size {
		return nil, NewParsingError(s.Pos(), s.Pos()+int(size),
			"unexpected end of input: %s payload needs %d bytes, have %d", name, size, s.Remaining())
	}

	payloadStart := s.Pos()
	end := payloadStart + int(size)
	var items []T
	for s.Pos() < end {
		item, err := parse(s)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if s.Pos() > end {
		return nil, NewParsingError(end, s.Pos(), "extra data read while processing %s", name)
	}
	return items, nil
}

// SkipVector advances past a length-prefixed vector without parsing
// its items.
func SkipVector(s *Stream, b Bounds, name string) error {
	return SkipOpaque(s, b, name)
}

// CheckVector validates every item of a vector and its total payload
// length against the declared bounds.
func CheckVector[T Value](b Bounds, items []T, name string) error {
	var size uint64
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		size += uint64(len(item.Bytes()))
	}
	if size < b.Min || size > b.Max {
		return NewValidationError("invalid %s size %d, must be between %d and %d",
			name, size, b.Min, b.Max)
	}
	return nil
}

// ReadArray consumes a fixed-length array of n raw bytes. Arrays carry
// no marker.
func ReadArray(s *Stream, n int) ([]byte, error) {
	return s.Read(n)
}

// CheckArray validates the length of a fixed-length array value.
func CheckArray(n int, v []byte, name string) error {
	if len(v) != n {
		return NewValidationError("invalid %s size %d, must be exactly %d", name, len(v), n)
	}
	return nil
}
