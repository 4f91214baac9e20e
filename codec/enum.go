package codec

import "fmt"

// Enum describes a fixed-width enumeration with a closed member set.
// Wire types embed an *Enum value and delegate their tag handling to
// it.
type Enum struct {
	Name    string
	Size    int
	Members map[uint64]string
}

// Append appends the fixed-width encoding of v to dst.
func (e *Enum) Append(dst []byte, v uint64) []byte {
	return AppendUint(dst, v, e.Size)
}

// Read consumes an enum value and rejects tags outside the member set.
func (e *Enum) Read(s *Stream) (uint64, error) {
	start := s.Pos()
	v, err := s.ReadUint(e.Size)
	if err != nil {
		return 0, err
	}
	if _, ok := e.Members[v]; !ok {
		return 0, NewParsingError(start, s.Pos(), "invalid %s value %d", e.Name, v)
	}
	return v, nil
}

// Skip advances past an enum value. The tag is still checked for
// membership so that Skip and Read fail on the same inputs.
func (e *Enum) Skip(s *Stream) error {
	_, err := e.Read(s)
	return err
}

// Check validates membership of v.
func (e *Enum) Check(v uint64) error {
	if _, ok := e.Members[v]; !ok {
		return NewValidationError("invalid %s value %d", e.Name, v)
	}
	return nil
}

// Print renders an enum value with its member name when known.
func (e *Enum) Print(v uint64) string {
	name, ok := e.Members[v]
	if !ok {
		name = "?"
	}
	return fmt.Sprintf("%d %s %s(%d)", e.Size, e.Name, name, v)
}
