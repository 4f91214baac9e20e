package codec

import "fmt"

// UInt8 is a one-byte unsigned integer.
type UInt8 uint8

// UInt16 is a two-byte big-endian unsigned integer.
type UInt16 uint16

// UInt32 is a four-byte big-endian unsigned integer.
type UInt32 uint32

// UInt64 is an eight-byte big-endian unsigned integer.
type UInt64 uint64

func (v UInt8) Bytes() []byte  { return []byte{byte(v)} }
func (v UInt16) Bytes() []byte { return AppendUint(nil, uint64(v), 2) }
func (v UInt32) Bytes() []byte { return AppendUint(nil, uint64(v), 4) }
func (v UInt64) Bytes() []byte { return AppendUint(nil, uint64(v), 8) }

// The value range of each width is carried by its Go type, so there is
// nothing left to validate.
func (v UInt8) Validate() error  { return nil }
func (v UInt16) Validate() error { return nil }
func (v UInt32) Validate() error { return nil }
func (v UInt64) Validate() error { return nil }

func (v UInt8) Print() string  { return fmt.Sprintf("1 UInt8 %d", uint8(v)) }
func (v UInt16) Print() string { return fmt.Sprintf("2 UInt16 %d", uint16(v)) }
func (v UInt32) Print() string { return fmt.Sprintf("4 UInt32 %d", uint32(v)) }
func (v UInt64) Print() string { return fmt.Sprintf("8 UInt64 %d", uint64(v)) }

func ParseUInt8(s *Stream) (UInt8, error) {
	n, err := s.ReadUint(1)
	return UInt8(n), err
}

func ParseUInt16(s *Stream) (UInt16, error) {
	n, err := s.ReadUint(2)
	return UInt16(n), err
}

func ParseUInt32(s *Stream) (UInt32, error) {
	n, err := s.ReadUint(4)
	return UInt32(n), err
}

func ParseUInt64(s *Stream) (UInt64, error) {
	n, err := s.ReadUint(8)
	return UInt64(n), err
}

func SkipUInt8(s *Stream) error  { return s.Skip(1) }
func SkipUInt16(s *Stream) error { return s.Skip(2) }
func SkipUInt32(s *Stream) error { return s.Skip(4) }
func SkipUInt64(s *Stream) error { return s.Skip(8) }
