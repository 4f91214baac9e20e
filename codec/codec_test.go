package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestUintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 0xff, 0x100, 0xffff, 0x10000, 0xffffffff, 0x100000000, ^uint64(0)} {
		b := AppendUint(nil, v, 8)
		s := NewStream(b)
		got, err := s.ReadUint(8)
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Errorf("round trip of %d gave %d", v, got)
		}
		if s.Remaining() != 0 {
			t.Errorf("expected stream to be drained, %d bytes left", s.Remaining())
		}
	}
}

func TestUintWidths(t *testing.T) {
	vals := []Value{UInt8(0xab), UInt16(0xabcd), UInt32(0xdeadbeef), UInt64(0x0123456789abcdef)}
	widths := []int{1, 2, 4, 8}
	for i, v := range vals {
		if len(v.Bytes()) != widths[i] {
			t.Errorf("%s serialized to %d bytes, want %d", v.Print(), len(v.Bytes()), widths[i])
		}
	}

	s := NewStream(UInt32(0xdeadbeef).Bytes())
	got, err := ParseUInt32(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xdeadbeef {
		t.Errorf("parsed %x, want deadbeef", uint32(got))
	}
}

func TestReadTruncated(t *testing.T) {
	s := NewStream([]byte{1, 2})
	if _, err := s.Read(3); err == nil {
		t.Fatal("expected a parsing error on truncated input")
	} else {
		var pe *ParsingError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParsingError, got %T", err)
		}
	}
}

func TestBytesNeeded(t *testing.T) {
	cases := []struct {
		n    uint64
		want int
	}{
		{32, 1},
		{255, 1},
		{256, 2},
		{1<<16 - 1, 2},
		{1 << 16, 3},
		{1<<24 - 1, 3},
		{1 << 24, 4},
		{1<<32 - 1, 4},
	}
	for _, c := range cases {
		if got := BytesNeeded(c.n); got != c.want {
			t.Errorf("BytesNeeded(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestMarkerWidths(t *testing.T) {
	// The marker is the smallest big-endian width that encodes the
	// maximum payload length: 1, 2, 4 bytes, or 3 for maxima in
	// [2^16, 2^24).
	cases := []struct {
		b    Bounds
		want int
	}{
		{Bounds{0, 32}, 1},
		{Bounds{1, 255}, 1},
		{Bounds{0, 1<<16 - 1}, 2},
		{Bounds{32, 1<<24 - 1}, 3},
		{Bounds{0, 1<<32 - 1}, 4},
	}
	for _, c := range cases {
		if got := c.b.MarkerSize(); got != c.want {
			t.Errorf("MarkerSize of max %d = %d, want %d", c.b.Max, got, c.want)
		}
	}
}

func TestOpaqueRoundTrip(t *testing.T) {
	b := Bounds{Min: 0, Max: 255}
	payload := []byte("hello opaque")
	wire := AppendOpaque(nil, b, payload)
	if len(wire) != 1+len(payload) {
		t.Fatalf("wire length %d, want %d", len(wire), 1+len(payload))
	}

	s := NewStream(wire)
	got, err := ReadOpaque(s, b, "test")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("parsed %q, want %q", got, payload)
	}
	if s.Pos() != len(wire) {
		t.Errorf("parse consumed %d bytes, want %d", s.Pos(), len(wire))
	}

	// skip must land on the same offset as parse
	s = NewStream(wire)
	if err := SkipOpaque(s, b, "test"); err != nil {
		t.Fatal(err)
	}
	if s.Pos() != len(wire) {
		t.Errorf("skip consumed %d bytes, want %d", s.Pos(), len(wire))
	}
}

func TestOpaqueBounds(t *testing.T) {
	b := Bounds{Min: 2, Max: 4}

	if err := CheckOpaque(b, []byte{1}, "test"); err == nil {
		t.Error("expected a validation error below the minimum")
	}
	if err := CheckOpaque(b, []byte{1, 2, 3, 4, 5}, "test"); err == nil {
		t.Error("expected a validation error above the maximum")
	}
	if err := CheckOpaque(b, []byte{1, 2, 3}, "test"); err != nil {
		t.Error(err)
	}

	// marker out of declared range fails the parse
	wire := AppendOpaque(nil, b, []byte{1, 2, 3, 4, 5})
	if _, err := ReadOpaque(NewStream(wire), b, "test"); err == nil {
		t.Error("expected a parsing error for an out-of-range marker")
	}

	// marker larger than the remaining bytes fails the parse
	if _, err := ReadOpaque(NewStream([]byte{4, 1, 2}), b, "test"); err == nil {
		t.Error("expected a parsing error for a truncated payload")
	}
}

func TestVectorRoundTrip(t *testing.T) {
	b := Bounds{Min: 0, Max: 1<<16 - 1}
	items := []UInt16{1, 2, 3, 0xffff}
	wire := AppendVector(nil, b, items)
	if len(wire) != 2+2*len(items) {
		t.Fatalf("wire length %d, want %d", len(wire), 2+2*len(items))
	}

	s := NewStream(wire)
	got, err := ReadVector(s, b, "test", ParseUInt16)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(items) {
		t.Fatalf("parsed %d items, want %d", len(got), len(items))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Errorf("item %d: parsed %d, want %d", i, got[i], items[i])
		}
	}

	s = NewStream(wire)
	if err := SkipVector(s, b, "test"); err != nil {
		t.Fatal(err)
	}
	if s.Pos() != len(wire) {
		t.Errorf("skip consumed %d bytes, want %d", s.Pos(), len(wire))
	}
}

func TestVectorExtraData(t *testing.T) {
	// a payload length that splits an item must fail
	b := Bounds{Min: 0, Max: 255}
	wire := []byte{3, 0, 1, 0, 2}
	if _, err := ReadVector(NewStream(wire), b, "test", ParseUInt16); err == nil {
		t.Error("expected a parsing error for a misaligned payload length")
	}
}

func TestEnum(t *testing.T) {
	e := &Enum{Name: "Color", Size: 2, Members: map[uint64]string{0: "red", 1: "green"}}

	wire := e.Append(nil, 1)
	if len(wire) != 2 {
		t.Fatalf("wire length %d, want 2", len(wire))
	}
	v, err := e.Read(NewStream(wire))
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Errorf("parsed %d, want 1", v)
	}

	if _, err := e.Read(NewStream([]byte{0, 7})); err == nil {
		t.Error("expected a parsing error for an unknown member")
	}
	if err := e.Check(7); err == nil {
		t.Error("expected a validation error for an unknown member")
	}
}

func TestValidationToggle(t *testing.T) {
	defer SetValidation(true)

	if !ValidationEnabled() {
		t.Fatal("validation should be enabled by default")
	}
	SetValidation(false)
	if ValidationEnabled() {
		t.Fatal("validation should be disabled after SetValidation(false)")
	}
	SetValidation(true)
	if !ValidationEnabled() {
		t.Fatal("validation should be enabled after SetValidation(true)")
	}
}

func TestEqualAndKey(t *testing.T) {
	if !Equal(UInt32(7), UInt32(7)) {
		t.Error("equal values compare unequal")
	}
	if Equal(UInt32(7), UInt32(8)) {
		t.Error("distinct values compare equal")
	}
	if Key(UInt16(0x0102)) != "\x01\x02" {
		t.Error("unexpected map key serialization")
	}
}

func TestPrintableBytes(t *testing.T) {
	if got := PrintableBytes([]byte("abc\x00def"), 80); got != "abc.def" {
		t.Errorf("got %q", got)
	}
	long := bytes.Repeat([]byte("x"), 100)
	if got := PrintableBytes(long, 10); len(got) != 10 {
		t.Errorf("truncated length %d, want 10", len(got))
	}
}
