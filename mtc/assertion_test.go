package mtc

import (
	"reflect"
	"testing"

	"github.com/mtc-sys/mtc-go/codec"
)

func TestAssertionRoundTrip(t *testing.T) {
	a, err := NewAssertion([]byte("subject public key"), AssertionClaims{
		DNSNames:      []string{"example.com", "www.example.com"},
		DNSWildcards:  []string{"example.com"},
		IPv4Addresses: []string{"192.0.2.7", "192.0.2.1"},
		IPv6Addresses: []string{"2001:db8::2", "2001:db8::1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	wire := a.Bytes()
	s := codec.NewStream(wire)
	parsed, err := ParseAssertion(s)
	if err != nil {
		t.Fatal(err)
	}
	if s.Pos() != len(wire) {
		t.Errorf("parse consumed %d bytes, want %d", s.Pos(), len(wire))
	}
	if !codec.Equal(parsed, a) {
		t.Error("assertion round trip mismatch")
	}
	if err := parsed.Validate(); err != nil {
		t.Error(err)
	}

	s = codec.NewStream(wire)
	if err := SkipAssertion(s); err != nil {
		t.Fatal(err)
	}
	if s.Pos() != len(wire) {
		t.Errorf("skip consumed %d bytes, want %d", s.Pos(), len(wire))
	}
}

func TestNewAssertionOrdersClaims(t *testing.T) {
	a, err := NewAssertion(nil, AssertionClaims{
		DNSNames:      []string{"sub.example.com", "example.com", "example.ca"},
		IPv4Addresses: []string{"192.0.2.200", "192.0.2.3"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Claims) != 2 {
		t.Fatalf("assertion has %d claims, want 2", len(a.Claims))
	}
	names := a.Claims[0].DNSNames
	want := []string{"example.ca", "example.com", "sub.example.com"}
	for i := range want {
		if string(names[i]) != want[i] {
			t.Errorf("name %d is %q, want %q", i, names[i], want[i])
		}
	}

	addrs := a.Claims[1].IPv4Addresses
	if addrs[0] != (IPv4Address{192, 0, 2, 3}) || addrs[1] != (IPv4Address{192, 0, 2, 200}) {
		t.Error("IPv4 addresses must be sorted ascending")
	}
}

func TestSortDNSNames(t *testing.T) {
	got := SortDNSNames([]string{"sub.example.com", "example.com", "a.org", "example.Com"})
	want := []string{"example.com", "example.Com", "sub.example.com", "a.org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestClaimListUniqueness(t *testing.T) {
	dup := ClaimList{
		{Type: ClaimDNS, DNSNames: DNSNameList{DNSName("example.com")}},
		{Type: ClaimDNS, DNSNames: DNSNameList{DNSName("example.org")}},
	}
	if err := dup.Validate(); err == nil {
		t.Fatal("expected a validation error for duplicated claim types")
	}

	distinct := ClaimList{
		{Type: ClaimDNS, DNSNames: DNSNameList{DNSName("example.com")}},
		{Type: ClaimDNSWildcard, DNSNames: DNSNameList{DNSName("example.com")}},
	}
	if err := distinct.Validate(); err != nil {
		t.Error(err)
	}
}

func TestDNSNameValidation(t *testing.T) {
	if err := DNSName("example.com").Validate(); err != nil {
		t.Error(err)
	}
	if err := DNSName("bad name!").Validate(); err == nil {
		t.Error("expected a validation error for forbidden characters")
	}
	if err := DNSName("").Validate(); err == nil {
		t.Error("expected a validation error for an empty name")
	}
}

func TestDNSNameListOrderValidation(t *testing.T) {
	unsorted := DNSNameList{DNSName("sub.example.com"), DNSName("example.com")}
	if err := unsorted.Validate(); err == nil {
		t.Error("expected a validation error for unsorted names")
	}
	sorted := DNSNameList{DNSName("example.com"), DNSName("sub.example.com")}
	if err := sorted.Validate(); err != nil {
		t.Error(err)
	}
}

func TestEmptySubjectInfo(t *testing.T) {
	a, err := NewAssertion(nil, AssertionClaims{DNSNames: []string{"example.com"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.SubjectInfo) != 0 {
		t.Error("subject info should be empty")
	}
	if err := a.Validate(); err != nil {
		t.Error(err)
	}
}

func TestAssertionsVector(t *testing.T) {
	as := Assertions(testAssertions(t, "a.example.com", "b.example.com"))

	wire := as.Bytes()
	// the batch vector carries a 4-byte marker
	if got := int(uint32(wire[0])<<24 | uint32(wire[1])<<16 | uint32(wire[2])<<8 | uint32(wire[3])); got != len(wire)-4 {
		t.Errorf("marker %d, want %d", got, len(wire)-4)
	}

	parsed, err := ParseAssertions(codec.NewStream(wire))
	if err != nil {
		t.Fatal(err)
	}
	if !codec.Equal(parsed, as) {
		t.Error("assertions round trip mismatch")
	}
}

func TestClaimTagRejected(t *testing.T) {
	// an unknown claim tag must fail the parse
	wire := codec.AppendUint(nil, 9, 2)
	if _, err := ParseClaim(codec.NewStream(wire)); err == nil {
		t.Error("expected a parsing error for an unknown claim type")
	}
}

func TestInvalidAddressInput(t *testing.T) {
	if _, err := NewAssertion(nil, AssertionClaims{IPv4Addresses: []string{"2001:db8::1"}}); err == nil {
		t.Error("expected an error for an IPv6 literal in the IPv4 list")
	}
	if _, err := NewAssertion(nil, AssertionClaims{IPv6Addresses: []string{"192.0.2.1"}}); err == nil {
		t.Error("expected an error for an IPv4 literal in the IPv6 list")
	}
}
