package mtc

import (
	"bytes"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/mtc-sys/mtc-go/codec"
)

// SubjectType identifies the kind of subject an assertion speaks for.
type SubjectType uint16

const (
	// SubjectTLS is a TLS subject; its SubjectInfo carries the
	// subject's key material, treated here as opaque bytes.
	SubjectTLS SubjectType = 0
)

var subjectTypeEnum = &codec.Enum{
	Name: "SubjectType",
	Size: 2,
	Members: map[uint64]string{
		uint64(SubjectTLS): "tls",
	},
}

func (t SubjectType) Bytes() []byte   { return subjectTypeEnum.Append(nil, uint64(t)) }
func (t SubjectType) Validate() error { return subjectTypeEnum.Check(uint64(t)) }
func (t SubjectType) Print() string   { return subjectTypeEnum.Print(uint64(t)) }

func ParseSubjectType(s *codec.Stream) (SubjectType, error) {
	v, err := subjectTypeEnum.Read(s)
	return SubjectType(v), err
}

func SkipSubjectType(s *codec.Stream) error { return subjectTypeEnum.Skip(s) }

// ClaimType identifies the kind of a claim and selects the claim's
// body type.
type ClaimType uint16

const (
	ClaimDNS         ClaimType = 0
	ClaimDNSWildcard ClaimType = 1
	ClaimIPv4        ClaimType = 2
	ClaimIPv6        ClaimType = 3
)

var claimTypeEnum = &codec.Enum{
	Name: "ClaimType",
	Size: 2,
	Members: map[uint64]string{
		uint64(ClaimDNS):         "dns",
		uint64(ClaimDNSWildcard): "dns_wildcard",
		uint64(ClaimIPv4):        "ipv4",
		uint64(ClaimIPv6):        "ipv6",
	},
}

func (t ClaimType) Bytes() []byte   { return claimTypeEnum.Append(nil, uint64(t)) }
func (t ClaimType) Validate() error { return claimTypeEnum.Check(uint64(t)) }
func (t ClaimType) Print() string   { return claimTypeEnum.Print(uint64(t)) }

func ParseClaimType(s *codec.Stream) (ClaimType, error) {
	v, err := claimTypeEnum.Read(s)
	return ClaimType(v), err
}

// DNSName is a DNS name as opaque ASCII bytes, 1 to 255 bytes long.
type DNSName []byte

var dnsNameBounds = codec.Bounds{Min: 1, Max: 255}

func (n DNSName) Bytes() []byte {
	return codec.AppendOpaque(nil, dnsNameBounds, n)
}

func (n DNSName) Validate() error {
	if err := codec.CheckOpaque(dnsNameBounds, n, "DNSName"); err != nil {
		return err
	}
	for _, c := range n {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.':
		default:
			return codec.NewValidationError("invalid DNS name %q", string(n))
		}
	}
	return nil
}

func (n DNSName) Print() string {
	return fmt.Sprintf("%d DNSName %s", len(n)+dnsNameBounds.MarkerSize(), codec.PrintableBytes(n, 80))
}

func ParseDNSName(s *codec.Stream) (DNSName, error) {
	b, err := codec.ReadOpaque(s, dnsNameBounds, "DNSName")
	return DNSName(b), err
}

// DNSNameList is a list of DNS names sorted from the TLD leftward.
type DNSNameList []DNSName

var dnsNameListBounds = codec.Bounds{Min: 1, Max: 1<<16 - 1}

func (l DNSNameList) Bytes() []byte {
	return codec.AppendVector(nil, dnsNameListBounds, []DNSName(l))
}

func (l DNSNameList) Validate() error {
	if err := codec.CheckVector(dnsNameListBounds, []DNSName(l), "DNSNameList"); err != nil {
		return err
	}
	for i := 1; i < len(l); i++ {
		if !dnsNameLess(string(l[i-1]), string(l[i])) && string(l[i-1]) != string(l[i]) {
			return codec.NewValidationError("DNS names must be in sorted order")
		}
	}
	return nil
}

func (l DNSNameList) Print() string {
	children := make([]string, len(l))
	for i, n := range l {
		children[i] = n.Print()
	}
	return codec.PrintNested("Vector", "DNSNameList", len(l.Bytes()), children)
}

func ParseDNSNameList(s *codec.Stream) (DNSNameList, error) {
	items, err := codec.ReadVector(s, dnsNameListBounds, "DNSNameList", ParseDNSName)
	return DNSNameList(items), err
}

// IPv4Address is a packed IPv4 address.
type IPv4Address [4]byte

func (a IPv4Address) Bytes() []byte   { return append([]byte(nil), a[:]...) }
func (a IPv4Address) Validate() error { return nil }
func (a IPv4Address) Print() string   { return fmt.Sprintf("4 IPv4Address %s", net.IP(a[:]).String()) }

func ParseIPv4Address(s *codec.Stream) (IPv4Address, error) {
	var a IPv4Address
	b, err := codec.ReadArray(s, 4)
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}

// IPv6Address is a packed IPv6 address.
type IPv6Address [16]byte

func (a IPv6Address) Bytes() []byte   { return append([]byte(nil), a[:]...) }
func (a IPv6Address) Validate() error { return nil }
func (a IPv6Address) Print() string   { return fmt.Sprintf("16 IPv6Address %s", net.IP(a[:]).String()) }

func ParseIPv6Address(s *codec.Stream) (IPv6Address, error) {
	var a IPv6Address
	b, err := codec.ReadArray(s, 16)
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}

// IPv4AddressList is a list of IPv4 addresses in ascending order.
type IPv4AddressList []IPv4Address

var ipv4ListBounds = codec.Bounds{Min: 4, Max: 1<<16 - 1}

func (l IPv4AddressList) Bytes() []byte {
	return codec.AppendVector(nil, ipv4ListBounds, []IPv4Address(l))
}

func (l IPv4AddressList) Validate() error {
	if err := codec.CheckVector(ipv4ListBounds, []IPv4Address(l), "IPv4AddressList"); err != nil {
		return err
	}
	for i := 1; i < len(l); i++ {
		if bytes.Compare(l[i-1][:], l[i][:]) > 0 {
			return codec.NewValidationError("IP addresses must be in lexical order")
		}
	}
	return nil
}

func (l IPv4AddressList) Print() string {
	children := make([]string, len(l))
	for i, a := range l {
		children[i] = a.Print()
	}
	return codec.PrintNested("Vector", "IPv4AddressList", len(l.Bytes()), children)
}

func ParseIPv4AddressList(s *codec.Stream) (IPv4AddressList, error) {
	items, err := codec.ReadVector(s, ipv4ListBounds, "IPv4AddressList", ParseIPv4Address)
	return IPv4AddressList(items), err
}

// IPv6AddressList is a list of IPv6 addresses in ascending order.
type IPv6AddressList []IPv6Address

var ipv6ListBounds = codec.Bounds{Min: 16, Max: 1<<16 - 1}

func (l IPv6AddressList) Bytes() []byte {
	return codec.AppendVector(nil, ipv6ListBounds, []IPv6Address(l))
}

func (l IPv6AddressList) Validate() error {
	if err := codec.CheckVector(ipv6ListBounds, []IPv6Address(l), "IPv6AddressList"); err != nil {
		return err
	}
	for i := 1; i < len(l); i++ {
		if bytes.Compare(l[i-1][:], l[i][:]) > 0 {
			return codec.NewValidationError("IP addresses must be in lexical order")
		}
	}
	return nil
}

func (l IPv6AddressList) Print() string {
	children := make([]string, len(l))
	for i, a := range l {
		children[i] = a.Print()
	}
	return codec.PrintNested("Vector", "IPv6AddressList", len(l.Bytes()), children)
}

func ParseIPv6AddressList(s *codec.Stream) (IPv6AddressList, error) {
	items, err := codec.ReadVector(s, ipv6ListBounds, "IPv6AddressList", ParseIPv6Address)
	return IPv6AddressList(items), err
}

// SubjectInfo carries the subject's key material as opaque bytes.
type SubjectInfo []byte

var subjectInfoBounds = codec.Bounds{Min: 0, Max: 1<<16 - 1}

func (si SubjectInfo) Bytes() []byte {
	return codec.AppendOpaque(nil, subjectInfoBounds, si)
}

func (si SubjectInfo) Validate() error {
	return codec.CheckOpaque(subjectInfoBounds, si, "SubjectInfo")
}

func (si SubjectInfo) Print() string {
	return fmt.Sprintf("%d SubjectInfo %s", len(si)+subjectInfoBounds.MarkerSize(), codec.PrintableBytes(si, 80))
}

func ParseSubjectInfo(s *codec.Stream) (SubjectInfo, error) {
	b, err := codec.ReadOpaque(s, subjectInfoBounds, "SubjectInfo")
	return SubjectInfo(b), err
}

// Claim is a tagged variant binding a ClaimType to its typed body.
type Claim struct {
	Type ClaimType

	// Exactly one of the following carries the body, selected by
	// Type.
	DNSNames      DNSNameList
	IPv4Addresses IPv4AddressList
	IPv6Addresses IPv6AddressList
}

func (c Claim) body() codec.Value {
	switch c.Type {
	case ClaimDNS, ClaimDNSWildcard:
		return c.DNSNames
	case ClaimIPv4:
		return c.IPv4Addresses
	case ClaimIPv6:
		return c.IPv6Addresses
	}
	return nil
}

func (c Claim) Bytes() []byte {
	dst := c.Type.Bytes()
	if body := c.body(); body != nil {
		dst = append(dst, body.Bytes()...)
	}
	return dst
}

func (c Claim) Validate() error {
	if err := c.Type.Validate(); err != nil {
		return err
	}
	return c.body().Validate()
}

func (c Claim) Print() string {
	children := []string{c.Type.Print()}
	if body := c.body(); body != nil {
		children = append(children, body.Print())
	}
	return codec.PrintNested("Variant", "Claim", len(c.Bytes()), children)
}

func ParseClaim(s *codec.Stream) (Claim, error) {
	t, err := ParseClaimType(s)
	if err != nil {
		return Claim{}, err
	}
	c := Claim{Type: t}
	switch t {
	case ClaimDNS, ClaimDNSWildcard:
		c.DNSNames, err = ParseDNSNameList(s)
	case ClaimIPv4:
		c.IPv4Addresses, err = ParseIPv4AddressList(s)
	case ClaimIPv6:
		c.IPv6Addresses, err = ParseIPv6AddressList(s)
	}
	if err != nil {
		return Claim{}, err
	}
	return c, nil
}

// SkipClaim reads the tag and advances past the body without
// materializing it.
func SkipClaim(s *codec.Stream) error {
	t, err := ParseClaimType(s)
	if err != nil {
		return err
	}
	switch t {
	case ClaimDNS, ClaimDNSWildcard:
		return codec.SkipVector(s, dnsNameListBounds, "DNSNameList")
	case ClaimIPv4:
		return codec.SkipVector(s, ipv4ListBounds, "IPv4AddressList")
	default:
		return codec.SkipVector(s, ipv6ListBounds, "IPv6AddressList")
	}
}

// ClaimList is the list of claims of one assertion. An assertion
// carries at most one claim per ClaimType.
type ClaimList []Claim

var claimListBounds = codec.Bounds{Min: 0, Max: 1<<16 - 1}

func (l ClaimList) Bytes() []byte {
	return codec.AppendVector(nil, claimListBounds, []Claim(l))
}

func (l ClaimList) Validate() error {
	if err := codec.CheckVector(claimListBounds, []Claim(l), "ClaimList"); err != nil {
		return err
	}
	seen := make(map[ClaimType]bool, len(l))
	for _, c := range l {
		if seen[c.Type] {
			return codec.NewValidationError("duplicate claim type %d in claim list", c.Type)
		}
		seen[c.Type] = true
	}
	return nil
}

func (l ClaimList) Print() string {
	children := make([]string, len(l))
	for i, c := range l {
		children[i] = c.Print()
	}
	return codec.PrintNested("Vector", "ClaimList", len(l.Bytes()), children)
}

func ParseClaimList(s *codec.Stream) (ClaimList, error) {
	items, err := codec.ReadVector(s, claimListBounds, "ClaimList", ParseClaim)
	return ClaimList(items), err
}

// Assertion binds a subject to a list of claims. Its serialization is
// the leaf content committed into the batch tree.
type Assertion struct {
	SubjectType SubjectType
	SubjectInfo SubjectInfo
	Claims      ClaimList
}

func (a Assertion) Bytes() []byte {
	dst := a.SubjectType.Bytes()
	dst = append(dst, a.SubjectInfo.Bytes()...)
	return append(dst, a.Claims.Bytes()...)
}

func (a Assertion) Validate() error {
	if err := a.SubjectType.Validate(); err != nil {
		return err
	}
	if err := a.SubjectInfo.Validate(); err != nil {
		return err
	}
	return a.Claims.Validate()
}

func (a Assertion) Print() string {
	return codec.PrintNested("Struct", "Assertion", len(a.Bytes()),
		[]string{a.SubjectType.Print(), a.SubjectInfo.Print(), a.Claims.Print()})
}

func ParseAssertion(s *codec.Stream) (Assertion, error) {
	var a Assertion
	var err error
	if a.SubjectType, err = ParseSubjectType(s); err != nil {
		return Assertion{}, err
	}
	if a.SubjectInfo, err = ParseSubjectInfo(s); err != nil {
		return Assertion{}, err
	}
	if a.Claims, err = ParseClaimList(s); err != nil {
		return Assertion{}, err
	}
	return a, nil
}

// SkipAssertion advances past one assertion.
func SkipAssertion(s *codec.Stream) error {
	if err := SkipSubjectType(s); err != nil {
		return err
	}
	if err := codec.SkipOpaque(s, subjectInfoBounds, "SubjectInfo"); err != nil {
		return err
	}
	return codec.SkipVector(s, claimListBounds, "ClaimList")
}

// Assertions is the ordered assertion list of one batch; the order
// defines the leaf index.
type Assertions []Assertion

var assertionsBounds = codec.Bounds{Min: 0, Max: 1<<32 - 1}

func (as Assertions) Bytes() []byte {
	return codec.AppendVector(nil, assertionsBounds, []Assertion(as))
}

func (as Assertions) Validate() error {
	return codec.CheckVector(assertionsBounds, []Assertion(as), "Assertions")
}

func (as Assertions) Print() string {
	children := make([]string, len(as))
	for i, a := range as {
		children[i] = a.Print()
	}
	return codec.PrintNested("Vector", "Assertions", len(as.Bytes()), children)
}

func ParseAssertions(s *codec.Stream) (Assertions, error) {
	items, err := codec.ReadVector(s, assertionsBounds, "Assertions", ParseAssertion)
	return Assertions(items), err
}

// AssertionClaims collects the raw claim values of one assertion
// before ordering.
type AssertionClaims struct {
	DNSNames      []string
	DNSWildcards  []string
	IPv4Addresses []string
	IPv6Addresses []string
}

// NewAssertion builds a TLS assertion from raw subject info and claim
// values, ordering names and addresses the way batches commit them:
// DNS names sorted from the TLD leftward, IP addresses ascending.
func NewAssertion(subjectInfo []byte, claims AssertionClaims) (Assertion, error) {
	var list ClaimList

	if len(claims.DNSNames) > 0 {
		names, err := newDNSNameList(claims.DNSNames)
		if err != nil {
			return Assertion{}, err
		}
		list = append(list, Claim{Type: ClaimDNS, DNSNames: names})
	}
	if len(claims.DNSWildcards) > 0 {
		names, err := newDNSNameList(claims.DNSWildcards)
		if err != nil {
			return Assertion{}, err
		}
		list = append(list, Claim{Type: ClaimDNSWildcard, DNSNames: names})
	}
	if len(claims.IPv4Addresses) > 0 {
		addrs := make(IPv4AddressList, 0, len(claims.IPv4Addresses))
		for _, str := range claims.IPv4Addresses {
			ip := net.ParseIP(str)
			if ip == nil || ip.To4() == nil {
				return Assertion{}, codec.NewValidationError("invalid IPv4 address %q", str)
			}
			var a IPv4Address
			copy(a[:], ip.To4())
			addrs = append(addrs, a)
		}
		sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })
		list = append(list, Claim{Type: ClaimIPv4, IPv4Addresses: addrs})
	}
	if len(claims.IPv6Addresses) > 0 {
		addrs := make(IPv6AddressList, 0, len(claims.IPv6Addresses))
		for _, str := range claims.IPv6Addresses {
			ip := net.ParseIP(str)
			if ip == nil || ip.To4() != nil {
				return Assertion{}, codec.NewValidationError("invalid IPv6 address %q", str)
			}
			var a IPv6Address
			copy(a[:], ip.To16())
			addrs = append(addrs, a)
		}
		sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })
		list = append(list, Claim{Type: ClaimIPv6, IPv6Addresses: addrs})
	}

	a := Assertion{
		SubjectType: SubjectTLS,
		SubjectInfo: SubjectInfo(append([]byte(nil), subjectInfo...)),
		Claims:      list,
	}
	if codec.ValidationEnabled() {
		if err := a.Validate(); err != nil {
			return Assertion{}, err
		}
	}
	return a, nil
}

func newDNSNameList(names []string) (DNSNameList, error) {
	sorted := SortDNSNames(names)
	list := make(DNSNameList, 0, len(sorted))
	for _, name := range sorted {
		list = append(list, DNSName(name))
	}
	if codec.ValidationEnabled() {
		if err := list.Validate(); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// SortDNSNames sorts DNS names in lexicographical order starting from
// the TLD.
func SortDNSNames(names []string) []string {
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool { return dnsNameLess(sorted[i], sorted[j]) })
	return sorted
}

// dnsNameLess compares two DNS names label by label from the TLD,
// case-insensitively.
func dnsNameLess(a, b string) bool {
	al := strings.Split(a, ".")
	bl := strings.Split(b, ".")
	for i, j := len(al)-1, len(bl)-1; i >= 0 && j >= 0; i, j = i-1, j-1 {
		la, lb := strings.ToLower(al[i]), strings.ToLower(bl[j])
		if la != lb {
			return la < lb
		}
	}
	return len(al) < len(bl)
}
