package mtc

import (
	"crypto/sha256"
	"fmt"

	"github.com/mtc-sys/mtc-go/codec"
)

// Distinguisher is the one-byte domain-separation tag at the start of
// every hash input, preventing cross-type collisions between leaves,
// internal nodes and empty-subtree padding.
type Distinguisher uint8

const (
	DistinguisherEmpty     Distinguisher = 0
	DistinguisherNode      Distinguisher = 1
	DistinguisherAssertion Distinguisher = 2
)

var distinguisherEnum = &codec.Enum{
	Name: "Distinguisher",
	Size: 1,
	Members: map[uint64]string{
		uint64(DistinguisherEmpty):     "HashEmptyInput",
		uint64(DistinguisherNode):      "HashNodeInput",
		uint64(DistinguisherAssertion): "HashAssertionInput",
	},
}

func (d Distinguisher) Bytes() []byte   { return distinguisherEnum.Append(nil, uint64(d)) }
func (d Distinguisher) Validate() error { return distinguisherEnum.Check(uint64(d)) }
func (d Distinguisher) Print() string   { return distinguisherEnum.Print(uint64(d)) }

func ParseDistinguisher(s *codec.Stream) (Distinguisher, error) {
	v, err := distinguisherEnum.Read(s)
	return Distinguisher(v), err
}

// HashSize is the size of a SHA256Hash in bytes.
const HashSize = 32

// SHA256Hash is a raw SHA-256 digest. The array type makes it
// comparable and usable as a map key.
type SHA256Hash [HashSize]byte

func (h SHA256Hash) Bytes() []byte   { return append([]byte(nil), h[:]...) }
func (h SHA256Hash) Validate() error { return nil }
func (h SHA256Hash) Print() string   { return fmt.Sprintf("32 SHA256Hash %x", h[:]) }

func ParseSHA256Hash(s *codec.Stream) (SHA256Hash, error) {
	var h SHA256Hash
	b, err := codec.ReadArray(s, HashSize)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

// IssuerID is the issuing CA's identifier, bound into every hash
// input as a domain-separation component.
type IssuerID []byte

var issuerIDBounds = codec.Bounds{Min: 0, Max: 32}

func (id IssuerID) Bytes() []byte {
	return codec.AppendOpaque(nil, issuerIDBounds, id)
}

func (id IssuerID) Validate() error {
	return codec.CheckOpaque(issuerIDBounds, id, "IssuerID")
}

func (id IssuerID) Print() string {
	return fmt.Sprintf("%d IssuerID %s", len(id)+issuerIDBounds.MarkerSize(), codec.PrintableBytes(id, 80))
}

func ParseIssuerID(s *codec.Stream) (IssuerID, error) {
	b, err := codec.ReadOpaque(s, issuerIDBounds, "IssuerID")
	return IssuerID(b), err
}

// hashHeadSize is one SHA-256 block. Hash heads are zero padded to it
// so every input's variable part starts on a block boundary.
const hashHeadSize = 64

// HashHead is the shared prefix of every Merkle hash input:
// distinguisher, issuer and batch number.
type HashHead struct {
	Distinguisher Distinguisher
	IssuerID      IssuerID
	BatchNumber   uint32
}

func (h HashHead) Bytes() []byte {
	dst := make([]byte, 0, hashHeadSize)
	dst = append(dst, h.Distinguisher.Bytes()...)
	dst = codec.AppendOpaque(dst, issuerIDBounds, h.IssuerID)
	dst = codec.AppendUint(dst, uint64(h.BatchNumber), 4)
	for len(dst) < hashHeadSize {
		dst = append(dst, 0)
	}
	return dst
}

func (h HashHead) Validate() error {
	if err := h.Distinguisher.Validate(); err != nil {
		return err
	}
	return h.IssuerID.Validate()
}

func (h HashHead) Print() string {
	return codec.PrintNested("Struct", "HashHead", hashHeadSize,
		[]string{h.Distinguisher.Print(), h.IssuerID.Print(), codec.UInt32(h.BatchNumber).Print()})
}

func ParseHashHead(s *codec.Stream) (HashHead, error) {
	start := s.Pos()
	var h HashHead
	var err error
	if h.Distinguisher, err = ParseDistinguisher(s); err != nil {
		return HashHead{}, err
	}
	var id IssuerID
	if id, err = ParseIssuerID(s); err != nil {
		return HashHead{}, err
	}
	h.IssuerID = IssuerID(append([]byte(nil), id...))
	var batch codec.UInt32
	if batch, err = codec.ParseUInt32(s); err != nil {
		return HashHead{}, err
	}
	h.BatchNumber = uint32(batch)
	if err := s.Skip(hashHeadSize - (s.Pos() - start)); err != nil {
		return HashHead{}, err
	}
	return h, nil
}

// HashEmptyInput is the hash input of an unpopulated subtree node.
type HashEmptyInput struct {
	Head  HashHead
	Index uint64
	Level uint8
}

func (v HashEmptyInput) Bytes() []byte {
	dst := v.Head.Bytes()
	dst = codec.AppendUint(dst, v.Index, 8)
	return append(dst, v.Level)
}

func (v HashEmptyInput) Validate() error { return v.Head.Validate() }

func (v HashEmptyInput) Print() string {
	return codec.PrintNested("Struct", "HashEmptyInput", len(v.Bytes()),
		[]string{v.Head.Print(), codec.UInt64(v.Index).Print(), codec.UInt8(v.Level).Print()})
}

// HashNodeInput is the hash input of an internal node over its two
// children.
type HashNodeInput struct {
	Head  HashHead
	Index uint64
	Level uint8
	Left  SHA256Hash
	Right SHA256Hash
}

func (v HashNodeInput) Bytes() []byte {
	dst := v.Head.Bytes()
	dst = codec.AppendUint(dst, v.Index, 8)
	dst = append(dst, v.Level)
	dst = append(dst, v.Left[:]...)
	return append(dst, v.Right[:]...)
}

func (v HashNodeInput) Validate() error { return v.Head.Validate() }

func (v HashNodeInput) Print() string {
	return codec.PrintNested("Struct", "HashNodeInput", len(v.Bytes()),
		[]string{v.Head.Print(), codec.UInt64(v.Index).Print(), codec.UInt8(v.Level).Print(),
			v.Left.Print(), v.Right.Print()})
}

// HashAssertionInput is the hash input of a leaf committing one
// assertion.
type HashAssertionInput struct {
	Head      HashHead
	Index     uint64
	Assertion Assertion
}

func (v HashAssertionInput) Bytes() []byte {
	dst := v.Head.Bytes()
	dst = codec.AppendUint(dst, v.Index, 8)
	return append(dst, v.Assertion.Bytes()...)
}

func (v HashAssertionInput) Validate() error {
	if err := v.Head.Validate(); err != nil {
		return err
	}
	return v.Assertion.Validate()
}

func (v HashAssertionInput) Print() string {
	return codec.PrintNested("Struct", "HashAssertionInput", len(v.Bytes()),
		[]string{v.Head.Print(), codec.UInt64(v.Index).Print(), v.Assertion.Print()})
}

// hashInput hashes one domain-separated input.
func hashInput(v codec.Value) SHA256Hash {
	return sha256.Sum256(v.Bytes())
}

// NodeTable holds the materialized nodes of one batch's tree, leaves
// first; levels[len(levels)-1][0] is the root. Padding nodes are never
// stored; their hashes come from EmptyHash on demand. The table is
// owned by a single batch execution and discarded after the signed
// validity window and all desired certificates have been emitted.
type NodeTable struct {
	IssuerID    IssuerID
	BatchNumber uint32

	levels [][]SHA256Hash
}

// BuildTree hashes the batch's assertions into the layered node
// table. The batch must contain at least one assertion. For a fixed
// (issuer, batch number, assertion sequence) the output is
// byte-identical across runs.
func BuildTree(assertions []Assertion, issuerID IssuerID, batchNumber uint32) (*NodeTable, error) {
	if len(assertions) == 0 {
		return nil, codec.NewValidationError("cannot build a tree from an empty batch")
	}

	t := &NodeTable{IssuerID: issuerID, BatchNumber: batchNumber}

	assertionHead := HashHead{DistinguisherAssertion, issuerID, batchNumber}
	leaves := make([]SHA256Hash, len(assertions))
	for i, a := range assertions {
		leaves[i] = hashInput(HashAssertionInput{assertionHead, uint64(i), a})
	}
	t.levels = [][]SHA256Hash{leaves}

	nodeHead := HashHead{DistinguisherNode, issuerID, batchNumber}
	for len(t.levels[len(t.levels)-1]) > 1 {
		prev := t.levels[len(t.levels)-1]
		level := uint8(len(t.levels))
		cur := make([]SHA256Hash, (len(prev)+1)/2)
		for i := range cur {
			left := prev[2*i]
			var right SHA256Hash
			if 2*i+1 < len(prev) {
				right = prev[2*i+1]
			} else {
				right = t.EmptyHash(level-1, uint64(2*i+1))
			}
			cur[i] = hashInput(HashNodeInput{nodeHead, uint64(i), level, left, right})
		}
		t.levels = append(t.levels, cur)
	}
	return t, nil
}

// Root returns the tree head of the batch.
func (t *NodeTable) Root() SHA256Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Depth returns the number of levels above the leaves.
func (t *NodeTable) Depth() int {
	return len(t.levels) - 1
}

// LeafCount returns the number of committed assertions.
func (t *NodeTable) LeafCount() int {
	return len(t.levels[0])
}

// Node returns the materialized hash at (level, index), falling back
// to the empty-subtree hash when the index lies outside the populated
// range.
func (t *NodeTable) Node(level uint8, index uint64) SHA256Hash {
	nodes := t.levels[level]
	if index < uint64(len(nodes)) {
		return nodes[index]
	}
	return t.EmptyHash(level, index)
}

// EmptyHash returns the padding hash for an unpopulated
// (level, index).
func (t *NodeTable) EmptyHash(level uint8, index uint64) SHA256Hash {
	return EmptyHash(t.IssuerID, t.BatchNumber, level, index)
}

// EmptyHash computes the hash of the empty subtree at (level, index)
// for the given issuer and batch.
func EmptyHash(issuerID IssuerID, batchNumber uint32, level uint8, index uint64) SHA256Hash {
	head := HashHead{DistinguisherEmpty, issuerID, batchNumber}
	return hashInput(HashEmptyInput{head, index, level})
}

// InclusionPath returns the sibling hashes of the leaf at index from
// the leaf level up to, but not including, the root.
func (t *NodeTable) InclusionPath(index uint64) ([]SHA256Hash, error) {
	if index >= uint64(t.LeafCount()) {
		return nil, codec.NewValidationError("leaf index %d outside batch of %d assertions",
			index, t.LeafCount())
	}
	path := make([]SHA256Hash, 0, t.Depth())
	for l := 0; l < t.Depth(); l++ {
		path = append(path, t.Node(uint8(l), (index>>uint(l))^1))
	}
	return path, nil
}
