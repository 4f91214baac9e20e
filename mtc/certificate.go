package mtc

import (
	"bytes"
	"fmt"

	"github.com/mtc-sys/mtc-go/codec"
	"github.com/mtc-sys/mtc-go/crypto/sign"
)

// VerificationError reports a cryptographic mismatch during
// certificate verification: a bad signature, a root that does not
// match the window, a foreign issuer, an out-of-window batch, or a
// non-contiguous rotation.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return "mtc: cannot verify: " + e.Reason
}

func verificationErrorf(format string, args ...interface{}) *VerificationError {
	return &VerificationError{Reason: fmt.Sprintf(format, args...)}
}

// ProofType selects the proof body and trust anchor types of a
// certificate.
type ProofType uint16

const (
	ProofTypeMerkleTreeSHA256 ProofType = 0
)

var proofTypeEnum = &codec.Enum{
	Name: "ProofType",
	Size: 2,
	Members: map[uint64]string{
		uint64(ProofTypeMerkleTreeSHA256): "merkle_tree_sha256",
	},
}

func (t ProofType) Bytes() []byte   { return proofTypeEnum.Append(nil, uint64(t)) }
func (t ProofType) Validate() error { return proofTypeEnum.Check(uint64(t)) }
func (t ProofType) Print() string   { return proofTypeEnum.Print(uint64(t)) }

func ParseProofType(s *codec.Stream) (ProofType, error) {
	v, err := proofTypeEnum.Read(s)
	return ProofType(v), err
}

// MerkleTreeTrustAnchor names the (issuer, batch) tree a
// merkle_tree_sha256 proof is checked against.
type MerkleTreeTrustAnchor struct {
	IssuerID    IssuerID
	BatchNumber uint32
}

func (a MerkleTreeTrustAnchor) Bytes() []byte {
	dst := codec.AppendOpaque(nil, issuerIDBounds, a.IssuerID)
	return codec.AppendUint(dst, uint64(a.BatchNumber), 4)
}

func (a MerkleTreeTrustAnchor) Validate() error {
	return a.IssuerID.Validate()
}

func (a MerkleTreeTrustAnchor) Print() string {
	return codec.PrintNested("Struct", "MerkleTreeTrustAnchor", len(a.Bytes()),
		[]string{a.IssuerID.Print(), codec.UInt32(a.BatchNumber).Print()})
}

func ParseMerkleTreeTrustAnchor(s *codec.Stream) (MerkleTreeTrustAnchor, error) {
	var a MerkleTreeTrustAnchor
	id, err := ParseIssuerID(s)
	if err != nil {
		return MerkleTreeTrustAnchor{}, err
	}
	a.IssuerID = id
	batch, err := codec.ParseUInt32(s)
	if err != nil {
		return MerkleTreeTrustAnchor{}, err
	}
	a.BatchNumber = uint32(batch)
	return a, nil
}

func SkipMerkleTreeTrustAnchor(s *codec.Stream) error {
	if err := codec.SkipOpaque(s, issuerIDBounds, "IssuerID"); err != nil {
		return err
	}
	return codec.SkipUInt32(s)
}

// SHA256Vector is an inclusion path: the sibling hashes from the leaf
// level upward.
type SHA256Vector []SHA256Hash

var sha256VectorBounds = codec.Bounds{Min: 0, Max: 1<<16 - 1}

func (v SHA256Vector) Bytes() []byte {
	return codec.AppendVector(nil, sha256VectorBounds, []SHA256Hash(v))
}

func (v SHA256Vector) Validate() error {
	return codec.CheckVector(sha256VectorBounds, []SHA256Hash(v), "SHA256Vector")
}

func (v SHA256Vector) Print() string {
	children := make([]string, len(v))
	for i, h := range v {
		children[i] = h.Print()
	}
	return codec.PrintNested("Vector", "SHA256Vector", len(v.Bytes()), children)
}

func ParseSHA256Vector(s *codec.Stream) (SHA256Vector, error) {
	items, err := codec.ReadVector(s, sha256VectorBounds, "SHA256Vector", ParseSHA256Hash)
	return SHA256Vector(items), err
}

// MerkleTreeProofSHA256 is the proof body of a merkle_tree_sha256
// certificate: the leaf index and its inclusion path, bottom up.
type MerkleTreeProofSHA256 struct {
	Index uint64
	Path  SHA256Vector
}

func (p MerkleTreeProofSHA256) Bytes() []byte {
	dst := codec.AppendUint(nil, p.Index, 8)
	return append(dst, p.Path.Bytes()...)
}

func (p MerkleTreeProofSHA256) Validate() error {
	return p.Path.Validate()
}

func (p MerkleTreeProofSHA256) Print() string {
	return codec.PrintNested("Struct", "MerkleTreeProofSHA256", len(p.Bytes()),
		[]string{codec.UInt64(p.Index).Print(), p.Path.Print()})
}

func ParseMerkleTreeProofSHA256(s *codec.Stream) (MerkleTreeProofSHA256, error) {
	var p MerkleTreeProofSHA256
	index, err := codec.ParseUInt64(s)
	if err != nil {
		return MerkleTreeProofSHA256{}, err
	}
	p.Index = uint64(index)
	if p.Path, err = ParseSHA256Vector(s); err != nil {
		return MerkleTreeProofSHA256{}, err
	}
	return p, nil
}

func SkipMerkleTreeProofSHA256(s *codec.Stream) error {
	if err := codec.SkipUInt64(s); err != nil {
		return err
	}
	return codec.SkipVector(s, sha256VectorBounds, "SHA256Vector")
}

// proofTypeCodec binds a ProofType to the parsers of its trust anchor
// and proof body. Adding a proof type is a new table entry.
type proofTypeCodec struct {
	parseAnchor func(*codec.Stream) (codec.Value, error)
	skipAnchor  func(*codec.Stream) error
	parseBody   func(*codec.Stream) (codec.Value, error)
	skipBody    func(*codec.Stream) error
}

var proofTypeCodecs = map[ProofType]proofTypeCodec{
	ProofTypeMerkleTreeSHA256: {
		parseAnchor: func(s *codec.Stream) (codec.Value, error) { return ParseMerkleTreeTrustAnchor(s) },
		skipAnchor:  SkipMerkleTreeTrustAnchor,
		parseBody:   func(s *codec.Stream) (codec.Value, error) { return ParseMerkleTreeProofSHA256(s) },
		skipBody:    SkipMerkleTreeProofSHA256,
	},
}

// TrustAnchor is a variant keyed by ProofType; for
// merkle_tree_sha256 the Data is a MerkleTreeTrustAnchor.
type TrustAnchor struct {
	ProofType ProofType
	Data      codec.Value
}

func (a TrustAnchor) Bytes() []byte {
	dst := a.ProofType.Bytes()
	if a.Data != nil {
		dst = append(dst, a.Data.Bytes()...)
	}
	return dst
}

func (a TrustAnchor) Validate() error {
	if err := a.ProofType.Validate(); err != nil {
		return err
	}
	if a.Data == nil {
		return codec.NewValidationError("trust anchor has no data")
	}
	return a.Data.Validate()
}

func (a TrustAnchor) Print() string {
	children := []string{a.ProofType.Print()}
	if a.Data != nil {
		children = append(children, a.Data.Print())
	}
	return codec.PrintNested("Variant", "TrustAnchor", len(a.Bytes()), children)
}

func ParseTrustAnchor(s *codec.Stream) (TrustAnchor, error) {
	t, err := ParseProofType(s)
	if err != nil {
		return TrustAnchor{}, err
	}
	data, err := proofTypeCodecs[t].parseAnchor(s)
	if err != nil {
		return TrustAnchor{}, err
	}
	return TrustAnchor{ProofType: t, Data: data}, nil
}

// Proof packages a trust anchor with the proof body its type selects.
type Proof struct {
	Anchor TrustAnchor
	Body   codec.Value
}

func (p Proof) Bytes() []byte {
	dst := p.Anchor.Bytes()
	if p.Body != nil {
		dst = append(dst, p.Body.Bytes()...)
	}
	return dst
}

func (p Proof) Validate() error {
	if err := p.Anchor.Validate(); err != nil {
		return err
	}
	if p.Body == nil {
		return codec.NewValidationError("proof has no body")
	}
	return p.Body.Validate()
}

func (p Proof) Print() string {
	children := []string{p.Anchor.Print()}
	if p.Body != nil {
		children = append(children, p.Body.Print())
	}
	return codec.PrintNested("Struct", "Proof", len(p.Bytes()), children)
}

func ParseProof(s *codec.Stream) (Proof, error) {
	anchor, err := ParseTrustAnchor(s)
	if err != nil {
		return Proof{}, err
	}
	body, err := proofTypeCodecs[anchor.ProofType].parseBody(s)
	if err != nil {
		return Proof{}, err
	}
	return Proof{Anchor: anchor, Body: body}, nil
}

// SkipProof advances past a proof, reading only its tag.
func SkipProof(s *codec.Stream) error {
	t, err := ParseProofType(s)
	if err != nil {
		return err
	}
	c := proofTypeCodecs[t]
	if err := c.skipAnchor(s); err != nil {
		return err
	}
	return c.skipBody(s)
}

// BikeshedCertificate is a self-contained certificate: the assertion
// and the inclusion proof that commits it to a batch tree.
type BikeshedCertificate struct {
	Assertion Assertion
	Proof     Proof
}

func (c BikeshedCertificate) Bytes() []byte {
	dst := c.Assertion.Bytes()
	return append(dst, c.Proof.Bytes()...)
}

func (c BikeshedCertificate) Validate() error {
	if err := c.Assertion.Validate(); err != nil {
		return err
	}
	return c.Proof.Validate()
}

func (c BikeshedCertificate) Print() string {
	return codec.PrintNested("Struct", "BikeshedCertificate", len(c.Bytes()),
		[]string{c.Assertion.Print(), c.Proof.Print()})
}

// ParseBikeshedCertificate parses a certificate from data, returning
// the number of bytes consumed.
func ParseBikeshedCertificate(data []byte) (*BikeshedCertificate, int, error) {
	s := codec.NewStream(data)
	var c BikeshedCertificate
	var err error
	if c.Assertion, err = ParseAssertion(s); err != nil {
		return nil, 0, err
	}
	if c.Proof, err = ParseProof(s); err != nil {
		return nil, 0, err
	}
	return &c, s.Pos(), nil
}

// CreateProof extracts the inclusion proof for the leaf at index from
// the batch's node table.
func CreateProof(t *NodeTable, index uint64) (Proof, error) {
	path, err := t.InclusionPath(index)
	if err != nil {
		return Proof{}, err
	}
	return Proof{
		Anchor: TrustAnchor{
			ProofType: ProofTypeMerkleTreeSHA256,
			Data: MerkleTreeTrustAnchor{
				IssuerID:    t.IssuerID,
				BatchNumber: t.BatchNumber,
			},
		},
		Body: MerkleTreeProofSHA256{Index: index, Path: SHA256Vector(path)},
	}, nil
}

// CreateProofs extracts the inclusion proofs of every leaf in the
// batch, reusing the node table.
func CreateProofs(t *NodeTable) ([]Proof, error) {
	proofs := make([]Proof, t.LeafCount())
	for i := range proofs {
		p, err := CreateProof(t, uint64(i))
		if err != nil {
			return nil, err
		}
		proofs[i] = p
	}
	return proofs, nil
}

// CreateCertificate packages an assertion with its proof.
func CreateCertificate(assertion Assertion, proof Proof) (*BikeshedCertificate, error) {
	c := &BikeshedCertificate{Assertion: assertion, Proof: proof}
	if codec.ValidationEnabled() {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// VerifyCertificate checks cert against the signed validity window
// published by the issuer identified by issuerID and publicKey.
//
// The issuer binding is checked first, then the window signature,
// then window coverage, and finally the recomputed root against the
// window's head for the certificate's batch.
func VerifyCertificate(cert *BikeshedCertificate, signed *SignedValidityWindow,
	publicKey sign.PublicKey, issuerID IssuerID) error {
	if cert.Proof.Anchor.ProofType != ProofTypeMerkleTreeSHA256 {
		return verificationErrorf("unsupported proof type %d", cert.Proof.Anchor.ProofType)
	}
	anchor, ok := cert.Proof.Anchor.Data.(MerkleTreeTrustAnchor)
	if !ok {
		return verificationErrorf("trust anchor is not a merkle tree trust anchor")
	}
	body, ok := cert.Proof.Body.(MerkleTreeProofSHA256)
	if !ok {
		return verificationErrorf("proof body is not a merkle tree proof")
	}
	if !bytes.Equal(anchor.IssuerID, issuerID) {
		return verificationErrorf("certificate issuer %q does not match expected issuer %q",
			string(anchor.IssuerID), string(issuerID))
	}

	labeled := LabeledValidityWindow{IssuerID: issuerID, Window: signed.Window}
	if !publicKey.Verify(labeled.Bytes(), signed.Signature) {
		return verificationErrorf("invalid signature over the validity window")
	}

	b := anchor.BatchNumber
	head, ok := signed.Window.Covers(b)
	if !ok {
		if b > signed.Window.BatchNumber {
			return verificationErrorf("certificate batch %d is newer than the window's batch %d",
				b, signed.Window.BatchNumber)
		}
		return verificationErrorf("certificate batch %d has left the validity window", b)
	}

	leafHead := HashHead{DistinguisherAssertion, issuerID, b}
	h := hashInput(HashAssertionInput{leafHead, body.Index, cert.Assertion})

	nodeHead := HashHead{DistinguisherNode, issuerID, b}
	idx := body.Index
	for l, sibling := range body.Path {
		level := uint8(l + 1)
		if idx&1 == 1 {
			h = hashInput(HashNodeInput{nodeHead, idx >> 1, level, sibling, h})
		} else {
			h = hashInput(HashNodeInput{nodeHead, idx >> 1, level, h, sibling})
		}
		idx >>= 1
	}
	if idx != 0 {
		return verificationErrorf("proof path is too short for leaf index %d", body.Index)
	}
	if h != head {
		return verificationErrorf("recomputed root does not match the window's head for batch %d", b)
	}
	return nil
}
