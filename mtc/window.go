package mtc

import (
	"fmt"

	"github.com/mtc-sys/mtc-go/codec"
	"github.com/mtc-sys/mtc-go/crypto/sign"
)

// ValidityWindowLabel is the fixed 32-byte signing label of a
// validity window.
const ValidityWindowLabel = "Merkle Tree Crts ValidityWindow\x00"

// TreeHeads is the sliding list of recent tree heads, oldest first
// and newest last. Its payload length is a positive multiple of 32.
type TreeHeads []SHA256Hash

var treeHeadsBounds = codec.Bounds{Min: HashSize, Max: 1<<24 - 1}

func (h TreeHeads) Bytes() []byte {
	return codec.AppendVector(nil, treeHeadsBounds, []SHA256Hash(h))
}

func (h TreeHeads) Validate() error {
	return codec.CheckVector(treeHeadsBounds, []SHA256Hash(h), "TreeHeads")
}

func (h TreeHeads) Print() string {
	children := make([]string, len(h))
	for i, head := range h {
		children[i] = head.Print()
	}
	return codec.PrintNested("Vector", "TreeHeads", len(h.Bytes()), children)
}

func ParseTreeHeads(s *codec.Stream) (TreeHeads, error) {
	start := s.Pos()
	size, err := s.ReadUint(treeHeadsBounds.MarkerSize())
	if err != nil {
		return nil, err
	}
	if size < treeHeadsBounds.Min || size > treeHeadsBounds.Max || size%HashSize != 0 {
		return nil, codec.NewParsingError(start, s.Pos(),
			"invalid TreeHeads size %d, must be a positive multiple of %d up to %d",
			size, HashSize, treeHeadsBounds.Max)
	}
	heads := make(TreeHeads, size/HashSize)
	for i := range heads {
		if heads[i], err = ParseSHA256Hash(s); err != nil {
			return nil, err
		}
	}
	return heads, nil
}

func SkipTreeHeads(s *codec.Stream) error {
	start := s.Pos()
	size, err := s.ReadUint(treeHeadsBounds.MarkerSize())
	if err != nil {
		return err
	}
	if size < treeHeadsBounds.Min || size > treeHeadsBounds.Max || size%HashSize != 0 {
		return codec.NewParsingError(start, s.Pos(),
			"invalid TreeHeads size %d, must be a positive multiple of %d up to %d",
			size, HashSize, treeHeadsBounds.Max)
	}
	return s.Skip(int(size))
}

// ValidityWindow covers the batches
// (BatchNumber-len(TreeHeads)+1 .. BatchNumber), one head per batch.
type ValidityWindow struct {
	BatchNumber uint32
	TreeHeads   TreeHeads
}

func (w ValidityWindow) Bytes() []byte {
	dst := codec.AppendUint(nil, uint64(w.BatchNumber), 4)
	return append(dst, w.TreeHeads.Bytes()...)
}

func (w ValidityWindow) Validate() error {
	return w.TreeHeads.Validate()
}

func (w ValidityWindow) Print() string {
	return codec.PrintNested("Struct", "ValidityWindow", len(w.Bytes()),
		[]string{codec.UInt32(w.BatchNumber).Print(), w.TreeHeads.Print()})
}

func ParseValidityWindow(s *codec.Stream) (ValidityWindow, error) {
	var w ValidityWindow
	batch, err := codec.ParseUInt32(s)
	if err != nil {
		return ValidityWindow{}, err
	}
	w.BatchNumber = uint32(batch)
	if w.TreeHeads, err = ParseTreeHeads(s); err != nil {
		return ValidityWindow{}, err
	}
	return w, nil
}

// Oldest returns the first batch number the window covers.
func (w ValidityWindow) Oldest() uint32 {
	return w.BatchNumber - uint32(len(w.TreeHeads)) + 1
}

// Covers reports whether the window holds a head for batch b, and the
// head when it does.
func (w ValidityWindow) Covers(b uint32) (SHA256Hash, bool) {
	size := uint32(len(w.TreeHeads))
	if size == 0 || b > w.BatchNumber || w.BatchNumber-b >= size {
		return SHA256Hash{}, false
	}
	return w.TreeHeads[size-1-(w.BatchNumber-b)], true
}

// LabeledValidityWindow is the exact message signed by the issuer:
// label, issuer id, then the window.
type LabeledValidityWindow struct {
	IssuerID IssuerID
	Window   ValidityWindow
}

func (l LabeledValidityWindow) Bytes() []byte {
	dst := append([]byte(nil), ValidityWindowLabel...)
	dst = codec.AppendOpaque(dst, issuerIDBounds, l.IssuerID)
	return append(dst, l.Window.Bytes()...)
}

func (l LabeledValidityWindow) Validate() error {
	if err := l.IssuerID.Validate(); err != nil {
		return err
	}
	return l.Window.Validate()
}

func (l LabeledValidityWindow) Print() string {
	return codec.PrintNested("Struct", "LabeledValidityWindow", len(l.Bytes()),
		[]string{fmt.Sprintf("32 ValidityWindowLabel %s", codec.PrintableBytes([]byte(ValidityWindowLabel), 32)),
			l.IssuerID.Print(), l.Window.Print()})
}

func ParseLabeledValidityWindow(s *codec.Stream) (LabeledValidityWindow, error) {
	start := s.Pos()
	label, err := s.Read(len(ValidityWindowLabel))
	if err != nil {
		return LabeledValidityWindow{}, err
	}
	if string(label) != ValidityWindowLabel {
		return LabeledValidityWindow{}, codec.NewParsingError(start, s.Pos(),
			"wrong validity window label")
	}
	var l LabeledValidityWindow
	if l.IssuerID, err = ParseIssuerID(s); err != nil {
		return LabeledValidityWindow{}, err
	}
	if l.Window, err = ParseValidityWindow(s); err != nil {
		return LabeledValidityWindow{}, err
	}
	return l, nil
}

// Signature is a raw Ed25519 signature.
type Signature []byte

var signatureBounds = codec.Bounds{Min: sign.SignatureSize, Max: sign.SignatureSize}

func (sig Signature) Bytes() []byte {
	return codec.AppendOpaque(nil, signatureBounds, sig)
}

func (sig Signature) Validate() error {
	return codec.CheckOpaque(signatureBounds, sig, "Signature")
}

func (sig Signature) Print() string {
	return fmt.Sprintf("%d Signature %x", len(sig)+signatureBounds.MarkerSize(), []byte(sig))
}

func ParseSignature(s *codec.Stream) (Signature, error) {
	b, err := codec.ReadOpaque(s, signatureBounds, "Signature")
	return Signature(b), err
}

// SignedValidityWindow is the published window with the issuer's
// signature over its labeled serialization.
type SignedValidityWindow struct {
	Window    ValidityWindow
	Signature Signature
}

func (w SignedValidityWindow) Bytes() []byte {
	dst := w.Window.Bytes()
	return append(dst, w.Signature.Bytes()...)
}

func (w SignedValidityWindow) Validate() error {
	if err := w.Window.Validate(); err != nil {
		return err
	}
	return w.Signature.Validate()
}

func (w SignedValidityWindow) Print() string {
	return codec.PrintNested("Struct", "SignedValidityWindow", len(w.Bytes()),
		[]string{w.Window.Print(), w.Signature.Print()})
}

// ParseSignedValidityWindow parses a published signed validity window
// from data, returning the number of bytes consumed.
func ParseSignedValidityWindow(data []byte) (*SignedValidityWindow, int, error) {
	s := codec.NewStream(data)
	w, err := parseSignedValidityWindow(s)
	if err != nil {
		return nil, 0, err
	}
	return w, s.Pos(), nil
}

func parseSignedValidityWindow(s *codec.Stream) (*SignedValidityWindow, error) {
	var w SignedValidityWindow
	var err error
	if w.Window, err = ParseValidityWindow(s); err != nil {
		return nil, err
	}
	if w.Signature, err = ParseSignature(s); err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateSignedValidityWindow rotates the previous window to cover the
// new batch's root and signs the labeled result.
//
// With no previous window the new window holds the single head of
// batchNumber; otherwise the previous window's batch number must be
// exactly one less than batchNumber. windowSize caps the number of
// retained heads; it must match across issuance runs.
func CreateSignedValidityWindow(root SHA256Hash, issuerID IssuerID, batchNumber uint32,
	windowSize int, key sign.PrivateKey, previous *SignedValidityWindow) (*SignedValidityWindow, error) {
	if windowSize < 1 {
		return nil, codec.NewValidationError("validity window size %d must be positive", windowSize)
	}

	var heads TreeHeads
	if previous != nil {
		if previous.Window.BatchNumber+1 != batchNumber {
			return nil, verificationErrorf(
				"batch number %d is not contiguous with the previous window's batch %d",
				batchNumber, previous.Window.BatchNumber)
		}
		heads = append(heads, previous.Window.TreeHeads...)
	}
	heads = append(heads, root)
	if len(heads) > windowSize {
		heads = heads[len(heads)-windowSize:]
	}

	window := ValidityWindow{BatchNumber: batchNumber, TreeHeads: heads}
	labeled := LabeledValidityWindow{IssuerID: issuerID, Window: window}
	signed := &SignedValidityWindow{
		Window:    window,
		Signature: Signature(key.Sign(labeled.Bytes())),
	}
	if codec.ValidationEnabled() {
		if err := signed.Validate(); err != nil {
			return nil, err
		}
	}
	return signed, nil
}
