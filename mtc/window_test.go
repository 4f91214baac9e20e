package mtc

import (
	"testing"

	"github.com/mtc-sys/mtc-go/codec"
	"github.com/mtc-sys/mtc-go/crypto/sign"
)

func testWindowChain(t *testing.T, windowSize int, roots ...SHA256Hash) (*SignedValidityWindow, sign.PrivateKey) {
	t.Helper()
	key, err := sign.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	var window *SignedValidityWindow
	for i, root := range roots {
		window, err = CreateSignedValidityWindow(root, testIssuerID, uint32(i), windowSize, key, window)
		if err != nil {
			t.Fatal(err)
		}
	}
	return window, key
}

func testRoot(b byte) SHA256Hash {
	var h SHA256Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestWindowRotation(t *testing.T) {
	window, key := testWindowChain(t, 3, testRoot(0), testRoot(1), testRoot(2), testRoot(3))

	if window.Window.BatchNumber != 3 {
		t.Fatalf("window batch %d, want 3", window.Window.BatchNumber)
	}
	heads := window.Window.TreeHeads
	if len(heads) != 3 {
		t.Fatalf("window holds %d heads, want 3", len(heads))
	}
	// oldest first: batches 1, 2, 3
	for i, want := range []SHA256Hash{testRoot(1), testRoot(2), testRoot(3)} {
		if heads[i] != want {
			t.Errorf("head %d mismatch", i)
		}
	}
	if window.Window.Oldest() != 1 {
		t.Errorf("oldest covered batch %d, want 1", window.Window.Oldest())
	}

	pk, ok := key.Public()
	if !ok {
		t.Fatal("cannot derive public key")
	}
	labeled := LabeledValidityWindow{IssuerID: testIssuerID, Window: window.Window}
	if !pk.Verify(labeled.Bytes(), window.Signature) {
		t.Error("window signature does not verify")
	}
}

func TestWindowContiguity(t *testing.T) {
	key, err := sign.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	prev, err := CreateSignedValidityWindow(testRoot(0), testIssuerID, 4, 3, key, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := CreateSignedValidityWindow(testRoot(1), testIssuerID, 6, 3, key, prev); err == nil {
		t.Fatal("expected an error for a non-contiguous batch number")
	}
	if _, err := CreateSignedValidityWindow(testRoot(1), testIssuerID, 4, 3, key, prev); err == nil {
		t.Fatal("expected an error for a repeated batch number")
	}
	next, err := CreateSignedValidityWindow(testRoot(1), testIssuerID, 5, 3, key, prev)
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Window.TreeHeads) != 2 {
		t.Errorf("window holds %d heads, want 2", len(next.Window.TreeHeads))
	}
}

func TestWindowCoverage(t *testing.T) {
	window, _ := testWindowChain(t, 3, testRoot(0), testRoot(1), testRoot(2), testRoot(3))

	if _, ok := window.Window.Covers(0); ok {
		t.Error("batch 0 must have left the window")
	}
	if _, ok := window.Window.Covers(4); ok {
		t.Error("batch 4 must not be covered yet")
	}
	head, ok := window.Window.Covers(2)
	if !ok {
		t.Fatal("batch 2 must be covered")
	}
	if head != testRoot(2) {
		t.Error("head of batch 2 mismatch")
	}
}

func TestSignedWindowRoundTrip(t *testing.T) {
	window, _ := testWindowChain(t, 4, testRoot(9), testRoot(8))

	wire := window.Bytes()
	parsed, n, err := ParseSignedValidityWindow(wire)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(wire) {
		t.Errorf("parse consumed %d bytes, want %d", n, len(wire))
	}
	if !codec.Equal(parsed, window) {
		t.Error("signed window round trip mismatch")
	}
	if err := parsed.Validate(); err != nil {
		t.Error(err)
	}
}

func TestTreeHeadsParseErrors(t *testing.T) {
	// payload size must be a positive multiple of the hash size
	wire := codec.AppendUint(nil, 33, 3)
	wire = append(wire, make([]byte, 33)...)
	if _, err := ParseTreeHeads(codec.NewStream(wire)); err == nil {
		t.Error("expected a parsing error for a 33-byte payload")
	}

	wire = codec.AppendUint(nil, 0, 3)
	if _, err := ParseTreeHeads(codec.NewStream(wire)); err == nil {
		t.Error("expected a parsing error for an empty head list")
	}
}

func TestLabeledWindowRoundTrip(t *testing.T) {
	window, _ := testWindowChain(t, 2, testRoot(1))
	labeled := LabeledValidityWindow{IssuerID: testIssuerID, Window: window.Window}

	wire := labeled.Bytes()
	if string(wire[:32]) != ValidityWindowLabel {
		t.Fatal("labeled window must start with the fixed label")
	}

	parsed, err := ParseLabeledValidityWindow(codec.NewStream(wire))
	if err != nil {
		t.Fatal(err)
	}
	if !codec.Equal(parsed, labeled) {
		t.Error("labeled window round trip mismatch")
	}

	wire[0] ^= 1
	if _, err := ParseLabeledValidityWindow(codec.NewStream(wire)); err == nil {
		t.Error("expected a parsing error for a corrupted label")
	}
}
