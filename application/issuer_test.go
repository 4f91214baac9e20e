package application

import (
	"path/filepath"
	"testing"

	"github.com/mtc-sys/mtc-go/crypto/sign"
	"github.com/mtc-sys/mtc-go/mtc"
	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	key, err := sign.GenerateKey()
	require.NoError(t, err)
	return &Issuer{
		IssuerID:    mtc.IssuerID("test.issuer"),
		WindowSize:  3,
		Key:         key,
		Publication: Publication{Root: t.TempDir()},
	}
}

func testBatchAssertions(t *testing.T) []mtc.Assertion {
	t.Helper()
	a, err := mtc.NewAssertion(nil, mtc.AssertionClaims{DNSNames: []string{"example.com"}})
	require.NoError(t, err)
	b, err := mtc.NewAssertion(nil, mtc.AssertionClaims{DNSNames: []string{"example.org"}})
	require.NoError(t, err)
	return []mtc.Assertion{a, b}
}

func TestIssueAndPublishBatches(t *testing.T) {
	iss := testIssuer(t)
	assertions := testBatchAssertions(t)

	next, err := iss.NextBatchNumber()
	require.NoError(t, err)
	require.EqualValues(t, 0, next)

	for b := uint32(0); b < 4; b++ {
		window, err := iss.IssueBatch(assertions, b)
		require.NoError(t, err)
		require.Equal(t, b, window.Window.BatchNumber)
	}

	next, err = iss.NextBatchNumber()
	require.NoError(t, err)
	require.EqualValues(t, 4, next)

	// window size 3: batch 3 covers batches 1-3
	window, err := iss.Publication.ReadSignedValidityWindow(3)
	require.NoError(t, err)
	require.Len(t, window.Window.TreeHeads, 3)
	require.EqualValues(t, 1, window.Window.Oldest())

	published, err := iss.Publication.ReadAssertions(2)
	require.NoError(t, err)
	require.Len(t, published, len(assertions))
}

func TestIssueRejectsBatchGap(t *testing.T) {
	iss := testIssuer(t)
	assertions := testBatchAssertions(t)

	_, err := iss.IssueBatch(assertions, 0)
	require.NoError(t, err)

	_, err = iss.IssueBatch(assertions, 2)
	require.Error(t, err, "issuing batch 2 without batch 1 must fail")
}

func TestCertificateFromPublishedBatch(t *testing.T) {
	iss := testIssuer(t)
	assertions := testBatchAssertions(t)

	_, err := iss.IssueBatch(assertions, 0)
	require.NoError(t, err)

	cert, err := iss.Certificate(0, 1)
	require.NoError(t, err)

	window, err := iss.Publication.ReadSignedValidityWindow(0)
	require.NoError(t, err)

	pk, ok := iss.Key.Public()
	require.True(t, ok)
	require.NoError(t, mtc.VerifyCertificate(cert, window, pk, iss.IssuerID))

	_, err = iss.Certificate(0, 99)
	require.Error(t, err, "an index outside the batch must fail")
}

func TestPublicationLayout(t *testing.T) {
	iss := testIssuer(t)
	assertions := testBatchAssertions(t)

	_, err := iss.IssueBatch(assertions, 0)
	require.NoError(t, err)

	root := iss.Publication.Root
	require.FileExists(t, filepath.Join(root, "batches", "0", "signed-validity-window"))
	require.FileExists(t, filepath.Join(root, "batches", "0", "assertions"))
	require.FileExists(t, filepath.Join(root, "batches", "latest"))
}
