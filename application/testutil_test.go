package application

import (
	"os"
	"testing"

	"github.com/mtc-sys/mtc-go/crypto/sign"
	"github.com/stretchr/testify/require"
)

// writeTestKeyPair generates an Ed25519 key pair and writes it PEM
// encoded, mirroring what mtcca init produces.
func writeTestKeyPair(t *testing.T, skPath, pkPath string) {
	t.Helper()
	key, err := sign.GenerateKey()
	require.NoError(t, err)
	pk, ok := key.Public()
	require.True(t, ok)

	skPEM, err := sign.MarshalPrivateKeyPEM(key)
	require.NoError(t, err)
	pkPEM, err := sign.MarshalPublicKeyPEM(pk)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(skPath, skPEM, 0600))
	require.NoError(t, os.WriteFile(pkPath, pkPEM, 0644))
}
