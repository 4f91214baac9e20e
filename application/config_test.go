package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")

	conf := NewConfig("test.issuer")
	require.NoError(t, conf.Save(file))

	loaded, err := LoadConfig(file)
	require.NoError(t, err)
	require.Equal(t, "test.issuer", loaded.IssuerID)
	require.Equal(t, DefaultWindowSize, loaded.WindowSize)
	require.True(t, loaded.Validation)

	// relative paths resolve against the config file's directory
	require.Equal(t, filepath.Join(dir, "sign.priv.pem"), loaded.SigningKeyPath)
	require.Equal(t, filepath.Join(dir, "www"), loaded.PublicationRoot)
	require.Equal(t, file, loaded.GetPath())
}

func TestLoadConfigRejectsBadWindowSize(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("issuer_id = \"x\"\nwindow_size = 0\n"), 0644))

	_, err := LoadConfig(file)
	require.Error(t, err)
}

func TestLoadKeysFromPEM(t *testing.T) {
	dir := t.TempDir()

	// generate and write a key pair the way mtcca init does
	skPath := filepath.Join(dir, "sign.priv.pem")
	pkPath := filepath.Join(dir, "sign.pub.pem")
	writeTestKeyPair(t, skPath, pkPath)

	key, err := LoadSigningKey(skPath)
	require.NoError(t, err)
	pub, err := LoadSigningPubKey(pkPath)
	require.NoError(t, err)

	msg := []byte("config test message")
	require.True(t, pub.Verify(msg, key.Sign(msg)))

	_, err = LoadSigningKey(filepath.Join(dir, "missing.pem"))
	require.Error(t, err)
}
