package application

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mtc-sys/mtc-go/crypto/sign"
	"github.com/mtc-sys/mtc-go/utils"
)

// DefaultWindowSize retains two weeks of hourly batches.
const DefaultWindowSize = 336

// Config is the mtcca configuration.
type Config struct {
	IssuerID        string `toml:"issuer_id"`
	WindowSize      int    `toml:"window_size"`
	SigningKeyPath  string `toml:"signing_key"`
	PublicKeyPath   string `toml:"public_key"`
	PublicationRoot string `toml:"publication_root"`
	DatabasePath    string `toml:"database"`

	// Validation is the default for the process-wide validation
	// toggle; --no-validation overrides it.
	Validation bool `toml:"validation"`

	path string
}

// NewConfig returns a config for issuerID with sane defaults. Its
// paths are relative; LoadConfig resolves them against the config
// file's directory.
func NewConfig(issuerID string) *Config {
	return &Config{
		IssuerID:        issuerID,
		WindowSize:      DefaultWindowSize,
		SigningKeyPath:  "sign.priv.pem",
		PublicKeyPath:   "sign.pub.pem",
		PublicationRoot: "www",
		DatabasePath:    "batches.db",
		Validation:      true,
	}
}

// LoadConfig reads the toml configuration at file. Relative paths in
// the config are resolved against the config file's directory.
func LoadConfig(file string) (*Config, error) {
	conf := NewConfig("")
	if _, err := toml.DecodeFile(file, conf); err != nil {
		return nil, fmt.Errorf("Failed to load config: %v", err)
	}
	conf.path = file
	conf.SigningKeyPath = utils.ResolvePath(conf.SigningKeyPath, file)
	conf.PublicKeyPath = utils.ResolvePath(conf.PublicKeyPath, file)
	conf.PublicationRoot = utils.ResolvePath(conf.PublicationRoot, file)
	conf.DatabasePath = utils.ResolvePath(conf.DatabasePath, file)
	if conf.WindowSize < 1 {
		return nil, fmt.Errorf("Invalid window_size %d in %s", conf.WindowSize, file)
	}
	return conf, nil
}

// Save writes the configuration to file as toml.
func (conf *Config) Save(file string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(conf); err != nil {
		return err
	}
	return utils.WriteFile(file, buf.Bytes(), 0644)
}

// GetPath returns the path the config was loaded from.
func (conf *Config) GetPath() string {
	return conf.path
}

// LoadSigningKey loads the PEM-encoded Ed25519 private key at path.
func LoadSigningKey(path string) (sign.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot read signing key: %v", err)
	}
	key, err := sign.ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse signing key: %v", err)
	}
	return key, nil
}

// LoadSigningPubKey loads the PEM-encoded Ed25519 public key at path.
func LoadSigningPubKey(path string) (sign.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot read signing key: %v", err)
	}
	key, err := sign.ParsePublicKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse signing key: %v", err)
	}
	return key, nil
}
