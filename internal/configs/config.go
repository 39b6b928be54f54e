package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"
	"github.com/PolarWolf314/envstore/internal/secrets"
)

// ConfigBaseName is the config file name without its extension.
const ConfigBaseName = "env-store.config"

// DefaultEnvPath is the plaintext env file read by encrypt.
const DefaultEnvPath = ".env"

// StoreConfig selects file paths and the cipher for a project.
type StoreConfig struct {
	EnvPath       string `json:"env-filepath,omitempty" toml:"env-filepath,omitempty" yaml:"env-filepath,omitempty"`
	StorePath     string `json:"store-file-path,omitempty" toml:"store-file-path,omitempty" yaml:"store-file-path,omitempty"`
	DecryptedPath string `json:"decrypted-file-path,omitempty" toml:"decrypted-file-path,omitempty" yaml:"decrypted-file-path,omitempty"`
	KeyFilePath   string `json:"key-file-path,omitempty" toml:"key-file-path,omitempty" yaml:"key-file-path,omitempty"`
	Algorithm     string `json:"algorithm,omitempty" toml:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	AuditLogPath  string `json:"audit-log-path,omitempty" toml:"audit-log-path,omitempty" yaml:"audit-log-path,omitempty"`
}

// fileConfig is the on-disk shape, including names used by older releases.
type fileConfig struct {
	EnvPath       string `json:"env-filepath" toml:"env-filepath" yaml:"env-filepath"`
	StorePath     string `json:"store-file-path" toml:"store-file-path" yaml:"store-file-path"`
	DecryptedPath string `json:"decrypted-file-path" toml:"decrypted-file-path" yaml:"decrypted-file-path"`
	KeyFilePath   string `json:"key-file-path" toml:"key-file-path" yaml:"key-file-path"`
	Algorithm     string `json:"algorithm" toml:"algorithm" yaml:"algorithm"`
	AuditLogPath  string `json:"audit-log-path" toml:"audit-log-path" yaml:"audit-log-path"`

	LegacyStoreFilepath  string `json:"store-filepath" toml:"store-filepath" yaml:"store-filepath"`
	LegacyFile           string `json:"file" toml:"file" yaml:"file"`
	LegacyOutputFilepath string `json:"output-filepath" toml:"output-filepath" yaml:"output-filepath"`
	LegacyOutput         string `json:"output" toml:"output" yaml:"output"`
	LegacyEnvFile        string `json:"envFile" toml:"envFile" yaml:"envFile"`
}

// normalize folds legacy names into the canonical fields. Canonical names win.
func (fc *fileConfig) normalize() *StoreConfig {
	return &StoreConfig{
		EnvPath:       firstNonEmpty(fc.EnvPath, fc.LegacyEnvFile),
		StorePath:     firstNonEmpty(fc.StorePath, fc.LegacyStoreFilepath, fc.LegacyFile),
		DecryptedPath: firstNonEmpty(fc.DecryptedPath, fc.LegacyOutputFilepath, fc.LegacyOutput),
		KeyFilePath:   fc.KeyFilePath,
		Algorithm:     strings.ToLower(strings.TrimSpace(fc.Algorithm)),
		AuditLogPath:  fc.AuditLogPath,
	}
}

// Default returns the configuration used when no config file exists.
func Default() *StoreConfig {
	opts := secrets.DefaultOptions()
	return &StoreConfig{
		EnvPath:     DefaultEnvPath,
		StorePath:   opts.StorePath,
		KeyFilePath: opts.KeyFilePath,
		Algorithm:   string(opts.Algorithm),
	}
}

// WithDefaults fills empty fields from Default. DecryptedPath and
// AuditLogPath stay empty since empty is meaningful for both.
func (c *StoreConfig) WithDefaults() *StoreConfig {
	d := Default()
	out := *c
	out.EnvPath = firstNonEmpty(out.EnvPath, d.EnvPath)
	out.StorePath = firstNonEmpty(out.StorePath, d.StorePath)
	out.KeyFilePath = firstNonEmpty(out.KeyFilePath, d.KeyFilePath)
	out.Algorithm = firstNonEmpty(out.Algorithm, d.Algorithm)
	return &out
}

// Load reads a config file. The format follows the file extension.
func Load(path string) (*StoreConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %w: %s", kerrors.ErrIO, kerrors.ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", kerrors.ErrIO, path, err)
	}

	var fc fileConfig
	if err := decode(format, data, &fc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", kerrors.ErrInvalidConfig, path, err)
	}

	return fc.normalize(), nil
}

// Save writes config to path in the format matching its extension.
func Save(path string, config *StoreConfig) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := encode(format, config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return secrets.WriteFile(path, string(data), secrets.StoreFileMode)
}

// Discover returns the first config file in dir, trying json, toml, yaml
// and yml in that order.
func Discover(dir string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dir, fileName(ext))
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// LoadOrDefault loads path, or the discovered config in dir when path is
// empty, and fills the defaults. found reports whether a file was read.
func LoadOrDefault(path, dir string) (config *StoreConfig, found bool, err error) {
	if path == "" {
		var ok bool
		if path, ok = Discover(dir); !ok {
			return Default(), false, nil
		}
	}

	config, err = Load(path)
	if err != nil {
		return nil, false, err
	}

	return config.WithDefaults(), true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
