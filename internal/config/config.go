// Package config loads the optional YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/lumipallolabs/rex/internal/signature"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape. Unset fields are nil
// so command-line flags and defaults can fill them in.
type FileConfig struct {
	Output  *string  `yaml:"output"`
	Hash    *string  `yaml:"hash"`
	All     *bool    `yaml:"all"`
	Debug   *bool    `yaml:"debug"`
	Exclude []string `yaml:"exclude"`

	// Signatures extend the built-in detector and are tried first
	Signatures []SignatureConfig `yaml:"signatures"`
}

// SignatureConfig is one custom magic-byte rule
type SignatureConfig struct {
	Ext    string `yaml:"ext"`
	Magic  string `yaml:"magic"` // hex, e.g. "45 56 46 09 0d 0a ff 00"
	Offset int    `yaml:"offset"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// CustomSignatures converts the configured signatures for the detector
func (fc FileConfig) CustomSignatures() ([]signature.Signature, error) {
	sigs := make([]signature.Signature, 0, len(fc.Signatures))
	for i, sc := range fc.Signatures {
		ext := strings.TrimPrefix(strings.TrimSpace(sc.Ext), ".")
		if ext == "" {
			return nil, fmt.Errorf("signature %d: missing ext", i)
		}
		if sc.Offset < 0 {
			return nil, fmt.Errorf("signature %s: negative offset %d", ext, sc.Offset)
		}
		magic, err := signature.ParseMagic(sc.Magic)
		if err != nil {
			return nil, fmt.Errorf("signature %s: %w", ext, err)
		}
		sigs = append(sigs, signature.Signature{Ext: ext, Offset: sc.Offset, Magic: magic})
	}
	return sigs, nil
}

// GetOutput returns the configured output root or def
func (fc FileConfig) GetOutput(def string) string {
	if fc.Output != nil && *fc.Output != "" {
		return *fc.Output
	}
	return def
}

// GetHash returns the configured digest name or ""
func (fc FileConfig) GetHash() string {
	if fc.Hash != nil {
		return *fc.Hash
	}
	return ""
}
