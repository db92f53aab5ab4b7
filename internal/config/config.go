// Package config provides the JSON configuration file for the geofit CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"geofit/internal/correct"
	"geofit/internal/warp"
	"geofit/pkg/transform"
)

const configFile = "config.json"

// Config holds user defaults. Command-line flags override every field.
type Config struct {
	Model         string `json:"model"`
	Degree        int    `json:"degree"`
	Precision     int    `json:"precision"`
	Interpolation string `json:"interpolation"`
	// Correction interpolates GCP residuals onto ICP predictions: none,
	// multiquadric or ldw. Norm is the LDW distance order: 1, 2 or inf.
	Correction string `json:"correction"`
	Norm       string `json:"norm"`
	Verbose    bool   `json:"verbose"`

	path string
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Model:         "affine",
		Degree:        2,
		Precision:     4,
		Interpolation: "bilinear",
		Correction:    "none",
		Norm:          "1",
	}
}

// DefaultPath returns ~/.config/geofit/config.json (or the platform equivalent).
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "geofit", configFile)
}

// Load reads the config at path, or at DefaultPath when path is empty.
// A missing file yields the defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	c := Default()
	c.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks field ranges and names.
func (c *Config) Validate() error {
	if c.Precision < 0 || c.Precision > 15 {
		return fmt.Errorf("precision %d outside [0, 15]", c.Precision)
	}
	if c.Degree < transform.MinPolynomialDegree || c.Degree > transform.MaxPolynomialDegree {
		return fmt.Errorf("degree %d outside [%d, %d]", c.Degree, transform.MinPolynomialDegree, transform.MaxPolynomialDegree)
	}
	if _, err := transform.ParseKind(c.Model); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if _, err := warp.Interpolation(c.Interpolation); err != nil {
		return fmt.Errorf("interpolation: %w", err)
	}
	if _, err := correct.ParseMethod(c.Correction); err != nil {
		return fmt.Errorf("correction: %w", err)
	}
	if _, err := correct.ParseNorm(c.Norm); err != nil {
		return fmt.Errorf("norm: %w", err)
	}
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to its path.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
