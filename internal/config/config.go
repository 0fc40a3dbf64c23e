// Package config holds the settings of one export run.
//
// Config is built once (by the CLI, or directly by tests) and passed by value
// into the exporter. Nothing in this module keeps process-wide mutable
// settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/wrexpt/internal/document"
	"github.com/roach88/wrexpt/internal/store"
)

// OutputSuffix is appended to the store path when no output path is given.
const OutputSuffix = ".xml"

// EnvConfigFile names the environment variable holding a default config file.
const EnvConfigFile = "WREXPT_CONFIG"

// Config is the immutable input of an export.
type Config struct {
	// StorePath is the WebReplay store to read.
	StorePath string

	// Password unlocks the store. Empty means no password.
	Password string

	// OutputPath is where the XML document is written.
	OutputPath string

	// Driver is the database/sql driver name (see store.ValidDrivers).
	Driver string

	// Encoding of the output document.
	Encoding document.Encoding
}

// New returns a Config for storePath with defaults filled in: output next to
// the store, default driver and UTF-8.
func New(storePath, password, outputPath string) Config {
	return Config{
		StorePath:  storePath,
		Password:   password,
		OutputPath: outputPath,
	}.WithDefaults()
}

// WithDefaults returns a copy of c with empty optional fields set.
func (c Config) WithDefaults() Config {
	if c.OutputPath == "" && c.StorePath != "" {
		c.OutputPath = DefaultOutputPath(c.StorePath)
	}
	if c.Driver == "" {
		c.Driver = store.DriverSQLite3
	}
	if c.Encoding == "" {
		c.Encoding = document.UTF8
	}
	return c
}

// DefaultOutputPath is the output used when none is given: the store path
// plus OutputSuffix.
func DefaultOutputPath(storePath string) string {
	return storePath + OutputSuffix
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if strings.TrimSpace(c.StorePath) == "" {
		return errors.New("store path is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.New("output path is required")
	}
	if c.OutputPath == c.StorePath {
		return fmt.Errorf("output path %q would overwrite the store", c.OutputPath)
	}
	if !isValidDriver(c.Driver) {
		return fmt.Errorf("invalid driver %q: must be one of %v", c.Driver, store.ValidDrivers)
	}
	switch c.Encoding {
	case "", document.UTF8, document.UTF16:
	default:
		return fmt.Errorf("unsupported encoding %q: must be one of %v", c.Encoding, document.ValidEncodings)
	}
	return nil
}

func isValidDriver(driver string) bool {
	for _, d := range store.ValidDrivers {
		if d == driver {
			return true
		}
	}
	return false
}

// File is the optional YAML defaults file. Flags override every field.
// The store password is deliberately not part of it.
type File struct {
	Store    string `yaml:"store"`
	Output   string `yaml:"output"`
	Driver   string `yaml:"driver"`
	Encoding string `yaml:"encoding"`
	LogFile  string `yaml:"log_file"`
	Verbose  bool   `yaml:"verbose"`
}

// LoadFile reads and decodes a YAML defaults file. Unknown keys are rejected
// so that typos do not silently fall back to defaults.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML defaults from data.
func ParseFile(data []byte) (*File, error) {
	f := &File{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return f, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return f, nil
}
