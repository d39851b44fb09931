package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a defaults file. Absent keys keep the
// built-in defaults.
type File struct {
	MaxTries       *uint64 `yaml:"max_tries"`
	Sleep          *uint64 `yaml:"sleep"`
	Backoff        *bool   `yaml:"backoff"`
	MaxBackoff     *uint64 `yaml:"max_backoff"`
	Verbose        *bool   `yaml:"verbose"`
	Quiet          *bool   `yaml:"quiet"`
	RetryOnSuccess *bool   `yaml:"retry_on_success"`
	MetricsFile    *string `yaml:"metrics_file"`
}

// LoadFile reads a YAML defaults file and applies it on top of Default.
// The command is never taken from a file.
func LoadFile(path string) (Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes defaults file content. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg := Default()
	f.apply(&cfg)

	if err := cfg.validateLogLevel(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (f File) apply(cfg *Config) {
	if f.MaxTries != nil {
		cfg.MaxTries = *f.MaxTries
	}
	if f.Sleep != nil {
		cfg.Sleep = *f.Sleep
	}
	if f.Backoff != nil {
		cfg.Backoff = *f.Backoff
	}
	if f.MaxBackoff != nil {
		cfg.MaxBackoff = *f.MaxBackoff
	}
	if f.Verbose != nil && *f.Verbose {
		cfg.LogLevel = LevelDebug
	}
	if f.Quiet != nil {
		cfg.Quiet = *f.Quiet
	}
	if f.RetryOnSuccess != nil {
		cfg.RetryOnSuccess = *f.RetryOnSuccess
	}
	if f.MetricsFile != nil {
		cfg.MetricsFile = *f.MetricsFile
	}
}
