// Package config holds the export profile read by exodump.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-exodus/exodus"
	"github.com/robert-malhotra/go-exodus/table"
)

// Config selects what exodump export transcribes and how it is written.
type Config struct {
	Family exodus.Family `yaml:"family"`

	// Variables restricts the export to these names, in this order.
	// Empty means every variable of the family.
	Variables []string `yaml:"variables"`

	// Step picks one time step of (time_step, n) results. Negative values
	// count back from the last step.
	Step int `yaml:"step"`

	// Coordinates prepends the nodal x, y, z columns.
	Coordinates bool `yaml:"coordinates"`

	Format table.Format `yaml:"format"`

	// Output is the destination path; empty or "-" writes to stdout. A
	// ".zst" suffix compresses the whole output.
	Output string `yaml:"output"`

	// Compress enables zstd buffer compression inside Arrow IPC output.
	Compress bool `yaml:"compress"`

	AllowOverride bool `yaml:"allow_override"`
}

// Default returns the profile used when no file is given.
func Default() *Config {
	return &Config{
		Family: exodus.Node,
		Step:   -1,
		Format: table.CSV,
	}
}

// Load reads a YAML profile on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the family and the output format.
func (c *Config) Validate() error {
	if _, err := c.Family.NameTableKey(); err != nil {
		return err
	}
	f, err := table.ParseFormat(string(c.Format))
	if err != nil {
		return err
	}
	c.Format = f
	if c.Compress && c.Format != table.Arrow {
		return fmt.Errorf("compress applies to arrow output only; use a .zst output path for %s", c.Format)
	}
	return nil
}
