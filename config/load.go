package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file and overlays it on top of Default(). Fields absent in the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse behaves as Load, but takes the YAML document directly.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Headers.Space.Maximal < cfg.Headers.Space.Default {
		return nil, fmt.Errorf(
			"headers.space: maximal (%d) must not be less than default (%d)",
			cfg.Headers.Space.Maximal, cfg.Headers.Space.Default,
		)
	}

	return cfg, nil
}
