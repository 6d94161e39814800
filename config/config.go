// Package config loads the YAML analysis configuration for the ppvlaw CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DistanceGrid describes the distances the charge table is evaluated at.
type DistanceGrid struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Count int     `yaml:"count"`
}

// Config is the analysis configuration. Every numeric field has a default,
// so a partial file is fine.
type Config struct {
	DataFile   string       `yaml:"data_file"`
	Beta       float64      `yaml:"beta"`
	Confidence float64      `yaml:"confidence"`
	Coverage   float64      `yaml:"coverage"`
	GridSize   int          `yaml:"grid_size"`
	PPVLimit   float64      `yaml:"ppv_limit"`
	Distances  DistanceGrid `yaml:"distances"`
}

// Default returns the stock configuration: beta 0.5, one-sided confidence
// 0.9, coverage 0.95, 20-point sampling grids, a PPV limit of 40 and a
// charge table from distance 50 to 250 in 20 steps.
func Default() *Config {
	return &Config{
		Beta:       0.5,
		Confidence: 0.9,
		Coverage:   0.95,
		GridSize:   20,
		PPVLimit:   40,
		Distances:  DistanceGrid{Min: 50, Max: 250, Count: 20},
	}
}

// Load reads a YAML config from path and back-fills unset values with the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Beta == 0 {
		c.Beta = def.Beta
	}
	if c.Confidence == 0 {
		c.Confidence = def.Confidence
	}
	if c.Coverage == 0 {
		c.Coverage = def.Coverage
	}
	if c.GridSize == 0 {
		c.GridSize = def.GridSize
	}
	if c.PPVLimit == 0 {
		c.PPVLimit = def.PPVLimit
	}
	if c.Distances.Min == 0 {
		c.Distances.Min = def.Distances.Min
	}
	if c.Distances.Max == 0 {
		c.Distances.Max = def.Distances.Max
	}
	if c.Distances.Count == 0 {
		c.Distances.Count = def.Distances.Count
	}
}
