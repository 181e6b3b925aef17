package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qianlima-lab/clmpt/pkg/clmpt/internalerr"
)

// Config holds the engine and sampler settings loaded from YAML.
type Config struct {
	// StorePath is the SQLite knowledge-graph database path. Empty
	// selects the in-memory store.
	StorePath string `yaml:"store_path"`

	// Tnorm names the truth-combination family: "product" or "godel".
	Tnorm string `yaml:"tnorm"`

	// Threshold is the minimum truth value counted as an answer.
	Threshold float64 `yaml:"threshold"`

	Sampler SamplerConfig `yaml:"sampler"`
}

// SamplerConfig holds grounding-generation settings.
type SamplerConfig struct {
	// Instances is the number of groundings sampled per skeleton.
	Instances int `yaml:"instances"`

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Tnorm:     "product",
		Threshold: 0.5,
		Sampler:   SamplerConfig{Instances: 10},
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0,1]", internalerr.ErrInvalidConfig, c.Threshold)
	}
	switch c.Tnorm {
	case "product", "godel", "minmax":
	default:
		return fmt.Errorf("%w: tnorm %q", internalerr.ErrInvalidConfig, c.Tnorm)
	}
	if c.Sampler.Instances < 0 {
		return fmt.Errorf("%w: sampler instances %d", internalerr.ErrInvalidConfig, c.Sampler.Instances)
	}
	return nil
}
