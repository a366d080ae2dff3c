// Package config loads plang.yaml, the project-level configuration a
// plang invocation reads for its module search path and interpreter
// resource limits (spec.md §5, SPEC_FULL.md §10.3).
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plang-lang/plang/internal/evaluator"
)

// Config is the shape of plang.yaml. Every field is optional; Load fills
// in the defaults documented in SPEC_FULL.md §10.3 for anything the file
// omits or that is absent entirely.
type Config struct {
	ModulePaths []string `yaml:"module_paths"`
	Limits      struct {
		MaxRecursion  int `yaml:"max_recursion"`
		MaxIterations int `yaml:"max_iterations"`
	} `yaml:"limits"`
}

// Default returns the configuration used when no plang.yaml is found:
// the current directory as the sole module search path, and the
// evaluator's own default resource limits.
func Default() *Config {
	c := &Config{ModulePaths: []string{"."}}
	d := evaluator.DefaultLimits()
	c.Limits.MaxRecursion = d.MaxRecursion
	c.Limits.MaxIterations = d.MaxIterations
	return c
}

// Load reads and parses the plang.yaml at path. A missing file is not an
// error: Load returns the defaults, since plang.yaml is optional.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if len(c.ModulePaths) == 0 {
		c.ModulePaths = []string{"."}
	}
	if c.Limits.MaxRecursion == 0 {
		c.Limits.MaxRecursion = evaluator.DefaultLimits().MaxRecursion
	}
	if c.Limits.MaxIterations == 0 {
		c.Limits.MaxIterations = evaluator.DefaultLimits().MaxIterations
	}
	return c, nil
}

// EvaluatorLimits adapts the loaded limits to evaluator.Limits.
func (c *Config) EvaluatorLimits() evaluator.Limits {
	return evaluator.Limits{MaxRecursion: c.Limits.MaxRecursion, MaxIterations: c.Limits.MaxIterations}
}
