package circom2arithc

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of the compilation settings.
type fileConfig struct {
	// Field selects the constant-folding domain: "none" or a decimal prime.
	// Empty or "bn254" sets no override, so the archive's modulus applies
	// if it has one, and bn254 otherwise.
	Field           string `yaml:"field"`
	IterationBudget int    `yaml:"iterationBudget"`
	PruneZeroAdd    bool   `yaml:"pruneZeroAdd"`
}

// LoadConfig reads compilation options from a YAML file.
func LoadConfig(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	var opts []Option
	switch fc.Field {
	case "", "bn254":
	case "none":
		opts = append(opts, WithoutField())
	default:
		p, ok := new(big.Int).SetString(fc.Field, 10)
		if !ok {
			return nil, fmt.Errorf("config %s: bad field modulus %q", path, fc.Field)
		}
		opts = append(opts, WithField(p))
	}
	if fc.IterationBudget > 0 {
		opts = append(opts, WithIterationBudget(fc.IterationBudget))
	}
	if fc.PruneZeroAdd {
		opts = append(opts, WithZeroAddPruning())
	}
	return opts, nil
}
