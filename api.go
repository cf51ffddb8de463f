// Package circom2arithc compiles a resolved circuit-description program into
// a flat arithmetic circuit: a directed acyclic graph of fan-in-2 gates over
// typed signal wires.
package circom2arithc

import (
	"math/big"

	"github.com/consensys/gnark/logger"

	"github.com/namnc/circom-2-arithc/archive"
	"github.com/namnc/circom-2-arithc/circuit"
	"github.com/namnc/circom-2-arithc/elaborator"
	"github.com/namnc/circom-2-arithc/field"
)

// Config collects the compilation settings.
type Config struct {
	// FieldModulus overrides the archive's target prime. Nil defers to the
	// archive, then to the bn254 scalar field.
	FieldModulus *big.Int
	// NoField compiles over unbounded integers; field division on
	// constants becomes an error.
	NoField bool
	// IterationBudget bounds total loop iterations; zero is unlimited.
	IterationBudget int
	// PruneZeroAdd removes x+0 gates from the finalized circuit.
	PruneZeroAdd bool
	// Primitives overrides the custom-gate registry.
	Primitives *elaborator.Registry
}

// Option mutates the compilation config.
type Option func(*Config)

// WithField compiles over the given prime.
func WithField(p *big.Int) Option {
	return func(c *Config) { c.FieldModulus = p }
}

// WithoutField compiles over unbounded integers.
func WithoutField() Option {
	return func(c *Config) { c.NoField = true }
}

// WithIterationBudget bounds the total number of loop iterations.
func WithIterationBudget(n int) Option {
	return func(c *Config) { c.IterationBudget = n }
}

// WithZeroAddPruning removes trivial addition gates after finalization.
func WithZeroAddPruning() Option {
	return func(c *Config) { c.PruneZeroAdd = true }
}

// WithPrimitives replaces the custom-gate registry.
func WithPrimitives(r *elaborator.Registry) Option {
	return func(c *Config) { c.Primitives = r }
}

func (c *Config) field(arch *archive.Archive) *field.Field {
	switch {
	case c.NoField:
		return field.Integers()
	case c.FieldModulus != nil:
		return field.New(c.FieldModulus)
	case arch.FieldModulus() != nil:
		return field.New(arch.FieldModulus())
	}
	return field.BN254()
}

// Compile elaborates the archive's main template and returns the finalized
// arithmetic circuit.
func Compile(arch *archive.Archive, opts ...Option) (*circuit.ArithmeticCircuit, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	b := circuit.NewBuilder(cfg.field(arch))
	e := elaborator.New(arch, b, elaborator.Options{
		IterationBudget: cfg.IterationBudget,
		Primitives:      cfg.Primitives,
	})
	if err := e.Run(); err != nil {
		return nil, err
	}
	ac, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	if cfg.PruneZeroAdd {
		ac.PruneZeroAdd()
	}

	log := logger.Logger()
	log.Info().
		Int("nbInputs", len(ac.Inputs)).
		Int("nbOutputs", len(ac.Outputs)).
		Int("nbConstants", len(ac.Constants)).
		Int("nbGates", len(ac.Gates)).
		Msg("compiled")
	return ac, nil
}
