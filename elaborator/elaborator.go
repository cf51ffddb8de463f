// Package elaborator expands the main template of a program archive into a
// flat arithmetic circuit. It runs two worlds in parallel: a compile-time
// interpreter for variables and control flow, and the circuit builder for
// signals and gates.
package elaborator

import (
	"fmt"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"github.com/namnc/circom-2-arithc/archive"
	"github.com/namnc/circom-2-arithc/circuit"
	"github.com/namnc/circom-2-arithc/field"
	"github.com/namnc/circom-2-arithc/runtime"
)

// Options configures an elaboration pass.
type Options struct {
	// IterationBudget bounds the total number of loop iterations across the
	// whole pass. Zero means unlimited.
	IterationBudget int
	// Primitives replaces templates flagged as custom gates. Nil uses the
	// default registry.
	Primitives *Registry
}

// Elaborator holds the state of one elaboration pass. It is single-threaded
// and must not be reused after Run returns.
type Elaborator struct {
	arch  *archive.Archive
	b     *circuit.Builder
	f     *field.Field
	ctx   *runtime.Context
	prims *Registry
	log   zerolog.Logger

	budget int
	iters  int

	// current component under elaboration and its dotted name prefix
	cur    *runtime.Component
	prefix string
	root   bool

	// function nesting depth, to reject signal declarations in functions
	fnDepth int

	anonSeq int
}

// New returns an elaborator writing into b.
func New(arch *archive.Archive, b *circuit.Builder, opts Options) *Elaborator {
	prims := opts.Primitives
	if prims == nil {
		prims = DefaultRegistry()
	}
	return &Elaborator{
		arch:   arch,
		b:      b,
		f:      b.Field(),
		ctx:    runtime.NewContext(),
		prims:  prims,
		log:    logger.Logger(),
		budget: opts.IterationBudget,
	}
}

// Context exposes the scope stack, for tests.
func (e *Elaborator) Context() *runtime.Context {
	return e.ctx
}

// Run instantiates the archive's main template into the builder.
func (e *Elaborator) Run() error {
	tmpl, err := e.arch.MainTemplate()
	if err != nil {
		return err
	}
	args := make([]runtime.Value, len(e.arch.MainArgs()))
	for i, a := range e.arch.MainArgs() {
		args[i] = runtime.NewConst(a)
	}
	main := runtime.NewComponent("main")
	if err := e.instantiate(main, tmpl.Name, args, "", true); err != nil {
		return err
	}
	if d := e.ctx.Depth(); d != 0 {
		return fmt.Errorf("elaborator: %d scopes left open", d)
	}
	e.log.Debug().
		Str("main", tmpl.Name).
		Int("nbSignals", e.b.NumSignals()).
		Int("nbGates", e.b.NumGates()).
		Msg("elaborated")
	return nil
}

// spendIteration charges one loop iteration against the budget.
func (e *Elaborator) spendIteration() error {
	e.iters++
	if e.budget > 0 && e.iters > e.budget {
		return ErrBudgetExceeded
	}
	return nil
}
