package elaborator

import (
	"math/big"

	"github.com/namnc/circom-2-arithc/circuit"
)

// PrimitiveFunc emits the specialized gates of a custom-gate template from
// its input signal ids and returns the output ids.
type PrimitiveFunc func(b *circuit.Builder, in []int) ([]int, error)

type primitiveKey struct {
	name  string
	arity int
}

// Registry maps (template name, generic arity) pairs to primitive gate
// emitters. It is the extension point for gate families that should not be
// elaborated from their advisory template bodies.
type Registry struct {
	m map[primitiveKey]PrimitiveFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[primitiveKey]PrimitiveFunc)}
}

// Register binds a primitive emitter to a template name and arity.
func (r *Registry) Register(name string, arity int, f PrimitiveFunc) {
	r.m[primitiveKey{name: name, arity: arity}] = f
}

// Lookup resolves a primitive emitter.
func (r *Registry) Lookup(name string, arity int) (PrimitiveFunc, bool) {
	f, ok := r.m[primitiveKey{name: name, arity: arity}]
	return f, ok
}

func singleGate(op circuit.AGateType) PrimitiveFunc {
	return func(b *circuit.Builder, in []int) ([]int, error) {
		out, err := b.AddGate(op, in[0], in[1])
		if err != nil {
			return nil, err
		}
		return []int{out}, nil
	}
}

// DefaultRegistry covers the comparison and zero-test families of the
// standard template library.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("IsZero", 0, func(b *circuit.Builder, in []int) ([]int, error) {
		zero := b.ConstSignal(big.NewInt(0))
		out, err := b.AddGate(circuit.AEqualB, in[0], zero)
		if err != nil {
			return nil, err
		}
		return []int{out}, nil
	})
	r.Register("IsEqual", 0, singleGate(circuit.AEqualB))
	r.Register("LessThan", 1, singleGate(circuit.ALt))
	r.Register("LessEqThan", 1, singleGate(circuit.ALeq))
	r.Register("GreaterThan", 1, singleGate(circuit.AGt))
	r.Register("GreaterEqThan", 1, singleGate(circuit.AGeq))
	return r
}
