package circuit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/namnc/circom-2-arithc/field"
)

var (
	// ErrDoubleAssign reports a connection that would give a signal two
	// drivers.
	ErrDoubleAssign = errors.New("circuit: signal assigned twice")
	// ErrConstMerge reports a connection between two distinct constants.
	ErrConstMerge = errors.New("circuit: cannot connect distinct constants")
	// ErrUnbound reports a declared output with no incoming connection at
	// finalization.
	ErrUnbound = errors.New("circuit: unbound output")
	// ErrUnknownSignal reports a signal id that was never allocated.
	ErrUnknownSignal = errors.New("circuit: unknown signal id")
)

// Role is the position of a signal in the finalized circuit.
type Role int

const (
	Intermediate Role = iota
	Input
	Output
)

func (r Role) String() string {
	switch r {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return "intermediate"
}

// Signal is a wire record. Signals are immutable once allocated.
type Signal struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
	// Const is set when the signal was introduced to inject a literal.
	Const *big.Int `json:"value,omitempty"`
}

// Builder is the append-only signal, constant and gate store of one
// elaboration pass. Signal ids are allocated monotonically and never reused.
// Connections unify ids with a union-find, so connected signals resolve to a
// single canonical id in the finalized circuit.
type Builder struct {
	field   *field.Field
	signals []Signal
	parent  []int
	driven  []bool
	consts  map[string]int
	gates   []Gate
}

// NewBuilder returns an empty builder folding constants over f.
func NewBuilder(f *field.Field) *Builder {
	return &Builder{
		field:  f,
		consts: make(map[string]int),
	}
}

// Field returns the constant-folding domain of the builder.
func (b *Builder) Field() *field.Field {
	return b.field
}

func (b *Builder) newSignal(name string, role Role, cv *big.Int, driven bool) int {
	id := len(b.signals)
	b.signals = append(b.signals, Signal{ID: id, Name: name, Role: role, Const: cv})
	b.parent = append(b.parent, id)
	b.driven = append(b.driven, driven)
	return id
}

// NewInput allocates an input signal. Inputs are driven by the environment
// and may not be assigned inside the circuit.
func (b *Builder) NewInput(name string) int {
	return b.newSignal(name, Input, nil, true)
}

// NewOutput allocates a declared output signal. It must receive exactly one
// incoming connection before Finalize.
func (b *Builder) NewOutput(name string) int {
	return b.newSignal(name, Output, nil, false)
}

// NewIntermediate allocates an internal signal.
func (b *Builder) NewIntermediate(name string) int {
	return b.newSignal(name, Intermediate, nil, false)
}

// ConstSignal returns the signal carrying the literal v, allocating it on
// first use. Constants are shared per value.
func (b *Builder) ConstSignal(v *big.Int) int {
	cv := b.field.Reduce(v)
	key := cv.String()
	if id, ok := b.consts[key]; ok {
		return id
	}
	id := b.newSignal("const_"+key, Intermediate, cv, true)
	b.consts[key] = id
	return id
}

// AddGate allocates a fresh output signal, appends (op, l, r, out) and
// returns the output id.
func (b *Builder) AddGate(op AGateType, l, r int) (int, error) {
	if l < 0 || l >= len(b.signals) || r < 0 || r >= len(b.signals) {
		return 0, fmt.Errorf("gate %s(%d, %d): %w", op, l, r, ErrUnknownSignal)
	}
	out := b.newSignal(fmt.Sprintf("g%d", len(b.gates)), Intermediate, nil, true)
	b.gates = append(b.gates, Gate{Op: op, LH: l, RH: r, Out: out})
	return out, nil
}

// find returns the canonical id of x's class, compressing paths. The union
// strategy keeps the minimum id as the root, so canonical ids are stable
// across identical elaborations.
func (b *Builder) find(x int) int {
	for b.parent[x] != x {
		b.parent[x] = b.parent[b.parent[x]]
		x = b.parent[x]
	}
	return x
}

// Connect unifies two signal ids. Connecting a signal to itself (or issuing
// the same connection twice) is a no-op. Unifying two driven signals is
// rejected: a class may have at most one driver.
func (b *Builder) Connect(a, c int) error {
	if a < 0 || a >= len(b.signals) || c < 0 || c >= len(b.signals) {
		return fmt.Errorf("connect(%d, %d): %w", a, c, ErrUnknownSignal)
	}
	ra, rc := b.find(a), b.find(c)
	if ra == rc {
		return nil
	}
	if b.driven[ra] && b.driven[rc] {
		if b.signals[ra].Const != nil && b.signals[rc].Const != nil {
			return fmt.Errorf("connect %q and %q: %w",
				b.signals[a].Name, b.signals[c].Name, ErrConstMerge)
		}
		return fmt.Errorf("connect %q and %q: %w",
			b.signals[a].Name, b.signals[c].Name, ErrDoubleAssign)
	}
	if rc < ra {
		ra, rc = rc, ra
	}
	b.parent[rc] = ra
	b.driven[ra] = b.driven[ra] || b.driven[rc]
	return nil
}

// Canonical resolves a signal id to its class representative.
func (b *Builder) Canonical(id int) int {
	return b.find(id)
}

// SignalName returns the diagnostic name of a signal.
func (b *Builder) SignalName(id int) string {
	return b.signals[id].Name
}

// NumSignals returns the number of allocated signals.
func (b *Builder) NumSignals() int {
	return len(b.signals)
}

// NumGates returns the number of emitted gates.
func (b *Builder) NumGates() int {
	return len(b.gates)
}

// Finalize checks that every declared output is driven and returns the
// immutable circuit with all ids resolved to their canonical class
// representatives. The builder must not be used afterwards.
func (b *Builder) Finalize() (*ArithmeticCircuit, error) {
	ac := &ArithmeticCircuit{
		Names: make(map[string]int, len(b.signals)),
	}
	for i := range b.signals {
		s := &b.signals[i]
		canon := b.find(s.ID)
		ref := SignalRef{ID: canon, Name: s.Name}
		switch s.Role {
		case Input:
			ac.Inputs = append(ac.Inputs, ref)
		case Output:
			if !b.driven[canon] {
				return nil, fmt.Errorf("output %q: %w", s.Name, ErrUnbound)
			}
			ac.Outputs = append(ac.Outputs, ref)
		default:
			ac.Intermediates = append(ac.Intermediates, ref)
		}
		if s.Const != nil {
			ac.Constants = append(ac.Constants, ConstantRef{ID: canon, Value: s.Const})
		}
		ac.Names[s.Name] = canon
	}
	ac.Gates = make([]Gate, len(b.gates))
	for i, g := range b.gates {
		ac.Gates[i] = Gate{
			Op:  g.Op,
			LH:  b.find(g.LH),
			RH:  b.find(g.RH),
			Out: b.find(g.Out),
		}
	}
	return ac, nil
}
