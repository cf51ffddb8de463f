package runtime

import (
	"fmt"
	"math/big"
)

// Status tracks the lifecycle of a component handle.
type Status int

const (
	// Pending: declared, not yet bound to a template instantiation.
	Pending Status = iota
	// Wired: instantiation in progress, the body is being elaborated.
	Wired
	// Elaborated: the body finished and all recorded wiring was applied.
	Elaborated
)

func (s Status) String() string {
	switch s {
	case Wired:
		return "wired"
	case Elaborated:
		return "elaborated"
	}
	return "pending"
}

// PendingWire is a recorded input/output connection issued before the
// component was elaborated. Src is the already-evaluated right-hand side
// (a Signal, Const, or Array of those).
type PendingWire struct {
	Signal string
	Path   []int
	Src    Value
}

// Component is an instantiated (or not yet instantiated) child template.
// It owns the local symbol table of the child's input and output signals;
// the signals themselves live in the circuit builder.
type Component struct {
	Name     string
	Template string
	Args     []*big.Int
	Status   Status
	Inputs   map[string]*SignalTree
	Outputs  map[string]*SignalTree
	Pending  []PendingWire
}

// NewComponent returns a handle in Pending state.
func NewComponent(name string) *Component {
	return &Component{
		Name:    name,
		Inputs:  make(map[string]*SignalTree),
		Outputs: make(map[string]*SignalTree),
	}
}

// IO resolves a child signal by name, searching inputs then outputs.
func (c *Component) IO(signal string) (*SignalTree, error) {
	if t, ok := c.Inputs[signal]; ok {
		return t, nil
	}
	if t, ok := c.Outputs[signal]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("component %q has no signal %q: %w", c.Name, signal, ErrUndeclared)
}

// Record appends a wiring to be replayed once the component is elaborated.
func (c *Component) Record(signal string, path []int, src Value) {
	c.Pending = append(c.Pending, PendingWire{Signal: signal, Path: append([]int(nil), path...), Src: src})
}

// componentTree is a declared component or a fixed-shape nest of them.
type componentTree struct {
	comp  *Component
	elems []*componentTree
}

func newComponentTree(name string, dims []int) *componentTree {
	if len(dims) == 0 {
		return &componentTree{comp: NewComponent(name)}
	}
	t := &componentTree{elems: make([]*componentTree, dims[0])}
	for i := range t.elems {
		t.elems[i] = newComponentTree(fmt.Sprintf("%s[%d]", name, i), dims[1:])
	}
	return t
}

func (t *componentTree) at(path []int) (*Component, error) {
	for _, i := range path {
		if t.elems == nil {
			return nil, ErrNotAnArray
		}
		if i < 0 || i >= len(t.elems) {
			return nil, fmt.Errorf("index %d of %d: %w", i, len(t.elems), ErrIndexOutOfBounds)
		}
		t = t.elems[i]
	}
	if t.comp == nil {
		return nil, ErrNotAValue
	}
	return t.comp, nil
}
