// Package runtime tracks the compile-time state of an elaboration: values,
// lexically scoped name bindings, signal arrays and component handles.
package runtime

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrRedeclared reports a duplicate declaration in the same scope.
	ErrRedeclared = errors.New("runtime: name already declared")
	// ErrUndeclared reports a reference to an unknown name.
	ErrUndeclared = errors.New("runtime: name not declared")
	// ErrUnset reports a read of a variable that was never assigned.
	ErrUnset = errors.New("runtime: variable is unset")
	// ErrIndexOutOfBounds reports an array index outside the declared shape.
	ErrIndexOutOfBounds = errors.New("runtime: index out of bounds")
	// ErrNotAnArray reports an indexed access into a scalar.
	ErrNotAnArray = errors.New("runtime: not an array")
	// ErrNotAValue reports a partial access that does not reach a leaf.
	ErrNotAValue = errors.New("runtime: not a single value")
)

// ValueKind tags the variants of Value.
type ValueKind int

const (
	KindUnit ValueKind = iota
	KindConst
	KindSignal
	KindArray
)

// Value is the result of evaluating an expression: a compile-time constant,
// a circuit signal id, a nested array of values, or nothing.
type Value interface {
	Kind() ValueKind
}

// Const is a compile-time integer.
type Const struct {
	Val *big.Int
}

// Signal is a reference to a circuit wire.
type Signal struct {
	ID int
}

// Array is a nested aggregate of values.
type Array struct {
	Elems []Value
}

// Unit is the absence of a value.
type Unit struct{}

func (Const) Kind() ValueKind  { return KindConst }
func (Signal) Kind() ValueKind { return KindSignal }
func (Array) Kind() ValueKind  { return KindArray }
func (Unit) Kind() ValueKind   { return KindUnit }

// NewConst wraps v without copying.
func NewConst(v *big.Int) Const {
	return Const{Val: v}
}

// ConstInt64 returns a constant from a host integer.
func ConstInt64(v int64) Const {
	return Const{Val: big.NewInt(v)}
}

// SameShape reports whether a and b have identical array structure. Scalars
// (constants and signals) share the empty shape.
func SameShape(a, b Value) bool {
	aa, aok := a.(Array)
	bb, bok := b.(Array)
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	if len(aa.Elems) != len(bb.Elems) {
		return false
	}
	for i := range aa.Elems {
		if !SameShape(aa.Elems[i], bb.Elems[i]) {
			return false
		}
	}
	return true
}

// ContainsSignal reports whether v holds any signal leaf.
func ContainsSignal(v Value) bool {
	switch x := v.(type) {
	case Signal:
		return true
	case Array:
		for _, e := range x.Elems {
			if ContainsSignal(e) {
				return true
			}
		}
	}
	return false
}

// IndexValue descends into nested arrays along path.
func IndexValue(v Value, path []int) (Value, error) {
	for _, i := range path {
		arr, ok := v.(Array)
		if !ok {
			return nil, ErrNotAnArray
		}
		if i < 0 || i >= len(arr.Elems) {
			return nil, fmt.Errorf("index %d of %d: %w", i, len(arr.Elems), ErrIndexOutOfBounds)
		}
		v = arr.Elems[i]
	}
	return v, nil
}
