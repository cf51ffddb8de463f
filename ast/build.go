package ast

import "math/big"

// Convenience constructors for building programs programmatically, used by
// front ends and tests.

// Num returns an integer literal.
func Num(v int64) *Number {
	return &Number{Value: big.NewInt(v)}
}

// NumBig returns an integer literal from a big.Int.
func NumBig(v *big.Int) *Number {
	return &Number{Value: new(big.Int).Set(v)}
}

// Ref returns a plain variable reference.
func Ref(name string) *Variable {
	return &Variable{Name: name}
}

// Idx returns a variable reference with constant array indices.
func Idx(name string, indices ...int64) *Variable {
	v := &Variable{Name: name}
	for _, i := range indices {
		v.Access = append(v.Access, &ArrayAccess{Index: Num(i)})
	}
	return v
}

// IdxE returns a variable reference with index expressions.
func IdxE(name string, indices ...Expression) *Variable {
	v := &Variable{Name: name}
	for _, e := range indices {
		v.Access = append(v.Access, &ArrayAccess{Index: e})
	}
	return v
}

// Sel returns a reference to a component signal, e.g. Sel("c", "in").
func Sel(comp, signal string, indices ...int64) *Variable {
	v := &Variable{Name: comp, Access: []Access{&ComponentAccess{Name: signal}}}
	for _, i := range indices {
		v.Access = append(v.Access, &ArrayAccess{Index: Num(i)})
	}
	return v
}

// Infix returns a binary operation.
func Infix(op Opcode, lhe, rhe Expression) *InfixOp {
	return &InfixOp{Op: op, Lhe: lhe, Rhe: rhe}
}

// Prefix returns a unary operation.
func Prefix(op PrefixOpcode, rhe Expression) *PrefixOp {
	return &PrefixOp{Op: op, Rhe: rhe}
}

// Assign returns a `=` substitution to a plain name.
func Assign(name string, rhe Expression) *Substitution {
	return &Substitution{Name: name, Op: AssignVar, Rhe: rhe}
}

// Constrain returns a `<==` substitution to the given reference.
func Constrain(lhs *Variable, rhe Expression) *Substitution {
	return &Substitution{Name: lhs.Name, Access: lhs.Access, Op: AssignConstraintSignal, Rhe: rhe}
}
