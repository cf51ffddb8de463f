package elaborator

import (
	"fmt"
	"math/big"

	"github.com/namnc/circom-2-arithc/ast"
	"github.com/namnc/circom-2-arithc/circuit"
	"github.com/namnc/circom-2-arithc/runtime"
)

// gateTypes maps infix opcodes to arithmetic gate operations.
var gateTypes = map[ast.Opcode]circuit.AGateType{
	ast.OpMul:       circuit.AMul,
	ast.OpDiv:       circuit.ADiv,
	ast.OpAdd:       circuit.AAdd,
	ast.OpSub:       circuit.ASub,
	ast.OpPow:       circuit.APow,
	ast.OpIntDiv:    circuit.AIDiv,
	ast.OpMod:       circuit.AMod,
	ast.OpShiftL:    circuit.AShiftL,
	ast.OpShiftR:    circuit.AShiftR,
	ast.OpLesserEq:  circuit.ALeq,
	ast.OpGreaterEq: circuit.AGeq,
	ast.OpLesser:    circuit.ALt,
	ast.OpGreater:   circuit.AGt,
	ast.OpEq:        circuit.AEqualB,
	ast.OpNotEq:     circuit.ANeq,
	ast.OpBoolOr:    circuit.ALogicOr,
	ast.OpBoolAnd:   circuit.ALogicAnd,
	ast.OpBitOr:     circuit.ABitOr,
	ast.OpBitAnd:    circuit.ABitAnd,
	ast.OpBitXor:    circuit.ABitXor,
}

// accessPath evaluates an access chain into a leading index path, an
// optional component signal name, and the index path that follows it.
func (e *Elaborator) accessPath(access []ast.Access) (pre []int, signal string, post []int, err error) {
	for _, a := range access {
		switch acc := a.(type) {
		case *ast.ArrayAccess:
			idx, err := e.constIndex(acc.Index)
			if err != nil {
				return nil, "", nil, err
			}
			if signal == "" {
				pre = append(pre, idx)
			} else {
				post = append(post, idx)
			}
		case *ast.ComponentAccess:
			if signal != "" {
				return nil, "", nil, fmt.Errorf("nested component access %q: %w", acc.Name, ErrUnsupported)
			}
			signal = acc.Name
		}
	}
	return pre, signal, post, nil
}

// constIndex folds an index expression to a non-negative host integer.
func (e *Elaborator) constIndex(x ast.Expression) (int, error) {
	v, err := e.expression(x)
	if err != nil {
		return 0, err
	}
	c, ok := v.(runtime.Const)
	if !ok {
		return 0, fmt.Errorf("index is not a constant: %w", ErrBadIndex)
	}
	if c.Val.Sign() < 0 || !c.Val.IsInt64() {
		return 0, fmt.Errorf("index %s: %w", c.Val, ErrBadIndex)
	}
	return int(c.Val.Int64()), nil
}

// expression evaluates x into a value. Constants fold in the host; signal
// operands emit gates into the builder.
func (e *Elaborator) expression(x ast.Expression) (runtime.Value, error) {
	switch expr := x.(type) {
	case *ast.Number:
		return runtime.NewConst(e.f.Reduce(expr.Value)), nil

	case *ast.Variable:
		return e.variable(expr)

	case *ast.InfixOp:
		l, err := e.expression(expr.Lhe)
		if err != nil {
			return nil, err
		}
		r, err := e.expression(expr.Rhe)
		if err != nil {
			return nil, err
		}
		return e.infix(expr.Op, l, r)

	case *ast.PrefixOp:
		v, err := e.expression(expr.Rhe)
		if err != nil {
			return nil, err
		}
		return e.prefixOp(expr.Op, v)

	case *ast.Call:
		if e.arch.HasFunction(expr.ID) {
			return e.callFunction(expr.ID, expr.Args)
		}
		return nil, fmt.Errorf("template call %q outside a component substitution: %w", expr.ID, ErrUnsupported)

	case *ast.AnonymousComp:
		return e.anonymous(expr)

	case *ast.Tuple:
		arr := runtime.Array{Elems: make([]runtime.Value, len(expr.Values))}
		for i, v := range expr.Values {
			val, err := e.expression(v)
			if err != nil {
				return nil, err
			}
			arr.Elems[i] = val
		}
		return arr, nil

	case *ast.InlineSwitch:
		return nil, fmt.Errorf("inline switch: %w", ErrUnsupported)
	case *ast.ArrayInLine:
		return nil, fmt.Errorf("inline array: %w", ErrUnsupported)
	case *ast.UniformArray:
		return nil, fmt.Errorf("uniform array: %w", ErrUnsupported)
	case *ast.ParallelOp:
		return nil, fmt.Errorf("parallel operator: %w", ErrUnsupported)
	}
	return nil, fmt.Errorf("expression %T: %w", x, ErrUnsupported)
}

// variable resolves a reference through the context. The result is whatever
// the item holds: a constant, a signal id, or an array of either.
func (e *Elaborator) variable(expr *ast.Variable) (runtime.Value, error) {
	pre, signal, post, err := e.accessPath(expr.Access)
	if err != nil {
		return nil, err
	}
	kind, err := e.ctx.ItemKind(expr.Name)
	if err != nil {
		return nil, err
	}
	switch kind {
	case runtime.ItemVariable:
		if signal != "" {
			return nil, fmt.Errorf("%q is not a component: %w", expr.Name, ErrUnsupported)
		}
		return e.ctx.GetVariable(expr.Name, pre)

	case runtime.ItemSignal:
		if signal != "" {
			return nil, fmt.Errorf("%q is not a component: %w", expr.Name, ErrUnsupported)
		}
		tree, err := e.ctx.Signals(expr.Name)
		if err != nil {
			return nil, err
		}
		sub, err := tree.At(pre)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", expr.Name, err)
		}
		return sub.Value(), nil

	default: // component
		comp, err := e.ctx.Component(expr.Name, pre)
		if err != nil {
			return nil, err
		}
		if signal == "" {
			return nil, fmt.Errorf("component %q used as a value: %w", expr.Name, ErrUnsupported)
		}
		if comp.Status == runtime.Pending {
			return nil, fmt.Errorf("component %q: %w", expr.Name, ErrNotInstantiated)
		}
		tree, err := comp.IO(signal)
		if err != nil {
			return nil, err
		}
		sub, err := tree.At(post)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", expr.Name, signal, err)
		}
		return sub.Value(), nil
	}
}

// infix applies op to two evaluated operands. Both constant: fold in the
// host field. Any signal: materialize constants and emit a gate. Arrays
// apply elementwise over identical shapes.
func (e *Elaborator) infix(op ast.Opcode, l, r runtime.Value) (runtime.Value, error) {
	la, lArr := l.(runtime.Array)
	ra, rArr := r.(runtime.Array)
	if lArr || rArr {
		if !lArr || !rArr || !runtime.SameShape(l, r) {
			return nil, fmt.Errorf("operator %s: %w", op, ErrShapeMismatch)
		}
		out := runtime.Array{Elems: make([]runtime.Value, len(la.Elems))}
		for i := range la.Elems {
			v, err := e.infix(op, la.Elems[i], ra.Elems[i])
			if err != nil {
				return nil, err
			}
			out.Elems[i] = v
		}
		return out, nil
	}

	lc, lConst := l.(runtime.Const)
	rc, rConst := r.(runtime.Const)
	if lConst && rConst {
		v, err := e.fold(op, lc.Val, rc.Val)
		if err != nil {
			return nil, err
		}
		return runtime.NewConst(v), nil
	}

	lid, err := e.signalOf(l)
	if err != nil {
		return nil, fmt.Errorf("operator %s: %w", op, err)
	}
	rid, err := e.signalOf(r)
	if err != nil {
		return nil, fmt.Errorf("operator %s: %w", op, err)
	}
	out, err := e.b.AddGate(gateTypes[op], lid, rid)
	if err != nil {
		return nil, err
	}
	return runtime.Signal{ID: out}, nil
}

// signalOf returns the signal id carrying v, materializing constants.
func (e *Elaborator) signalOf(v runtime.Value) (int, error) {
	switch val := v.(type) {
	case runtime.Signal:
		return val.ID, nil
	case runtime.Const:
		return e.b.ConstSignal(val.Val), nil
	}
	return 0, fmt.Errorf("operand %T is not a scalar: %w", v, ErrShapeMismatch)
}

func boolInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// fold computes op over two host integers.
func (e *Elaborator) fold(op ast.Opcode, x, y *big.Int) (*big.Int, error) {
	switch op {
	case ast.OpAdd:
		return e.f.Add(x, y), nil
	case ast.OpSub:
		return e.f.Sub(x, y), nil
	case ast.OpMul:
		return e.f.Mul(x, y), nil
	case ast.OpDiv:
		return e.f.Div(x, y)
	case ast.OpIntDiv:
		return e.f.IntDiv(x, y)
	case ast.OpMod:
		return e.f.Mod(x, y)
	case ast.OpPow:
		return e.f.Pow(x, y)
	case ast.OpShiftL:
		return e.f.Shl(x, y)
	case ast.OpShiftR:
		return e.f.Shr(x, y)
	case ast.OpBitAnd:
		return e.f.BitAnd(x, y), nil
	case ast.OpBitOr:
		return e.f.BitOr(x, y), nil
	case ast.OpBitXor:
		return e.f.BitXor(x, y), nil
	case ast.OpLesser:
		return boolInt(e.f.Cmp(x, y) < 0), nil
	case ast.OpLesserEq:
		return boolInt(e.f.Cmp(x, y) <= 0), nil
	case ast.OpGreater:
		return boolInt(e.f.Cmp(x, y) > 0), nil
	case ast.OpGreaterEq:
		return boolInt(e.f.Cmp(x, y) >= 0), nil
	case ast.OpEq:
		return boolInt(e.f.Cmp(x, y) == 0), nil
	case ast.OpNotEq:
		return boolInt(e.f.Cmp(x, y) != 0), nil
	case ast.OpBoolAnd:
		return boolInt(!e.f.IsZero(x) && !e.f.IsZero(y)), nil
	case ast.OpBoolOr:
		return boolInt(!e.f.IsZero(x) || !e.f.IsZero(y)), nil
	}
	return nil, fmt.Errorf("operator %s: %w", op, ErrUnsupported)
}

// prefixOp applies a unary operator. Signal operands emit a gate with a
// synthetic constant-zero left operand.
func (e *Elaborator) prefixOp(op ast.PrefixOpcode, v runtime.Value) (runtime.Value, error) {
	if arr, ok := v.(runtime.Array); ok {
		out := runtime.Array{Elems: make([]runtime.Value, len(arr.Elems))}
		for i := range arr.Elems {
			r, err := e.prefixOp(op, arr.Elems[i])
			if err != nil {
				return nil, err
			}
			out.Elems[i] = r
		}
		return out, nil
	}

	if c, ok := v.(runtime.Const); ok {
		switch op {
		case ast.PrefixSub:
			return runtime.NewConst(e.f.Neg(c.Val)), nil
		case ast.PrefixBoolNot:
			return runtime.NewConst(boolInt(e.f.IsZero(c.Val))), nil
		case ast.PrefixComplement:
			return runtime.NewConst(e.f.BitNot(c.Val)), nil
		}
		return nil, fmt.Errorf("prefix operator %s: %w", op, ErrUnsupported)
	}

	id, err := e.signalOf(v)
	if err != nil {
		return nil, err
	}
	zero := e.b.ConstSignal(big.NewInt(0))
	var gt circuit.AGateType
	switch op {
	case ast.PrefixSub:
		gt = circuit.ASub
	case ast.PrefixBoolNot:
		gt = circuit.ALogicNot
	case ast.PrefixComplement:
		gt = circuit.ABitNot
	default:
		return nil, fmt.Errorf("prefix operator %s: %w", op, ErrUnsupported)
	}
	out, err := e.b.AddGate(gt, zero, id)
	if err != nil {
		return nil, err
	}
	return runtime.Signal{ID: out}, nil
}
