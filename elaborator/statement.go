package elaborator

import (
	"fmt"
	"strings"

	"github.com/namnc/circom-2-arithc/ast"
	"github.com/namnc/circom-2-arithc/runtime"
)

// statements elaborates a statement sequence. A non-nil value reports an
// early return from a function body.
func (e *Elaborator) statements(stmts []ast.Statement) (runtime.Value, error) {
	for i, stmt := range stmts {
		ret, err := e.statement(stmt)
		if err != nil {
			return nil, fmt.Errorf("%s statement %d: %w", e.ctx.ScopeName(), i, err)
		}
		if ret != nil {
			return ret, nil
		}
	}
	return nil, nil
}

// statement elaborates a single statement, dispatching on its kind.
func (e *Elaborator) statement(stmt ast.Statement) (runtime.Value, error) {
	switch s := stmt.(type) {
	case *ast.InitializationBlock:
		// inner declarations belong to the enclosing scope
		for _, init := range s.Inits {
			ret, err := e.statement(init)
			if err != nil {
				return nil, err
			}
			if ret != nil {
				return ret, nil
			}
		}
		return nil, nil

	case *ast.Block:
		e.ctx.PushScope(runtime.BlockScope, e.ctx.ScopeName())
		defer e.ctx.PopScope()
		return e.statements(s.Stmts)

	case *ast.Declaration:
		return nil, e.declaration(s)

	case *ast.Substitution:
		return nil, e.substitution(s)

	case *ast.MultSubstitution:
		return nil, e.multSubstitution(s)

	case *ast.UnderscoreSubstitution:
		_, err := e.expression(s.Rhe)
		return nil, err

	case *ast.ConstraintEquality:
		return nil, e.constraintEquality(s)

	case *ast.IfThenElse:
		cond, err := e.condition(s.Cond)
		if err != nil {
			return nil, err
		}
		branch := s.If
		if !cond {
			branch = s.Else
		}
		if branch == nil {
			return nil, nil
		}
		e.ctx.PushScope(runtime.BranchScope, e.ctx.ScopeName())
		defer e.ctx.PopScope()
		return e.statement(branch)

	case *ast.While:
		for {
			cond, err := e.condition(s.Cond)
			if err != nil {
				return nil, err
			}
			if !cond {
				return nil, nil
			}
			if err := e.spendIteration(); err != nil {
				return nil, err
			}
			e.ctx.PushScope(runtime.LoopScope, e.ctx.ScopeName())
			ret, err := e.statement(s.Body)
			e.ctx.PopScope()
			if err != nil {
				return nil, err
			}
			if ret != nil {
				return ret, nil
			}
		}

	case *ast.Return:
		if e.fnDepth == 0 {
			return nil, ErrReturnOutsideFunction
		}
		v, err := e.expression(s.Value)
		if err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Assert:
		return nil, e.assert(s)

	case *ast.LogCall:
		return nil, e.logCall(s)
	}
	return nil, fmt.Errorf("statement %T: %w", stmt, ErrUnsupported)
}

// condition folds a branch or loop condition to a boolean. A signal-valued
// condition is a symbolic branch and is rejected.
func (e *Elaborator) condition(x ast.Expression) (bool, error) {
	v, err := e.expression(x)
	if err != nil {
		return false, err
	}
	c, ok := v.(runtime.Const)
	if !ok {
		return false, ErrSymbolicBranch
	}
	return !e.f.IsZero(c.Val), nil
}

// constDims folds declaration dimensions to host integers.
func (e *Elaborator) constDims(dims []ast.Expression) ([]int, error) {
	out := make([]int, len(dims))
	for i, d := range dims {
		n, err := e.constIndex(d)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// declaration creates a variable, signal array or component handle in the
// current scope. Signals allocate circuit ids immediately, qualified by the
// enclosing component path.
func (e *Elaborator) declaration(d *ast.Declaration) error {
	dims, err := e.constDims(d.Dims)
	if err != nil {
		return fmt.Errorf("declaration of %q: %w", d.Name, err)
	}
	switch d.Kind {
	case ast.DeclVar:
		return e.ctx.DeclareVariable(d.Name, dims)

	case ast.DeclSignal:
		if e.fnDepth > 0 {
			return fmt.Errorf("signal %q declared in a function: %w", d.Name, ErrUnsupported)
		}
		tree, err := e.ctx.DeclareSignals(d.Name, dims, func(suffix string) int {
			name := e.prefix + d.Name + suffix
			if e.root {
				switch d.Role {
				case ast.SignalInput:
					return e.b.NewInput(name)
				case ast.SignalOutput:
					return e.b.NewOutput(name)
				}
			}
			return e.b.NewIntermediate(name)
		})
		if err != nil {
			return err
		}
		switch d.Role {
		case ast.SignalInput:
			e.cur.Inputs[d.Name] = tree
		case ast.SignalOutput:
			e.cur.Outputs[d.Name] = tree
		}
		return nil

	case ast.DeclComponent:
		if e.fnDepth > 0 {
			return fmt.Errorf("component %q declared in a function: %w", d.Name, ErrUnsupported)
		}
		return e.ctx.DeclareComponents(d.Name, dims)
	}
	return fmt.Errorf("declaration kind %s: %w", d.Kind, ErrUnsupported)
}

// substitution elaborates `lhs <== rhs` and `lhs = rhs` statements.
func (e *Elaborator) substitution(s *ast.Substitution) error {
	pre, signal, post, err := e.accessPath(s.Access)
	if err != nil {
		return err
	}
	kind, err := e.ctx.ItemKind(s.Name)
	if err != nil {
		return err
	}

	// `c = Tmpl(args)` binds a template instantiation to a pending handle.
	if kind == runtime.ItemComponent && signal == "" {
		call, ok := s.Rhe.(*ast.Call)
		if !ok {
			return fmt.Errorf("component %q must be assigned a template call: %w", s.Name, ErrUnsupported)
		}
		comp, err := e.ctx.Component(s.Name, pre)
		if err != nil {
			return err
		}
		args, err := e.constArgs(call.Args)
		if err != nil {
			return fmt.Errorf("instantiating %q: %w", call.ID, err)
		}
		return e.instantiate(comp, call.ID, args, e.prefix+comp.Name+".", false)
	}

	rhs, err := e.expression(s.Rhe)
	if err != nil {
		return err
	}
	return e.assign(s.Name, kind, pre, signal, post, rhs)
}

// assign routes an evaluated right-hand side into a variable, signal or
// component input.
func (e *Elaborator) assign(name string, kind runtime.ItemKind, pre []int, signal string, post []int, rhs runtime.Value) error {
	switch kind {
	case runtime.ItemVariable:
		if signal != "" {
			return fmt.Errorf("%q is not a component: %w", name, ErrUnsupported)
		}
		if runtime.ContainsSignal(rhs) {
			return fmt.Errorf("%q: %w", name, ErrSignalAssignment)
		}
		return e.ctx.SetVariable(name, pre, rhs)

	case runtime.ItemSignal:
		if signal != "" {
			return fmt.Errorf("%q is not a component: %w", name, ErrUnsupported)
		}
		tree, err := e.ctx.Signals(name)
		if err != nil {
			return err
		}
		sub, err := tree.At(pre)
		if err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
		return e.wire(sub, rhs)

	default: // component input (or output) wiring
		comp, err := e.ctx.Component(name, pre)
		if err != nil {
			return err
		}
		if signal == "" {
			return fmt.Errorf("component %q assigned a non-call value: %w", name, ErrUnsupported)
		}
		if comp.Status == runtime.Pending {
			comp.Record(signal, post, rhs)
			return nil
		}
		tree, err := comp.IO(signal)
		if err != nil {
			return err
		}
		sub, err := tree.At(post)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", name, signal, err)
		}
		return e.wire(sub, rhs)
	}
}

// wire connects an evaluated value onto a signal tree, leaf by leaf.
// Constant leaves are materialized as constant signals.
func (e *Elaborator) wire(dst *runtime.SignalTree, src runtime.Value) error {
	if dst.Elems == nil {
		id, err := e.signalOf(src)
		if err != nil {
			return err
		}
		return e.b.Connect(dst.ID, id)
	}
	arr, ok := src.(runtime.Array)
	if !ok || len(arr.Elems) != len(dst.Elems) {
		return ErrShapeMismatch
	}
	for i := range dst.Elems {
		if err := e.wire(dst.Elems[i], arr.Elems[i]); err != nil {
			return err
		}
	}
	return nil
}

// multSubstitution elaborates `(a, b) <== (x, y)` pairwise.
func (e *Elaborator) multSubstitution(s *ast.MultSubstitution) error {
	tuple, ok := s.Lhe.(*ast.Tuple)
	if !ok {
		return fmt.Errorf("multi-substitution target: %w", ErrUnsupported)
	}
	rhs, err := e.expression(s.Rhe)
	if err != nil {
		return err
	}
	arr, ok := rhs.(runtime.Array)
	if !ok || len(arr.Elems) != len(tuple.Values) {
		return fmt.Errorf("multi-substitution: %w", ErrShapeMismatch)
	}
	for i, lhe := range tuple.Values {
		ref, ok := lhe.(*ast.Variable)
		if !ok {
			return fmt.Errorf("multi-substitution target %T: %w", lhe, ErrUnsupported)
		}
		pre, signal, post, err := e.accessPath(ref.Access)
		if err != nil {
			return err
		}
		kind, err := e.ctx.ItemKind(ref.Name)
		if err != nil {
			return err
		}
		if err := e.assign(ref.Name, kind, pre, signal, post, arr.Elems[i]); err != nil {
			return err
		}
	}
	return nil
}

// constraintEquality elaborates `a === b` as a connection; a constant side
// is materialized first.
func (e *Elaborator) constraintEquality(s *ast.ConstraintEquality) error {
	l, err := e.expression(s.Lhe)
	if err != nil {
		return err
	}
	r, err := e.expression(s.Rhe)
	if err != nil {
		return err
	}
	return e.connectValues(l, r)
}

func (e *Elaborator) connectValues(l, r runtime.Value) error {
	la, lArr := l.(runtime.Array)
	ra, rArr := r.(runtime.Array)
	if lArr || rArr {
		if !lArr || !rArr || len(la.Elems) != len(ra.Elems) {
			return ErrShapeMismatch
		}
		for i := range la.Elems {
			if err := e.connectValues(la.Elems[i], ra.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	}
	lid, err := e.signalOf(l)
	if err != nil {
		return err
	}
	rid, err := e.signalOf(r)
	if err != nil {
		return err
	}
	return e.b.Connect(lid, rid)
}

// assert checks a compile-time condition. Signal-valued asserts carry no
// compile-time information and are dropped.
func (e *Elaborator) assert(s *ast.Assert) error {
	v, err := e.expression(s.Arg)
	if err != nil {
		return err
	}
	c, ok := v.(runtime.Const)
	if !ok {
		e.log.Debug().Str("scope", e.ctx.ScopeName()).Msg("dropping signal-valued assert")
		return nil
	}
	if e.f.IsZero(c.Val) {
		return ErrAssertFailed
	}
	return nil
}

// logCall renders its arguments into the compiler log.
func (e *Elaborator) logCall(s *ast.LogCall) error {
	parts := make([]string, 0, len(s.Args))
	for _, arg := range s.Args {
		v, err := e.expression(arg)
		if err != nil {
			return err
		}
		parts = append(parts, renderValue(v))
	}
	e.log.Debug().Str("scope", e.ctx.ScopeName()).Msg(strings.Join(parts, " "))
	return nil
}

func renderValue(v runtime.Value) string {
	switch val := v.(type) {
	case runtime.Const:
		return val.Val.String()
	case runtime.Signal:
		return fmt.Sprintf("sig<%d>", val.ID)
	case runtime.Array:
		parts := make([]string, len(val.Elems))
		for i, e := range val.Elems {
			parts[i] = renderValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "()"
}
