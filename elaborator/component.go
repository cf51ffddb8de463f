package elaborator

import (
	"fmt"
	"math/big"

	"github.com/namnc/circom-2-arithc/archive"
	"github.com/namnc/circom-2-arithc/ast"
	"github.com/namnc/circom-2-arithc/runtime"
)

// constArgs evaluates template or function arguments, requiring every one
// to fold to a constant.
func (e *Elaborator) constArgs(exprs []ast.Expression) ([]runtime.Value, error) {
	args := make([]runtime.Value, len(exprs))
	for i, x := range exprs {
		v, err := e.expression(x)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(runtime.Const); !ok {
			return nil, fmt.Errorf("argument %d: %w", i, ErrNonConstArg)
		}
		args[i] = v
	}
	return args, nil
}

// instantiate expands a template into the handle: binds the generic
// arguments, elaborates the body (or emits a primitive gate), and replays
// wiring recorded while the handle was pending.
func (e *Elaborator) instantiate(comp *runtime.Component, tmplName string, args []runtime.Value, prefix string, root bool) error {
	tmpl, err := e.arch.FindTemplate(tmplName)
	if err != nil {
		return err
	}
	if len(args) != len(tmpl.Params) {
		return fmt.Errorf("template %q expects %d arguments, got %d", tmplName, len(tmpl.Params), len(args))
	}
	comp.Template = tmplName
	comp.Args = make([]*big.Int, len(args))
	for i, a := range args {
		c, ok := a.(runtime.Const)
		if !ok {
			return fmt.Errorf("template %q argument %d: %w", tmplName, i, ErrNonConstArg)
		}
		comp.Args[i] = c.Val
	}

	e.log.Debug().
		Str("template", tmplName).
		Str("component", prefix).
		Msg("instantiating")

	if tmpl.IsCustomGate {
		if f, ok := e.prims.Lookup(tmplName, len(tmpl.Params)); ok {
			if err := e.primitive(comp, tmpl, f, prefix, root); err != nil {
				return err
			}
			return e.settle(comp)
		}
		e.log.Debug().Str("template", tmplName).Msg("no primitive registered, elaborating body")
	}

	savedCur, savedPrefix, savedRoot := e.cur, e.prefix, e.root
	e.cur, e.prefix, e.root = comp, prefix, root
	e.ctx.PushScope(runtime.TemplateScope, tmplName)
	defer func() {
		e.ctx.PopScope()
		e.cur, e.prefix, e.root = savedCur, savedPrefix, savedRoot
	}()

	for i, p := range tmpl.Params {
		if err := e.ctx.DeclareVariable(p, nil); err != nil {
			return err
		}
		if err := e.ctx.SetVariable(p, nil, args[i]); err != nil {
			return err
		}
	}

	comp.Status = runtime.Wired
	ret, err := e.statements(tmpl.Body)
	if err != nil {
		return fmt.Errorf("template %q: %w", tmplName, err)
	}
	if ret != nil {
		return fmt.Errorf("template %q: %w", tmplName, ErrReturnOutsideFunction)
	}
	return e.settle(comp)
}

// settle replays pending wiring and marks the component elaborated.
func (e *Elaborator) settle(comp *runtime.Component) error {
	for _, pw := range comp.Pending {
		tree, err := comp.IO(pw.Signal)
		if err != nil {
			return err
		}
		sub, err := tree.At(pw.Path)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", comp.Name, pw.Signal, err)
		}
		if err := e.wire(sub, pw.Src); err != nil {
			return fmt.Errorf("%s.%s: %w", comp.Name, pw.Signal, err)
		}
	}
	comp.Pending = nil
	comp.Status = runtime.Elaborated
	return nil
}

// primitive allocates the scalar io signals of a custom-gate template and
// emits its specialized gate instead of elaborating the body.
func (e *Elaborator) primitive(comp *runtime.Component, tmpl *archive.Template, f PrimitiveFunc, prefix string, root bool) error {
	in := make([]int, len(tmpl.Inputs))
	for i, name := range tmpl.Inputs {
		var id int
		if root {
			id = e.b.NewInput(prefix + name)
		} else {
			id = e.b.NewIntermediate(prefix + name)
		}
		comp.Inputs[name] = &runtime.SignalTree{ID: id}
		in[i] = id
	}
	out, err := f(e.b, in)
	if err != nil {
		return fmt.Errorf("primitive %q: %w", tmpl.Name, err)
	}
	if len(out) != len(tmpl.Outputs) {
		return fmt.Errorf("primitive %q returned %d outputs, template declares %d", tmpl.Name, len(out), len(tmpl.Outputs))
	}
	for i, name := range tmpl.Outputs {
		id := out[i]
		if root {
			oid := e.b.NewOutput(prefix + name)
			if err := e.b.Connect(oid, id); err != nil {
				return err
			}
			id = oid
		}
		comp.Outputs[name] = &runtime.SignalTree{ID: id}
	}
	return nil
}

// callFunction runs a pure compile-time function and returns its value.
func (e *Elaborator) callFunction(id string, argExprs []ast.Expression) (runtime.Value, error) {
	fn, err := e.arch.FindFunction(id)
	if err != nil {
		return nil, err
	}
	if len(argExprs) != len(fn.Params) {
		return nil, fmt.Errorf("function %q expects %d arguments, got %d", id, len(fn.Params), len(argExprs))
	}
	args := make([]runtime.Value, len(argExprs))
	for i, x := range argExprs {
		v, err := e.expression(x)
		if err != nil {
			return nil, err
		}
		if runtime.ContainsSignal(v) {
			return nil, fmt.Errorf("function %q argument %d: %w", id, i, ErrNonConstArg)
		}
		args[i] = v
	}

	e.fnDepth++
	e.ctx.PushScope(runtime.FunctionScope, id)
	defer func() {
		e.ctx.PopScope()
		e.fnDepth--
	}()

	for i, p := range fn.Params {
		if err := e.ctx.DeclareVariable(p, nil); err != nil {
			return nil, err
		}
		if err := e.ctx.SetVariable(p, nil, args[i]); err != nil {
			return nil, err
		}
	}
	ret, err := e.statements(fn.Body)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", id, err)
	}
	if ret == nil {
		return nil, fmt.Errorf("function %q: %w", id, ErrNoReturn)
	}
	return ret, nil
}

// anonymous instantiates a template in expression position. Inputs are
// evaluated at the call site, then wired positionally onto the fresh
// component; the expression value is its output (or tuple of outputs).
func (e *Elaborator) anonymous(x *ast.AnonymousComp) (runtime.Value, error) {
	tmpl, err := e.arch.FindTemplate(x.ID)
	if err != nil {
		return nil, err
	}
	if len(x.Signals) != len(tmpl.Inputs) {
		return nil, fmt.Errorf("anonymous %q expects %d inputs, got %d", x.ID, len(tmpl.Inputs), len(x.Signals))
	}
	params, err := e.constArgs(x.Params)
	if err != nil {
		return nil, fmt.Errorf("anonymous %q: %w", x.ID, err)
	}
	inputs := make([]runtime.Value, len(x.Signals))
	for i, sx := range x.Signals {
		v, err := e.expression(sx)
		if err != nil {
			return nil, err
		}
		inputs[i] = v
	}

	name := fmt.Sprintf("anon%d_%s", e.anonSeq, x.ID)
	e.anonSeq++
	comp := runtime.NewComponent(name)
	if err := e.instantiate(comp, x.ID, params, e.prefix+name+".", false); err != nil {
		return nil, err
	}
	for i, in := range tmpl.Inputs {
		tree, ok := comp.Inputs[in]
		if !ok {
			return nil, fmt.Errorf("anonymous %q input %q was never declared", x.ID, in)
		}
		if err := e.wire(tree, inputs[i]); err != nil {
			return nil, fmt.Errorf("anonymous %q input %q: %w", x.ID, in, err)
		}
	}

	switch len(tmpl.Outputs) {
	case 0:
		return runtime.Unit{}, nil
	case 1:
		tree, ok := comp.Outputs[tmpl.Outputs[0]]
		if !ok {
			return nil, fmt.Errorf("anonymous %q output %q was never declared", x.ID, tmpl.Outputs[0])
		}
		return tree.Value(), nil
	default:
		arr := runtime.Array{Elems: make([]runtime.Value, len(tmpl.Outputs))}
		for i, out := range tmpl.Outputs {
			tree, ok := comp.Outputs[out]
			if !ok {
				return nil, fmt.Errorf("anonymous %q output %q was never declared", x.ID, out)
			}
			arr.Elems[i] = tree.Value()
		}
		return arr, nil
	}
}
