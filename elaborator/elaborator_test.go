package elaborator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namnc/circom-2-arithc/archive"
	"github.com/namnc/circom-2-arithc/ast"
	"github.com/namnc/circom-2-arithc/circuit"
	"github.com/namnc/circom-2-arithc/field"
)

func declVar(name string, dims ...ast.Expression) *ast.Declaration {
	return &ast.Declaration{Kind: ast.DeclVar, Name: name, Dims: dims}
}

func declSignal(role ast.SignalRole, name string, dims ...ast.Expression) *ast.Declaration {
	return &ast.Declaration{Kind: ast.DeclSignal, Role: role, Name: name, Dims: dims}
}

func declComponent(name string, dims ...ast.Expression) *ast.Declaration {
	return &ast.Declaration{Kind: ast.DeclComponent, Name: name, Dims: dims}
}

func elaborate(t *testing.T, arch *archive.Archive, opts Options) (*circuit.Builder, *Elaborator, error) {
	t.Helper()
	b := circuit.NewBuilder(field.Integers())
	e := New(arch, b, opts)
	return b, e, e.Run()
}

// adder is a minimal two-input template used across tests.
func adder() *archive.Template {
	return &archive.Template{
		Name:    "adder",
		Inputs:  []string{"a", "b"},
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "a"),
			declSignal(ast.SignalInput, "b"),
			declSignal(ast.SignalOutput, "out"),
			ast.Constrain(ast.Ref("out"), ast.Infix(ast.OpAdd, ast.Ref("a"), ast.Ref("b"))),
		},
	}
}

func TestScopeHygiene(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(adder())
	arch.SetMain("adder")

	_, e, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, e.Context().Depth())
}

func TestDeferredWiring(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(adder())
	arch.AddTemplate(&archive.Template{
		Name:    "wrapper",
		Inputs:  []string{"x", "y"},
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "x"),
			declSignal(ast.SignalInput, "y"),
			declSignal(ast.SignalOutput, "out"),
			declComponent("c"),
			// inputs are wired before the component is instantiated
			ast.Constrain(ast.Sel("c", "a"), ast.Ref("x")),
			ast.Constrain(ast.Sel("c", "b"), ast.Ref("y")),
			&ast.Substitution{Name: "c", Op: ast.AssignVar, Rhe: &ast.Call{ID: "adder"}},
			ast.Constrain(ast.Ref("out"), ast.Sel("c", "out")),
		},
	})
	arch.SetMain("wrapper")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)

	ac, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, ac.Gates, 1)
	assert.Equal(t, circuit.AAdd, ac.Gates[0].Op)
	// the child's inputs resolve to the wrapper's inputs after replay
	x, _ := ac.SignalID("x")
	y, _ := ac.SignalID("y")
	ca, ok := ac.SignalID("c.a")
	require.True(t, ok)
	cb, _ := ac.SignalID("c.b")
	assert.Equal(t, x, ca)
	assert.Equal(t, y, cb)
}

func TestFunctionCall(t *testing.T) {
	arch := archive.New()
	arch.AddFunction(&archive.Function{
		Name:   "double",
		Params: []string{"n"},
		Body: []ast.Statement{
			&ast.Return{Value: ast.Infix(ast.OpMul, ast.Ref("n"), ast.Num(2))},
		},
	})
	arch.AddTemplate(&archive.Template{
		Name:    "main",
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "in"),
			declSignal(ast.SignalOutput, "out"),
			ast.Constrain(ast.Ref("out"),
				ast.Infix(ast.OpAdd, ast.Ref("in"), &ast.Call{ID: "double", Args: []ast.Expression{ast.Num(21)}})),
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, ac.Constants, 1)
	assert.Equal(t, int64(42), ac.Constants[0].Value.Int64())
}

func TestFunctionWithLoop(t *testing.T) {
	// sum(n) = 0 + 1 + ... + (n-1), computed with a while loop
	arch := archive.New()
	arch.AddFunction(&archive.Function{
		Name:   "sum",
		Params: []string{"n"},
		Body: []ast.Statement{
			declVar("acc"),
			declVar("i"),
			ast.Assign("acc", ast.Num(0)),
			ast.Assign("i", ast.Num(0)),
			&ast.While{
				Cond: ast.Infix(ast.OpLesser, ast.Ref("i"), ast.Ref("n")),
				Body: &ast.Block{Stmts: []ast.Statement{
					ast.Assign("acc", ast.Infix(ast.OpAdd, ast.Ref("acc"), ast.Ref("i"))),
					ast.Assign("i", ast.Infix(ast.OpAdd, ast.Ref("i"), ast.Num(1))),
				}},
			},
			&ast.Return{Value: ast.Ref("acc")},
		},
	})
	arch.AddTemplate(&archive.Template{
		Name:    "main",
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalOutput, "out"),
			ast.Constrain(ast.Ref("out"), &ast.Call{ID: "sum", Args: []ast.Expression{ast.Num(5)}}),
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, ac.Constants, 1)
	assert.Equal(t, int64(10), ac.Constants[0].Value.Int64())
}

func TestSymbolicBranchRejected(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"in"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "in"),
			&ast.IfThenElse{Cond: ast.Ref("in"), If: &ast.Block{}},
		},
	})
	arch.SetMain("main")

	_, _, err := elaborate(t, arch, Options{})
	require.ErrorIs(t, err, ErrSymbolicBranch)
}

func TestAssert(t *testing.T) {
	newArch := func(cond ast.Expression) *archive.Archive {
		arch := archive.New()
		arch.AddTemplate(&archive.Template{
			Name: "main",
			Body: []ast.Statement{&ast.Assert{Arg: cond}},
		})
		arch.SetMain("main")
		return arch
	}

	_, _, err := elaborate(t, newArch(ast.Infix(ast.OpEq, ast.Num(2), ast.Num(2))), Options{})
	require.NoError(t, err)

	_, _, err = elaborate(t, newArch(ast.Infix(ast.OpEq, ast.Num(2), ast.Num(3))), Options{})
	require.ErrorIs(t, err, ErrAssertFailed)
}

func TestSignalAssertDropped(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"in"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "in"),
			&ast.Assert{Arg: ast.Infix(ast.OpEq, ast.Ref("in"), ast.Num(1))},
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	// the comparison gate is still emitted; the assert itself is a no-op
	assert.Equal(t, 1, b.NumGates())
}

func TestIterationBudget(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name: "main",
		Body: []ast.Statement{
			declVar("i"),
			ast.Assign("i", ast.Num(0)),
			&ast.While{
				Cond: ast.Infix(ast.OpLesser, ast.Ref("i"), ast.Num(100)),
				Body: &ast.Block{Stmts: []ast.Statement{
					ast.Assign("i", ast.Infix(ast.OpAdd, ast.Ref("i"), ast.Num(1))),
				}},
			},
		},
	})
	arch.SetMain("main")

	_, _, err := elaborate(t, arch, Options{IterationBudget: 10})
	require.ErrorIs(t, err, ErrBudgetExceeded)

	_, _, err = elaborate(t, arch, Options{IterationBudget: 100})
	require.NoError(t, err)
}

func TestUnsupportedConstructs(t *testing.T) {
	cases := map[string]ast.Expression{
		"inline switch": &ast.InlineSwitch{Cond: ast.Num(1), IfTrue: ast.Num(1), IfFalse: ast.Num(0)},
		"inline array":  &ast.ArrayInLine{Values: []ast.Expression{ast.Num(1)}},
		"uniform array": &ast.UniformArray{Value: ast.Num(0), Dimension: ast.Num(3)},
		"parallel":      &ast.ParallelOp{Rhe: ast.Num(1)},
	}
	for name, expr := range cases {
		arch := archive.New()
		arch.AddTemplate(&archive.Template{
			Name: "main",
			Body: []ast.Statement{
				declVar("x"),
				ast.Assign("x", expr),
			},
		})
		arch.SetMain("main")
		_, _, err := elaborate(t, arch, Options{})
		require.ErrorIs(t, err, ErrUnsupported, name)
	}
}

func TestNonConstTemplateArg(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "inner",
		Params: []string{"n"},
	})
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"in"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "in"),
			declComponent("c"),
			&ast.Substitution{Name: "c", Op: ast.AssignVar,
				Rhe: &ast.Call{ID: "inner", Args: []ast.Expression{ast.Ref("in")}}},
		},
	})
	arch.SetMain("main")

	_, _, err := elaborate(t, arch, Options{})
	require.ErrorIs(t, err, ErrNonConstArg)
}

func TestSignalToVariableRejected(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"in"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "in"),
			declVar("x"),
			ast.Assign("x", ast.Ref("in")),
		},
	})
	arch.SetMain("main")

	_, _, err := elaborate(t, arch, Options{})
	require.ErrorIs(t, err, ErrSignalAssignment)
}

func TestWiringShapeMismatch(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"a"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "a", ast.Num(2)),
			declSignal(ast.SignalIntermediate, "b", ast.Num(3)),
			ast.Constrain(ast.Ref("b"), ast.Ref("a")),
		},
	})
	arch.SetMain("main")

	_, _, err := elaborate(t, arch, Options{})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestElementwiseInfix(t *testing.T) {
	// out[i] <== a[i] * b[i], written as a whole-array multiply
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:    "main",
		Inputs:  []string{"a", "b"},
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "a", ast.Num(3)),
			declSignal(ast.SignalInput, "b", ast.Num(3)),
			declSignal(ast.SignalOutput, "out", ast.Num(3)),
			ast.Constrain(ast.Ref("out"), ast.Infix(ast.OpMul, ast.Ref("a"), ast.Ref("b"))),
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, ac.Gates, 3)
	for _, g := range ac.Gates {
		assert.Equal(t, circuit.AMul, g.Op)
	}
}

func TestPrimitiveGate(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:         "IsZero",
		Inputs:       []string{"in"},
		Outputs:      []string{"out"},
		IsCustomGate: true,
		// advisory body; must not be elaborated
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "in"),
			declSignal(ast.SignalOutput, "out"),
			ast.Constrain(ast.Ref("out"), ast.Infix(ast.OpMul, ast.Ref("in"), ast.Ref("in"))),
		},
	})
	arch.AddTemplate(&archive.Template{
		Name:    "main",
		Inputs:  []string{"x"},
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "x"),
			declSignal(ast.SignalOutput, "out"),
			declComponent("z"),
			&ast.Substitution{Name: "z", Op: ast.AssignVar, Rhe: &ast.Call{ID: "IsZero"}},
			ast.Constrain(ast.Sel("z", "in"), ast.Ref("x")),
			ast.Constrain(ast.Ref("out"), ast.Sel("z", "out")),
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, ac.Gates, 1)
	assert.Equal(t, circuit.AEqualB, ac.Gates[0].Op)
	require.Len(t, ac.Constants, 1)
	assert.Equal(t, int64(0), ac.Constants[0].Value.Int64())
}

func TestAnonymousComponent(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(adder())
	arch.AddTemplate(&archive.Template{
		Name:    "main",
		Inputs:  []string{"x", "y"},
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "x"),
			declSignal(ast.SignalInput, "y"),
			declSignal(ast.SignalOutput, "out"),
			ast.Constrain(ast.Ref("out"), &ast.AnonymousComp{
				ID:      "adder",
				Signals: []ast.Expression{ast.Ref("x"), ast.Ref("y")},
			}),
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, ac.Gates, 1)
	assert.Equal(t, circuit.AAdd, ac.Gates[0].Op)

	x, _ := ac.SignalID("x")
	in, ok := ac.SignalID("anon0_adder.a")
	require.True(t, ok)
	assert.Equal(t, x, in)
}

func TestConstraintEqualityConnects(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"a"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "a"),
			declSignal(ast.SignalIntermediate, "b"),
			&ast.ConstraintEquality{Lhe: ast.Ref("b"), Rhe: ast.Ref("a")},
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	aid, _ := ac.SignalID("a")
	bid, _ := ac.SignalID("b")
	assert.Equal(t, aid, bid)
	assert.Empty(t, ac.Gates)
}

func TestMultSubstitution(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:    "main",
		Inputs:  []string{"x", "y"},
		Outputs: []string{"a", "b"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "x"),
			declSignal(ast.SignalInput, "y"),
			declSignal(ast.SignalOutput, "a"),
			declSignal(ast.SignalOutput, "b"),
			&ast.MultSubstitution{
				Lhe: &ast.Tuple{Values: []ast.Expression{ast.Ref("a"), ast.Ref("b")}},
				Op:  ast.AssignConstraintSignal,
				Rhe: &ast.Tuple{Values: []ast.Expression{ast.Ref("y"), ast.Ref("x")}},
			},
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	x, _ := ac.SignalID("x")
	y, _ := ac.SignalID("y")
	a, _ := ac.SignalID("a")
	bb, _ := ac.SignalID("b")
	assert.Equal(t, y, a)
	assert.Equal(t, x, bb)
}

func TestUnderscoreSubstitutionKeepsGates(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"x", "y"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "x"),
			declSignal(ast.SignalInput, "y"),
			&ast.UnderscoreSubstitution{Op: ast.AssignConstraintSignal,
				Rhe: ast.Infix(ast.OpMul, ast.Ref("x"), ast.Ref("y"))},
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, b.NumGates())
}

func TestLogCall(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:   "main",
		Inputs: []string{"x"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "x"),
			&ast.LogCall{Args: []ast.Expression{ast.Num(1), ast.Ref("x")}},
		},
	})
	arch.SetMain("main")

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, b.NumGates())
}

func TestReturnOutsideFunction(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name: "main",
		Body: []ast.Statement{&ast.Return{Value: ast.Num(1)}},
	})
	arch.SetMain("main")

	_, _, err := elaborate(t, arch, Options{})
	require.ErrorIs(t, err, ErrReturnOutsideFunction)
}

func TestMainArgs(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(&archive.Template{
		Name:    "scale",
		Params:  []string{"k"},
		Inputs:  []string{"in"},
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalInput, "in"),
			declSignal(ast.SignalOutput, "out"),
			ast.Constrain(ast.Ref("out"), ast.Infix(ast.OpMul, ast.Ref("in"), ast.Ref("k"))),
		},
	})
	arch.SetMain("scale", big.NewInt(12))

	b, _, err := elaborate(t, arch, Options{})
	require.NoError(t, err)
	ac, err := b.Finalize()
	require.NoError(t, err)
	require.Len(t, ac.Constants, 1)
	assert.Equal(t, int64(12), ac.Constants[0].Value.Int64())
	require.Len(t, ac.Gates, 1)
	assert.Equal(t, circuit.AMul, ac.Gates[0].Op)
}

func TestComponentReadBeforeInstantiation(t *testing.T) {
	arch := archive.New()
	arch.AddTemplate(adder())
	arch.AddTemplate(&archive.Template{
		Name:    "main",
		Outputs: []string{"out"},
		Body: []ast.Statement{
			declSignal(ast.SignalOutput, "out"),
			declComponent("c"),
			ast.Constrain(ast.Ref("out"), ast.Sel("c", "out")),
		},
	})
	arch.SetMain("main")

	_, _, err := elaborate(t, arch, Options{})
	require.ErrorIs(t, err, ErrNotInstantiated)
}
