// Package archive provides the read-only view of a parsed and type-checked
// program: its templates, functions, the selected main template and the
// compile-time arguments applied to it.
package archive

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/namnc/circom-2-arithc/ast"
)

// ErrNotFound reports a lookup of an unknown template or function.
var ErrNotFound = errors.New("not found")

// Template is a reusable circuit schema parameterized by integer arguments.
type Template struct {
	Name   string
	Params []string
	// Inputs and Outputs list the template's input and output signal names
	// in declaration order. Their dimensions are carried by the Declaration
	// statements in Body.
	Inputs  []string
	Outputs []string
	Body    []ast.Statement
	// IsCustomGate marks templates to be replaced by a primitive gate
	// instead of elaborating the body.
	IsCustomGate bool
}

// Function is a pure compile-time subroutine over variables.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Statement
}

// Archive is the program view consumed by the elaborator.
type Archive struct {
	templates map[string]*Template
	functions map[string]*Function
	mainName  string
	mainArgs  []*big.Int
	modulus   *big.Int
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{
		templates: make(map[string]*Template),
		functions: make(map[string]*Function),
	}
}

// AddTemplate registers a template definition.
func (a *Archive) AddTemplate(t *Template) {
	a.templates[t.Name] = t
}

// AddFunction registers a function definition.
func (a *Archive) AddFunction(f *Function) {
	a.functions[f.Name] = f
}

// SetMain selects the root template and its compile-time arguments.
func (a *Archive) SetMain(name string, args ...*big.Int) {
	a.mainName = name
	a.mainArgs = args
}

// SetFieldModulus records the prime the program targets. A nil modulus
// records no target, leaving the choice to the compiler's configuration.
func (a *Archive) SetFieldModulus(p *big.Int) {
	a.modulus = p
}

// Templates returns the template table.
func (a *Archive) Templates() map[string]*Template {
	return a.templates
}

// Functions returns the function table.
func (a *Archive) Functions() map[string]*Function {
	return a.functions
}

// FindTemplate looks up a template by name.
func (a *Archive) FindTemplate(name string) (*Template, error) {
	t, ok := a.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	return t, nil
}

// FindFunction looks up a function by name.
func (a *Archive) FindFunction(name string) (*Function, error) {
	f, ok := a.functions[name]
	if !ok {
		return nil, fmt.Errorf("function %q: %w", name, ErrNotFound)
	}
	return f, nil
}

// HasFunction reports whether name is a known function.
func (a *Archive) HasFunction(name string) bool {
	_, ok := a.functions[name]
	return ok
}

// MainTemplate returns the selected root template.
func (a *Archive) MainTemplate() (*Template, error) {
	return a.FindTemplate(a.mainName)
}

// MainArgs returns the compile-time arguments of the root template.
func (a *Archive) MainArgs() []*big.Int {
	return a.mainArgs
}

// FieldModulus returns the target prime, or nil if none was recorded.
func (a *Archive) FieldModulus() *big.Int {
	return a.modulus
}
