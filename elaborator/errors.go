package elaborator

import "errors"

var (
	// ErrNonConstArg reports a template or function argument that did not
	// fold to a constant.
	ErrNonConstArg = errors.New("elaborator: argument is not a constant")
	// ErrSymbolicBranch reports a branch or loop condition that depends on
	// a signal.
	ErrSymbolicBranch = errors.New("elaborator: condition depends on a signal")
	// ErrShapeMismatch reports an elementwise operation or wiring between
	// arrays of different shapes.
	ErrShapeMismatch = errors.New("elaborator: shape mismatch")
	// ErrBadIndex reports a non-constant, non-integer or negative array
	// index.
	ErrBadIndex = errors.New("elaborator: bad array index")
	// ErrUnsupported reports a construct the elaborator does not accept.
	ErrUnsupported = errors.New("elaborator: unsupported construct")
	// ErrAssertFailed reports a compile-time assertion that evaluated to
	// zero.
	ErrAssertFailed = errors.New("elaborator: assertion failed")
	// ErrBudgetExceeded reports that the configured iteration budget ran
	// out.
	ErrBudgetExceeded = errors.New("elaborator: iteration budget exceeded")
	// ErrSignalAssignment reports a signal value assigned to a plain
	// variable.
	ErrSignalAssignment = errors.New("elaborator: cannot bind signal to variable")
	// ErrNotInstantiated reports a read of a component that has no template
	// bound yet.
	ErrNotInstantiated = errors.New("elaborator: component not instantiated")
	// ErrReturnOutsideFunction reports a return statement in a template
	// body.
	ErrReturnOutsideFunction = errors.New("elaborator: return outside function")
	// ErrNoReturn reports a function body that finished without returning.
	ErrNoReturn = errors.New("elaborator: function did not return")
)
