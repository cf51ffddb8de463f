package runtime

import "fmt"

// SignalTree is a declared signal or a fixed-shape nest of signals. Leaf
// nodes carry circuit signal ids.
type SignalTree struct {
	ID    int
	Elems []*SignalTree
}

// NewSignalTree builds a tree of the given shape, allocating leaf ids in
// row-major order through alloc. The suffix passed to alloc is the bracketed
// index path of the leaf ("" for a scalar).
func NewSignalTree(dims []int, alloc func(suffix string) int) *SignalTree {
	return newSignalTree(dims, "", alloc)
}

func newSignalTree(dims []int, suffix string, alloc func(suffix string) int) *SignalTree {
	if len(dims) == 0 {
		return &SignalTree{ID: alloc(suffix)}
	}
	t := &SignalTree{ID: -1, Elems: make([]*SignalTree, dims[0])}
	for i := range t.Elems {
		t.Elems[i] = newSignalTree(dims[1:], fmt.Sprintf("%s[%d]", suffix, i), alloc)
	}
	return t
}

// At descends along path and returns the reached subtree.
func (t *SignalTree) At(path []int) (*SignalTree, error) {
	for _, i := range path {
		if t.Elems == nil {
			return nil, ErrNotAnArray
		}
		if i < 0 || i >= len(t.Elems) {
			return nil, fmt.Errorf("index %d of %d: %w", i, len(t.Elems), ErrIndexOutOfBounds)
		}
		t = t.Elems[i]
	}
	return t, nil
}

// Leaf returns the signal id at path, which must reach a scalar.
func (t *SignalTree) Leaf(path []int) (int, error) {
	sub, err := t.At(path)
	if err != nil {
		return 0, err
	}
	if sub.Elems != nil {
		return 0, ErrNotAValue
	}
	return sub.ID, nil
}

// Value returns the tree as a Signal or nested Array value.
func (t *SignalTree) Value() Value {
	if t.Elems == nil {
		return Signal{ID: t.ID}
	}
	arr := Array{Elems: make([]Value, len(t.Elems))}
	for i, e := range t.Elems {
		arr.Elems[i] = e.Value()
	}
	return arr
}

// Leaves appends the leaf ids in row-major order.
func (t *SignalTree) Leaves(dst []int) []int {
	if t.Elems == nil {
		return append(dst, t.ID)
	}
	for _, e := range t.Elems {
		dst = e.Leaves(dst)
	}
	return dst
}

// varNode is a declared variable cell or a fixed-shape nest of cells. A
// scalar cell may itself hold an Array value when the shape was decided by
// first assignment.
type varNode struct {
	val   Value // nil when unset
	elems []*varNode
}

func newVarNode(dims []int) *varNode {
	if len(dims) == 0 {
		return &varNode{}
	}
	n := &varNode{elems: make([]*varNode, dims[0])}
	for i := range n.elems {
		n.elems[i] = newVarNode(dims[1:])
	}
	return n
}

// set assigns v at path. When the path extends past the declared shape it
// indexes into an Array value held by the reached cell.
func (n *varNode) set(path []int, v Value) error {
	i := 0
	for ; i < len(path) && n.elems != nil; i++ {
		if path[i] < 0 || path[i] >= len(n.elems) {
			return fmt.Errorf("index %d of %d: %w", path[i], len(n.elems), ErrIndexOutOfBounds)
		}
		n = n.elems[path[i]]
	}
	if i == len(path) {
		n.val = v
		return nil
	}
	// remaining path indexes into a held Array value
	if n.val == nil {
		return ErrUnset
	}
	return setIndexValue(&n.val, path[i:], v)
}

func setIndexValue(slot *Value, path []int, v Value) error {
	if len(path) == 0 {
		*slot = v
		return nil
	}
	arr, ok := (*slot).(Array)
	if !ok {
		return ErrNotAnArray
	}
	if path[0] < 0 || path[0] >= len(arr.Elems) {
		return fmt.Errorf("index %d of %d: %w", path[0], len(arr.Elems), ErrIndexOutOfBounds)
	}
	return setIndexValue(&arr.Elems[path[0]], path[1:], v)
}

// get reads the value at path, assembling an Array for partial paths.
func (n *varNode) get(path []int) (Value, error) {
	i := 0
	for ; i < len(path) && n.elems != nil; i++ {
		if path[i] < 0 || path[i] >= len(n.elems) {
			return nil, fmt.Errorf("index %d of %d: %w", path[i], len(n.elems), ErrIndexOutOfBounds)
		}
		n = n.elems[path[i]]
	}
	if n.elems != nil {
		return n.assemble()
	}
	if n.val == nil {
		return nil, ErrUnset
	}
	return IndexValue(n.val, path[i:])
}

func (n *varNode) assemble() (Value, error) {
	if n.elems == nil {
		if n.val == nil {
			return nil, ErrUnset
		}
		return n.val, nil
	}
	arr := Array{Elems: make([]Value, len(n.elems))}
	for i, e := range n.elems {
		v, err := e.assemble()
		if err != nil {
			return nil, err
		}
		arr.Elems[i] = v
	}
	return arr, nil
}
