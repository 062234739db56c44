package tree

// RBNode is the intrusive link of a red-black tree. It is embedded into
// the caller's record and carries a back reference to that record, so
// a node returned by the tree always recovers its owner by Elem.
//
//	type record struct {
//		key  int
//		node tree.RBNode[*record]
//	}
//
//	r := &record{key: 1}
//	tree.InitRBNode(&r.node, r)
//
// The parent link is a non-owning back edge, the tree owns the nodes
// top-down only.
type RBNode[E any] struct {
	parent *RBNode[E]
	left   *RBNode[E]
	right  *RBNode[E]
	elem   E
	color  RBColor
	treeID uint64 // 0 means unlinked.
}

// InitRBNode binds the node to its owner element.
// A linked node must be removed from its tree before re-initializing.
func InitRBNode[E any](n *RBNode[E], elem E) *RBNode[E] {
	if n.IsLinked() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] re-init a linked node")
	}
	n.reset()
	n.elem = elem
	return n
}

// NewRBNode allocates a standalone node, it is the way to store plain
// values (non intrusive).
func NewRBNode[E any](elem E) *RBNode[E] {
	return InitRBNode(&RBNode[E]{}, elem)
}

func (node *RBNode[E]) Elem() E {
	return node.elem
}

func (node *RBNode[E]) Color() RBColor {
	return node.color
}

func (node *RBNode[E]) Left() *RBNode[E] {
	if node == nil {
		return nil
	}
	return node.left
}

func (node *RBNode[E]) Right() *RBNode[E] {
	if node == nil {
		return nil
	}
	return node.right
}

func (node *RBNode[E]) Parent() *RBNode[E] {
	if node == nil {
		return nil
	}
	return node.parent
}

func (node *RBNode[E]) IsLinked() bool {
	return node != nil && node.treeID != 0
}

// Next is the in-order successor, nil for the maximum node.
func (node *RBNode[E]) Next() *RBNode[E] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

// Prev is the in-order predecessor, nil for the minimum node.
func (node *RBNode[E]) Prev() *RBNode[E] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// Absent children are black.
func (node *RBNode[E]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *RBNode[E]) isBlack() bool {
	return !node.isRed()
}

func (node *RBNode[E]) isRoot() bool {
	return node != nil && node.parent == nil
}

// Direction is the side of the parent the node hangs on.
func (node *RBNode[E]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.parent == nil {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *RBNode[E]) child(dir RBDirection) *RBNode[E] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] root direction has no child")
}

func (node *RBNode[E]) setChild(dir RBDirection, c *RBNode[E]) {
	switch dir {
	case Left:
		node.left = c
	case Right:
		node.right = c
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] set child to root direction")
	}
}

func (node *RBNode[E]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *RBNode[E]) minimum() *RBNode[E] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *RBNode[E]) maximum() *RBNode[E] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// reset unlinks the node but keeps its owner element.
func (node *RBNode[E]) reset() {
	node.parent, node.left, node.right = nil, nil, nil
	node.color = Black
	node.treeID = 0
}
