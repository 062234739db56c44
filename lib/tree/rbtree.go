package tree

import (
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/id"
	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/xlog"
)

var treeIDGen = lo.Must(id.MonotonicNonZeroID())

// The counters are atomic because the metrics readers run on their own
// goroutines, the tree structure itself is not.
type rbTreeCounters struct {
	inserts          atomic.Int64
	replaces         atomic.Int64
	removes          atomic.Int64
	rotations        atomic.Int64
	insertRecolors   atomic.Int64
	removeRebalances atomic.Int64
}

type rbTree[K any, E any] struct {
	root           *RBNode[E]
	cmp            infra.KeyComparator[K]
	keyOf          func(E) K
	logger         xlog.XLogger
	counters       rbTreeCounters
	count          atomic.Int64
	id             uint64
	dupPolicy      DuplicatePolicy
	isDesc         bool
	isRmBorrowPred bool
	debugValidate  bool
}

// NewRBTree creates an empty tree ordered by cmp over the keys projected
// from the elements by keyOf.
func NewRBTree[K any, E any](
	cmp infra.KeyComparator[K],
	keyOf func(E) K,
	opts ...RBTreeOpt[K, E],
) (RBTree[K, E], error) {
	if cmp == nil {
		return nil, infra.WrapErrorStack(ErrRBTreeNilComparator)
	}
	if keyOf == nil {
		return nil, infra.WrapErrorStack(ErrRBTreeNilKeyProjection)
	}
	tree := &rbTree[K, E]{
		cmp:       cmp,
		keyOf:     keyOf,
		id:        treeIDGen.Number(),
		dupPolicy: DuplicateReject,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(tree)
	}
	if tree.isDesc {
		tree.cmp = tree.cmp.Reverse()
	}
	if tree.logger == nil {
		tree.logger = xlog.NewNopXLogger()
	}
	return tree, nil
}

// NewOrderedRBTree stores the keys themselves, the key is the element.
func NewOrderedRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K, K]) RBTree[K, K] {
	return lo.Must(NewRBTree[K, K](
		infra.OrderedKeyComparator[K](),
		func(k K) K { return k },
		opts...,
	))
}

func (tree *rbTree[K, E]) ID() uint64 {
	return tree.id
}

func (tree *rbTree[K, E]) Len() int64 {
	return tree.count.Load()
}

func (tree *rbTree[K, E]) Root() *RBNode[E] {
	return tree.root
}

func (tree *rbTree[K, E]) Comparator() infra.KeyComparator[K] {
	return tree.cmp
}

func (tree *rbTree[K, E]) KeyOf(elem E) K {
	return tree.keyOf(elem)
}

func (tree *rbTree[K, E]) DuplicatePolicy() DuplicatePolicy {
	return tree.dupPolicy
}

func (tree *rbTree[K, E]) Height() int {
	return height(tree.root)
}

func height[E any](node *RBNode[E]) int {
	if node == nil {
		return 0
	}
	return 1 + max(height(node.left), height(node.right))
}

func (tree *rbTree[K, E]) Stats() RBTreeStats {
	return RBTreeStats{
		Len:              tree.count.Load(),
		Inserts:          tree.counters.inserts.Load(),
		Replaces:         tree.counters.replaces.Load(),
		Removes:          tree.counters.removes.Load(),
		Rotations:        tree.counters.rotations.Load(),
		InsertRecolors:   tree.counters.insertRecolors.Load(),
		RemoveRebalances: tree.counters.removeRebalances.Load(),
	}
}

func (tree *rbTree[K, E]) keyCompare(k1, k2 K) int64 {
	return infra.Sign(tree.cmp(k1, k2))
}

// precondition reports a contract violation of the caller.
func (tree *rbTree[K, E]) precondition(op string, err error) error {
	es := infra.WrapErrorStack(err)
	tree.logger.ErrorStack(es, "[rbtree] precondition violation",
		zap.String("op", op),
		zap.Uint64("treeID", tree.id),
	)
	return es
}

func (tree *rbTree[K, E]) afterMutation(op string) {
	if !tree.debugValidate {
		return
	}
	if err := Validate[K, E](tree); err != nil {
		es := infra.WrapErrorStack(err)
		tree.logger.ErrorStack(es, "[rbtree] invariants broken",
			zap.String("op", op),
			zap.Uint64("treeID", tree.id),
			zap.Int64("len", tree.count.Load()),
		)
		panic(es)
	}
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.
// The longest path nodes' number is 2 * shortest path nodes' number.

/*
rotate(Left, X), the child on the opposite side of dir takes X's place.

		 |                         |
		 X                         S
		/ \     rotate(Left, X)   / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

rotate(Right, S) is the mirror.

			 |                         |
			 X                         S
			/ \     rotate(Right, S)  / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, E]) rotate(dir RBDirection, p *RBNode[E]) {
	if dir == Root || p == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate without direction or pivot")
	}
	q := p.child(-dir)
	if q == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate pivot without child " + (-dir).String())
	}

	pp, pDir := p.parent, p.Direction()
	p.setChild(-dir, q.child(dir))
	q.setChild(dir, p)

	p.fixLink()
	q.fixLink()

	q.parent = pp
	if pDir == Root {
		tree.root = q
	} else {
		pp.setChild(pDir, q)
	}
	tree.counters.rotations.Add(1)
}

// bstLink descends from the root to the leaf position of n and links n
// there as a red node. The present node with an equal key is returned
// (and n stays unlinked), unless the duplicates are allowed, then the
// equal keys are routed right.
func (tree *rbTree[K, E]) bstLink(n *RBNode[E], allowDup bool) *RBNode[E] {
	key := tree.keyOf(n.elem)
	var p *RBNode[E]
	dir := Root
	for x := tree.root; x != nil; {
		res := tree.keyCompare(key, tree.keyOf(x.elem))
		if /* equal */ res == 0 && !allowDup {
			return x
		}
		p = x
		if /* less */ res < 0 {
			dir, x = Left, x.left
		} else /* greater or equal */ {
			dir, x = Right, x.right
		}
	}

	n.parent, n.left, n.right = p, nil, nil
	n.color = Red
	n.treeID = tree.id
	if p == nil {
		tree.root = n
	} else {
		p.setChild(dir, n)
	}
	return nil
}

func (tree *rbTree[K, E]) Insert(n *RBNode[E]) error {
	if n == nil {
		return tree.precondition("insert", ErrRBTreeNilNode)
	}
	if n.IsLinked() {
		return tree.precondition("insert", ErrRBTreeNodeLinked)
	}
	if tree.dupPolicy == DuplicateReplace {
		old, err := tree.Replace(n)
		if old != nil {
			tree.logger.Debug("[rbtree] insert displaced a node",
				zap.Uint64("treeID", tree.id),
				zap.Int64("len", tree.count.Load()),
			)
		}
		return err
	}

	if present := tree.bstLink(n, tree.dupPolicy == DuplicateAllow); present != nil {
		return tree.precondition("insert", ErrRBTreeDuplicateKey)
	}
	tree.count.Add(1)
	tree.counters.inserts.Add(1)
	tree.insertRebalance(n)
	tree.afterMutation("insert")
	return nil
}

// Replace links n, the present node with an equal key is unlinked and
// returned. n takes over its slot and color, so no rebalance happens.
func (tree *rbTree[K, E]) Replace(n *RBNode[E]) (*RBNode[E], error) {
	if n == nil {
		return nil, tree.precondition("replace", ErrRBTreeNilNode)
	}
	if n.IsLinked() {
		return nil, tree.precondition("replace", ErrRBTreeNodeLinked)
	}

	old := tree.Search(tree.keyOf(n.elem))
	if old == nil {
		tree.bstLink(n, true)
		tree.count.Add(1)
		tree.counters.inserts.Add(1)
		tree.insertRebalance(n)
		tree.afterMutation("replace")
		return nil, nil
	}

	n.parent, n.left, n.right = old.parent, old.left, old.right
	n.color = old.color
	n.treeID = tree.id
	if dir := old.Direction(); dir == Root {
		tree.root = n
	} else {
		old.parent.setChild(dir, n)
	}
	n.fixLink()
	old.reset()
	tree.counters.replaces.Add(1)
	tree.afterMutation("replace")
	return old, nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: X is the root or X's parent P is black, nothing to fix.

im2: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Continue to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to P's direction.
Then P is the new X and enter im4 to fix.

	  [G]                       [G]
	  / \    rotate(Left, P)    / \
	<P> [U]  ==============>  <X> [U]
	  \                       /
	  <X>                   <P>

im4: X is the same direction as parent P.
Rotate G to the opposite direction and swap the colors of P and G.

	    [G]                        <P>               [P]
	    / \    rotate(Right, G)    / \    repaint    / \
	  <P> [U]  ===============>  <X> [G]  ======>  <X> <G>
	  /                                \                 \
	<X>                                [U]               [U]

The root is repainted into black at last.
*/
func (tree *rbTree[K, E]) insertRebalance(x *RBNode[E]) {
	for {
		p := x.parent
		if /* im1 */ p == nil || p.isBlack() {
			break
		}
		g := p.parent
		if g == nil {
			// Red root, repainted below.
			break
		}

		pDir := p.Direction()
		if u := g.child(-pDir); /* im2 */ u.isRed() {
			p.color, u.color = Black, Black
			g.color = Red
			tree.counters.insertRecolors.Add(1)
			x = g
			continue
		}

		if /* im3 */ x.Direction() != pDir {
			tree.rotate(pDir, p)
			x, p = p, x
		}

		/* im4 */
		tree.rotate(-pDir, g)
		p.color, g.color = g.color, p.color
		break
	}
	tree.root.color = Black
}

func (tree *rbTree[K, E]) Search(key K) *RBNode[E] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, tree.keyOf(aux.elem))
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, E]) Get(key K) (E, bool) {
	if n := tree.Search(key); n != nil {
		return n.elem, true
	}
	var e E
	return e, false
}

func (tree *rbTree[K, E]) Contains(key K) bool {
	return tree.Search(key) != nil
}

func (tree *rbTree[K, E]) Min() *RBNode[E] {
	return tree.root.minimum()
}

func (tree *rbTree[K, E]) Max() *RBNode[E] {
	return tree.root.maximum()
}

// Delete unlinks n from the tree. The node and its element are left to
// the caller, only the links and the tree identity are cleared.
func (tree *rbTree[K, E]) Delete(n *RBNode[E]) error {
	if n == nil {
		return tree.precondition("delete", ErrRBTreeNilNode)
	}
	if n.treeID != tree.id {
		return tree.precondition("delete", ErrRBTreeNodeForeign)
	}
	tree.removeNode(n)
	tree.afterMutation("delete")
	return nil
}

// Remove, RemoveMin and RemoveMax report a miss with the plain sentinels,
// a miss is an expected outcome rather than a caller fault.
func (tree *rbTree[K, E]) Remove(key K) (*RBNode[E], error) {
	if tree.count.Load() <= 0 {
		return nil, ErrRBTreeEmpty
	}
	z := tree.Search(key)
	if z == nil {
		return nil, ErrRBTreeNotFound
	}
	tree.removeNode(z)
	tree.afterMutation("remove")
	return z, nil
}

func (tree *rbTree[K, E]) RemoveMin() (*RBNode[E], error) {
	z := tree.Min()
	if z == nil {
		return nil, ErrRBTreeEmpty
	}
	tree.removeNode(z)
	tree.afterMutation("removeMin")
	return z, nil
}

func (tree *rbTree[K, E]) RemoveMax() (*RBNode[E], error) {
	z := tree.Max()
	if z == nil {
		return nil, ErrRBTreeEmpty
	}
	tree.removeNode(z)
	tree.afterMutation("removeMax")
	return z, nil
}

/*
swapNodes exchanges the positions and colors of a and b, b is a's
in-order neighbour inside a's subtree. The elements never move, so the
nodes held by caller are still bound to their own records.

Borrow succ:

	  |                    |
	  A                    B
	 / \                  / \
	L  ..   swap(A, B)   L  ..
	    |   =========>       |
	    P                    P
	   / \                  / \
	  B  ..                A  ..
	   \                    \
	    R                    R
*/
func (tree *rbTree[K, E]) swapNodes(a, b *RBNode[E]) {
	ap, aDir := a.parent, a.Direction()
	al, ar := a.left, a.right
	bp, bDir := b.parent, b.Direction()
	bl, br := b.left, b.right

	b.parent = ap
	if /* adjacent */ bp == a {
		if bDir == Left {
			b.left, b.right = a, ar
		} else {
			b.left, b.right = al, a
		}
	} else {
		b.left, b.right = al, ar
		bp.setChild(bDir, a)
		a.parent = bp
	}
	a.left, a.right = bl, br

	if aDir == Root {
		tree.root = b
	} else {
		ap.setChild(aDir, b)
	}
	a.fixLink()
	b.fixLink()
	a.color, b.color = b.color, a.color
}

/*
r1: Z has left and right children.
Swap Z with its succ (or pred) node structurally, then Z has one child
at most.

r2: Z has one child C. C must be red (See conclusion), splice C into Z's
place and repaint C into black.

r3: Z is the root without child, the tree is empty.

r4: Z is a red leaf, remove directly.

r5: Z is a black leaf. Z stays in place as the double-black position
to rebalance, then unlink it.
*/
func (tree *rbTree[K, E]) removeNode(z *RBNode[E]) {
	if /* r1 */ z.left != nil && z.right != nil {
		var y *RBNode[E]
		if tree.isRmBorrowPred {
			y = z.left.maximum()
		} else {
			y = z.right.minimum()
		}
		tree.swapNodes(z, y)
	}

	c := z.left
	if c == nil {
		c = z.right
	}

	if /* r2 */ c != nil {
		c.parent = z.parent
		if dir := z.Direction(); dir == Root {
			tree.root = c
		} else {
			z.parent.setChild(dir, c)
		}
		c.color = Black
	} else if /* r3 */ z.parent == nil {
		tree.root = nil
	} else {
		if /* r5 */ z.isBlack() {
			tree.removeRebalance(z)
		}
		/* r4 */
		z.parent.setChild(z.Direction(), nil)
	}

	z.reset()
	tree.count.Add(-1)
	tree.counters.removes.Add(1)
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.
X is double-black.

Sc is the near child of the sibling S (same direction as X).
Sd is the far child of the sibling S (opposite direction to X).

rm1: X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
Rotate P to X's direction, repaint S into black, P into red.
Then Sc is the new sibling and enter rm2-rm4.

	  [P]                      <S>               [S]
	  / \    rotate(Left, P)   / \    repaint    / \
	[X] <S>  ==============> [P] [Sd]  ======> <P> [Sd]
	    / \                  / \               / \
	 [Sc] [Sd]             [X] [Sc]          [X] [Sc]

rm2: The sibling S, nephew node Sc and Sd are black.
Repaint S into red. If P is red, repaint P into black and stop.
Otherwise, P is the new double-black position, continue with P.

	  {P}             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: The sibling S is black, Sc is red and Sd is black.
Rotate S to the opposite direction of X, repaint S into red and
Sc into black. Then enter rm4.

	  {P}                        {P}                {P}
	  / \    rotate(Right, S)    / \     repaint    / \
	[X] [S]  ===============>  [X] <Sc>  ======>  [X] [Sc]
	    / \                          \                  \
	  <Sc> [Sd]                      [S]                <S>
	                                   \                  \
	                                   [Sd]               [Sd]

rm4: The sibling S is black and Sd is red.
Rotate P to X's direction, S takes P's color, repaint P and Sd into black.
Stop.

	  {P}                      [S]                {S}
	  / \    rotate(Left, P)   / \     repaint    / \
	[X] [S]  ==============> {P} <Sd>  ======>  [P] [Sd]
	    / \                  / \                / \
	 [Sc] <Sd>             [X] [Sc]           [X] [Sc]

X reaching the root is repainted into black and stop.
*/
func (tree *rbTree[K, E]) removeRebalance(x *RBNode[E]) {
	tree.counters.removeRebalances.Add(1)
	x.color = DoubleBlack
	for !x.isRoot() {
		p, dir := x.parent, x.Direction()
		s := p.child(-dir)
		if s == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] double black node without sibling")
		}

		if /* rm1 */ s.isRed() {
			tree.rotate(dir, p)
			s.color, p.color = Black, Red
			if s = p.child(-dir); s == nil {
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove violate (rm1)")
			}
		}

		sc, sd := s.child(dir), s.child(-dir)
		if /* rm2 */ sc.isBlack() && sd.isBlack() {
			s.color = Red
			x.color = Black
			if p.isRed() {
				p.color = Black
				return
			}
			x = p
			x.color = DoubleBlack
			continue
		}

		if /* rm3 */ sd.isBlack() {
			tree.rotate(-dir, s)
			sc.color, s.color = Black, Red
			s, sd = sc, s
		}

		/* rm4 */
		tree.rotate(dir, p)
		s.color = p.color
		p.color, sd.color = Black, Black
		x.color = Black
		return
	}
	x.color = Black
}

// Foreach is the in-order DFS, it stops when action returns false.
func (tree *rbTree[K, E]) Foreach(action func(idx int64, color RBColor, elem E) bool) {
	size := tree.count.Load()
	aux := tree.root
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*RBNode[E], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.elem) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// Release unlinks all nodes, the tree is empty and reusable after it.
func (tree *rbTree[K, E]) Release() {
	aux := tree.root
	tree.root = nil
	tree.count.Store(0)
	if aux == nil {
		return
	}

	stack := make([]*RBNode[E], 0, 32)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.reset()
	}
}
