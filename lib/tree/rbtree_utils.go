package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/lib/infra"
)

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal, stops at the first error.
func inorderWalk[E any](root *RBNode[E], fn func(node *RBNode[E]) error) error {
	if root == nil {
		return nil
	}
	stack := make([]*RBNode[E], 0, 32)
	defer func() {
		clear(stack)
	}()

	aux := root
	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		if err := fn(aux); err != nil {
			return err
		}
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
	return nil
}

func RedViolationValidate[K any, E any](tree RBTree[K, E]) error {
	return inorderWalk(tree.Root(), func(node *RBNode[E]) error {
		if node.isRed() && (node.left.isRed() || node.right.isRed()) {
			return fmt.Errorf("%w: red node %v with red child", ErrRBTreeRedViolation, tree.KeyOf(node.elem))
		}
		return nil
	})
}

// BFS traversal to load all nodes owning a nil child.
func bfsLeaves[E any](root *RBNode[E]) []*RBNode[E] {
	if root == nil {
		return nil
	}

	leaves := make([]*RBNode[E], 0, 16)
	queue := make([]*RBNode[E], 0, 16)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, root)

	for len(queue) > 0 {
		aux := queue[0]
		l, r := aux.left, aux.right
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

func blackDepthTo[E any](target, to *RBNode[E]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.parent {
		if aux.isBlack() {
			depth++
		}
	}
	return depth
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K any, E any](tree RBTree[K, E]) error {
	root := tree.Root()
	leaves := bfsLeaves(root)
	if len(leaves) == 0 {
		return nil
	}

	blackDepth := blackDepthTo(leaves[0], root)
	for i := 1; i < len(leaves); i++ {
		if d := blackDepthTo(leaves[i], root); d != blackDepth {
			return fmt.Errorf("%w: black depth %d and %d", ErrRBTreeBlackViolation, blackDepth, d)
		}
	}
	return nil
}

func RootColorValidate[K any, E any](tree RBTree[K, E]) error {
	if root := tree.Root(); root != nil && root.color != Black {
		return fmt.Errorf("%w: root is %s", ErrRBTreeRootViolation, root.color)
	}
	return nil
}

// ColorValidate checks that no transient color is left behind.
func ColorValidate[K any, E any](tree RBTree[K, E]) error {
	return inorderWalk(tree.Root(), func(node *RBNode[E]) error {
		if node.color != Black && node.color != Red {
			return fmt.Errorf("%w: %s", ErrRBTreeColorViolation, node.color)
		}
		return nil
	})
}

// ParentLinkValidate checks that the parent links are the inverse of
// the child links and all nodes are stamped by the tree.
func ParentLinkValidate[K any, E any](tree RBTree[K, E]) error {
	root := tree.Root()
	if root != nil && root.parent != nil {
		return fmt.Errorf("%w: root with parent", ErrRBTreeLinkViolation)
	}
	id := tree.ID()
	return inorderWalk(root, func(node *RBNode[E]) error {
		if node.treeID != id {
			return fmt.Errorf("%w: node of tree %d inside tree %d", ErrRBTreeLinkViolation, node.treeID, id)
		}
		if (node.left != nil && node.left.parent != node) ||
			(node.right != nil && node.right.parent != node) {
			return fmt.Errorf("%w: child does not link back", ErrRBTreeLinkViolation)
		}
		return nil
	})
}

// OrderValidate checks the in-order keys are strictly ascending, or
// non-descending when the duplicates are allowed.
func OrderValidate[K any, E any](tree RBTree[K, E]) error {
	var (
		prev    *RBNode[E]
		prevKey K
		idx     int64
	)
	cmp, multi := tree.Comparator(), tree.DuplicatePolicy() == DuplicateAllow
	return inorderWalk(tree.Root(), func(node *RBNode[E]) error {
		key := tree.KeyOf(node.elem)
		if prev != nil {
			res := infra.Sign(cmp(prevKey, key))
			if res > 0 || (res == 0 && !multi) {
				return fmt.Errorf("%w: index %d key %v after %v", ErrRBTreeOrderViolation, idx, key, prevKey)
			}
		}
		prev, prevKey = node, key
		idx++
		return nil
	})
}

func SizeValidate[K any, E any](tree RBTree[K, E]) error {
	n := int64(0)
	_ = inorderWalk(tree.Root(), func(*RBNode[E]) error {
		n++
		return nil
	})
	if n != tree.Len() {
		return fmt.Errorf("%w: %d nodes, length %d", ErrRBTreeSizeViolation, n, tree.Len())
	}
	return nil
}

// Validate runs all the validators and combines their errors.
func Validate[K any, E any](tree RBTree[K, E]) error {
	return multierr.Combine(
		RootColorValidate(tree),
		ColorValidate(tree),
		RedViolationValidate(tree),
		BlackViolationValidate(tree),
		ParentLinkValidate(tree),
		OrderValidate(tree),
		SizeValidate(tree),
	)
}
