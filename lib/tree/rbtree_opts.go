package tree

import (
	"github.com/benz9527/xrbtree/xlog"
)

type RBTreeOpt[K any, E any] func(*rbTree[K, E])

// WithRBTreeDesc reverses the comparator, the traversal is descending.
func WithRBTreeDesc[K any, E any]() RBTreeOpt[K, E] {
	return func(tree *rbTree[K, E]) {
		tree.isDesc = true
	}
}

// WithRBTreeRemoveBorrowPred removes a node with two children by its
// predecessor instead of the default successor.
func WithRBTreeRemoveBorrowPred[K any, E any]() RBTreeOpt[K, E] {
	return func(tree *rbTree[K, E]) {
		tree.isRmBorrowPred = true
	}
}

func WithRBTreeDuplicatePolicy[K any, E any](policy DuplicatePolicy) RBTreeOpt[K, E] {
	return func(tree *rbTree[K, E]) {
		if policy > DuplicateAllow {
			policy = DuplicateReject
		}
		tree.dupPolicy = policy
	}
}

func WithRBTreeLogger[K any, E any](logger xlog.XLogger) RBTreeOpt[K, E] {
	return func(tree *rbTree[K, E]) {
		if logger != nil {
			tree.logger = logger.Named("rbtree")
		}
	}
}

// WithRBTreeDebugValidate validates all the invariants after every
// mutation, a broken tree is logged and panics. O(n) per mutation.
func WithRBTreeDebugValidate[K any, E any]() RBTreeOpt[K, E] {
	return func(tree *rbTree[K, E]) {
		tree.debugValidate = true
	}
}
