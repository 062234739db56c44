package tree

import (
	"errors"
	"iter"
	"strconv"

	"github.com/benz9527/xrbtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
	// DoubleBlack only exists while a removal is rebalancing.
	DoubleBlack
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	case DoubleBlack:
		return "DoubleBlack"
	default:
	}
	return "RBColor(" + strconv.Itoa(int(c)) + ")"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(" + strconv.Itoa(int(d)) + ")"
}

// DuplicatePolicy decides what an insertion does with a key which is
// already present.
type DuplicatePolicy uint8

const (
	// DuplicateReject refuses the new node with ErrRBTreeDuplicateKey.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateReplace links the new node into the slot of the present one,
	// the present one is unlinked. Insert drops the displaced node, call
	// Replace to get it back.
	DuplicateReplace
	// DuplicateAllow keeps both, equal keys are routed to the right subtree.
	DuplicateAllow
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReject:
		return "Reject"
	case DuplicateReplace:
		return "Replace"
	case DuplicateAllow:
		return "Allow"
	default:
	}
	return "DuplicatePolicy(" + strconv.Itoa(int(p)) + ")"
}

var (
	ErrRBTreeNotFound = errors.New("[rbtree] key not found")
	ErrRBTreeEmpty    = errors.New("[rbtree] empty tree")

	ErrRBTreeNilComparator    = errors.New("[rbtree] nil key comparator")
	ErrRBTreeNilKeyProjection = errors.New("[rbtree] nil key projection")
	ErrRBTreeNilNode          = errors.New("[rbtree] nil node")
	ErrRBTreeNodeLinked       = errors.New("[rbtree] node has been linked into a tree")
	ErrRBTreeNodeForeign      = errors.New("[rbtree] node does not belong to the tree")
	ErrRBTreeDuplicateKey     = errors.New("[rbtree] duplicate key")

	ErrRBTreeRedViolation   = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation = errors.New("[rbtree] black violation")
	ErrRBTreeRootViolation  = errors.New("[rbtree] red root")
	ErrRBTreeColorViolation = errors.New("[rbtree] transient color left in tree")
	ErrRBTreeLinkViolation  = errors.New("[rbtree] parent link violation")
	ErrRBTreeOrderViolation = errors.New("[rbtree] order violation")
	ErrRBTreeSizeViolation  = errors.New("[rbtree] size violation")
)

// RBTreeStats is a snapshot of the tree counters. It is safe to be taken
// while another goroutine mutates the tree.
type RBTreeStats struct {
	Len              int64
	Inserts          int64
	Replaces         int64
	Removes          int64
	Rotations        int64
	InsertRecolors   int64
	RemoveRebalances int64
}

// RBTree is an ordered map over caller owned nodes.
// The tree never allocates nodes, the caller embeds an RBNode into its
// own record and hands it to Insert. Delete hands the node back.
//
// It is not goroutine safe, the mutations must be serialized by caller.
type RBTree[K any, E any] interface {
	ID() uint64
	Len() int64
	Root() *RBNode[E]
	Height() int
	Comparator() infra.KeyComparator[K]
	KeyOf(elem E) K
	DuplicatePolicy() DuplicatePolicy

	Insert(n *RBNode[E]) error
	Replace(n *RBNode[E]) (*RBNode[E], error)
	Search(key K) *RBNode[E]
	Get(key K) (E, bool)
	Contains(key K) bool
	Delete(n *RBNode[E]) error
	Remove(key K) (*RBNode[E], error)
	RemoveMin() (*RBNode[E], error)
	RemoveMax() (*RBNode[E], error)
	Min() *RBNode[E]
	Max() *RBNode[E]

	All() iter.Seq[E]
	Keys() iter.Seq[K]
	Backward() iter.Seq[E]
	Foreach(action func(idx int64, color RBColor, elem E) bool)

	Stats() RBTreeStats
	Release()
}
