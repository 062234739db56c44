package tree

import (
	"errors"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/xlog"
)

type foo struct {
	key int
}

type bar struct {
	bar       int
	barmapKey foo
	node      RBNode[*bar]
}

func newBar(v, key int) *bar {
	b := &bar{bar: v, barmapKey: foo{key: key}}
	InitRBNode(&b.node, b)
	return b
}

func newBarTree(t *testing.T, opts ...RBTreeOpt[foo, *bar]) RBTree[foo, *bar] {
	tree, err := NewRBTree[foo, *bar](
		func(i, j foo) int64 {
			return int64(i.key - j.key)
		},
		func(b *bar) foo {
			return b.barmapKey
		},
		opts...,
	)
	require.NoError(t, err)
	return tree
}

func TestRBTreeIntrusiveRecords(t *testing.T) {
	tree := newBarTree(t)
	b1, b2, b3 := newBar(10, 1), newBar(20, 2), newBar(30, 3)
	for _, b := range []*bar{b3, b1, b2} {
		require.NoError(t, tree.Insert(&b.node))
		require.True(t, b.node.IsLinked())
	}
	require.NoError(t, Validate(tree))

	n := tree.Search(foo{key: 1})
	require.NotNil(t, n)
	require.Same(t, &b1.node, n)
	require.Same(t, b1, n.Elem())
	require.Equal(t, 10, n.Elem().bar)

	require.Nil(t, tree.Search(foo{key: 4}))
	got, ok := tree.Get(foo{key: 3})
	require.True(t, ok)
	require.Same(t, b3, got)

	require.Equal(t, []foo{{1}, {2}, {3}}, slices.Collect(tree.Keys()))
	require.Equal(t, []int{10, 20, 30}, lo.Map(slices.Collect(tree.All()), func(b *bar, _ int) int {
		return b.bar
	}))

	// Root has two children, the records must stay bound to their own nodes.
	require.NoError(t, tree.Delete(&b2.node))
	require.False(t, b2.node.IsLinked())
	require.Same(t, b2, b2.node.Elem())
	require.Same(t, b1, tree.Search(foo{key: 1}).Elem())
	require.Same(t, b3, tree.Search(foo{key: 3}).Elem())
	require.NoError(t, Validate(tree))

	// Records are free to move into another tree after delete.
	other := newBarTree(t)
	require.NoError(t, other.Insert(&b2.node))
	require.ErrorIs(t, tree.Delete(&b2.node), ErrRBTreeNodeForeign)
	require.NotEqual(t, tree.ID(), other.ID())
}

func TestRBTreeDuplicatePolicy(t *testing.T) {
	t.Run("reject", func(tt *testing.T) {
		tree := newBarTree(tt)
		first, dup := newBar(1, 7), newBar(2, 7)
		require.NoError(tt, tree.Insert(&first.node))
		err := tree.Insert(&dup.node)
		require.ErrorIs(tt, err, ErrRBTreeDuplicateKey)
		require.False(tt, dup.node.IsLinked())
		require.Equal(tt, int64(1), tree.Len())
		require.Same(tt, first, tree.Search(foo{key: 7}).Elem())
	})
	t.Run("replace", func(tt *testing.T) {
		tree := newBarTree(tt,
			WithRBTreeDuplicatePolicy[foo, *bar](DuplicateReplace),
			WithRBTreeLogger[foo, *bar](xlog.NewXLogger(
				xlog.WithXLoggerWriter(xlog.StdErr),
				xlog.WithXLoggerLevel(xlog.LogLevelDebug),
			)),
		)
		require.Equal(tt, DuplicateReplace, tree.DuplicatePolicy())
		bars := lo.Map(lo.Range(7), func(i int, _ int) *bar {
			return newBar(i, i)
		})
		for _, b := range bars {
			require.NoError(tt, tree.Insert(&b.node))
		}
		oldRoot := tree.Root()
		color := oldRoot.Color()
		key := tree.KeyOf(oldRoot.Elem())

		replacement := newBar(100, key.key)
		old, err := tree.Replace(&replacement.node)
		require.NoError(tt, err)
		require.Same(tt, oldRoot, old)
		require.False(tt, old.IsLinked())
		require.Same(tt, &replacement.node, tree.Root())
		require.Equal(tt, color, tree.Root().Color())
		require.Equal(tt, int64(7), tree.Len())
		require.Equal(tt, 100, tree.Search(key).Elem().bar)
		require.NoError(tt, Validate(tree))

		// Insert replaces too under this policy.
		leafReplacement := newBar(200, 0)
		require.NoError(tt, tree.Insert(&leafReplacement.node))
		require.False(tt, bars[0].node.IsLinked())
		require.Equal(tt, 200, tree.Min().Elem().bar)

		// A missing key is inserted.
		fresh := newBar(300, 42)
		old, err = tree.Replace(&fresh.node)
		require.NoError(tt, err)
		require.Nil(tt, old)
		require.Equal(tt, int64(8), tree.Len())
		require.NoError(tt, Validate(tree))

		stats := tree.Stats()
		require.Equal(tt, int64(2), stats.Replaces)
		require.Equal(tt, int64(8), stats.Inserts)
	})
	t.Run("allow", func(tt *testing.T) {
		tree := NewOrderedRBTree[int](WithRBTreeDuplicatePolicy[int, int](DuplicateAllow))
		insertKeys(tt, tree, 5, 3, 5, 8, 5, 3, 5)
		require.Equal(tt, int64(7), tree.Len())
		require.Equal(tt, []int{3, 3, 5, 5, 5, 5, 8}, slices.Collect(tree.All()))
		require.NoError(tt, Validate(tree))

		for _, expected := range []int64{6, 5, 4, 3} {
			_, err := tree.Remove(5)
			require.NoError(tt, err)
			require.Equal(tt, expected, tree.Len())
			require.NoError(tt, Validate(tree))
		}
		require.False(tt, tree.Contains(5))
		require.Equal(tt, []int{3, 3, 8}, slices.Collect(tree.All()))
	})
	t.Run("unknown falls back to reject", func(tt *testing.T) {
		tree := NewOrderedRBTree[int](WithRBTreeDuplicatePolicy[int, int](DuplicatePolicy(9)))
		require.Equal(tt, DuplicateReject, tree.DuplicatePolicy())
	})
}

func TestRBTreeDescAndIterators(t *testing.T) {
	keys := lo.Shuffle(lo.Range(64))
	asc := NewOrderedRBTree[int]()
	desc := NewOrderedRBTree[int](WithRBTreeDesc[int, int]())
	insertKeys(t, asc, keys...)
	insertKeys(t, desc, keys...)
	require.NoError(t, Validate(asc))
	require.NoError(t, Validate(desc))

	ascending := lo.Range(64)
	descending := lo.Reverse(lo.Range(64))
	require.Equal(t, ascending, slices.Collect(asc.All()))
	require.Equal(t, descending, slices.Collect(asc.Backward()))
	require.Equal(t, descending, slices.Collect(desc.All()))
	require.Equal(t, ascending, slices.Collect(desc.Backward()))
	require.Equal(t, 63, desc.Min().Elem())
	require.Equal(t, 0, desc.Max().Elem())

	// Restartable and stoppable.
	require.Equal(t, ascending, slices.Collect(asc.All()))
	firsts := make([]int, 0, 3)
	for k := range asc.Keys() {
		if len(firsts) == 3 {
			break
		}
		firsts = append(firsts, k)
	}
	require.Equal(t, []int{0, 1, 2}, firsts)

	visited := 0
	asc.Foreach(func(idx int64, color RBColor, elem int) bool {
		require.Equal(t, int(idx), elem)
		visited++
		return idx < 9
	})
	require.Equal(t, 10, visited)

	// In-order neighbours.
	walked := make([]int, 0, 64)
	for n := asc.Max(); n != nil; n = n.Prev() {
		walked = append(walked, n.Elem())
	}
	require.Equal(t, descending, walked)
	require.Equal(t, 33, asc.Search(32).Next().Elem())
	require.Equal(t, 31, asc.Search(32).Prev().Elem())
	require.Nil(t, asc.Max().Next())
	require.Nil(t, asc.Min().Prev())

	empty := NewOrderedRBTree[int]()
	require.Empty(t, slices.Collect(empty.All()))
	require.Empty(t, slices.Collect(empty.Backward()))
	require.Nil(t, empty.Min())
	require.Nil(t, empty.Max())
	require.Equal(t, 0, empty.Height())
	empty.Foreach(func(int64, RBColor, int) bool {
		require.Fail(t, "empty tree has nothing to visit")
		return false
	})
}

func TestRBTreePreconditions(t *testing.T) {
	_, err := NewRBTree[int, int](nil, func(i int) int { return i })
	require.ErrorIs(t, err, ErrRBTreeNilComparator)
	_, err = NewRBTree[int, int](infra.OrderedKeyComparator[int](), nil)
	require.ErrorIs(t, err, ErrRBTreeNilKeyProjection)

	tree := NewOrderedRBTree[int](WithRBTreeLogger[int, int](
		xlog.NewXLogger(xlog.WithXLoggerWriter(xlog.StdErr), xlog.WithXLoggerLevel(xlog.LogLevelError)),
	))
	other := NewOrderedRBTree[int]()

	err = tree.Insert(nil)
	require.ErrorIs(t, err, ErrRBTreeNilNode)
	var es infra.ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())

	_, err = tree.Replace(nil)
	require.ErrorIs(t, err, ErrRBTreeNilNode)
	require.ErrorIs(t, tree.Delete(nil), ErrRBTreeNilNode)

	n := NewRBNode(1)
	require.NoError(t, tree.Insert(n))
	require.ErrorIs(t, tree.Insert(n), ErrRBTreeNodeLinked)
	require.ErrorIs(t, other.Insert(n), ErrRBTreeNodeLinked)
	_, err = other.Replace(n)
	require.ErrorIs(t, err, ErrRBTreeNodeLinked)
	require.ErrorIs(t, other.Delete(n), ErrRBTreeNodeForeign)
	require.ErrorIs(t, tree.Delete(NewRBNode(1)), ErrRBTreeNodeForeign)
	require.Equal(t, int64(1), tree.Len())
	require.Equal(t, int64(0), other.Len())

	require.Panics(t, func() {
		InitRBNode(n, 2)
	})
	require.NoError(t, tree.Delete(n))
	require.Equal(t, 2, InitRBNode(n, 2).Elem())

	_, err = other.Remove(1)
	require.ErrorIs(t, err, ErrRBTreeEmpty)
	_, err = other.RemoveMax()
	require.ErrorIs(t, err, ErrRBTreeEmpty)
	require.Equal(t, ErrRBTreeEmpty, err)
	require.NoError(t, tree.Insert(NewRBNode(7)))
	_, err = tree.Remove(42)
	require.Equal(t, ErrRBTreeNotFound, err)
	var miss infra.ErrorStack
	require.False(t, errors.As(err, &miss))
}

func TestRBTreeDebugValidatePanics(t *testing.T) {
	tree := NewOrderedRBTree[int](WithRBTreeDebugValidate[int, int]())
	insertKeys(t, tree, lo.Range(16)...)
	// Break the black depth of the minimum leaf.
	tree.Min().color = DoubleBlack
	require.Panics(t, func() {
		_ = tree.Insert(NewRBNode(100))
	})
}

func TestRBTreeStats(t *testing.T) {
	tree := NewOrderedRBTree[int]()
	insertKeys(t, tree, lo.Range(100)...)
	for i := 0; i < 40; i++ {
		_, err := tree.Remove(i * 2)
		require.NoError(t, err)
	}
	stats := tree.Stats()
	require.Equal(t, int64(60), stats.Len)
	require.Equal(t, int64(100), stats.Inserts)
	require.Equal(t, int64(40), stats.Removes)
	require.Equal(t, int64(0), stats.Replaces)
	require.Positive(t, stats.Rotations)
	require.Positive(t, stats.InsertRecolors)
	require.Positive(t, stats.RemoveRebalances)

	tree.Release()
	require.Equal(t, int64(0), tree.Stats().Len)
	require.Equal(t, int64(100), tree.Stats().Inserts)
}
