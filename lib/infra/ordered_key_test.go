package infra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedKeyCompare(t *testing.T) {
	testcases := []struct {
		name     string
		i, j     float64
		expected int64
	}{
		{"less", 1.0, 1.1, -1},
		{"equal", 2.5, 2.5, 0},
		{"greater", 3.0, -3.0, 1},
		{"inf", math.Inf(1), math.MaxFloat64, 1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.expected, OrderedKeyCompare(tc.i, tc.j))
		})
	}

	require.Equal(t, int64(-1), OrderedKeyCompare("abc", "bar"))
	require.Equal(t, int64(0), OrderedKeyCompare("foo", "foo"))
	require.Equal(t, int64(1), OrderedKeyCompare(uint8('b'), uint8('a')))

	cmp := OrderedKeyComparator[int]()
	require.Equal(t, int64(-1), cmp(4, 7))
	require.Equal(t, int64(1), cmp.Reverse()(4, 7))
}

func TestKeyComparatorReverse(t *testing.T) {
	var cmp KeyComparator[int] = func(i, j int) int64 {
		return int64(i - j)
	}
	desc := cmp.Reverse()
	require.Equal(t, int64(1), desc(1, 100))
	require.Equal(t, int64(-1), desc(100, 1))
	require.Equal(t, int64(0), desc(7, 7))

	// Must not overflow on the most negative comparator result.
	var wide KeyComparator[int64] = func(i, j int64) int64 {
		if i < j {
			return math.MinInt64
		}
		return 0
	}
	require.Equal(t, int64(1), wide.Reverse()(1, 2))
}

func TestSign(t *testing.T) {
	require.Equal(t, int64(-1), Sign(-42))
	require.Equal(t, int64(0), Sign(0))
	require.Equal(t, int64(1), Sign(math.MaxInt64))
}
