package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
// NaN breaks the total order, never store it as a key.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// KeyComparator is the three-way ordering of tree keys.
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return > 0), turn to right part.
//  3. i < j (return < 0), turn to left part.
//
// It must be total and must return the same result for the same
// pair of keys while any of them stays inside a tree.
type KeyComparator[K any] func(i, j K) int64

// OrderedKeyCompare is the natural ascending order of OrderedKey.
func OrderedKeyCompare[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// Reverse inverts the comparator, the results are normalized to -1, 0, 1.
func (cmp KeyComparator[K]) Reverse() KeyComparator[K] {
	return func(i, j K) int64 {
		return -Sign(cmp(i, j))
	}
}

// Sign normalizes a comparator result to -1, 0 or 1.
func Sign(res int64) int64 {
	if res < 0 {
		return -1
	} else if res > 0 {
		return 1
	}
	return 0
}

// OrderedKeyComparator builds the ascending comparator of OrderedKey.
func OrderedKeyComparator[K OrderedKey]() KeyComparator[K] {
	return OrderedKeyCompare[K]
}
