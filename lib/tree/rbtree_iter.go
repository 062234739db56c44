package tree

import "iter"

// All yields the elements in ascending comparator order.
// The tree must not be mutated while iterating.
func (tree *rbTree[K, E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		for aux := tree.Min(); aux != nil; aux = aux.Next() {
			if !yield(aux.elem) {
				return
			}
		}
	}
}

func (tree *rbTree[K, E]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for aux := tree.Min(); aux != nil; aux = aux.Next() {
			if !yield(tree.keyOf(aux.elem)) {
				return
			}
		}
	}
}

// Backward yields the elements in descending comparator order.
func (tree *rbTree[K, E]) Backward() iter.Seq[E] {
	return func(yield func(E) bool) {
		for aux := tree.Max(); aux != nil; aux = aux.Prev() {
			if !yield(aux.elem) {
				return
			}
		}
	}
}
