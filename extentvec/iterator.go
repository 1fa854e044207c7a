package extentvec

// Iterator is a random-access position in a Vector. It carries its extent
// index, the element index within that extent, and the logical index used
// for comparisons.
//
// Underflow (logical < 0) and overflow (logical >= capacity) are
// representable states an iterator may pass through during arithmetic;
// dereference is only legal for logical indexes in [0, Len()).
type Iterator[T any] struct {
	v       *Vector[T]
	ext     int
	elem    int
	logical int
}

// Begin returns an iterator at the first element.
func (v *Vector[T]) Begin() Iterator[T] {
	return Iterator[T]{v: v}
}

// End returns the past-the-end iterator.
func (v *Vector[T]) End() Iterator[T] {
	return v.Begin().Add(v.size)
}

// IteratorAt returns an iterator at logical index i, which may be an
// underflow or overflow position.
func (v *Vector[T]) IteratorAt(i int) Iterator[T] {
	return v.Begin().Add(i)
}

// Index returns the logical index of the iterator.
func (it Iterator[T]) Index() int {
	return it.logical
}

// Valid reports whether the iterator may be dereferenced.
func (it Iterator[T]) Valid() bool {
	return it.logical >= 0 && it.logical < it.v.size
}

// Value returns the address of the element at the iterator. The iterator
// must be Valid.
func (it Iterator[T]) Value() *T {
	return &it.v.extents[it.ext].data[it.elem]
}

// Add advances the iterator by n (which may be negative), stepping across
// extent boundaries in O(extents crossed).
func (it Iterator[T]) Add(n int) Iterator[T] {
	out := it
	target := it.logical + n
	out.logical = target

	// park out-of-range positions at the boundary extents
	if target < 0 {
		out.ext = 0
		out.elem = target

		return out
	}
	if target >= it.v.capacity {
		out.ext = len(it.v.extents)
		out.elem = target - it.v.capacity

		return out
	}

	ext, elem := it.ext, it.elem
	if it.logical < 0 || it.logical >= it.v.capacity {
		// re-enter from the front
		ext, elem = 0, target
	} else {
		elem += n
	}

	for elem < 0 {
		ext--
		elem += cap(it.v.extents[ext].data)
	}
	for elem >= cap(it.v.extents[ext].data) {
		elem -= cap(it.v.extents[ext].data)
		ext++
	}

	out.ext = ext
	out.elem = elem

	return out
}

// Sub moves the iterator back by n.
func (it Iterator[T]) Sub(n int) Iterator[T] {
	return it.Add(-n)
}

// Next returns the iterator advanced by one.
func (it Iterator[T]) Next() Iterator[T] {
	return it.Add(1)
}

// Prev returns the iterator moved back by one.
func (it Iterator[T]) Prev() Iterator[T] {
	return it.Add(-1)
}

// Equal compares positions by logical index.
func (it Iterator[T]) Equal(o Iterator[T]) bool {
	return it.logical == o.logical
}

// Less orders positions by logical index.
func (it Iterator[T]) Less(o Iterator[T]) bool {
	return it.logical < o.logical
}

// Distance returns o.Index() - it.Index().
func (it Iterator[T]) Distance(o Iterator[T]) int {
	return o.logical - it.logical
}
