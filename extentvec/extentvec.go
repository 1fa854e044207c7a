// Package extentvec implements a growable sequence whose growth never
// invalidates element addresses.
//
// A Vector is physically an ordered list of contiguous extents. Growing the
// vector allocates a new extent; existing extents are never reallocated, so
// the address of an element is stable from its insertion until it is erased
// or the vector is cleared. Consumers may hold raw pointers across growth.
//
// The element at logical index i resides in the first extent whose
// cumulative capacity exceeds i. Iterators are random access and step
// across extent boundaries in O(extents crossed); see Iterator.
package extentvec

import (
	"unsafe"

	"github.com/quarklab/datadist/errs"
)

// pageSize aligns new extent allocations to whole pages.
const pageSize = 4096

// extent is one contiguous allocation. The backing array of data is never
// reallocated: elements are appended only within the fixed capacity.
type extent[T any] struct {
	data []T
}

// Vector is a stable-address growable sequence of T.
//
// The zero value is an empty vector ready for use. A Vector is not safe for
// concurrent mutation.
type Vector[T any] struct {
	extents  []extent[T]
	size     int
	capacity int
	back     int // index of the extent receiving appends
}

// New creates an empty vector.
func New[T any]() *Vector[T] {
	return &Vector[T]{}
}

// NewWithCapacity creates a vector with room for n elements in one extent.
func NewWithCapacity[T any](n int) *Vector[T] {
	v := &Vector[T]{}
	if n > 0 {
		v.addExtent(n)
	}

	return v
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap returns the total capacity across all extents.
func (v *Vector[T]) Cap() int {
	return v.capacity
}

// ExtentCount returns the number of extents currently allocated.
func (v *Vector[T]) ExtentCount() int {
	return len(v.extents)
}

// addExtent appends a fresh extent with room for n elements.
func (v *Vector[T]) addExtent(n int) {
	v.extents = append(v.extents, extent[T]{data: make([]T, 0, n)})
	v.capacity += n
}

// growSize sizes the next extent for a growth request of req additional
// slots: max(1.5x current capacity, req), rounded up so the extent spans
// whole pages.
func (v *Vector[T]) growSize(req int) int {
	next := v.capacity * 3 / 2
	if next < 2 {
		next = 2
	}
	if next < req {
		next = req
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize > 0 {
		bytes := next * elemSize
		bytes = (bytes + pageSize - 1) / pageSize * pageSize
		next = bytes / elemSize
	}

	return next
}

// locate maps a logical index in [0, capacity) to its extent and offset.
func (v *Vector[T]) locate(i int) (ext, elem int) {
	for e := range v.extents {
		c := cap(v.extents[e].data)
		if i < c {
			return e, i
		}
		i -= c
	}

	return len(v.extents), i
}

// pushSlot appends val and returns the address of the new slot.
func (v *Vector[T]) pushSlot(val T) *T {
	if v.size == v.capacity {
		v.addExtent(v.growSize(1))
	}

	e := &v.extents[v.back]
	for len(e.data) == cap(e.data) {
		v.back++
		e = &v.extents[v.back]
	}

	e.data = append(e.data, val)
	v.size++

	return &e.data[len(e.data)-1]
}

// PushBack appends val and returns the stable address of the new element.
func (v *Vector[T]) PushBack(val T) *T {
	return v.pushSlot(val)
}

// EmplaceBack appends a zero value and returns its stable address for
// in-place construction.
func (v *Vector[T]) EmplaceBack() *T {
	var zero T
	return v.pushSlot(zero)
}

// Get returns the address of the element at logical index i. The index must
// be in [0, Len()).
func (v *Vector[T]) Get(i int) *T {
	ext, elem := v.locate(i)
	return &v.extents[ext].data[elem]
}

// At returns the address of the element at logical index i, or
// errs.ErrOutOfRange when i is at or beyond the size.
func (v *Vector[T]) At(i int) (*T, error) {
	if i < 0 || i >= v.size {
		return nil, errs.ErrOutOfRange
	}

	return v.Get(i), nil
}

// Set overwrites the element at logical index i.
func (v *Vector[T]) Set(i int, val T) error {
	p, err := v.At(i)
	if err != nil {
		return err
	}
	*p = val

	return nil
}

// PopBack removes the last element, or reports errs.ErrUnderflow on an
// empty vector.
func (v *Vector[T]) PopBack() error {
	if v.size == 0 {
		return errs.ErrUnderflow
	}

	ext := v.back
	if ext >= len(v.extents) || len(v.extents[ext].data) == 0 {
		ext--
		for ext >= 0 && len(v.extents[ext].data) == 0 {
			ext--
		}
	}

	e := &v.extents[ext]
	var zero T
	e.data[len(e.data)-1] = zero
	e.data = e.data[:len(e.data)-1]
	v.size--
	v.back = ext

	return nil
}

// Clear removes all elements. Extents are retained; capacity is unchanged.
func (v *Vector[T]) Clear() {
	var zero T
	for e := range v.extents {
		data := v.extents[e].data
		for i := range data {
			data[i] = zero
		}
		v.extents[e].data = data[:0]
	}
	v.size = 0
	v.back = 0
}

// Reserve grows the capacity to at least n when it is below n, allocating
// exactly n - Len() additional slots in one extent. It never shrinks.
func (v *Vector[T]) Reserve(n int) {
	if n <= v.capacity {
		return
	}

	v.addExtent(n - v.size)
}

// ShrinkToFit drops trailing empty extents.
func (v *Vector[T]) ShrinkToFit() {
	last := len(v.extents)
	for last > 0 && len(v.extents[last-1].data) == 0 {
		v.capacity -= cap(v.extents[last-1].data)
		last--
	}
	v.extents = v.extents[:last]

	if v.back >= last {
		v.back = last - 1
		if v.back < 0 {
			v.back = 0
		}
	}
}

// Resize grows with zero values or shrinks to exactly n elements.
func (v *Vector[T]) Resize(n int) {
	var zero T
	v.ResizeWith(n, zero)
}

// ResizeWith grows with copies of val or shrinks to exactly n elements.
func (v *Vector[T]) ResizeWith(n int, val T) {
	for v.size < n {
		v.pushSlot(val)
	}
	for v.size > n {
		// cannot underflow: size > n >= 0
		_ = v.PopBack()
	}
}

// Emplace inserts val before position pos, shifting the suffix right by one.
func (v *Vector[T]) Emplace(pos int, val T) error {
	return v.Insert(pos, 1, val)
}

// Insert inserts n copies of val before position pos. The suffix shifts
// right in place; no element moves across extents by reallocation. The cost
// is O(Len() - pos + n).
func (v *Vector[T]) Insert(pos, n int, val T) error {
	if pos < 0 || pos > v.size {
		return errs.ErrOutOfRange
	}
	if n <= 0 {
		return nil
	}

	// grow the tail with placeholder slots
	oldSize := v.size
	var zero T
	for i := 0; i < n; i++ {
		v.pushSlot(zero)
	}

	// shift the suffix right, back to front
	for i := oldSize - 1; i >= pos; i-- {
		*v.Get(i + n) = *v.Get(i)
	}

	// place the inserted values
	for i := pos; i < pos+n; i++ {
		*v.Get(i) = val
	}

	return nil
}

// ForEach calls fn with the address of every element in [first, last),
// clamped to the valid range. The walk issues pointer-based inner loops
// within each extent; this is the fast iteration path of the container.
func (v *Vector[T]) ForEach(first, last int, fn func(*T)) {
	if first < 0 {
		first = 0
	}
	if last > v.size {
		last = v.size
	}
	if first >= last {
		return
	}

	remaining := last - first
	ext, elem := v.locate(first)
	for remaining > 0 {
		data := v.extents[ext].data
		cnt := len(data) - elem
		if cnt > remaining {
			cnt = remaining
		}

		inner := data[elem : elem+cnt]
		for i := range inner {
			fn(&inner[i])
		}

		remaining -= cnt
		elem = 0
		ext++
	}
}
