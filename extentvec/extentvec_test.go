package extentvec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarklab/datadist/errs"
)

func requireParity(t *testing.T, v *Vector[int], ref []int) {
	t.Helper()

	require.Equal(t, len(ref), v.Len())
	require.LessOrEqual(t, v.Len(), v.Cap())
	for i, want := range ref {
		require.Equal(t, want, *v.Get(i), "index %d", i)
	}
}

func TestPushBackAndAccess(t *testing.T) {
	v := New[int]()

	for i := 0; i < 100; i++ {
		p := v.PushBack(i)
		require.Equal(t, i, *p)
	}

	require.Equal(t, 100, v.Len())
	for i := 0; i < 100; i++ {
		p, err := v.At(i)
		require.NoError(t, err)
		require.Equal(t, i, *p)
	}

	_, err := v.At(100)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = v.At(-1)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestAddressStability(t *testing.T) {
	v := New[int]()

	var addrs []*int
	for i := 0; i < 8; i++ {
		addrs = append(addrs, v.PushBack(i))
	}

	// grow far past the first extent and reshape the extent list
	for i := 8; i < 50000; i++ {
		v.PushBack(i)
	}
	v.Reserve(100000)
	v.ShrinkToFit()

	for i, p := range addrs {
		require.Equal(t, i, *p)
		require.Same(t, p, v.Get(i))
	}
}

func TestPopBackUnderflow(t *testing.T) {
	v := New[int]()
	require.ErrorIs(t, v.PopBack(), errs.ErrUnderflow)

	v.PushBack(1)
	require.NoError(t, v.PopBack())
	require.Equal(t, 0, v.Len())
	require.ErrorIs(t, v.PopBack(), errs.ErrUnderflow)
}

func TestReserveExact(t *testing.T) {
	v := New[int]()
	for i := 0; i < 10; i++ {
		v.PushBack(i)
	}

	v.Reserve(v.Cap() + 1000)
	cap1 := v.Cap()
	require.GreaterOrEqual(t, cap1, v.Len()+1000)

	// reserving below the capacity is a no-op
	v.Reserve(1)
	require.Equal(t, cap1, v.Cap())

	requireParity(t, v, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
}

func TestShrinkToFit(t *testing.T) {
	v := New[int]()
	for i := 0; i < 10; i++ {
		v.PushBack(i)
	}
	v.Reserve(v.Cap() + 100000)

	extents := v.ExtentCount()
	v.ShrinkToFit()
	require.Less(t, v.ExtentCount(), extents)
	requireParity(t, v, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	// push after shrink still works
	v.PushBack(10)
	require.Equal(t, 10, *v.Get(10))
}

func TestInsertMiddle(t *testing.T) {
	v := New[int]()
	ref := []int{}
	for i := 0; i < 10; i++ {
		v.PushBack(i)
		ref = append(ref, i)
	}

	require.NoError(t, v.Insert(3, 2, 99))
	ref = append(ref[:3], append([]int{99, 99}, ref[3:]...)...)
	requireParity(t, v, ref)

	require.NoError(t, v.Emplace(0, -1))
	ref = append([]int{-1}, ref...)
	requireParity(t, v, ref)

	// insertion at the end appends
	require.NoError(t, v.Insert(v.Len(), 1, 1000))
	ref = append(ref, 1000)
	requireParity(t, v, ref)

	require.ErrorIs(t, v.Insert(v.Len()+1, 1, 0), errs.ErrOutOfRange)
}

func TestResize(t *testing.T) {
	v := New[int]()
	v.Resize(5)
	requireParity(t, v, []int{0, 0, 0, 0, 0})

	v.ResizeWith(8, 7)
	requireParity(t, v, []int{0, 0, 0, 0, 0, 7, 7, 7})

	v.Resize(2)
	requireParity(t, v, []int{0, 0})

	v.Resize(0)
	require.Equal(t, 0, v.Len())
}

// TestReferenceParity drives a random operation sequence against the vector
// and a plain slice and requires identical observable state after every step.
func TestReferenceParity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	v := New[int]()
	ref := []int{}

	for step := 0; step < 3000; step++ {
		switch op := rng.Intn(10); op {
		case 0, 1, 2, 3: // push_back
			n := rng.Intn(100)
			v.PushBack(n)
			ref = append(ref, n)
		case 4: // emplace_back
			p := v.EmplaceBack()
			*p = step
			ref = append(ref, step)
		case 5: // pop_back
			if len(ref) > 0 {
				require.NoError(t, v.PopBack())
				ref = ref[:len(ref)-1]
			}
		case 6: // insert
			pos := 0
			if len(ref) > 0 {
				pos = rng.Intn(len(ref) + 1)
			}
			n := rng.Intn(3) + 1
			val := rng.Intn(100)
			require.NoError(t, v.Insert(pos, n, val))
			tail := append([]int{}, ref[pos:]...)
			ref = ref[:pos]
			for i := 0; i < n; i++ {
				ref = append(ref, val)
			}
			ref = append(ref, tail...)
		case 7: // resize
			n := rng.Intn(200)
			v.Resize(n)
			for len(ref) < n {
				ref = append(ref, 0)
			}
			ref = ref[:n]
		case 8: // reserve / shrink_to_fit
			if rng.Intn(2) == 0 {
				v.Reserve(len(ref) + rng.Intn(500))
			} else {
				v.ShrinkToFit()
			}
		case 9: // clear, rarely
			if rng.Intn(10) == 0 {
				v.Clear()
				ref = ref[:0]
			}
		}

		require.Equal(t, len(ref), v.Len(), "step %d", step)
		for i := range ref {
			require.Equal(t, ref[i], *v.Get(i), "step %d index %d", step, i)
		}
	}
}

func TestForEach(t *testing.T) {
	v := New[int]()
	for i := 0; i < 2000; i++ {
		v.PushBack(i)
	}

	var got []int
	v.ForEach(10, 1500, func(p *int) { got = append(got, *p) })
	require.Len(t, got, 1490)
	require.Equal(t, 10, got[0])
	require.Equal(t, 1499, got[len(got)-1])

	// mutation through the pointer is visible
	v.ForEach(0, v.Len(), func(p *int) { *p++ })
	require.Equal(t, 1, *v.Get(0))

	// out-of-range bounds are clamped
	got = got[:0]
	v.ForEach(-5, 1<<20, func(p *int) { got = append(got, *p) })
	require.Len(t, got, 2000)
}

func TestIteratorArithmetic(t *testing.T) {
	v := New[int]()
	// force several extents: small pushes, then exact reserve, then more
	for i := 0; i < 10; i++ {
		v.PushBack(i)
	}
	v.Reserve(v.Cap() + 3000)
	for i := 10; i < 2500; i++ {
		v.PushBack(i)
	}
	require.Greater(t, v.ExtentCount(), 1)

	it := v.Begin()
	require.True(t, it.Valid())
	require.Equal(t, 0, *it.Value())

	it = it.Add(1234)
	require.Equal(t, 1234, it.Index())
	require.Equal(t, 1234, *it.Value())

	it = it.Sub(1000)
	require.Equal(t, 234, *it.Value())

	require.Equal(t, 235, *it.Next().Value())
	require.Equal(t, 233, *it.Prev().Value())

	end := v.End()
	require.False(t, end.Valid())
	require.Equal(t, v.Len(), end.Index())
	require.Equal(t, v.Len()-234, it.Distance(end))
	require.True(t, it.Less(end))
	require.True(t, it.Equal(v.IteratorAt(234)))

	// walk the full range
	sum := 0
	for cur := v.Begin(); !cur.Equal(end); cur = cur.Next() {
		sum += *cur.Value()
	}
	require.Equal(t, 2500*2499/2, sum)
}

func TestIteratorUnderflowOverflow(t *testing.T) {
	v := New[int]()
	for i := 0; i < 10; i++ {
		v.PushBack(i)
	}

	under := v.Begin().Sub(3)
	require.Equal(t, -3, under.Index())
	require.False(t, under.Valid())

	// arithmetic through the underflow state recovers
	back := under.Add(5)
	require.True(t, back.Valid())
	require.Equal(t, 2, *back.Value())

	over := v.End().Add(v.Cap())
	require.False(t, over.Valid())

	recovered := over.Sub(over.Index())
	require.True(t, recovered.Valid())
	require.Equal(t, 0, *recovered.Value())
}

func TestZeroSizeElements(t *testing.T) {
	v := New[struct{}]()
	for i := 0; i < 100; i++ {
		v.PushBack(struct{}{})
	}
	require.Equal(t, 100, v.Len())
}
