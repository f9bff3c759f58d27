package ringbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stampedInt struct {
	ts int64
	v  int
}

func (s stampedInt) Stamp() int64 { return s.ts }

func TestBuffer_PanicsOnInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { New[stampedInt](0) })
	assert.Panics(t, func() { New[stampedInt](-1) })
}

func TestBuffer_LenBound(t *testing.T) {
	// invariant: for any push sequence of length L on capacity N,
	// len ∈ [0, N-1] and TotalWritten == L.
	const n = 8
	b := New[stampedInt](n)
	assert.Equal(t, n-1, b.Cap())

	for i := 0; i < 100; i++ {
		b.Push(stampedInt{ts: int64(i), v: i})
		require.LessOrEqual(t, b.Len(), n-1)
		require.GreaterOrEqual(t, b.Len(), 0)
	}
	assert.EqualValues(t, 100, b.TotalWritten())
	assert.Equal(t, n-1, b.Len())
}

func TestBuffer_Recency(t *testing.T) {
	b := New[stampedInt](10)
	for i := 1; i <= 5; i++ {
		b.Push(stampedInt{ts: int64(i), v: i})
	}

	last := b.ReadLast(3)
	require.Len(t, last, 3)
	assert.Equal(t, []int{5, 4, 3}, valuesOf(last))

	all := b.ReadLast(100) // more than Len()
	assert.Len(t, all, 5)
	assert.Equal(t, []int{5, 4, 3, 2, 1}, valuesOf(all))
}

func TestBuffer_OverwriteOldest(t *testing.T) {
	b := New[stampedInt](4) // 3 usable slots
	for i := 1; i <= 6; i++ {
		b.Push(stampedInt{ts: int64(i), v: i})
	}
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int{6, 5, 4}, valuesOf(b.ReadLast(3)))
}

func TestBuffer_ReadWindow(t *testing.T) {
	b := New[stampedInt](100)
	for i := int64(1); i <= 10; i++ {
		b.Push(stampedInt{ts: i * 1000, v: int(i)})
	}

	// window covering the last 3.5s at now=10000ms
	got := b.ReadWindow(10000, 3500)
	assert.Equal(t, []int{7, 8, 9, 10}, valuesOf(got)) // oldest-first
}

func TestBuffer_ReadWindow_Empty(t *testing.T) {
	b := New[stampedInt](10)
	assert.Empty(t, b.ReadWindow(0, 1000))
}

func TestBuffer_FillRatio(t *testing.T) {
	b := New[stampedInt](5) // 4 usable
	assert.Equal(t, 0.0, b.FillRatio())
	b.Push(stampedInt{ts: 1})
	b.Push(stampedInt{ts: 2})
	assert.Equal(t, 0.5, b.FillRatio())
}

func valuesOf(s []stampedInt) []int {
	out := make([]int, len(s))
	for i, e := range s {
		out[i] = e.v
	}
	return out
}
