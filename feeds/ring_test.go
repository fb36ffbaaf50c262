package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_Push(t *testing.T) {
	size := 10

	ring := NewRing[int](size)

	for i := 0; i < 1000; i++ {
		evicted, ok := ring.Push(i)
		if i > size-1 {
			assert.True(t, ok)
			assert.Equal(t, i-size, evicted)
			assert.Equal(t, size, ring.Len())
			assert.True(t, ring.Full())
		} else {
			assert.False(t, ok)
			assert.Equal(t, i+1, ring.Len())
		}
	}
}

func TestRing_Values(t *testing.T) {
	ring := NewRing[int](3)

	for i := 0; i < 100; i++ {
		ring.Push(i)

		values := ring.Values()
		if i > 1 {
			assert.Equal(t, []int{i - 2, i - 1, i}, values)
		} else {
			assert.Equal(t, i+1, len(values))
		}

		newest, ok := ring.Newest()
		assert.True(t, ok)
		assert.Equal(t, i, newest)
	}
}

func TestRing_Last(t *testing.T) {
	type test struct {
		pushed int
		n      int
		last   []int
	}

	tests := map[string]test{
		"empty": {
			pushed: 0,
			n:      5,
			last:   []int{},
		},
		"fewer-than-asked": {
			pushed: 2,
			n:      5,
			last:   []int{0, 1},
		},
		"wrapped": {
			pushed: 12,
			n:      3,
			last:   []int{9, 10, 11},
		},
		"negative": {
			pushed: 4,
			n:      -1,
			last:   []int{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ring := NewRing[int](5)
			for i := 0; i < tt.pushed; i++ {
				ring.Push(i)
			}
			assert.Equal(t, tt.last, ring.Last(tt.n))
		})
	}
}

func TestRing_Clear(t *testing.T) {
	ring := NewRing[float64](4)
	for i := 0; i < 7; i++ {
		ring.Push(float64(i))
	}

	ring.Clear()

	assert.Equal(t, 0, ring.Len())
	assert.Equal(t, 4, ring.Cap())
	_, ok := ring.Newest()
	assert.False(t, ok)

	ring.Push(42)
	assert.Equal(t, []float64{42}, ring.Values())
}

func TestNewRing_MinCapacity(t *testing.T) {
	ring := NewRing[string](0)
	assert.Equal(t, 1, ring.Cap())

	ring.Push("a")
	evicted, ok := ring.Push("b")
	assert.True(t, ok)
	assert.Equal(t, "a", evicted)
}
