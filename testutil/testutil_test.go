package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParents(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.Parents(50)

	assert.Len(t, p, 50)
	assert.Equal(t, -1, p[0])

	for i := 1; i < len(p); i++ {
		assert.GreaterOrEqual(t, p[i], 0)
		assert.Less(t, p[i], i)
	}

	rng.Reset()
	assert.Equal(t, p, rng.Parents(50))
	assert.Nil(t, rng.Parents(0))
}

func TestChain(t *testing.T) {
	assert.Equal(t, []int{-1, 0, 1, 2}, Chain(4))
	assert.Equal(t, []int{0, 1, 2, 3}, PreOrder(Chain(4)))
}

func TestPreOrder(t *testing.T) {
	// 0 -> {1, 2, 5}, 2 -> {3, 4}
	parents := []int{-1, 0, 0, 2, 2, 0}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, PreOrder(parents))
	assert.Equal(t, [][]int{{1, 2, 5}, nil, {3, 4}, nil, nil, nil}, Children(parents))
}

func TestString(t *testing.T) {
	rng := NewRNG(1)

	s := rng.String(12)
	assert.Len(t, s, 12)

	for _, c := range s {
		assert.True(t, c >= 'a' && c <= 'z')
	}
}
