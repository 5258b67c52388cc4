package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// String returns a random lowercase string of length n.
func (r *RNG) String(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + r.rand.Intn(26))
	}

	return string(b)
}

// Parents returns the shape of a random tree with n nodes as a parent
// table: parents[0] is -1 (the root) and 0 <= parents[i] < i otherwise.
// Building nodes in index order always finds the parent already built.
func (r *RNG) Parents(n int) []int {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parents := make([]int, n)
	parents[0] = -1

	for i := 1; i < n; i++ {
		parents[i] = r.rand.Intn(i)
	}

	return parents
}

// Chain returns the parent table of a single path of n nodes.
func Chain(n int) []int {
	if n <= 0 {
		return nil
	}

	parents := make([]int, n)
	for i := range parents {
		parents[i] = i - 1
	}

	return parents
}

// Children groups a parent table into ordered child lists.
func Children(parents []int) [][]int {
	children := make([][]int, len(parents))

	for i, p := range parents {
		if p >= 0 {
			children[p] = append(children[p], i)
		}
	}

	return children
}

// PreOrder returns the node indices of a parent table in pre-order,
// children visited in index order.
func PreOrder(parents []int) []int {
	if len(parents) == 0 {
		return nil
	}

	children := Children(parents)
	out := make([]int, 0, len(parents))
	stack := []int{0}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)

		for i := len(children[n]) - 1; i >= 0; i-- {
			stack = append(stack, children[n][i])
		}
	}

	return out
}
