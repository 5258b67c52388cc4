// Package testutil provides helpers for arenatree tests and benchmarks.
//
// It has no dependency on arenatree itself, so both internal and external
// test packages can use it.
//
// # Random Shapes
//
//	rng := testutil.NewRNG(seed)
//	parents := rng.Parents(100)   // parents[i] < i, parents[0] == -1
//	deep := testutil.Chain(10000) // a single path, for stack-depth tests
package testutil
