// Package testutil provides testing utilities for quarry.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded random data, random corpora built on memstore and
// reference set algebra used as ground truth.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	ids := rng.SortedIDs(100, 1000) // 100 distinct ascending ids below 1000
//
// # Ground Truth
//
//	want := testutil.Intersect(a, b)
//	want := testutil.Union(a, b)
package testutil
