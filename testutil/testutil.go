package testutil

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/quarry/model"
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
		rand: rand.New(rand.NewSource(seed)),
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

// Int63n returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// SortedIDs returns n distinct ascending entry ids below universe.
// n is capped at universe.
func (r *RNG) SortedIDs(n int, universe uint64) []model.EntryID {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, int(universe))
	seen := make(map[model.EntryID]struct{}, n)
	out := make([]model.EntryID, 0, n)
	for len(out) < n {
		id := model.EntryID(r.rand.Int63n(int64(universe)))
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Intersect returns the ascending ids present in both a and b.
func Intersect(a, b []model.EntryID) []model.EntryID {
	out := []model.EntryID{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Union returns the ascending ids present in a or b.
func Union(a, b []model.EntryID) []model.EntryID {
	out := make([]model.EntryID, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Difference returns the ascending ids of a that are not in b.
func Difference(a, b []model.EntryID) []model.EntryID {
	out := []model.EntryID{}
	for _, id := range a {
		if _, found := slices.BinarySearch(b, id); !found {
			out = append(out, id)
		}
	}
	return out
}

// IsStrictlyAscending reports whether ids are ascending without duplicates.
func IsStrictlyAscending(ids []model.EntryID) bool {
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			return false
		}
	}
	return true
}
