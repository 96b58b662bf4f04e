package simd

import "sort"

// gallopRatio is the size ratio above which the smaller side gallops
// through the larger one.
const gallopRatio = 32

// Intersect finds the common elements of two strictly ascending slices.
// For the k-th common element it stores its index in a to pa[k] and its
// index in b to pb[k], and returns the number of common elements.
// pa and pb must hold at least min(len(a), len(b)) elements.
func Intersect[T ~uint64](a, b []T, pa, pb []int32, mode Mode) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if mode == Scalar {
		return intersectScalar(a, b, pa, pb)
	}
	switch {
	case len(a)*gallopRatio < len(b):
		return intersectGallop(a, b, pa, pb)
	case len(b)*gallopRatio < len(a):
		return intersectGallop(b, a, pb, pa)
	default:
		return intersectBlocked(a, b, pa, pb)
	}
}

func intersectScalar[T ~uint64](a, b []T, pa, pb []int32) int {
	i, j, n := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			pa[n], pb[n] = int32(i), int32(j)
			n++
			i++
			j++
		}
	}
	return n
}

// intersectBlocked skips b four elements at a time.
func intersectBlocked[T ~uint64](a, b []T, pa, pb []int32) int {
	j, n := 0, 0
	for i := 0; i < len(a); i++ {
		v := a[i]
		for j+4 <= len(b) && b[j+3] < v {
			j += 4
		}
		for j < len(b) && b[j] < v {
			j++
		}
		if j == len(b) {
			break
		}
		if b[j] == v {
			pa[n], pb[n] = int32(i), int32(j)
			n++
			j++
		}
	}
	return n
}

// intersectGallop looks up every element of small in large by exponential
// search followed by binary search.
func intersectGallop[T ~uint64](small, large []T, ps, pl []int32) int {
	j, n := 0, 0
	for i, v := range small {
		bound := 1
		for j+bound < len(large) && large[j+bound] < v {
			bound <<= 1
		}
		lo := j + bound/2
		hi := min(j+bound+1, len(large))
		k := lo + sort.Search(hi-lo, func(x int) bool { return large[lo+x] >= v })
		if k >= len(large) {
			break
		}
		j = k
		if large[j] == v {
			ps[n], pl[n] = int32(i), int32(j)
			n++
			j++
		}
	}
	return n
}
