package simd

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterRange(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		lo, hi   float64
		expected []byte
	}{
		{"Empty", []float64{}, 0, 10, []byte{}},
		{"All in range", []float64{1, 2, 3, 4, 5}, 0, 10, []byte{1, 1, 1, 1, 1}},
		{"None in range", []float64{1, 2, 3, 4, 5}, 10, 20, []byte{0, 0, 0, 0, 0}},
		{"Boundary inclusive", []float64{5, 10, 4.99, 10.01}, 5, 10, []byte{1, 1, 0, 0}},
		{"NaN", []float64{math.NaN(), 1}, math.Inf(-1), math.Inf(1), []byte{0, 1}},
		{"Unrolled tail", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 2, 8, []byte{0, 0, 1, 1, 1, 1, 1, 1, 1, 0, 0}},
	}

	for _, tt := range tests {
		for _, mode := range []Mode{Scalar, Accelerated} {
			t.Run(tt.name+"/"+mode.String(), func(t *testing.T) {
				got := FilterRange(tt.values, tt.lo, tt.hi, nil, mode)
				assert.Equal(t, tt.expected, got)
			})
		}
	}
}

func TestFilterRangeInt64ModesAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	values := make([]int64, 1037)
	for i := range values {
		values[i] = rng.Int64N(200) - 100
	}

	dst := make([]byte, 0, 16)
	for round := 0; round < 50; round++ {
		lo := rng.Int64N(200) - 100
		hi := lo + rng.Int64N(80)
		want := FilterRange(values, lo, hi, nil, Scalar)
		dst = FilterRange(values, lo, hi, dst, Accelerated)
		assert.Equal(t, want, dst)
	}
}
