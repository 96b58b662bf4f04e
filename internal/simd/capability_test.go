package simd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseISA(t *testing.T) {
	for _, isa := range []ISA{Generic, NEON, SVE2, AVX2, AVX512} {
		got, ok := ParseISA(" " + isa.String() + " ")
		assert.True(t, ok)
		assert.Equal(t, isa, got)
	}

	_, ok := ParseISA("mmx")
	assert.False(t, ok)
}

func TestSelectMode(t *testing.T) {
	assert.Equal(t, Scalar, SelectMode(true))
	if Available() {
		assert.Equal(t, Accelerated, SelectMode(false))
	} else {
		assert.Equal(t, Scalar, SelectMode(false))
	}
	assert.True(t, isISAAvailable(Generic))
}
