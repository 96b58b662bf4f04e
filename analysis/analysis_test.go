package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzers(t *testing.T) {
	tests := []struct {
		name     string
		analyzer Analyzer
		input    string
		expected string
	}{
		{"Keyword", Keyword(), "Red Car", "Red Car"},
		{"Lowercase", Lowercase(), "Red CAR", "red car"},
		{"LowercaseUnicode", Lowercase(), "STRASSE Ärger", "strasse ärger"},
		// "e" + combining acute composes to "é" before folding.
		{"Normalizing", Normalizing(), "CAFE\u0301", "caf\u00e9"},
		{"Chain", Chain(Keyword(), Lowercase()), "ABC", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.analyzer.Encode([]byte("prefix:"), []byte(tt.input))
			assert.Equal(t, "prefix:"+tt.expected, string(got))
		})
	}
}

func TestEncodeNil(t *testing.T) {
	in := []byte("Same")
	out := Encode(nil, in)
	assert.Equal(t, "Same", string(out))

	out[0] = 's'
	assert.Equal(t, "Same", string(in))

	assert.Equal(t, "same", string(Encode(Lowercase(), in)))
}
