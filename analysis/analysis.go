// Package analysis encodes raw query text into dictionary keys.
//
// Analyzed fields store their terms in a normalized form. A query term for
// such a field is passed through the same Analyzer before lookup so that
// "Red" finds entries indexed as "red".
package analysis

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Analyzer encodes text into a dictionary key.
type Analyzer interface {
	// Encode appends the encoded form of text to dst and returns the result.
	Encode(dst, text []byte) []byte
}

// Func adapts a function to the Analyzer interface.
type Func func(dst, text []byte) []byte

// Encode implements Analyzer.
func (f Func) Encode(dst, text []byte) []byte { return f(dst, text) }

// Keyword returns the identity analyzer.
func Keyword() Analyzer {
	return Func(func(dst, text []byte) []byte {
		return append(dst, text...)
	})
}

// Lowercase returns an analyzer applying Unicode case folding.
func Lowercase() Analyzer {
	return Func(func(dst, text []byte) []byte {
		// Casers carry state and are created per call.
		return append(dst, cases.Fold().Bytes(text)...)
	})
}

// Normalizing returns an analyzer applying NFC normalization followed by
// case folding.
func Normalizing() Analyzer {
	return Func(func(dst, text []byte) []byte {
		nfc := norm.NFC.Bytes(text)
		return append(dst, cases.Fold().Bytes(nfc)...)
	})
}

// Chain runs analyzers in order, each one encoding the output of the previous.
func Chain(analyzers ...Analyzer) Analyzer {
	return Func(func(dst, text []byte) []byte {
		cur := text
		for _, a := range analyzers {
			cur = a.Encode(nil, cur)
		}
		return append(dst, cur...)
	})
}

// Encode runs a over text, or copies text when a is nil.
func Encode(a Analyzer, text []byte) []byte {
	if a == nil {
		return append([]byte(nil), text...)
	}
	return a.Encode(nil, text)
}
