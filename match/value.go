package match

import (
	"fmt"
	"strconv"
)

// Domain is the value type a predicate or comparer operates on.
type Domain uint8

const (
	// DomainInvalid is the zero Domain.
	DomainInvalid Domain = iota
	// DomainBytes compares byte strings lexicographically.
	DomainBytes
	// DomainInt64 compares signed 64-bit integers.
	DomainInt64
	// DomainFloat64 compares 64-bit floats.
	DomainFloat64
)

// String returns the string representation of a Domain.
func (d Domain) String() string {
	switch d {
	case DomainBytes:
		return "bytes"
	case DomainInt64:
		return "int64"
	case DomainFloat64:
		return "float64"
	default:
		return "invalid"
	}
}

// Value is a typed threshold of a unary predicate.
type Value struct {
	domain Domain
	b      []byte
	i      int64
	f      float64
}

// Bytes returns a byte string value. b is not copied.
func Bytes(b []byte) Value { return Value{domain: DomainBytes, b: b} }

// String returns a byte string value.
func String(s string) Value { return Value{domain: DomainBytes, b: []byte(s)} }

// Int returns an int64 value.
func Int(v int64) Value { return Value{domain: DomainInt64, i: v} }

// Float returns a float64 value.
func Float(v float64) Value { return Value{domain: DomainFloat64, f: v} }

// Domain returns the value domain.
func (v Value) Domain() Domain { return v.domain }

// String returns a string representation of the Value.
func (v Value) String() string {
	switch v.domain {
	case DomainBytes:
		return strconv.Quote(string(v.b))
	case DomainInt64:
		return strconv.FormatInt(v.i, 10)
	case DomainFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "<invalid>"
	}
}

func checkDomain(v Value, want Domain) error {
	if v.domain != want {
		return fmt.Errorf("%w: %s value for %s predicate", ErrDomainMismatch, v.domain, want)
	}
	return nil
}
