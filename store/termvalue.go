package store

import (
	"fmt"

	"github.com/hupe1980/quarry/model"
)

// ValueKind is the representation of a posting list.
type ValueKind uint8

const (
	// KindSingle marks a posting list holding exactly one entry id.
	KindSingle ValueKind = iota
	// KindSmallSet marks a packed container of a few ids.
	KindSmallSet
	// KindLargeSet marks a reference to a SortedSet.
	KindLargeSet
	// KindInvalid marks an unknown tag.
	KindInvalid
)

// String returns the string representation of a ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindSmallSet:
		return "small"
	case KindLargeSet:
		return "large"
	default:
		return "invalid"
	}
}

const (
	tagBits = 2
	tagMask = 1<<tagBits - 1
)

// TermValue is the tagged 64-bit value stored for a term. The low two bits
// select the representation, the remaining bits carry its payload.
type TermValue uint64

// Single returns the term value of a single-entry posting list.
func Single(id model.EntryID) TermValue {
	return TermValue(uint64(id)<<tagBits | uint64(KindSingle))
}

// SmallSet returns the term value referencing a packed container.
func SmallSet(ref uint64) TermValue {
	return TermValue(ref<<tagBits | uint64(KindSmallSet))
}

// LargeSet returns the term value referencing a sorted set.
func LargeSet(ref uint64) TermValue {
	return TermValue(ref<<tagBits | uint64(KindLargeSet))
}

// Kind returns the representation selected by the tag bits.
func (v TermValue) Kind() ValueKind {
	return ValueKind(uint64(v) & tagMask)
}

// Payload returns the value without its tag.
func (v TermValue) Payload() uint64 {
	return uint64(v) >> tagBits
}

// EntryID returns the payload of a Single value.
func (v TermValue) EntryID() model.EntryID {
	return model.EntryID(v.Payload())
}

// Validate reports ErrCorrupt for values with an unknown tag.
func (v TermValue) Validate() error {
	if v.Kind() == KindInvalid {
		return fmt.Errorf("%w: invalid term value tag %#x", ErrCorrupt, uint64(v)&tagMask)
	}
	return nil
}

// String returns a string representation of the TermValue.
func (v TermValue) String() string {
	return fmt.Sprintf("%s(%d)", v.Kind(), v.Payload())
}
