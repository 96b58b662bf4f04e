package model

import (
	"fmt"
	"math"
)

// EntryID identifies an indexed entry. The two highest bits are never used
// because term values reserve two tag bits next to the payload.
type EntryID uint64

// MaxEntryID is the largest encodable entry id.
const MaxEntryID EntryID = 1<<62 - 1

// FieldID identifies a field within a snapshot schema.
type FieldID uint32

// UnknownField is reported for names that are not part of the schema.
// Reads through it always report the value as absent.
const UnknownField FieldID = math.MaxUint32

// Confidence expresses how far a count estimate can be trusted.
type Confidence uint8

const (
	// Low marks estimates that are unbounded or heuristic.
	Low Confidence = iota
	// Normal marks estimates that are approximately right.
	Normal
	// High marks exact counts.
	High
)

// String returns the string representation of a Confidence.
func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Confidence(%d)", uint8(c))
	}
}

// MinConfidence returns the weaker of two confidences.
func MinConfidence(a, b Confidence) Confidence {
	if a < b {
		return a
	}
	return b
}

// UnknownCount is the count reported by matches that cannot estimate their size.
const UnknownCount int64 = math.MaxInt64

// AddCounts adds two count estimates, saturating at UnknownCount.
func AddCounts(a, b int64) int64 {
	if a >= UnknownCount-b {
		return UnknownCount
	}
	return a + b
}

// MinCount returns the smaller of two count estimates.
func MinCount(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Result is a single evaluated entry.
type Result struct {
	// ID is the entry id.
	ID EntryID
	// Score is the accumulated boost score (0 for unboosted trees).
	Score float32
}

// String returns a string representation of the Result.
func (r Result) String() string {
	return fmt.Sprintf("Result(%d:%g)", r.ID, r.Score)
}
