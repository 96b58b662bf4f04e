package store

import (
	"context"

	"github.com/hupe1980/quarry/model"
)

// FieldInfo describes a field of the snapshot schema.
type FieldInfo struct {
	ID   model.FieldID
	Name string
}

// Source hands out snapshots of an index.
type Source interface {
	// Snapshot returns a consistent, read-only view. The caller owns the
	// snapshot and must close it.
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is a point-in-time, read-only view of an index.
type Snapshot interface {
	// Field resolves a field name.
	Field(name string) (FieldInfo, bool)

	// Terms returns the term dictionary of a field, if it has one.
	Terms(field model.FieldID) (TermDictionary, bool)

	// SmallSet returns the packed container referenced by a SmallSet term value.
	SmallSet(ref uint64) ([]byte, error)

	// OpenSet opens the sorted set referenced by a LargeSet term value.
	OpenSet(ref uint64) (SortedSet, error)

	// AllEntries opens the set of every indexed entry id.
	AllEntries() (SortedSet, error)

	// Entries returns the reader for stored per-entry values.
	Entries() EntryReader

	// NumberOfEntries returns the number of indexed entries.
	NumberOfEntries() int64

	// Close releases the snapshot.
	Close() error
}

// TermDictionary maps encoded terms to term values.
type TermDictionary interface {
	// Lookup returns the value of an exact term.
	Lookup(term []byte) (TermValue, bool, error)

	// Scan iterates all terms starting with prefix in dictionary order.
	// A nil prefix iterates the whole dictionary.
	Scan(prefix []byte) TermIterator
}

// TermIterator iterates dictionary entries.
//
//	it := dict.Scan(prefix)
//	for it.Next() {
//	    use(it.Term(), it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
type TermIterator interface {
	Next() bool
	Term() []byte
	Value() TermValue
	Err() error
}

// SortedSet is an ascending, duplicate-free set of entry ids.
type SortedSet interface {
	Count() int64
	Iterator() SetIterator
}

// SetIterator walks a SortedSet in ascending order.
type SetIterator interface {
	// Next returns the next id.
	Next() (model.EntryID, bool)

	// Seek positions the iterator at the first id >= target and returns it
	// without consuming it. Seeking never moves backwards.
	Seek(target model.EntryID) (model.EntryID, bool)

	// Fill copies the next ids into buf and returns how many were written.
	Fill(buf []model.EntryID) int
}

// EntryReader reads stored values of individual entries.
//
// A value that is not stored for an entry is reported with present == false
// and a nil error.
type EntryReader interface {
	ReadBytes(id model.EntryID, field model.FieldID) (value []byte, present bool, err error)
	ReadInt64(id model.EntryID, field model.FieldID) (value int64, present bool, err error)
	ReadFloat64(id model.EntryID, field model.FieldID) (value float64, present bool, err error)

	// TermFrequency returns how often term occurs in field of entry id.
	TermFrequency(id model.EntryID, field model.FieldID, term []byte) (int, error)
}
