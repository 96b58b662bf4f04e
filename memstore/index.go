package memstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
)

// Index is an immutable in-memory index. It is safe for concurrent use.
type Index struct {
	fields  map[string]store.FieldInfo
	dicts   map[model.FieldID]*dictionary
	small   []byte
	large   []*roaring64.Bitmap
	all     *roaring64.Bitmap
	records map[model.EntryID][]byte
	tf      map[tfKey]uint32
	count   int64
}

var _ store.Source = (*Index)(nil)

// Snapshot implements store.Source.
func (ix *Index) Snapshot(ctx context.Context) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &snapshot{ix: ix}, nil
}

// NumberOfEntries returns the number of indexed entries.
func (ix *Index) NumberOfEntries() int64 { return ix.count }

// Fields returns the schema in field id order.
func (ix *Index) Fields() []store.FieldInfo {
	out := make([]store.FieldInfo, len(ix.fields))
	for _, f := range ix.fields {
		out[f.ID] = f
	}
	return out
}

type snapshot struct {
	ix     *Index
	closed atomic.Bool
}

var (
	_ store.Snapshot    = (*snapshot)(nil)
	_ store.EntryReader = (*snapshot)(nil)
)

func (s *snapshot) Field(name string) (store.FieldInfo, bool) {
	f, ok := s.ix.fields[name]
	return f, ok
}

func (s *snapshot) Terms(field model.FieldID) (store.TermDictionary, bool) {
	d, ok := s.ix.dicts[field]
	if !ok {
		return nil, false
	}
	return d, true
}

func (s *snapshot) SmallSet(ref uint64) ([]byte, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	if ref >= uint64(len(s.ix.small)) {
		return nil, fmt.Errorf("%w: small set ref %d out of range", store.ErrCorrupt, ref)
	}
	return s.ix.small[ref:len(s.ix.small):len(s.ix.small)], nil
}

func (s *snapshot) OpenSet(ref uint64) (store.SortedSet, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	if ref >= uint64(len(s.ix.large)) {
		return nil, fmt.Errorf("%w: large set ref %d out of range", store.ErrCorrupt, ref)
	}
	return largeSet{bm: s.ix.large[ref]}, nil
}

func (s *snapshot) AllEntries() (store.SortedSet, error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	return largeSet{bm: s.ix.all}, nil
}

func (s *snapshot) Entries() store.EntryReader { return s }

func (s *snapshot) NumberOfEntries() int64 { return s.ix.count }

func (s *snapshot) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *snapshot) value(id model.EntryID, field model.FieldID, want valueKind) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, store.ErrClosed
	}
	rec, ok := s.ix.records[id]
	if !ok || field == model.UnknownField {
		return nil, false, nil
	}
	kind, payload, ok, err := findValue(rec, field)
	if err != nil {
		return nil, false, fmt.Errorf("entry %d: %w", id, err)
	}
	if !ok || kind != want {
		return nil, false, nil
	}
	return payload, true, nil
}

func (s *snapshot) ReadBytes(id model.EntryID, field model.FieldID) ([]byte, bool, error) {
	return s.value(id, field, kindBytes)
}

func (s *snapshot) ReadInt64(id model.EntryID, field model.FieldID) (int64, bool, error) {
	p, ok, err := s.value(id, field, kindInt64)
	if !ok || err != nil {
		return 0, false, err
	}
	return int64(binary.LittleEndian.Uint64(p)), true, nil
}

func (s *snapshot) ReadFloat64(id model.EntryID, field model.FieldID) (float64, bool, error) {
	p, ok, err := s.value(id, field, kindFloat64)
	if !ok || err != nil {
		return 0, false, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p)), true, nil
}

func (s *snapshot) TermFrequency(id model.EntryID, field model.FieldID, term []byte) (int, error) {
	if s.closed.Load() {
		return 0, store.ErrClosed
	}
	return int(s.ix.tf[tfKey{id: id, field: field, term: string(term)}]), nil
}

// dictionary is a sorted term table.
type dictionary struct {
	terms  [][]byte
	values []store.TermValue
}

func (d *dictionary) Lookup(term []byte) (store.TermValue, bool, error) {
	i := d.lowerBound(term)
	if i < len(d.terms) && bytes.Equal(d.terms[i], term) {
		return d.values[i], true, nil
	}
	return 0, false, nil
}

func (d *dictionary) Scan(prefix []byte) store.TermIterator {
	return &termIterator{d: d, prefix: prefix, pos: d.lowerBound(prefix) - 1}
}

func (d *dictionary) lowerBound(term []byte) int {
	return sort.Search(len(d.terms), func(i int) bool {
		return bytes.Compare(d.terms[i], term) >= 0
	})
}

type termIterator struct {
	d      *dictionary
	prefix []byte
	pos    int
	done   bool
}

func (it *termIterator) Next() bool {
	if it.done {
		return false
	}
	it.pos++
	if it.pos >= len(it.d.terms) || !bytes.HasPrefix(it.d.terms[it.pos], it.prefix) {
		it.done = true
		return false
	}
	return true
}

func (it *termIterator) Term() []byte { return it.d.terms[it.pos] }

func (it *termIterator) Value() store.TermValue { return it.d.values[it.pos] }

func (it *termIterator) Err() error { return nil }

// largeSet exposes a roaring64 bitmap as a store.SortedSet.
type largeSet struct {
	bm *roaring64.Bitmap
}

func (l largeSet) Count() int64 { return int64(l.bm.GetCardinality()) }

func (l largeSet) Iterator() store.SetIterator {
	return &largeIterator{it: l.bm.Iterator()}
}

type largeIterator struct {
	it roaring64.IntPeekable64
}

func (l *largeIterator) Next() (model.EntryID, bool) {
	if !l.it.HasNext() {
		return 0, false
	}
	return model.EntryID(l.it.Next()), true
}

func (l *largeIterator) Seek(target model.EntryID) (model.EntryID, bool) {
	l.it.AdvanceIfNeeded(uint64(target))
	if !l.it.HasNext() {
		return 0, false
	}
	return model.EntryID(l.it.PeekNext()), true
}

func (l *largeIterator) Fill(buf []model.EntryID) int {
	n := 0
	for n < len(buf) && l.it.HasNext() {
		buf[n] = model.EntryID(l.it.Next())
		n++
	}
	return n
}
