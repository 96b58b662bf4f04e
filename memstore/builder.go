package memstore

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/quarry/analysis"
	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
)

// ErrDuplicateEntry is returned when an entry id is added twice.
var ErrDuplicateEntry = errors.New("memstore: duplicate entry")

// Builder collects documents and freezes them into an Index.
// A Builder is not safe for concurrent use.
type Builder struct {
	opts options
	docs map[model.EntryID]*Document
}

// NewBuilder returns an empty Builder.
func NewBuilder(optFns ...Option) *Builder {
	return &Builder{
		opts: applyOptions(optFns),
		docs: make(map[model.EntryID]*Document),
	}
}

// Add registers the document of entry id.
func (b *Builder) Add(id model.EntryID, doc *Document) error {
	if id > model.MaxEntryID {
		return fmt.Errorf("memstore: entry id %d exceeds %d", id, model.MaxEntryID)
	}
	if _, ok := b.docs[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateEntry, id)
	}
	if doc == nil {
		doc = NewDocument()
	}
	b.docs[id] = doc
	return nil
}

// Len returns the number of added documents.
func (b *Builder) Len() int { return len(b.docs) }

type tfKey struct {
	id    model.EntryID
	field model.FieldID
	term  string
}

// Build freezes the collected documents. The Builder can keep collecting
// afterwards; later builds include earlier documents.
func (b *Builder) Build() (*Index, error) {
	names := make(map[string]struct{})
	for _, doc := range b.docs {
		doc.fieldNames(names)
	}
	sortedNames := make([]string, 0, len(names))
	for name := range names {
		sortedNames = append(sortedNames, name)
	}
	slices.Sort(sortedNames)
	if len(sortedNames) >= math.MaxUint32 {
		return nil, fmt.Errorf("memstore: too many fields")
	}

	ix := &Index{
		fields:  make(map[string]store.FieldInfo, len(sortedNames)),
		dicts:   make(map[model.FieldID]*dictionary),
		records: make(map[model.EntryID][]byte, len(b.docs)),
		tf:      make(map[tfKey]uint32),
		count:   int64(len(b.docs)),
	}
	for i, name := range sortedNames {
		ix.fields[name] = store.FieldInfo{ID: model.FieldID(i), Name: name}
	}

	ids := make([]model.EntryID, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ix.all = roaring64.New()
	for _, id := range ids {
		ix.all.Add(uint64(id))
	}
	ix.all.RunOptimize()

	postings := make(map[model.FieldID]map[string][]model.EntryID)
	addTerm := func(id model.EntryID, field model.FieldID, term []byte) {
		key := tfKey{id: id, field: field, term: string(term)}
		ix.tf[key]++
		if ix.tf[key] > 1 {
			return
		}
		m := postings[field]
		if m == nil {
			m = make(map[string][]model.EntryID)
			postings[field] = m
		}
		m[key.term] = append(m[key.term], id)
	}

	var values []storedValue
	for _, id := range ids {
		doc := b.docs[id]
		values = values[:0]

		for name, terms := range doc.keywords {
			field := ix.fields[name].ID
			a := b.opts.analyzers[name]
			for _, term := range terms {
				addTerm(id, field, analysis.Encode(a, []byte(term)))
			}
			if len(terms) > 0 {
				values = append(values, storedValue{field: field, kind: kindBytes, b: []byte(terms[0])})
			}
		}
		for name, text := range doc.texts {
			field := ix.fields[name].ID
			a, ok := b.opts.analyzers[name]
			if !ok {
				a = analysis.Lowercase()
			}
			for _, token := range strings.Fields(text) {
				addTerm(id, field, a.Encode(nil, []byte(token)))
			}
			values = append(values, storedValue{field: field, kind: kindBytes, b: []byte(text)})
		}
		for name, v := range doc.ints {
			values = append(values, storedValue{field: ix.fields[name].ID, kind: kindInt64, bits: uint64(v)})
		}
		for name, v := range doc.floats {
			values = append(values, storedValue{field: ix.fields[name].ID, kind: kindFloat64, bits: math.Float64bits(v)})
		}

		slices.SortStableFunc(values, func(x, y storedValue) int {
			return cmp.Compare(x.field, y.field)
		})
		ix.records[id] = appendRecord(nil, values)
	}

	for field, terms := range postings {
		d, err := b.freezeDictionary(ix, terms)
		if err != nil {
			return nil, err
		}
		ix.dicts[field] = d
	}

	return ix, nil
}

func (b *Builder) freezeDictionary(ix *Index, terms map[string][]model.EntryID) (*dictionary, error) {
	keys := make([]string, 0, len(terms))
	for term := range terms {
		keys = append(keys, term)
	}
	slices.Sort(keys)

	d := &dictionary{
		terms:  make([][]byte, len(keys)),
		values: make([]store.TermValue, len(keys)),
	}
	for i, term := range keys {
		ids := terms[term]
		d.terms[i] = []byte(term)

		switch {
		case len(ids) == 1:
			d.values[i] = store.Single(ids[0])
		case len(ids) <= b.opts.smallSetLimit:
			ref := uint64(len(ix.small))
			buf, err := store.EncodeSmallSet(ix.small, ids)
			if err != nil {
				return nil, err
			}
			ix.small = buf
			d.values[i] = store.SmallSet(ref)
		default:
			bm := roaring64.New()
			for _, id := range ids {
				bm.Add(uint64(id))
			}
			bm.RunOptimize()
			d.values[i] = store.LargeSet(uint64(len(ix.large)))
			ix.large = append(ix.large, bm)
		}
	}

	if !slices.IsSortedFunc(d.terms, bytes.Compare) {
		return nil, fmt.Errorf("memstore: dictionary not sorted")
	}
	return d, nil
}
