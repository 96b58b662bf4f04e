package match

import (
	"fmt"
	"sort"

	"github.com/hupe1980/quarry/internal/simd"
	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
)

type termSource uint8

const (
	sourceEmpty termSource = iota
	sourceSingle
	sourceSmall
	sourceLarge
)

func (s termSource) String() string {
	switch s {
	case sourceSingle:
		return "single"
	case sourceSmall:
		return "small"
	case sourceLarge:
		return "large"
	default:
		return "empty"
	}
}

// TermMatch streams the posting list of a single term.
type TermMatch struct {
	env   *Env
	field model.FieldID
	term  []byte
	src   termSource
	count int64
	all   bool

	single   model.EntryID
	consumed bool
	small    store.SmallSetDecoder
	set      store.SortedSet
	it       store.SetIterator

	win    []model.EntryID
	wpos   int
	pa, pb []int32
}

var _ Match = (*TermMatch)(nil)

// EmptyTerm returns a match without entries.
func EmptyTerm(env *Env, field model.FieldID, term []byte) *TermMatch {
	return &TermMatch{env: env, field: field, term: term, src: sourceEmpty}
}

// ResolveTerm looks up an encoded term and returns its posting list.
// Unknown fields and terms yield an empty match.
func ResolveTerm(env *Env, field model.FieldID, term []byte) (*TermMatch, error) {
	dict, ok := env.snap.Terms(field)
	if !ok {
		return EmptyTerm(env, field, term), nil
	}
	value, ok, err := dict.Lookup(term)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", term, err)
	}
	if !ok {
		return EmptyTerm(env, field, term), nil
	}
	return NewTermMatch(env, field, term, value)
}

// AllEntries returns a match over every entry of the snapshot.
func AllEntries(env *Env) (*TermMatch, error) {
	set, err := env.snap.AllEntries()
	if err != nil {
		return nil, fmt.Errorf("all entries: %w", err)
	}
	m := &TermMatch{env: env, field: model.UnknownField, all: true}
	if set.Count() == 0 {
		return m, nil
	}
	m.src = sourceLarge
	m.set = set
	m.it = set.Iterator()
	m.count = set.Count()
	return m, nil
}

// NewTermMatch returns the posting list referenced by value.
func NewTermMatch(env *Env, field model.FieldID, term []byte, value store.TermValue) (*TermMatch, error) {
	if err := value.Validate(); err != nil {
		return nil, err
	}

	m := &TermMatch{env: env, field: field, term: term}
	switch value.Kind() {
	case store.KindSingle:
		m.src = sourceSingle
		m.single = value.EntryID()
		m.count = 1
	case store.KindSmallSet:
		buf, err := env.snap.SmallSet(value.Payload())
		if err != nil {
			return nil, err
		}
		dec, err := store.NewSmallSetDecoder(buf)
		if err != nil {
			return nil, err
		}
		m.src = sourceSmall
		m.small = dec
		m.count = int64(dec.Len())
	case store.KindLargeSet:
		set, err := env.snap.OpenSet(value.Payload())
		if err != nil {
			return nil, err
		}
		m.src = sourceLarge
		m.set = set
		m.it = set.Iterator()
		m.count = set.Count()
	}
	return m, nil
}

// Count implements Match.
func (m *TermMatch) Count() int64 { return m.count }

// Confidence implements Match. Term counts are exact.
func (m *TermMatch) Confidence() model.Confidence { return model.High }

// Kind implements Match.
func (m *TermMatch) Kind() Kind { return KindTerm }

// Field returns the field the term belongs to.
func (m *TermMatch) Field() model.FieldID { return m.field }

// Term returns the encoded term.
func (m *TermMatch) Term() []byte { return m.term }

// IsAll reports whether the match covers every entry of the snapshot.
func (m *TermMatch) IsAll() bool { return m.all }

// IsEmpty reports whether the term has no posting list.
func (m *TermMatch) IsEmpty() bool { return m.src == sourceEmpty }

// Reset restarts the stream from the first id.
func (m *TermMatch) Reset() {
	m.consumed = false
	m.small.Reset()
	if m.set != nil {
		m.it = m.set.Iterator()
	}
	m.win = m.win[:0]
	m.wpos = 0
}

// Fill implements Match.
func (m *TermMatch) Fill(ids []model.EntryID, scores []float32) (int, error) {
	n := 0
	for n < len(ids) {
		if m.wpos == len(m.win) {
			if err := m.refill(0, false); err != nil {
				return 0, err
			}
			if len(m.win) == 0 {
				break
			}
		}
		c := copy(ids[n:], m.win[m.wpos:])
		m.wpos += c
		n += c
	}
	if scores != nil {
		clear(scores[:n])
	}
	return n, nil
}

// AndWith implements Match.
func (m *TermMatch) AndWith(ids []model.EntryID, scores []float32) (int, error) {
	if m.src == sourceEmpty {
		return 0, nil
	}

	n, i := 0, 0
	for i < len(ids) {
		if m.wpos == len(m.win) {
			if err := m.refill(ids[i], true); err != nil {
				return 0, err
			}
			if len(m.win) == 0 {
				break
			}
		}

		w := m.win[m.wpos:]
		last := w[len(w)-1]
		e := i + sort.Search(len(ids)-i, func(x int) bool { return ids[i+x] > last })

		k := simd.Intersect(ids[i:e], w, m.pa, m.pb, m.env.mode)
		for x := 0; x < k; x++ {
			src := i + int(m.pa[x])
			ids[n] = ids[src]
			if scores != nil {
				scores[n] = scores[src]
			}
			n++
		}

		if e < len(ids) {
			// Every buffered id is below ids[e].
			m.wpos = len(m.win)
		} else {
			top := ids[e-1]
			m.wpos += sort.Search(len(w), func(x int) bool { return w[x] > top })
		}
		i = e
	}
	return n, nil
}

// refill loads the next window. With seek set, ids below target are skipped.
func (m *TermMatch) refill(target model.EntryID, seek bool) error {
	if m.win == nil {
		m.win = make([]model.EntryID, 0, windowSize)
		m.pa = make([]int32, windowSize)
		m.pb = make([]int32, windowSize)
	}
	m.win = m.win[:0]
	m.wpos = 0

	switch m.src {
	case sourceSingle:
		if !m.consumed {
			m.consumed = true
			if !seek || m.single >= target {
				m.win = append(m.win, m.single)
			}
		}
	case sourceSmall:
		for len(m.win) < windowSize {
			id, ok, err := m.small.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if seek && id < target {
				continue
			}
			m.win = append(m.win, id)
		}
	case sourceLarge:
		if seek {
			if _, ok := m.it.Seek(target); !ok {
				return nil
			}
		}
		buf := m.win[:windowSize]
		n := 0
		if m.env.mode == simd.Accelerated {
			n = m.it.Fill(buf)
		} else {
			for n < len(buf) {
				id, ok := m.it.Next()
				if !ok {
					break
				}
				buf[n] = id
				n++
			}
		}
		m.win = buf[:n]
	}
	return nil
}
