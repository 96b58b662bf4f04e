package match

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"
	"unsafe"

	"github.com/hupe1980/quarry/internal/queue"
	"github.com/hupe1980/quarry/model"
)

// Comparer orders the results of a SortingMatch.
// Use Ascending, Descending, ByScore or CustomOrder.
type Comparer interface {
	isComparer()
}

type fieldOrder struct {
	field      model.FieldID
	domain     Domain
	descending bool
}

type scoreOrder struct{}

type customOrder struct {
	field  model.FieldID
	domain Domain
	funcs  CustomFuncs
}

func (fieldOrder) isComparer()  {}
func (scoreOrder) isComparer()  {}
func (customOrder) isComparer() {}

// CustomFuncs is a user-supplied ordering. ByID, when set, orders by entry id
// alone; otherwise the function matching the comparer domain orders by the
// stored value. Functions return a negative number when a sorts first.
type CustomFuncs struct {
	ByID    func(a, b model.EntryID) int
	Int64   func(a, b int64) int
	Float64 func(a, b float64) int
	Bytes   func(a, b []byte) int
}

// Ascending orders by the stored value of field, smallest first.
func Ascending(field model.FieldID, domain Domain) Comparer {
	return fieldOrder{field: field, domain: domain}
}

// Descending orders by the stored value of field, largest first.
func Descending(field model.FieldID, domain Domain) Comparer {
	return fieldOrder{field: field, domain: domain, descending: true}
}

// ByScore orders by score, highest first.
func ByScore() Comparer {
	return scoreOrder{}
}

// CustomOrder orders with user-supplied functions.
func CustomOrder(field model.FieldID, domain Domain, funcs CustomFuncs) Comparer {
	return customOrder{field: field, domain: domain, funcs: funcs}
}

// sortEntry is one materialized result with its sort key.
type sortEntry struct {
	id      model.EntryID
	score   float32
	present bool
	i       int64
	f       float64
	b       []byte
}

var sortEntrySize = int64(unsafe.Sizeof(sortEntry{}))

// SortingMatch orders the results of an inner match. It is terminal: its
// output is not id-ascending, so it cannot be an operand of other matches.
//
// Ties are broken by ascending entry id. Entries without a sort value (and
// NaN floats) sort after all entries with one, in both directions.
type SortingMatch struct {
	env   *Env
	inner Match
	cmp   Comparer
	take  int

	field   model.FieldID
	domain  Domain
	compare func(a, b *sortEntry) int

	evaluated bool
	results   []sortEntry
	pos       int
	charged   int64
}

// NewSorting orders inner with cmp, keeping at most take results (TakeAll
// for all of them).
func NewSorting(env *Env, inner Match, c Comparer, take int) (*SortingMatch, error) {
	if take < 0 {
		take = TakeAll
	}
	s := &SortingMatch{env: env, inner: inner, cmp: c, take: take}

	switch o := c.(type) {
	case fieldOrder:
		if err := checkSortDomain(o.domain); err != nil {
			return nil, err
		}
		s.field, s.domain = o.field, o.domain
		s.compare = fieldCompare(o.domain, o.descending)
	case scoreOrder:
		s.compare = scoreCompare
	case customOrder:
		compare, err := customCompare(o)
		if err != nil {
			return nil, err
		}
		s.field, s.domain = o.field, o.domain
		s.compare = compare
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedComparer, c)
	}
	return s, nil
}

func checkSortDomain(d Domain) error {
	switch d {
	case DomainBytes, DomainInt64, DomainFloat64:
		return nil
	default:
		return fmt.Errorf("%w: domain %s", ErrUnsupportedComparer, d)
	}
}

func idCompare(a, b *sortEntry) int { return cmp.Compare(a.id, b.id) }

func scoreCompare(a, b *sortEntry) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	return idCompare(a, b)
}

// presenceCompare orders present values first. ok is false when both are
// present and the values decide.
func presenceCompare(a, b *sortEntry) (int, bool) {
	switch {
	case a.present && b.present:
		return 0, false
	case a.present:
		return -1, true
	case b.present:
		return 1, true
	default:
		return idCompare(a, b), true
	}
}

func fieldCompare(d Domain, descending bool) func(a, b *sortEntry) int {
	var values func(a, b *sortEntry) int
	switch d {
	case DomainInt64:
		values = func(a, b *sortEntry) int { return cmp.Compare(a.i, b.i) }
	case DomainFloat64:
		values = func(a, b *sortEntry) int { return cmp.Compare(a.f, b.f) }
	default:
		values = func(a, b *sortEntry) int { return bytes.Compare(a.b, b.b) }
	}
	return func(a, b *sortEntry) int {
		if c, ok := presenceCompare(a, b); ok {
			return c
		}
		c := values(a, b)
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return idCompare(a, b)
	}
}

func customCompare(o customOrder) (func(a, b *sortEntry) int, error) {
	if byID := o.funcs.ByID; byID != nil {
		return func(a, b *sortEntry) int {
			if c := byID(a.id, b.id); c != 0 {
				return c
			}
			return idCompare(a, b)
		}, nil
	}

	if err := checkSortDomain(o.domain); err != nil {
		return nil, err
	}
	var values func(a, b *sortEntry) int
	switch o.domain {
	case DomainInt64:
		if fn := o.funcs.Int64; fn != nil {
			values = func(a, b *sortEntry) int { return fn(a.i, b.i) }
		}
	case DomainFloat64:
		if fn := o.funcs.Float64; fn != nil {
			values = func(a, b *sortEntry) int { return fn(a.f, b.f) }
		}
	case DomainBytes:
		if fn := o.funcs.Bytes; fn != nil {
			values = func(a, b *sortEntry) int { return fn(a.b, b.b) }
		}
	}
	if values == nil {
		return nil, fmt.Errorf("%w: custom order has no %s function", ErrUnsupportedComparer, o.domain)
	}
	return func(a, b *sortEntry) int {
		if c, ok := presenceCompare(a, b); ok {
			return c
		}
		if c := values(a, b); c != 0 {
			return c
		}
		return idCompare(a, b)
	}, nil
}

// Take returns the result limit (TakeAll for none).
func (s *SortingMatch) Take() int { return s.take }

// Inner returns the ordered match.
func (s *SortingMatch) Inner() Match { return s.inner }

// Kind returns KindSorting.
func (s *SortingMatch) Kind() Kind { return KindSorting }

// Fill writes the next ordered results. The first call evaluates the inner
// match completely.
func (s *SortingMatch) Fill(ids []model.EntryID, scores []float32) (int, error) {
	if !s.evaluated {
		if err := s.evaluate(); err != nil {
			s.Close()
			return 0, err
		}
	}
	n := 0
	for n < len(ids) && s.pos < len(s.results) {
		e := &s.results[s.pos]
		ids[n] = e.id
		if scores != nil {
			scores[n] = e.score
		}
		n++
		s.pos++
	}
	if s.pos == len(s.results) {
		s.Close()
	}
	return n, nil
}

// Close releases the materialized results and their memory reservation.
func (s *SortingMatch) Close() {
	s.results = nil
	s.env.release(s.charged)
	s.charged = 0
}

func (s *SortingMatch) charge(entries int) error {
	if entries <= 0 {
		return nil
	}
	if int64(entries) > math.MaxInt64/sortEntrySize {
		return fmt.Errorf("sorting %d entries: %w", entries, ErrMemoryLimitExceeded)
	}
	size := int64(entries) * sortEntrySize
	if err := s.env.acquire(size); err != nil {
		return fmt.Errorf("sorting %d entries: %w", entries, err)
	}
	s.charged += size
	return nil
}

func (s *SortingMatch) evaluate() error {
	s.evaluated = true
	if s.take == 0 {
		return nil
	}

	ids := make([]model.EntryID, windowSize)
	scores := make([]float32, windowSize)

	if s.take > 0 {
		// The heap keeps the worst retained entry on top. It starts small and
		// is charged as it grows, so take may exceed the input.
		h := queue.New(s.initialCapacity(), func(a, b sortEntry) bool { return s.compare(&a, &b) > 0 })
		for {
			n, err := s.inner.Fill(ids, scores)
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
			if err := s.charge(min(n, s.take-h.Len())); err != nil {
				return err
			}
			for i := range n {
				e, err := s.entry(ids[i], scores[i])
				if err != nil {
					return err
				}
				h.PushBounded(e, s.take)
			}
		}
		s.results = h.Drain(make([]sortEntry, 0, h.Len()))
		slices.Reverse(s.results)
		return nil
	}

	for {
		n, err := s.inner.Fill(ids, scores)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if err := s.charge(n); err != nil {
			return err
		}
		for i := range n {
			e, err := s.entry(ids[i], scores[i])
			if err != nil {
				return err
			}
			s.results = append(s.results, e)
		}
	}
	slices.SortFunc(s.results, func(a, b sortEntry) int { return s.compare(&a, &b) })
	return nil
}

// initialCapacity sizes the top-k heap before any input is read.
func (s *SortingMatch) initialCapacity() int {
	c := min(s.take, windowSize)
	if s.inner.Confidence() == model.High {
		if n := s.inner.Count(); n >= 0 && n < int64(c) {
			c = int(n)
		}
	}
	return c
}

// entry reads the sort key of id.
func (s *SortingMatch) entry(id model.EntryID, score float32) (sortEntry, error) {
	e := sortEntry{id: id, score: score}
	if s.domain == DomainInvalid {
		return e, nil
	}
	r := s.env.reader
	var err error
	switch s.domain {
	case DomainInt64:
		e.i, e.present, err = r.ReadInt64(id, s.field)
	case DomainFloat64:
		e.f, e.present, err = r.ReadFloat64(id, s.field)
		if math.IsNaN(e.f) {
			e.present = false
		}
	case DomainBytes:
		e.b, e.present, err = r.ReadBytes(id, s.field)
	}
	return e, err
}
