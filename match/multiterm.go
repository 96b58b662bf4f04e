package match

import (
	"slices"

	"github.com/hupe1980/quarry/internal/queue"
	"github.com/hupe1980/quarry/model"
)

// cursorWindow is the number of ids a MultiTermMatch buffers per operand.
const cursorWindow = 32

// cursorBytes is the budget charge of one operand cursor.
const cursorBytes = cursorWindow * (8 + 4)

// MultiTermMatch is the union of every term a provider yields, plus any
// operands folded in by Or.
//
// The first pull walks the provider once and opens a cursor per term without
// reading postings. Postings are then merged a window at a time, so a caller
// that stops early reads only the heads of each posting list.
type MultiTermMatch struct {
	env      *Env
	provider TermProvider
	scoreFn  ScoreFunction
	extras   []Match

	opened  bool
	sources []Match
	heap    *queue.Heap[*termCursor]
	charged int64

	// AndWith scratch.
	tmpIDs    []model.EntryID
	tmpScores []float32
	hits      []bool
	sums      []float32
}

// termCursor buffers the head window of one operand.
type termCursor struct {
	src    Match
	ids    [cursorWindow]model.EntryID
	scores [cursorWindow]float32
	pos, n int
}

func (c *termCursor) head() model.EntryID { return c.ids[c.pos] }

// advance moves past the head and reports whether an id is left.
func (c *termCursor) advance() (bool, error) {
	c.pos++
	if c.pos < c.n {
		return true, nil
	}
	n, err := c.src.Fill(c.ids[:], c.scores[:])
	if err != nil {
		return false, err
	}
	c.pos, c.n = 0, n
	return n > 0, nil
}

var _ Match = (*MultiTermMatch)(nil)

// NewMultiTerm returns the union over provider. A non-nil fn boosts every
// term before the union; scores of an entry matched by several terms add up.
func NewMultiTerm(env *Env, provider TermProvider, fn ScoreFunction) (*MultiTermMatch, error) {
	if fn != nil {
		if err := validateTermScore(fn); err != nil {
			return nil, err
		}
	}
	return &MultiTermMatch{env: env, provider: provider, scoreFn: fn}, nil
}

func validateTermScore(fn ScoreFunction) error {
	// Every yielded operand is a TermMatch, so term frequency always resolves.
	_, err := newScorer(nil, &TermMatch{}, fn)
	return err
}

// Count implements Match. The union size is unknown before the merge.
func (m *MultiTermMatch) Count() int64 { return model.UnknownCount }

// Confidence implements Match.
func (m *MultiTermMatch) Confidence() model.Confidence { return model.Low }

// Kind implements Match.
func (m *MultiTermMatch) Kind() Kind { return KindMultiTerm }

// Provider returns the term provider.
func (m *MultiTermMatch) Provider() TermProvider { return m.provider }

// Folded returns the operands folded in by Or.
func (m *MultiTermMatch) Folded() []Match { return m.extras }

// fold returns a copy that also unions other.
func (m *MultiTermMatch) fold(other Match) *MultiTermMatch {
	return &MultiTermMatch{
		env:      m.env,
		provider: m.provider,
		scoreFn:  m.scoreFn,
		extras:   append(slices.Clone(m.extras), other),
	}
}

// open walks the provider and collects one operand per term.
func (m *MultiTermMatch) open() error {
	if m.opened {
		return nil
	}
	m.opened = true

	m.provider.Reset()
	for {
		tm, ok, err := m.provider.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var src Match = tm
		if m.scoreFn != nil {
			if src, err = Boost(m.env, tm, m.scoreFn); err != nil {
				return err
			}
		}
		m.sources = append(m.sources, src)
	}
	m.sources = append(m.sources, m.extras...)
	return nil
}

// startMerge primes a cursor per operand and charges them to the budget.
func (m *MultiTermMatch) startMerge() error {
	if m.heap != nil {
		return nil
	}
	if err := m.open(); err != nil {
		return err
	}
	size := int64(len(m.sources)) * cursorBytes
	if err := m.env.acquire(size); err != nil {
		return err
	}
	m.charged = size

	m.heap = queue.New(len(m.sources), func(a, b *termCursor) bool { return a.head() < b.head() })
	for _, src := range m.sources {
		c := &termCursor{src: src, pos: -1}
		ok, err := c.advance()
		if err != nil {
			return err
		}
		if ok {
			m.heap.Push(c)
		} else {
			m.releaseCursor()
		}
	}
	return nil
}

func (m *MultiTermMatch) releaseCursor() {
	m.env.release(cursorBytes)
	m.charged -= cursorBytes
}

// Fill implements Match.
func (m *MultiTermMatch) Fill(ids []model.EntryID, scores []float32) (int, error) {
	if err := m.startMerge(); err != nil {
		return 0, err
	}
	n := 0
	for n < len(ids) && m.heap.Len() > 0 {
		top, _ := m.heap.Top()
		id := top.head()
		var score float32
		for m.heap.Len() > 0 {
			c, _ := m.heap.Top()
			if c.head() != id {
				break
			}
			m.heap.Pop()
			score += c.scores[c.pos]
			ok, err := c.advance()
			if err != nil {
				return 0, err
			}
			if ok {
				m.heap.Push(c)
			} else {
				m.releaseCursor()
			}
		}
		ids[n] = id
		if scores != nil {
			scores[n] = score
		}
		n++
	}
	return n, nil
}

// AndWith implements Match. Every operand probes its own copy of ids; an id
// survives when any operand holds it.
func (m *MultiTermMatch) AndWith(ids []model.EntryID, scores []float32) (int, error) {
	if err := m.open(); err != nil {
		return 0, err
	}
	if cap(m.tmpIDs) < len(ids) {
		m.tmpIDs = make([]model.EntryID, len(ids))
		m.tmpScores = make([]float32, len(ids))
		m.hits = make([]bool, len(ids))
		m.sums = make([]float32, len(ids))
	}
	hits, sums := m.hits[:len(ids)], m.sums[:len(ids)]
	clear(hits)
	clear(sums)

	for _, src := range m.sources {
		tmp := m.tmpIDs[:len(ids)]
		copy(tmp, ids)
		var sc []float32
		if scores != nil {
			sc = m.tmpScores[:len(ids)]
			clear(sc)
		}
		k, err := src.AndWith(tmp, sc)
		if err != nil {
			return 0, err
		}
		// tmp[:k] is an ascending subsequence of ids.
		j := 0
		for i := 0; i < k; i++ {
			for ids[j] != tmp[i] {
				j++
			}
			hits[j] = true
			if sc != nil {
				sums[j] += sc[i]
			}
		}
	}

	k := 0
	for i, id := range ids {
		if !hits[i] {
			continue
		}
		ids[k] = id
		if scores != nil {
			scores[k] = scores[i] + sums[i]
		}
		k++
	}
	return k, nil
}

// In returns the union of the posting lists of terms. Lists up to the
// InTermThreshold of env become a balanced tree of OR matches, longer lists a
// MultiTermMatch. A non-nil fn boosts every term.
func In(env *Env, field model.FieldID, terms [][]byte, fn ScoreFunction) (Match, error) {
	if len(terms) == 0 {
		return EmptyTerm(env, field, nil), nil
	}
	if len(terms) > env.inThreshold {
		return NewMultiTerm(env, NewInTermProvider(env, field, terms), fn)
	}

	ms := make([]Match, 0, len(terms))
	for _, term := range terms {
		tm, err := ResolveTerm(env, field, term)
		if err != nil {
			return nil, err
		}
		var m Match = tm
		if fn != nil {
			if m, err = Boost(env, tm, fn); err != nil {
				return nil, err
			}
		}
		ms = append(ms, m)
	}
	return OrTree(env, ms), nil
}

// OrTree unions ms as a balanced tree: neighbours are paired level by level
// and an odd trailing operand joins the last pair of its level.
func OrTree(env *Env, ms []Match) Match {
	if len(ms) == 0 {
		return EmptyTerm(env, model.UnknownField, nil)
	}
	for len(ms) > 1 {
		next := make([]Match, 0, (len(ms)+1)/2)
		for i := 0; i+1 < len(ms); i += 2 {
			next = append(next, Or(env, ms[i], ms[i+1]))
		}
		if len(ms)%2 == 1 {
			last := len(next) - 1
			next[last] = Or(env, next[last], ms[len(ms)-1])
		}
		ms = next
	}
	return ms[0]
}

// StartWith returns the union of every term of field starting with prefix.
func StartWith(env *Env, field model.FieldID, prefix []byte, fn ScoreFunction) (*MultiTermMatch, error) {
	return NewMultiTerm(env, NewStartWithTermProvider(env, field, prefix), fn)
}

// Contains returns the union of every term of field containing needle.
func Contains(env *Env, field model.FieldID, needle []byte, fn ScoreFunction) (*MultiTermMatch, error) {
	return NewMultiTerm(env, NewContainsTermProvider(env, field, needle), fn)
}
