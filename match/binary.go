package match

import (
	"sort"

	"github.com/hupe1980/quarry/internal/simd"
	"github.com/hupe1980/quarry/model"
)

// Operator is the combinator of a BinaryMatch.
type Operator uint8

const (
	// OperatorAnd keeps ids present in both operands.
	OperatorAnd Operator = iota
	// OperatorOr keeps ids present in either operand.
	OperatorOr
)

// String returns the string representation of an Operator.
func (o Operator) String() string {
	if o == OperatorOr {
		return "or"
	}
	return "and"
}

// BinaryMatch combines two matches with AND or OR.
//
// AND scores are the sum of both operands. OR scores are the sum where both
// operands matched and the single operand's score otherwise.
type BinaryMatch struct {
	op          Operator
	left, right Match
	count       int64
	conf        model.Confidence
	specialized bool
	plan        plan
}

var _ Match = (*BinaryMatch)(nil)

// And returns the intersection of left and right.
func And(env *Env, left, right Match) *BinaryMatch {
	return newBinary(env, OperatorAnd, left, right)
}

// maxFoldCount is the largest exact operand count Or folds into a
// MultiTermMatch.
const maxFoldCount = windowSize

// Or returns the union of left and right. When exactly one operand is a
// MultiTermMatch and the other is known to be small, the other operand is
// folded into it.
func Or(env *Env, left, right Match) Match {
	lm, lok := left.(*MultiTermMatch)
	rm, rok := right.(*MultiTermMatch)
	switch {
	case lok && !rok && foldable(right):
		return lm.fold(right)
	case rok && !lok && foldable(left):
		return rm.fold(left)
	}
	return newBinary(env, OperatorOr, left, right)
}

func foldable(m Match) bool {
	return m.Confidence() == model.High && m.Count() <= maxFoldCount
}

func newBinary(env *Env, op Operator, left, right Match) *BinaryMatch {
	b := &BinaryMatch{
		op:    op,
		left:  left,
		right: right,
		conf:  model.MinConfidence(left.Confidence(), right.Confidence()),
	}
	if op == OperatorAnd {
		b.count = model.MinCount(left.Count(), right.Count())
	} else {
		b.count = model.AddCounts(left.Count(), right.Count())
	}
	b.plan, b.specialized = selectPlan(env, op, left, right)
	return b
}

// Count implements Match.
func (b *BinaryMatch) Count() int64 { return b.count }

// Confidence implements Match.
func (b *BinaryMatch) Confidence() model.Confidence { return b.conf }

// Kind implements Match.
func (b *BinaryMatch) Kind() Kind { return KindBinary }

// Operator returns the combinator.
func (b *BinaryMatch) Operator() Operator { return b.op }

// Left returns the left operand.
func (b *BinaryMatch) Left() Match { return b.left }

// Right returns the right operand.
func (b *BinaryMatch) Right() Match { return b.right }

// Specialized reports whether a type-specialized merge was selected.
func (b *BinaryMatch) Specialized() bool { return b.specialized }

// Strategy names the merge strategy.
func (b *BinaryMatch) Strategy() string { return b.plan.strategy() }

// Fill implements Match.
func (b *BinaryMatch) Fill(ids []model.EntryID, scores []float32) (int, error) {
	return b.plan.fill(ids, scores)
}

// AndWith implements Match.
func (b *BinaryMatch) AndWith(ids []model.EntryID, scores []float32) (int, error) {
	return b.plan.andWith(ids, scores)
}

type plan interface {
	fill(ids []model.EntryID, scores []float32) (int, error)
	andWith(ids []model.EntryID, scores []float32) (int, error)
	strategy() string
}

// window buffers a batch pulled from an operand.
type window struct {
	ids    []model.EntryID
	scores []float32
	pos    int
	n      int
	done   bool
}

func newWindow() window {
	return window{
		ids:    make([]model.EntryID, windowSize),
		scores: make([]float32, windowSize),
	}
}

func (w *window) empty() bool { return w.pos == w.n }

// refillWindow pulls the next batch once the window is consumed.
func refillWindow[M Match](w *window, m M) error {
	if w.pos < w.n || w.done {
		return nil
	}
	n, err := m.Fill(w.ids, w.scores)
	if err != nil {
		return err
	}
	w.pos, w.n = 0, n
	if n == 0 {
		w.done = true
	}
	return nil
}

type drive uint8

const (
	driveSymmetric drive = iota
	driveLeft
	driveRight
)

// andPlan intersects two operands.
type andPlan[L, R Match] struct {
	env   *Env
	left  L
	right R
	drive drive

	l, r   window
	pa, pb []int32
}

func newAndPlan[L, R Match](env *Env, left L, right R) *andPlan[L, R] {
	p := &andPlan[L, R]{env: env, left: left, right: right}
	lc, rc := left.Count(), right.Count()
	if left.Confidence() >= model.Normal && right.Confidence() >= model.Normal && lc != rc {
		if lc < rc {
			p.drive = driveLeft
		} else {
			p.drive = driveRight
		}
	}
	return p
}

func (p *andPlan[L, R]) strategy() string {
	switch p.drive {
	case driveLeft:
		return "drive-left"
	case driveRight:
		return "drive-right"
	default:
		return "merge"
	}
}

func (p *andPlan[L, R]) fill(ids []model.EntryID, scores []float32) (int, error) {
	switch p.drive {
	case driveLeft:
		return fillDriven(p.left, p.right, ids, scores)
	case driveRight:
		return fillDriven(p.right, p.left, ids, scores)
	default:
		return p.merge(ids, scores)
	}
}

// fillDriven pulls batches from the driver and narrows them with the probe.
func fillDriven[D, P Match](driver D, probe P, ids []model.EntryID, scores []float32) (int, error) {
	for {
		n, err := driver.Fill(ids, scores)
		if err != nil || n == 0 {
			return 0, err
		}
		var sc []float32
		if scores != nil {
			sc = scores[:n]
		}
		k, err := probe.AndWith(ids[:n], sc)
		if err != nil {
			return 0, err
		}
		if k > 0 {
			return k, nil
		}
	}
}

// merge intersects windows of both operands.
func (p *andPlan[L, R]) merge(ids []model.EntryID, scores []float32) (int, error) {
	if p.l.ids == nil {
		p.l, p.r = newWindow(), newWindow()
		p.pa = make([]int32, windowSize)
		p.pb = make([]int32, windowSize)
	}
	for {
		if err := refillWindow(&p.l, p.left); err != nil {
			return 0, err
		}
		if err := refillWindow(&p.r, p.right); err != nil {
			return 0, err
		}
		if p.l.empty() || p.r.empty() {
			return 0, nil
		}

		lw := p.l.ids[p.l.pos:p.l.n]
		rw := p.r.ids[p.r.pos:p.r.n]
		if len(lw) > len(ids) {
			lw = lw[:len(ids)]
		}

		k := simd.Intersect(lw, rw, p.pa, p.pb, p.env.mode)
		for x := 0; x < k; x++ {
			li, ri := int(p.pa[x]), int(p.pb[x])
			ids[x] = lw[li]
			if scores != nil {
				scores[x] = p.l.scores[p.l.pos+li] + p.r.scores[p.r.pos+ri]
			}
		}

		limit := min(lw[len(lw)-1], rw[len(rw)-1])
		p.l.pos += upperBound(lw, limit)
		p.r.pos += upperBound(rw, limit)

		if k > 0 {
			return k, nil
		}
	}
}

func (p *andPlan[L, R]) andWith(ids []model.EntryID, scores []float32) (int, error) {
	if p.drive == driveRight {
		return andWithBoth(p.right, p.left, ids, scores)
	}
	return andWithBoth(p.left, p.right, ids, scores)
}

func andWithBoth[A, B Match](first A, second B, ids []model.EntryID, scores []float32) (int, error) {
	n, err := first.AndWith(ids, scores)
	if err != nil || n == 0 {
		return 0, err
	}
	var sc []float32
	if scores != nil {
		sc = scores[:n]
	}
	return second.AndWith(ids[:n], sc)
}

// orPlan unions two operands.
type orPlan[L, R Match] struct {
	env   *Env
	left  L
	right R

	l, r window

	// AndWith scratch.
	a, b   []model.EntryID
	sa, sb []float32
}

func newOrPlan[L, R Match](env *Env, left L, right R) *orPlan[L, R] {
	return &orPlan[L, R]{env: env, left: left, right: right}
}

func (p *orPlan[L, R]) strategy() string { return "union" }

func (p *orPlan[L, R]) fill(ids []model.EntryID, scores []float32) (int, error) {
	if p.l.ids == nil {
		p.l, p.r = newWindow(), newWindow()
	}
	n := 0
	for n < len(ids) {
		if err := refillWindow(&p.l, p.left); err != nil {
			return 0, err
		}
		if err := refillWindow(&p.r, p.right); err != nil {
			return 0, err
		}
		lok, rok := !p.l.empty(), !p.r.empty()
		if !lok && !rok {
			break
		}

		var (
			id    model.EntryID
			score float32
		)
		switch {
		case lok && (!rok || p.l.ids[p.l.pos] < p.r.ids[p.r.pos]):
			id, score = p.l.ids[p.l.pos], p.l.scores[p.l.pos]
			p.l.pos++
		case rok && (!lok || p.r.ids[p.r.pos] < p.l.ids[p.l.pos]):
			id, score = p.r.ids[p.r.pos], p.r.scores[p.r.pos]
			p.r.pos++
		default:
			id = p.l.ids[p.l.pos]
			score = p.l.scores[p.l.pos] + p.r.scores[p.r.pos]
			p.l.pos++
			p.r.pos++
		}

		ids[n] = id
		if scores != nil {
			scores[n] = score
		}
		n++
	}
	return n, nil
}

func (p *orPlan[L, R]) andWith(ids []model.EntryID, scores []float32) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if cap(p.a) < len(ids) {
		p.a = make([]model.EntryID, len(ids))
		p.b = make([]model.EntryID, len(ids))
		p.sa = make([]float32, len(ids))
		p.sb = make([]float32, len(ids))
	}
	a, b := p.a[:len(ids)], p.b[:len(ids)]
	copy(a, ids)
	copy(b, ids)

	// Operands add their contribution onto zeroed scores.
	var sa, sb []float32
	if scores != nil {
		sa, sb = p.sa[:len(ids)], p.sb[:len(ids)]
		clear(sa)
		clear(sb)
	}

	na, err := p.left.AndWith(a, sa)
	if err != nil {
		return 0, err
	}
	nb, err := p.right.AndWith(b, sb)
	if err != nil {
		return 0, err
	}

	n, ia, ib := 0, 0, 0
	for i, id := range ids {
		inA := ia < na && a[ia] == id
		inB := ib < nb && b[ib] == id
		if !inA && !inB {
			continue
		}
		var s float32
		if scores != nil {
			s = scores[i]
		}
		if inA {
			if scores != nil {
				s += sa[ia]
			}
			ia++
		}
		if inB {
			if scores != nil {
				s += sb[ib]
			}
			ib++
		}
		ids[n] = id
		if scores != nil {
			scores[n] = s
		}
		n++
	}
	return n, nil
}

// upperBound returns the number of leading ids <= limit.
func upperBound(ids []model.EntryID, limit model.EntryID) int {
	return sort.Search(len(ids), func(i int) bool { return ids[i] > limit })
}
