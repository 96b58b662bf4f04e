package match

import (
	"bytes"
	"fmt"
	"math"

	"github.com/hupe1980/quarry/internal/simd"
	"github.com/hupe1980/quarry/model"
)

// Comparison is the predicate of a UnaryMatch.
type Comparison uint8

const (
	GreaterThan Comparison = iota
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	Equal
	NotEqual
	// Between is inclusive on both ends.
	Between
	// NotBetween is the exact complement of Between.
	NotBetween
)

// String returns the string representation of a Comparison.
func (c Comparison) String() string {
	switch c {
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Between:
		return "between"
	case NotBetween:
		return "not-between"
	default:
		return fmt.Sprintf("Comparison(%d)", uint8(c))
	}
}

// predicate is a comparison compiled into an inclusive range, optionally
// negated. Entries without a value never lie in the range, so the negated
// predicates accept them.
type predicate struct {
	domain Domain
	empty  bool
	negate bool

	loI, hiI int64
	loF, hiF float64

	// Bytes bounds; a nil bound is open.
	loB, hiB       []byte
	loIncl, hiIncl bool
}

func compilePredicate(cmp Comparison, lo, hi Value) (predicate, error) {
	p := predicate{domain: lo.domain}
	if lo.domain == DomainInvalid {
		return p, fmt.Errorf("%w: missing threshold", ErrDomainMismatch)
	}
	if cmp == Between || cmp == NotBetween {
		if err := checkDomain(hi, lo.domain); err != nil {
			return p, err
		}
	}

	base := cmp
	switch cmp {
	case NotEqual:
		base, p.negate = Equal, true
	case NotBetween:
		base, p.negate = Between, true
	case GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual, Equal, Between:
	default:
		return p, fmt.Errorf("match: unknown comparison %d", cmp)
	}

	switch lo.domain {
	case DomainInt64:
		p.loI, p.hiI = math.MinInt64, math.MaxInt64
		switch base {
		case GreaterThan:
			p.empty = lo.i == math.MaxInt64
			p.loI = lo.i + 1
		case GreaterThanOrEqual:
			p.loI = lo.i
		case LessThan:
			p.empty = lo.i == math.MinInt64
			p.hiI = lo.i - 1
		case LessThanOrEqual:
			p.hiI = lo.i
		case Equal:
			p.loI, p.hiI = lo.i, lo.i
		case Between:
			p.loI, p.hiI = lo.i, hi.i
			p.empty = lo.i > hi.i
		}
	case DomainFloat64:
		p.loF, p.hiF = math.Inf(-1), math.Inf(1)
		switch base {
		case GreaterThan:
			p.empty = math.IsInf(lo.f, 1)
			p.loF = math.Nextafter(lo.f, math.Inf(1))
		case GreaterThanOrEqual:
			p.loF = lo.f
		case LessThan:
			p.empty = math.IsInf(lo.f, -1)
			p.hiF = math.Nextafter(lo.f, math.Inf(-1))
		case LessThanOrEqual:
			p.hiF = lo.f
		case Equal:
			p.loF, p.hiF = lo.f, lo.f
		case Between:
			p.loF, p.hiF = lo.f, hi.f
		}
		// NaN thresholds compare false against everything.
		p.empty = p.empty || math.IsNaN(p.loF) || math.IsNaN(p.hiF)
	case DomainBytes:
		switch base {
		case GreaterThan:
			p.loB = lo.b
		case GreaterThanOrEqual:
			p.loB, p.loIncl = lo.b, true
		case LessThan:
			p.hiB = lo.b
		case LessThanOrEqual:
			p.hiB, p.hiIncl = lo.b, true
		case Equal:
			p.loB, p.loIncl, p.hiB, p.hiIncl = lo.b, true, lo.b, true
		case Between:
			p.loB, p.loIncl, p.hiB, p.hiIncl = lo.b, true, hi.b, true
			p.empty = bytes.Compare(lo.b, hi.b) > 0
		}
		// A nil bound means open, so empty thresholds need a non-nil slice.
		if (base == GreaterThan || base == GreaterThanOrEqual || base == Equal || base == Between) && p.loB == nil {
			p.loB = []byte{}
		}
		if (base == LessThan || base == LessThanOrEqual || base == Equal || base == Between) && p.hiB == nil {
			p.hiB = []byte{}
		}
	}
	return p, nil
}

func (p *predicate) inBytes(v []byte) bool {
	if p.loB != nil {
		c := bytes.Compare(v, p.loB)
		if c < 0 || (c == 0 && !p.loIncl) {
			return false
		}
	}
	if p.hiB != nil {
		c := bytes.Compare(v, p.hiB)
		if c > 0 || (c == 0 && !p.hiIncl) {
			return false
		}
	}
	return true
}

// UnaryMatch filters an inner match by a predicate over a stored value.
type UnaryMatch struct {
	env   *Env
	inner Match
	field model.FieldID
	cmp   Comparison
	lo    Value
	hi    Value
	pred  predicate
	take  int

	emitted int

	present []bool
	ints    []int64
	floats  []float64
	mask    []byte
}

var _ Match = (*UnaryMatch)(nil)

// NewUnary filters inner by cmp over field. hi is only used by Between and
// NotBetween. take limits the number of emitted ids (TakeAll for no limit).
func NewUnary(env *Env, inner Match, field model.FieldID, cmp Comparison, lo, hi Value, take int) (*UnaryMatch, error) {
	pred, err := compilePredicate(cmp, lo, hi)
	if err != nil {
		return nil, err
	}
	if take < 0 {
		take = TakeAll
	}
	return &UnaryMatch{
		env:   env,
		inner: inner,
		field: field,
		cmp:   cmp,
		lo:    lo,
		hi:    hi,
		pred:  pred,
		take:  take,
	}, nil
}

// Count implements Match. The inner count and take bound the result.
func (u *UnaryMatch) Count() int64 {
	if u.take >= 0 {
		return model.MinCount(u.inner.Count(), int64(u.take))
	}
	return u.inner.Count()
}

// Confidence implements Match. Selectivity is unknown.
func (u *UnaryMatch) Confidence() model.Confidence { return model.Low }

// Kind implements Match.
func (u *UnaryMatch) Kind() Kind { return KindUnary }

// Inner returns the filtered match.
func (u *UnaryMatch) Inner() Match { return u.inner }

func (u *UnaryMatch) exhausted() bool {
	return u.take == 0 || (u.take > 0 && u.emitted >= u.take)
}

func (u *UnaryMatch) limit(k int) int {
	if u.take > 0 && u.emitted+k > u.take {
		k = u.take - u.emitted
	}
	u.emitted += k
	return k
}

// Fill implements Match.
func (u *UnaryMatch) Fill(ids []model.EntryID, scores []float32) (int, error) {
	if u.exhausted() {
		return 0, nil
	}
	for {
		n, err := u.inner.Fill(ids, scores)
		if err != nil || n == 0 {
			return 0, err
		}
		k, err := u.filter(ids[:n], scores)
		if err != nil {
			return 0, err
		}
		if k > 0 {
			return u.limit(k), nil
		}
	}
}

// AndWith implements Match.
func (u *UnaryMatch) AndWith(ids []model.EntryID, scores []float32) (int, error) {
	if u.exhausted() {
		return 0, nil
	}
	n, err := u.inner.AndWith(ids, scores)
	if err != nil || n == 0 {
		return 0, err
	}
	k, err := u.filter(ids[:n], scores)
	if err != nil {
		return 0, err
	}
	return u.limit(k), nil
}

// filter compacts ids (and scores) to the entries accepted by the predicate.
func (u *UnaryMatch) filter(ids []model.EntryID, scores []float32) (int, error) {
	n := len(ids)
	if cap(u.present) < n {
		u.present = make([]bool, n)
	}
	present := u.present[:n]

	switch u.pred.domain {
	case DomainInt64:
		if cap(u.ints) < n {
			u.ints = make([]int64, n)
		}
		vals := u.ints[:n]
		for i, id := range ids {
			v, ok, err := u.env.reader.ReadInt64(id, u.field)
			if err != nil {
				return 0, err
			}
			vals[i], present[i] = v, ok
		}
		u.mask = simd.FilterRange(vals, u.pred.loI, u.pred.hiI, u.mask, u.env.mode)
	case DomainFloat64:
		if cap(u.floats) < n {
			u.floats = make([]float64, n)
		}
		vals := u.floats[:n]
		for i, id := range ids {
			v, ok, err := u.env.reader.ReadFloat64(id, u.field)
			if err != nil {
				return 0, err
			}
			vals[i], present[i] = v, ok
		}
		u.mask = simd.FilterRange(vals, u.pred.loF, u.pred.hiF, u.mask, u.env.mode)
	case DomainBytes:
		if cap(u.mask) < n {
			u.mask = make([]byte, n)
		}
		u.mask = u.mask[:n]
		for i, id := range ids {
			v, ok, err := u.env.reader.ReadBytes(id, u.field)
			if err != nil {
				return 0, err
			}
			present[i] = ok
			u.mask[i] = 0
			if ok && u.pred.inBytes(v) {
				u.mask[i] = 1
			}
		}
	}

	k := 0
	for i := range ids {
		in := present[i] && u.mask[i] == 1 && !u.pred.empty
		if in == u.pred.negate {
			continue
		}
		ids[k] = ids[i]
		if scores != nil {
			scores[k] = scores[i]
		}
		k++
	}
	return k, nil
}
