package match

import (
	"fmt"

	"github.com/hupe1980/quarry/model"
)

// ScoreFunction computes the score of a boosted entry.
// Use ConstantScore, TermFrequencyScore, TermFrequencyScoreFor or CustomScore.
type ScoreFunction interface {
	isScoreFunction()
}

type constantScore struct {
	value float32
}

type termFrequencyScore struct {
	boost    float32
	field    model.FieldID
	term     []byte
	explicit bool
}

type customScore struct {
	fn func(id model.EntryID) (float32, error)
}

func (constantScore) isScoreFunction()      {}
func (termFrequencyScore) isScoreFunction() {}
func (customScore) isScoreFunction()        {}

// ConstantScore scores every entry with v.
func ConstantScore(v float32) ScoreFunction {
	return constantScore{value: v}
}

// TermFrequencyScore scores an entry with the frequency of the boosted term
// times boost. The boosted match must be a TermMatch.
func TermFrequencyScore(boost float32) ScoreFunction {
	return termFrequencyScore{boost: boost}
}

// TermFrequencyScoreFor scores an entry with the frequency of term in field
// times boost, independent of the boosted match.
func TermFrequencyScoreFor(field model.FieldID, term []byte, boost float32) ScoreFunction {
	return termFrequencyScore{boost: boost, field: field, term: term, explicit: true}
}

// CustomScore scores entries with fn.
func CustomScore(fn func(id model.EntryID) (float32, error)) ScoreFunction {
	return customScore{fn: fn}
}

type scorer func(id model.EntryID) (float32, error)

func newScorer(env *Env, inner Match, fn ScoreFunction) (scorer, error) {
	switch f := fn.(type) {
	case constantScore:
		return func(model.EntryID) (float32, error) { return f.value, nil }, nil
	case termFrequencyScore:
		field, term := f.field, f.term
		if !f.explicit {
			tm, ok := inner.(*TermMatch)
			if !ok {
				return nil, fmt.Errorf("%w: term frequency needs a term match, got %s", ErrUnsupportedScoreFunction, inner.Kind())
			}
			field, term = tm.Field(), tm.Term()
		}
		return func(id model.EntryID) (float32, error) {
			tf, err := env.reader.TermFrequency(id, field, term)
			if err != nil {
				return 0, err
			}
			return float32(tf) * f.boost, nil
		}, nil
	case customScore:
		if f.fn == nil {
			return nil, fmt.Errorf("%w: nil custom score", ErrUnsupportedScoreFunction)
		}
		return f.fn, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedScoreFunction, fn)
	}
}

// BoostingMatch replaces the scores of its inner match. Membership and order
// are those of the inner match.
type BoostingMatch struct {
	inner  Match
	fn     ScoreFunction
	score  scorer
	tmpIDs []model.EntryID
}

var _ Match = (*BoostingMatch)(nil)

// Boost wraps inner with a score function.
func Boost(env *Env, inner Match, fn ScoreFunction) (*BoostingMatch, error) {
	s, err := newScorer(env, inner, fn)
	if err != nil {
		return nil, err
	}
	return &BoostingMatch{inner: inner, fn: fn, score: s}, nil
}

// Count implements Match.
func (b *BoostingMatch) Count() int64 { return b.inner.Count() }

// Confidence implements Match.
func (b *BoostingMatch) Confidence() model.Confidence { return b.inner.Confidence() }

// Kind implements Match.
func (b *BoostingMatch) Kind() Kind { return KindBoosting }

// Inner returns the boosted match.
func (b *BoostingMatch) Inner() Match { return b.inner }

// Fill implements Match.
func (b *BoostingMatch) Fill(ids []model.EntryID, scores []float32) (int, error) {
	n, err := b.inner.Fill(ids, nil)
	if err != nil || n == 0 {
		return 0, err
	}
	if scores != nil {
		for i, id := range ids[:n] {
			s, err := b.score(id)
			if err != nil {
				return 0, err
			}
			scores[i] = s
		}
	}
	return n, nil
}

// AndWith implements Match.
func (b *BoostingMatch) AndWith(ids []model.EntryID, scores []float32) (int, error) {
	if scores == nil {
		return b.inner.AndWith(ids, nil)
	}

	if cap(b.tmpIDs) < len(ids) {
		b.tmpIDs = make([]model.EntryID, len(ids))
	}
	orig := b.tmpIDs[:len(ids)]
	copy(orig, ids)

	n, err := b.inner.AndWith(ids, nil)
	if err != nil || n == 0 {
		return 0, err
	}

	// Realign the caller's scores with the surviving ids. j >= k, so
	// scores[j] is read before any write reaches it.
	j := 0
	for k := 0; k < n; k++ {
		for orig[j] != ids[k] {
			j++
		}
		s, err := b.score(ids[k])
		if err != nil {
			return 0, err
		}
		scores[k] = scores[j] + s
		j++
	}
	return n, nil
}
