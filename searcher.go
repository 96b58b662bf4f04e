package quarry

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/quarry/analysis"
	"github.com/hupe1980/quarry/match"
	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
)

// searchBatchSize is the number of results Search pulls per Fill.
const searchBatchSize = 256

// Searcher builds and evaluates queries against one snapshot.
//
// Queries are built from fields named as in the index; unknown fields and
// terms yield empty matches. A Searcher is not safe for concurrent use, and
// the matches it builds must not outlive it.
type Searcher struct {
	id        string
	ix        *Index
	snap      store.Snapshot
	env       *match.Env
	analyzers map[string]analysis.Analyzer
	logger    *Logger
	metrics   MetricsCollector
	closed    bool
}

// ID returns the unique id the searcher logs with.
func (s *Searcher) ID() string { return s.id }

// NumberOfEntries returns the number of entries in the snapshot.
func (s *Searcher) NumberOfEntries() int64 { return s.snap.NumberOfEntries() }

// IsAccelerated reports whether the blocked kernels of internal/simd are in
// use. They are portable Go selected on vector-capable CPUs.
func (s *Searcher) IsAccelerated() bool { return s.env.Accelerated() }

// Close releases the snapshot, the admission slot and any memory still
// charged by abandoned matches. Closing twice is a no-op.
func (s *Searcher) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.env.ReleaseAll()
	err := translateError(s.snap.Close())
	s.ix.ctrl.ReleaseSearcher()
	s.logger.LogSearcherClose(context.Background(), err)
	return err
}

func (s *Searcher) check() error {
	if s.closed {
		return ErrSearcherClosed
	}
	return nil
}

func (s *Searcher) fieldID(name string) model.FieldID {
	info, ok := s.snap.Field(name)
	if !ok {
		return model.UnknownField
	}
	return info.ID
}

// EncodeTerm encodes text the way the index stored the terms of field.
func (s *Searcher) EncodeTerm(field, text string) []byte {
	return analysis.Encode(s.analyzers[field], []byte(text))
}

func (s *Searcher) encodeAll(field string, texts []string) [][]byte {
	out := make([][]byte, len(texts))
	for i, text := range texts {
		out[i] = s.EncodeTerm(field, text)
	}
	return out
}

// TermQuery matches the entries holding term in field.
func (s *Searcher) TermQuery(field, term string) (match.Match, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	m, err := match.ResolveTerm(s.env, s.fieldID(field), s.EncodeTerm(field, term))
	if err != nil {
		return nil, translateError(fmt.Errorf("term %s:%q: %w", field, term, err))
	}
	return m, nil
}

// AllEntries matches every entry of the snapshot.
func (s *Searcher) AllEntries() (match.Match, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	m, err := match.AllEntries(s.env)
	if err != nil {
		return nil, translateError(err)
	}
	return m, nil
}

// InQuery matches the entries holding any of terms in field.
func (s *Searcher) InQuery(field string, terms ...string) (match.Match, error) {
	return s.InQueryBoosted(field, nil, terms...)
}

// InQueryBoosted is InQuery with every term scored by fn. Scores of entries
// holding several of the terms add up.
func (s *Searcher) InQueryBoosted(field string, fn match.ScoreFunction, terms ...string) (match.Match, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	m, err := match.In(s.env, s.fieldID(field), s.encodeAll(field, terms), fn)
	if err != nil {
		return nil, translateError(fmt.Errorf("in %s: %w", field, err))
	}
	return m, nil
}

// StartWithQuery matches the entries holding a term of field that starts with
// prefix. An empty prefix matches nothing.
func (s *Searcher) StartWithQuery(field, prefix string) (match.Match, error) {
	return s.StartWithQueryBoosted(field, prefix, nil)
}

// StartWithQueryBoosted is StartWithQuery with every expanded term scored by fn.
func (s *Searcher) StartWithQueryBoosted(field, prefix string, fn match.ScoreFunction) (match.Match, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	m, err := match.StartWith(s.env, s.fieldID(field), s.EncodeTerm(field, prefix), fn)
	if err != nil {
		return nil, translateError(fmt.Errorf("prefix %s:%q: %w", field, prefix, err))
	}
	return m, nil
}

// ContainsQuery matches the entries holding a term of field that contains
// needle. It scans the whole term dictionary of field. An empty needle
// matches nothing.
func (s *Searcher) ContainsQuery(field, needle string) (match.Match, error) {
	return s.ContainsQueryBoosted(field, needle, nil)
}

// ContainsQueryBoosted is ContainsQuery with every expanded term scored by fn.
func (s *Searcher) ContainsQueryBoosted(field, needle string, fn match.ScoreFunction) (match.Match, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	m, err := match.Contains(s.env, s.fieldID(field), s.EncodeTerm(field, needle), fn)
	if err != nil {
		return nil, translateError(fmt.Errorf("contains %s:%q: %w", field, needle, err))
	}
	return m, nil
}

// And matches the entries matched by both left and right.
func (s *Searcher) And(left, right match.Match) match.Match {
	return match.And(s.env, left, right)
}

// Or matches the entries matched by left or right.
func (s *Searcher) Or(left, right match.Match) match.Match {
	return match.Or(s.env, left, right)
}

// Boost replaces the scores of m with fn.
func (s *Searcher) Boost(m match.Match, fn match.ScoreFunction) (match.Match, error) {
	b, err := match.Boost(s.env, m, fn)
	if err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

// Filter keeps the entries of m whose value of field satisfies cmp. hi is
// only read by Between and NotBetween. take limits the number of entries
// (TakeAll for all of them).
func (s *Searcher) Filter(m match.Match, field string, cmp match.Comparison, lo, hi match.Value, take int) (match.Match, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	u, err := match.NewUnary(s.env, m, s.fieldID(field), cmp, lo, hi, take)
	if err != nil {
		s.logger.WithField(field).Debug("invalid threshold", "comparison", cmp.String(), "error", err)
		return nil, &ErrInvalidThreshold{Field: field, Comparison: cmp, cause: err}
	}
	return u, nil
}

// GreaterThan keeps the entries of m whose field value is > v.
func (s *Searcher) GreaterThan(m match.Match, field string, v match.Value) (match.Match, error) {
	return s.Filter(m, field, match.GreaterThan, v, match.Value{}, TakeAll)
}

// GreaterThanOrEqual keeps the entries of m whose field value is >= v.
func (s *Searcher) GreaterThanOrEqual(m match.Match, field string, v match.Value) (match.Match, error) {
	return s.Filter(m, field, match.GreaterThanOrEqual, v, match.Value{}, TakeAll)
}

// LessThan keeps the entries of m whose field value is < v.
func (s *Searcher) LessThan(m match.Match, field string, v match.Value) (match.Match, error) {
	return s.Filter(m, field, match.LessThan, v, match.Value{}, TakeAll)
}

// LessThanOrEqual keeps the entries of m whose field value is <= v.
func (s *Searcher) LessThanOrEqual(m match.Match, field string, v match.Value) (match.Match, error) {
	return s.Filter(m, field, match.LessThanOrEqual, v, match.Value{}, TakeAll)
}

// Equals keeps the entries of m whose field value is v.
func (s *Searcher) Equals(m match.Match, field string, v match.Value) (match.Match, error) {
	return s.Filter(m, field, match.Equal, v, match.Value{}, TakeAll)
}

// NotEquals keeps the entries of m whose field value is not v, including
// entries without a value.
func (s *Searcher) NotEquals(m match.Match, field string, v match.Value) (match.Match, error) {
	return s.Filter(m, field, match.NotEqual, v, match.Value{}, TakeAll)
}

// Between keeps the entries of m whose field value lies in [lo, hi].
func (s *Searcher) Between(m match.Match, field string, lo, hi match.Value) (match.Match, error) {
	return s.Filter(m, field, match.Between, lo, hi, TakeAll)
}

// NotBetween keeps the entries of m that Between would drop.
func (s *Searcher) NotBetween(m match.Match, field string, lo, hi match.Value) (match.Match, error) {
	return s.Filter(m, field, match.NotBetween, lo, hi, TakeAll)
}

func (s *Searcher) orderBy(m match.Match, c match.Comparer, take int) (*match.SortingMatch, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	sm, err := match.NewSorting(s.env, m, c, take)
	if err != nil {
		return nil, translateError(err)
	}
	return sm, nil
}

// OrderByAscending orders m by the value of field, smallest first, keeping
// at most take entries. Entries without a value come last.
func (s *Searcher) OrderByAscending(m match.Match, field string, domain match.Domain, take int) (*match.SortingMatch, error) {
	return s.orderBy(m, match.Ascending(s.fieldID(field), domain), take)
}

// OrderByDescending orders m by the value of field, largest first, keeping
// at most take entries. Entries without a value come last.
func (s *Searcher) OrderByDescending(m match.Match, field string, domain match.Domain, take int) (*match.SortingMatch, error) {
	return s.orderBy(m, match.Descending(s.fieldID(field), domain), take)
}

// OrderByScore orders m by score, highest first, keeping at most take entries.
func (s *Searcher) OrderByScore(m match.Match, take int) (*match.SortingMatch, error) {
	return s.orderBy(m, match.ByScore(), take)
}

// OrderByCustom orders m with user functions, keeping at most take entries.
func (s *Searcher) OrderByCustom(m match.Match, field string, domain match.Domain, funcs match.CustomFuncs, take int) (*match.SortingMatch, error) {
	return s.orderBy(m, match.CustomOrder(s.fieldID(field), domain, funcs), take)
}

// Explain renders the query tree of q.
func (s *Searcher) Explain(q match.Producer) string {
	switch v := q.(type) {
	case *match.SortingMatch:
		return match.DescribeSorting(v)
	case match.Match:
		return match.Describe(v)
	default:
		return fmt.Sprintf("%T\n", q)
	}
}

// Search evaluates q and returns at most limit results (TakeAll for all of
// them) in the order q produces them. Results carry scores; unscored queries
// score 0. ctx is checked between batches. A sorting query is closed once
// Search returns.
func (s *Searcher) Search(ctx context.Context, q match.Producer, limit int) ([]model.Result, error) {
	start := time.Now()
	results, err := s.search(ctx, q, limit)
	err = translateError(err)
	s.metrics.RecordSearch(len(results), time.Since(start), err)
	s.logger.LogSearch(ctx, limit, len(results), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Searcher) search(ctx context.Context, q match.Producer, limit int) ([]model.Result, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if sm, ok := q.(*match.SortingMatch); ok {
		defer sm.Close()
	}
	if limit == 0 {
		return []model.Result{}, nil
	}
	s.logger.LogPlan(ctx, s.Explain(q))

	ids := make([]model.EntryID, searchBatchSize)
	scores := make([]float32, searchBatchSize)
	results := []model.Result{}
	for limit < 0 || len(results) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		want := searchBatchSize
		if limit > 0 {
			want = min(want, limit-len(results))
		}
		n, err := q.Fill(ids[:want], scores[:want])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		for i := range n {
			results = append(results, model.Result{ID: ids[i], Score: scores[i]})
		}
	}
	return results, nil
}
