package match

import (
	"strings"
	"testing"

	"github.com/hupe1980/quarry/internal/resource"
	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (fx *fixture) unionOf(accept func(tag string) bool) []model.EntryID {
	out := []model.EntryID{}
	for tag, ids := range fx.c.Postings {
		if accept(tag) {
			out = testutil.Union(out, ids)
		}
	}
	return out
}

// hits counts the accepted tags of every entry.
func (fx *fixture) hits(accept func(tag string) bool) map[model.EntryID]float32 {
	out := map[model.EntryID]float32{}
	for tag, ids := range fx.c.Postings {
		if !accept(tag) {
			continue
		}
		for _, id := range ids {
			out[id]++
		}
	}
	return out
}

func TestInMatchesSequentialOr(t *testing.T) {
	fx := newFixture(t, 30)
	rng := testutil.NewRNG(30)

	for name, env := range fx.envs() {
		t.Run(name, func(t *testing.T) {
			for size := 1; size <= 17; size++ {
				terms := make([][]byte, size)
				for i := range terms {
					terms[i] = []byte(testutil.Tag(rng.Intn(45)))
				}

				in, err := In(env, fx.tag, terms, nil)
				require.NoError(t, err)
				if size > DefaultInTermThreshold {
					assert.Equal(t, KindMultiTerm, in.Kind())
				}

				var fold Match
				want := []model.EntryID{}
				for _, term := range terms {
					tm, err := ResolveTerm(env, fx.tag, term)
					require.NoError(t, err)
					if fold == nil {
						fold = tm
					} else {
						fold = Or(env, fold, tm)
					}
					want = testutil.Union(want, fx.c.Postings[string(term)])
				}

				got := drain(t, in, 41)
				assert.True(t, testutil.IsStrictlyAscending(got))
				assert.Equal(t, want, got, "size %d", size)
				assert.Equal(t, drain(t, fold, 41), got, "size %d", size)
			}
		})
	}
}

func TestInThreshold(t *testing.T) {
	fx := newFixture(t, 31)
	terms := [][]byte{[]byte("t01"), []byte("t02"), []byte("t03"), []byte("t04")}
	want := testutil.Union(testutil.Union(fx.postings(1), fx.postings(2)), testutil.Union(fx.postings(3), fx.postings(4)))

	tree, err := In(NewEnv(fx.snap), fx.tag, terms, nil)
	require.NoError(t, err)
	assert.Equal(t, KindBinary, tree.Kind())
	assert.Equal(t, model.High, tree.Confidence())
	assert.Equal(t, want, drain(t, tree, 64))

	multi, err := In(NewEnv(fx.snap, WithInTermThreshold(3)), fx.tag, terms, nil)
	require.NoError(t, err)
	assert.Equal(t, KindMultiTerm, multi.Kind())
	assert.Equal(t, model.UnknownCount, multi.Count())
	assert.Equal(t, want, drain(t, multi, 64))

	empty, err := In(NewEnv(fx.snap), fx.tag, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Count())
	assert.Empty(t, drain(t, empty, 8))
}

func TestInThreeTerms(t *testing.T) {
	snap, color, _ := colors(t)
	env := NewEnv(snap)
	term := func(v string) *TermMatch {
		m, err := ResolveTerm(env, color, []byte(v))
		require.NoError(t, err)
		return m
	}

	in, err := In(env, color, [][]byte{[]byte("red"), []byte("blue"), []byte("green")}, nil)
	require.NoError(t, err)
	or := Or(env, Or(env, term("red"), term("blue")), term("green"))
	assert.Equal(t, drain(t, or, 4), drain(t, in, 4))
	assert.Equal(t, []model.EntryID{1, 2, 3, 7, 9, 11}, drain(t, Or(env, Or(env, term("red"), term("blue")), term("green")), 2))
}

func TestInBoostedScores(t *testing.T) {
	fx := newFixture(t, 32)
	terms := [][]byte{[]byte("t01"), []byte("t02"), []byte("t05"), []byte("t01")}
	hits := map[model.EntryID]float32{}
	for _, term := range terms {
		for _, id := range fx.c.Postings[string(term)] {
			hits[id]++
		}
	}

	for _, threshold := range []int{2, 16} {
		env := NewEnv(fx.snap, WithInTermThreshold(threshold))
		in, err := In(env, fx.tag, terms, ConstantScore(1))
		require.NoError(t, err)
		ids, scores := drainScored(t, in, 50)
		require.Len(t, ids, len(hits))
		for i, id := range ids {
			assert.Equal(t, hits[id], scores[i], "threshold %d id %d", threshold, id)
		}
	}
}

func TestStartWith(t *testing.T) {
	fx := newFixture(t, 33)
	env := NewEnv(fx.snap)

	m, err := StartWith(env, fx.tag, []byte("t1"), nil)
	require.NoError(t, err)
	assert.Equal(t, KindMultiTerm, m.Kind())
	assert.Equal(t, model.Low, m.Confidence())
	want := fx.unionOf(func(tag string) bool { return strings.HasPrefix(tag, "t1") })
	assert.Equal(t, want, drain(t, m, 33))

	n, err := m.Fill(make([]model.EntryID, 4), nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, prefix := range []string{"", "zz", "t99"} {
		m, err := StartWith(env, fx.tag, []byte(prefix), nil)
		require.NoError(t, err)
		assert.Empty(t, drain(t, m, 8), "prefix %q", prefix)
	}

	m, err = StartWith(env, model.FieldID(9999), []byte("t"), nil)
	require.NoError(t, err)
	assert.Empty(t, drain(t, m, 8))
}

func TestContains(t *testing.T) {
	fx := newFixture(t, 34)
	env := NewEnv(fx.snap)

	m, err := Contains(env, fx.tag, []byte("3"), nil)
	require.NoError(t, err)
	want := fx.unionOf(func(tag string) bool { return strings.Contains(tag, "3") })
	assert.Equal(t, want, drain(t, m, 16))

	m, err = Contains(env, fx.tag, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, drain(t, m, 16))
}

func TestProviderOrder(t *testing.T) {
	fx := newFixture(t, 35)
	env := NewEnv(fx.snap)

	collect := func(p TermProvider) []string {
		var out []string
		for {
			tm, ok, err := p.Next()
			require.NoError(t, err)
			if !ok {
				return out
			}
			out = append(out, string(tm.Term()))
		}
	}

	sw := NewStartWithTermProvider(env, fx.tag, []byte("t2"))
	first := collect(sw)
	var want []string
	for i := 20; i < 30; i++ {
		if len(fx.c.Postings[testutil.Tag(i)]) > 0 {
			want = append(want, testutil.Tag(i))
		}
	}
	assert.Equal(t, want, first)
	assert.IsIncreasing(t, first)
	sw.Reset()
	assert.Equal(t, first, collect(sw))

	ct := NewContainsTermProvider(env, fx.tag, []byte("7"))
	terms := collect(ct)
	assert.IsIncreasing(t, terms)
	for _, term := range terms {
		assert.Contains(t, term, "7")
	}

	in := NewInTermProvider(env, fx.tag, [][]byte{[]byte("t03"), []byte("missing"), []byte("t01")})
	assert.Equal(t, []string{"t03", "t01"}, collect(in))
}

func TestMultiTermFolding(t *testing.T) {
	fx := newFixture(t, 36)

	for name, env := range fx.envs() {
		t.Run(name, func(t *testing.T) {
			prefix := func() *MultiTermMatch {
				m, err := StartWith(env, fx.tag, []byte("t3"), nil)
				require.NoError(t, err)
				return m
			}
			want := testutil.Union(
				fx.unionOf(func(tag string) bool { return strings.HasPrefix(tag, "t3") }),
				fx.postings(5))

			require.LessOrEqual(t, len(fx.postings(5)), maxFoldCount)
			left := Or(env, prefix(), fx.term(t, env, 5))
			require.IsType(t, &MultiTermMatch{}, left)
			assert.Len(t, left.(*MultiTermMatch).Folded(), 1)
			assert.Equal(t, want, drain(t, left, 19))

			right := Or(env, fx.term(t, env, 5), prefix())
			require.IsType(t, &MultiTermMatch{}, right)
			assert.Equal(t, want, drain(t, right, 19))

			// Large exact operands keep their own branch.
			require.Greater(t, len(fx.postings(0)), maxFoldCount)
			large := Or(env, prefix(), fx.term(t, env, 0))
			assert.Equal(t, KindBinary, large.Kind())
			assert.Equal(t, testutil.Union(
				fx.unionOf(func(tag string) bool { return strings.HasPrefix(tag, "t3") }),
				fx.postings(0)), drain(t, large, 19))

			// Two accumulators are merged as a plain union.
			both := Or(env, prefix(), prefix())
			assert.Equal(t, KindBinary, both.Kind())

			and := And(env, fx.term(t, env, 0), prefix())
			assert.Equal(t, testutil.Intersect(fx.postings(0), fx.unionOf(func(tag string) bool {
				return strings.HasPrefix(tag, "t3")
			})), drain(t, and, 7))
		})
	}
}

func TestMultiTermScores(t *testing.T) {
	fx := newFixture(t, 37)
	env := NewEnv(fx.snap)
	accept := func(tag string) bool { return strings.HasPrefix(tag, "t1") }
	hits := fx.hits(accept)

	m, err := StartWith(env, fx.tag, []byte("t1"), TermFrequencyScore(2))
	require.NoError(t, err)
	ids, scores := drainScored(t, m, 64)
	require.Len(t, ids, len(hits))
	for i, id := range ids {
		assert.Equal(t, 2*hits[id], scores[i], "id %d", id)
	}

	// AndWith adds the accumulated score.
	m, err = StartWith(env, fx.tag, []byte("t1"), ConstantScore(1))
	require.NoError(t, err)
	probe := And(env, fx.term(t, env, 0), m)
	ids, scores = drainScored(t, probe, 64)
	for i, id := range ids {
		assert.Equal(t, hits[id], scores[i], "id %d", id)
	}

	_, err = StartWith(env, fx.tag, []byte("t1"), CustomScore(nil))
	require.ErrorIs(t, err, ErrUnsupportedScoreFunction)
}

// countingProvider counts the terms handed out by a provider.
type countingProvider struct {
	TermProvider
	next int
}

func (p *countingProvider) Next() (*TermMatch, bool, error) {
	p.next++
	return p.TermProvider.Next()
}

// countingMatch counts the ids pulled from a match.
type countingMatch struct {
	Match
	pulled int
}

func (m *countingMatch) Fill(ids []model.EntryID, scores []float32) (int, error) {
	n, err := m.Match.Fill(ids, scores)
	m.pulled += n
	return n, err
}

func TestMultiTermMergesLazily(t *testing.T) {
	fx := newFixture(t, 38)
	ctrl := resource.NewController(resource.Config{})
	env := NewEnv(fx.snap, WithBudget(ctrl))

	provider := &countingProvider{TermProvider: NewStartWithTermProvider(env, fx.tag, []byte("t"))}
	m, err := NewMultiTerm(env, provider, nil)
	require.NoError(t, err)
	tag0 := &countingMatch{Match: fx.term(t, env, 0)}
	require.Greater(t, len(fx.postings(0)), cursorWindow)
	m = m.fold(tag0)

	buf := make([]model.EntryID, 1)
	n, err := m.Fill(buf, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	terms := provider.next - 1
	assert.Positive(t, terms)
	assert.LessOrEqual(t, tag0.pulled, cursorWindow)
	assert.Positive(t, ctrl.MemoryUsage())
	assert.LessOrEqual(t, ctrl.MemoryUsage(), int64(terms+1)*cursorBytes)

	want := fx.unionOf(func(tag string) bool { return strings.HasPrefix(tag, "t") })
	rest := drain(t, m, 7)
	assert.Equal(t, want, append(buf, rest...))
	assert.Equal(t, terms+1, provider.next)
	assert.Equal(t, len(fx.postings(0)), tag0.pulled)
	assert.Zero(t, ctrl.MemoryUsage())
}

func TestMultiTermBudget(t *testing.T) {
	fx := newFixture(t, 39)

	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 2 * cursorBytes})
	env := NewEnv(fx.snap, WithBudget(ctrl))
	m, err := StartWith(env, fx.tag, []byte("t0"), nil)
	require.NoError(t, err)
	_, err = m.Fill(make([]model.EntryID, 4), nil)
	require.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Zero(t, ctrl.MemoryUsage())

	ctrl = resource.NewController(resource.Config{})
	env = NewEnv(fx.snap, WithBudget(ctrl))
	m, err = StartWith(env, fx.tag, []byte("t0"), nil)
	require.NoError(t, err)
	_, err = m.Fill(make([]model.EntryID, 4), nil)
	require.NoError(t, err)
	assert.Positive(t, ctrl.MemoryUsage())
	assert.Equal(t, ctrl.MemoryUsage(), env.MemoryHeld())

	env.ReleaseAll()
	assert.Zero(t, ctrl.MemoryUsage())
	assert.Zero(t, env.MemoryHeld())
}
