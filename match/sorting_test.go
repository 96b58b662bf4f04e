package match

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/hupe1980/quarry/internal/resource"
	"github.com/hupe1980/quarry/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectOrder sorts ids by their value (absent last, ties by id).
func expectOrder[V cmp.Ordered](ids []model.EntryID, values map[model.EntryID]V, descending bool) []model.EntryID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b model.EntryID) int {
		va, oka := values[a]
		vb, okb := values[b]
		oka = oka && !isNaN(va)
		okb = okb && !isNaN(vb)
		switch {
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		case oka && okb:
			c := cmp.Compare(va, vb)
			if descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a, b)
	})
	return out
}

func isNaN[V cmp.Ordered](v V) bool {
	return v != v
}

func TestSortingByField(t *testing.T) {
	fx := newFixture(t, 50)
	ids := fx.postings(0)

	tests := []struct {
		name string
		cmp  Comparer
		want []model.EntryID
	}{
		{"int-asc", Ascending(fx.n, DomainInt64), expectOrder(ids, fx.c.Ints, false)},
		{"int-desc", Descending(fx.n, DomainInt64), expectOrder(ids, fx.c.Ints, true)},
		{"float-asc", Ascending(fx.f, DomainFloat64), expectOrder(ids, fx.c.Floats, false)},
		{"float-desc", Descending(fx.f, DomainFloat64), expectOrder(ids, fx.c.Floats, true)},
		{"bytes-asc", Ascending(fx.name, DomainBytes), expectOrder(ids, fx.c.Names, false)},
		{"bytes-desc", Descending(fx.name, DomainBytes), expectOrder(ids, fx.c.Names, true)},
	}

	for name, env := range fx.envs() {
		t.Run(name, func(t *testing.T) {
			for _, tc := range tests {
				for _, take := range []int{TakeAll, 0, 1, 10, 250, len(ids), len(ids) + 10} {
					s, err := NewSorting(env, fx.term(t, env, 0), tc.cmp, take)
					require.NoError(t, err)
					want := tc.want
					if take >= 0 {
						want = want[:min(take, len(want))]
					}
					assert.Equal(t, want, drain(t, s, 64), "%s take %d", tc.name, take)
				}
			}
		})
	}
}

func TestSortingTopKMatchesTruncatedSort(t *testing.T) {
	fx := newFixture(t, 51)
	env := NewEnv(fx.snap)

	inner := func() Match {
		return Or(env, fx.term(t, env, 2), fx.term(t, env, 3))
	}
	full, err := NewSorting(env, inner(), Descending(fx.n, DomainInt64), TakeAll)
	require.NoError(t, err)
	all := drain(t, full, 100)

	for k := 0; k <= len(all)+1; k += 7 {
		s, err := NewSorting(env, inner(), Descending(fx.n, DomainInt64), k)
		require.NoError(t, err)
		assert.Equal(t, all[:min(k, len(all))], drain(t, s, 5), "k %d", k)
	}
}

func TestSortingByScore(t *testing.T) {
	fx := newFixture(t, 52)
	env := NewEnv(fx.snap)
	score := func(id model.EntryID) float32 { return float32(id % 13) }

	boosted, err := Boost(env, fx.term(t, env, 1), CustomScore(func(id model.EntryID) (float32, error) {
		return score(id), nil
	}))
	require.NoError(t, err)

	s, err := NewSorting(env, boosted, ByScore(), 20)
	require.NoError(t, err)
	ids, scores := drainScored(t, s, 8)

	want := slices.Clone(fx.postings(1))
	slices.SortFunc(want, func(a, b model.EntryID) int {
		if c := cmp.Compare(score(b), score(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	want = want[:min(20, len(want))]
	assert.Equal(t, want, ids)
	for i, id := range ids {
		assert.Equal(t, score(id), scores[i])
	}
}

func TestSortingCustom(t *testing.T) {
	fx := newFixture(t, 53)
	env := NewEnv(fx.snap)
	ids := fx.postings(4)

	byID, err := NewSorting(env, fx.term(t, env, 4), CustomOrder(0, DomainInvalid, CustomFuncs{
		ByID: func(a, b model.EntryID) int { return cmp.Compare(b, a) },
	}), TakeAll)
	require.NoError(t, err)
	want := slices.Clone(ids)
	slices.Reverse(want)
	assert.Equal(t, want, drain(t, byID, 16))

	abs := func(v int64) int64 {
		if v < 0 {
			return -v
		}
		return v
	}
	byAbs, err := NewSorting(env, fx.term(t, env, 4), CustomOrder(fx.n, DomainInt64, CustomFuncs{
		Int64: func(a, b int64) int { return cmp.Compare(abs(a), abs(b)) },
	}), 15)
	require.NoError(t, err)
	absValues := make(map[model.EntryID]int64, len(fx.c.Ints))
	for id, v := range fx.c.Ints {
		absValues[id] = abs(v)
	}
	assert.Equal(t, expectOrder(ids, absValues, false)[:min(15, len(ids))], drain(t, byAbs, 16))

	byName, err := NewSorting(env, fx.term(t, env, 4), CustomOrder(fx.name, DomainBytes, CustomFuncs{
		Bytes: func(a, b []byte) int { return strings.Compare(string(b), string(a)) },
	}), TakeAll)
	require.NoError(t, err)
	assert.Equal(t, expectOrder(ids, fx.c.Names, true), drain(t, byName, 16))
}

func TestSortingErrors(t *testing.T) {
	fx := newFixture(t, 54)
	env := NewEnv(fx.snap)

	comparers := map[string]Comparer{
		"nil":            nil,
		"invalid-domain": Ascending(fx.n, DomainInvalid),
		"missing-func":   CustomOrder(fx.n, DomainInt64, CustomFuncs{Float64: func(a, b float64) int { return 0 }}),
		"custom-invalid": CustomOrder(fx.n, Domain(42), CustomFuncs{}),
	}
	for name, c := range comparers {
		_, err := NewSorting(env, fx.term(t, env, 0), c, TakeAll)
		assert.ErrorIs(t, err, ErrUnsupportedComparer, name)
	}
}

func TestSortingBudget(t *testing.T) {
	fx := newFixture(t, 55)

	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 10 * sortEntrySize})
	env := NewEnv(fx.snap, WithBudget(ctrl))
	require.Greater(t, len(fx.postings(0)), 11)

	s, err := NewSorting(env, fx.term(t, env, 0), Ascending(fx.n, DomainInt64), 10)
	require.NoError(t, err)
	assert.Len(t, drain(t, s, 4), 10)
	assert.Zero(t, ctrl.MemoryUsage())

	s, err = NewSorting(env, fx.term(t, env, 0), Ascending(fx.n, DomainInt64), 11)
	require.NoError(t, err)
	_, err = s.Fill(make([]model.EntryID, 4), nil)
	require.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Zero(t, ctrl.MemoryUsage())

	s, err = NewSorting(env, fx.term(t, env, 0), Ascending(fx.n, DomainInt64), TakeAll)
	require.NoError(t, err)
	_, err = s.Fill(make([]model.EntryID, 4), nil)
	require.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Zero(t, ctrl.MemoryUsage())
}

func TestSortingLargeTake(t *testing.T) {
	fx := newFixture(t, 57)
	want := fx.postings(0)
	require.NotEmpty(t, want)
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: int64(len(want)) * sortEntrySize})
	env := NewEnv(fx.snap, WithBudget(ctrl))

	for _, take := range []int{len(want), len(want) + 1, 1 << 40, math.MaxInt} {
		s, err := NewSorting(env, fx.term(t, env, 0), ByScore(), take)
		require.NoError(t, err)
		assert.Equal(t, want, drain(t, s, 16), "take=%d", take)
		assert.Zero(t, ctrl.MemoryUsage())
	}

	s, err := NewSorting(env, fx.term(t, env, 0), ByScore(), 1<<40)
	require.NoError(t, err)
	require.ErrorIs(t, s.charge(math.MaxInt), ErrMemoryLimitExceeded)
	assert.Zero(t, ctrl.MemoryUsage())
}

func TestSortingClose(t *testing.T) {
	fx := newFixture(t, 56)
	ctrl := resource.NewController(resource.Config{})
	env := NewEnv(fx.snap, WithBudget(ctrl))

	s, err := NewSorting(env, fx.term(t, env, 0), ByScore(), TakeAll)
	require.NoError(t, err)
	assert.Equal(t, KindSorting, s.Kind())

	n, err := s.Fill(make([]model.EntryID, 4), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Positive(t, ctrl.MemoryUsage())

	s.Close()
	assert.Zero(t, ctrl.MemoryUsage())
	n, err = s.Fill(make([]model.EntryID, 4), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSortingNaNFloats(t *testing.T) {
	fx := newFixture(t, 57)
	env := NewEnv(fx.snap)

	s, err := NewSorting(env, fx.term(t, env, 0), Descending(fx.f, DomainFloat64), TakeAll)
	require.NoError(t, err)
	got := drain(t, s, 128)

	// Every NaN or absent entry comes after every comparable one.
	seenMissing := false
	for _, id := range got {
		v, ok := fx.c.Floats[id]
		missing := !ok || math.IsNaN(v)
		if seenMissing {
			assert.True(t, missing, "id %d after a missing value", id)
		}
		seenMissing = seenMissing || missing
	}
}
