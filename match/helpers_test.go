package match

import (
	"context"
	"slices"
	"testing"

	"github.com/hupe1980/quarry/memstore"
	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
	"github.com/hupe1980/quarry/testutil"
	"github.com/stretchr/testify/require"
)

// fixture is a random corpus with an open snapshot.
type fixture struct {
	c    *testutil.Corpus
	snap store.Snapshot

	tag, n, f, name model.FieldID
}

func newFixture(t *testing.T, seed int64) *fixture {
	t.Helper()
	// 40 tags over 600 entries: frequent tags become large sets, rare ones
	// small sets or singles.
	c, err := testutil.NewCorpus(testutil.NewRNG(seed), 600, 1<<20, 40, memstore.DefaultSmallSetLimit)
	require.NoError(t, err)

	snap, err := c.Index.Snapshot(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = snap.Close() })

	fx := &fixture{c: c, snap: snap}
	fx.tag = fx.field(t, "tag")
	fx.n = fx.field(t, "n")
	fx.f = fx.field(t, "f")
	fx.name = fx.field(t, "name")
	return fx
}

func (fx *fixture) field(t *testing.T, name string) model.FieldID {
	t.Helper()
	info, ok := fx.snap.Field(name)
	require.True(t, ok, "field %s", name)
	return info.ID
}

// envs returns every kernel/dispatch combination.
func (fx *fixture) envs() map[string]*Env {
	return map[string]*Env{
		"default":        NewEnv(fx.snap),
		"scalar":         NewEnv(fx.snap, WithScalarKernels()),
		"generic":        NewEnv(fx.snap, WithoutSpecialization()),
		"scalar-generic": NewEnv(fx.snap, WithScalarKernels(), WithoutSpecialization()),
	}
}

func (fx *fixture) term(t *testing.T, env *Env, tag int) *TermMatch {
	t.Helper()
	m, err := ResolveTerm(env, fx.tag, []byte(testutil.Tag(tag)))
	require.NoError(t, err)
	return m
}

func (fx *fixture) postings(tag int) []model.EntryID {
	return append([]model.EntryID{}, fx.c.Postings[testutil.Tag(tag)]...)
}

// drain pulls every result of p in batches of the given size.
func drain(t *testing.T, p Producer, batch int) []model.EntryID {
	t.Helper()
	ids, _ := drainScored(t, p, batch)
	return ids
}

func drainScored(t *testing.T, p Producer, batch int) ([]model.EntryID, []float32) {
	t.Helper()
	buf := make([]model.EntryID, batch)
	sc := make([]float32, batch)
	ids := []model.EntryID{}
	scores := []float32{}
	for {
		n, err := p.Fill(buf, sc)
		require.NoError(t, err)
		if n == 0 {
			return ids, scores
		}
		ids = append(ids, buf[:n]...)
		scores = append(scores, sc[:n]...)
	}
}

// andWithAll probes m with candidates in batches and returns the survivors.
func andWithAll(t *testing.T, m Match, candidates []model.EntryID, batch int) []model.EntryID {
	t.Helper()
	out := []model.EntryID{}
	for start := 0; start < len(candidates); start += batch {
		end := min(start+batch, len(candidates))
		buf := slices.Clone(candidates[start:end])
		n, err := m.AndWith(buf, nil)
		require.NoError(t, err)
		out = append(out, buf[:n]...)
	}
	return out
}

// colors builds the red/blue example index:
// red {1,3,7}, blue {2,3,9} and a price per entry.
func colors(t *testing.T) (store.Snapshot, model.FieldID, model.FieldID) {
	t.Helper()
	prices := map[model.EntryID]int64{1: 5, 2: 15, 3: 10, 7: 20, 9: 25}
	b := memstore.NewBuilder()
	for _, id := range []model.EntryID{1, 2, 3, 7, 9, 11} {
		doc := memstore.NewDocument()
		if p, ok := prices[id]; ok {
			doc.Int("price", p)
		}
		switch id {
		case 1, 7:
			doc.Keyword("color", "red")
		case 3:
			doc.Keyword("color", "red", "blue")
		case 2, 9:
			doc.Keyword("color", "blue")
		default:
			doc.Keyword("color", "green")
		}
		require.NoError(t, b.Add(id, doc))
	}
	ix, err := b.Build()
	require.NoError(t, err)

	snap, err := ix.Snapshot(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = snap.Close() })

	color, ok := snap.Field("color")
	require.True(t, ok)
	price, ok := snap.Field("price")
	require.True(t, ok)
	return snap, color.ID, price.ID
}
