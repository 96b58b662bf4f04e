package testutil

import (
	"fmt"
	"math"

	"github.com/hupe1980/quarry/memstore"
	"github.com/hupe1980/quarry/model"
)

// Corpus is a random index together with the ground truth it was built from.
type Corpus struct {
	Index *memstore.Index

	// Postings maps "tag" terms to their ascending entry ids.
	Postings map[string][]model.EntryID
	// IDs lists all entry ids in ascending order.
	IDs []model.EntryID
	// Ints holds the "n" value of every entry that has one.
	Ints map[model.EntryID]int64
	// Floats holds the "f" value of every entry that has one (may be NaN).
	Floats map[model.EntryID]float64
	// Names holds the "name" value of every entry that has one.
	Names map[model.EntryID]string
}

// Tag returns the name of the i-th vocabulary term.
func Tag(i int) string {
	return fmt.Sprintf("t%02d", i)
}

// NewCorpus builds a random corpus of n entries drawn from ids below universe.
//
// Every entry gets a "tag" keyword from a vocabulary of vocab terms, where
// term i is picked with probability 1/(i+1). About 10% of entries lack the
// numeric "n", float "f" (one in ten present values is NaN) and "name" fields.
// smallSetLimit controls the posting representation (see memstore.WithSmallSetLimit).
func NewCorpus(rng *RNG, n int, universe uint64, vocab, smallSetLimit int) (*Corpus, error) {
	c := &Corpus{
		Postings: make(map[string][]model.EntryID),
		Ints:     make(map[model.EntryID]int64),
		Floats:   make(map[model.EntryID]float64),
		Names:    make(map[model.EntryID]string),
	}

	c.IDs = rng.SortedIDs(n, universe)
	b := memstore.NewBuilder(memstore.WithSmallSetLimit(smallSetLimit))
	for _, id := range c.IDs {
		doc := memstore.NewDocument()

		var tags []string
		for i := 0; i < vocab; i++ {
			if rng.Intn(i+1) == 0 {
				tags = append(tags, Tag(i))
				c.Postings[Tag(i)] = append(c.Postings[Tag(i)], id)
			}
		}
		if len(tags) > 0 {
			doc.Keyword("tag", tags...)
		}

		if rng.Intn(10) != 0 {
			v := rng.Int63n(200) - 100
			doc.Int("n", v)
			c.Ints[id] = v
		}
		if rng.Intn(10) != 0 {
			v := rng.Float64()*20 - 10
			if rng.Intn(10) == 0 {
				v = math.NaN()
			}
			doc.Float("f", v)
			c.Floats[id] = v
		}
		if rng.Intn(10) != 0 {
			v := fmt.Sprintf("name-%03d", rng.Intn(50))
			doc.Keyword("name", v)
			c.Names[id] = v
		}

		if err := b.Add(id, doc); err != nil {
			return nil, err
		}
	}

	ix, err := b.Build()
	if err != nil {
		return nil, err
	}
	c.Index = ix
	return c, nil
}
