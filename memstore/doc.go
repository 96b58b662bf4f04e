// Package memstore is an immutable in-memory implementation of store.Source.
//
// Entries are collected with a Builder and frozen into an Index:
//
//	b := memstore.NewBuilder(memstore.WithAnalyzer("title", analysis.Lowercase()))
//	_ = b.Add(1, memstore.NewDocument().
//	    Keyword("color", "red").
//	    Text("title", "Red Car").
//	    Int("year", 2019))
//	ix, _ := b.Build()
//
// Posting lists use the representation that fits their size: one id is stored
// inline as a Single term value, lists up to the small-set limit are packed
// into a shared byte area, larger lists become roaring64 bitmaps.
//
// Fixtures can be loaded from JSON lines, optionally zstd or lz4 compressed
// (see OpenFixture).
package memstore
