// Package quarry evaluates structured and full-text queries over an
// immutable index snapshot.
//
// A query is a tree of lazy matches: term lookups, AND/OR combinators, range
// filters over stored values, prefix and substring term expansion, scoring and
// top-k ordering. Every match streams strictly ascending entry ids, so
// combinators merge their operands without materializing them. Only sorting
// and bitmap-backed term expansion buffer results.
//
// # Quick Start
//
//	ix, _ := quarry.Open(memIndex)
//	s, _ := ix.Searcher(ctx)
//	defer s.Close()
//
//	red, _ := s.TermQuery("color", "red")
//	blue, _ := s.TermQuery("color", "blue")
//	cheap, _ := s.Between(s.Or(red, blue), "price", match.Int(10), match.Int(20))
//	top, _ := s.OrderByAscending(cheap, "price", match.DomainInt64, 10)
//	results, _ := s.Search(ctx, top, quarry.TakeAll)
//
// # Searchers
//
// A Searcher owns one snapshot and is used by one goroutine. Any number of
// searchers may be open on the same Index; admission is bounded by
// WithMaxConcurrentSearchers and WithSearcherRate.
//
// # Kernels
//
// Intersections and range filters use accelerated kernels when the CPU
// supports them (AVX2/AVX-512 on amd64, NEON/SVE2 on arm64). Results are
// identical to the scalar kernels, which WithForceScalar selects. The
// QUARRY_SIMD environment variable overrides detection.
package quarry
