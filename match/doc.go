// Package match implements the query match algebra.
//
// A Match is a lazy, pull-based stream of strictly ascending entry ids.
// Matches compose into trees:
//
//	TermMatch        posting list of one term (single, packed or large set)
//	BinaryMatch      AND / OR of two matches
//	UnaryMatch       range and equality filters over stored values
//	MultiTermMatch   union over terms produced by a TermProvider
//	BoostingMatch    assigns scores without changing membership
//	SortingMatch     terminal stage ordering results (optionally top-k)
//
// Nothing is evaluated at construction time. Consumers pull batches with Fill
// or narrow their own batch with AndWith:
//
//	env := match.NewEnv(snapshot)
//	red, _ := match.ResolveTerm(env, colorField, []byte("red"))
//	blue, _ := match.ResolveTerm(env, colorField, []byte("blue"))
//	q := match.Or(env, red, blue)
//
//	ids := make([]model.EntryID, 256)
//	for {
//	    n, err := q.Fill(ids, nil)
//	    if err != nil || n == 0 {
//	        break
//	    }
//	    use(ids[:n])
//	}
//
// # Cost Model
//
// Each match reports a Count estimate and a Confidence. AND lets the smaller
// operand drive only when both estimates are at least Normal; otherwise it
// runs a symmetric merge.
//
// # Kernels
//
// The Env selects the accelerated or the scalar kernels. Both produce
// identical results; WithScalarKernels forces the scalar ones.
//
// # Thread Safety
//
// Matches are single-threaded. Use one tree per goroutine.
package match
