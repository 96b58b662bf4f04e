package match

import (
	"fmt"
	"strings"

	"github.com/hupe1980/quarry/model"
)

// Describe renders the match tree, one node per line.
func Describe(m Match) string {
	var sb strings.Builder
	describe(&sb, m, 0)
	return sb.String()
}

// DescribeSorting renders a sorting match and the tree below it.
func DescribeSorting(s *SortingMatch) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "sorting take=%s order=%s\n", takeString(s.take), comparerString(s.cmp))
	describe(&sb, s.inner, 1)
	return sb.String()
}

func describe(sb *strings.Builder, m Match, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))

	switch v := m.(type) {
	case *TermMatch:
		if v.all {
			sb.WriteString("all-entries")
			break
		}
		fmt.Fprintf(sb, "term field=%d term=%q source=%s", v.field, v.term, v.src)
	case *BinaryMatch:
		fmt.Fprintf(sb, "%s strategy=%s specialized=%t", v.op, v.Strategy(), v.specialized)
	case *UnaryMatch:
		fmt.Fprintf(sb, "unary field=%d %s %s", v.field, v.cmp, v.lo)
		if v.cmp == Between || v.cmp == NotBetween {
			fmt.Fprintf(sb, "..%s", v.hi)
		}
		fmt.Fprintf(sb, " take=%s", takeString(v.take))
	case *MultiTermMatch:
		fmt.Fprintf(sb, "multi-term provider=%T folded=%d", v.provider, len(v.extras))
	case *BoostingMatch:
		fmt.Fprintf(sb, "boost %s", scoreFunctionString(v.fn))
	default:
		fmt.Fprintf(sb, "%s %T", m.Kind(), m)
	}
	fmt.Fprintf(sb, " count=%s confidence=%s\n", countString(m.Count()), m.Confidence())

	switch v := m.(type) {
	case *BinaryMatch:
		describe(sb, v.left, depth+1)
		describe(sb, v.right, depth+1)
	case *UnaryMatch:
		describe(sb, v.inner, depth+1)
	case *MultiTermMatch:
		for _, e := range v.extras {
			describe(sb, e, depth+1)
		}
	case *BoostingMatch:
		describe(sb, v.inner, depth+1)
	}
}

func countString(c int64) string {
	if c == model.UnknownCount {
		return "unknown"
	}
	return fmt.Sprint(c)
}

func takeString(take int) string {
	if take == TakeAll {
		return "all"
	}
	return fmt.Sprint(take)
}

func comparerString(c Comparer) string {
	switch o := c.(type) {
	case fieldOrder:
		dir := "asc"
		if o.descending {
			dir = "desc"
		}
		return fmt.Sprintf("field(%d,%s,%s)", o.field, o.domain, dir)
	case scoreOrder:
		return "score"
	case customOrder:
		return fmt.Sprintf("custom(%d,%s)", o.field, o.domain)
	default:
		return "unknown"
	}
}

func scoreFunctionString(fn ScoreFunction) string {
	switch f := fn.(type) {
	case constantScore:
		return fmt.Sprintf("constant(%g)", f.value)
	case termFrequencyScore:
		if f.explicit {
			return fmt.Sprintf("tf(%d,%q)*%g", f.field, f.term, f.boost)
		}
		return fmt.Sprintf("tf*%g", f.boost)
	case customScore:
		return "custom"
	default:
		return "unknown"
	}
}
