package memstore

import "github.com/hupe1980/quarry/analysis"

// DefaultSmallSetLimit is the largest posting list stored as a packed small set.
const DefaultSmallSetLimit = 64

type options struct {
	smallSetLimit int
	analyzers     map[string]analysis.Analyzer
}

// Option configures a Builder.
type Option func(*options)

// WithSmallSetLimit sets the largest posting list stored as a packed small set.
// Longer lists become large sets. A limit below 2 disables small sets.
func WithSmallSetLimit(n int) Option {
	return func(o *options) {
		o.smallSetLimit = n
	}
}

// WithAnalyzer sets the analyzer applied to keyword and text terms of field.
// Text fields without an analyzer are lowercased; keyword fields are stored
// verbatim.
func WithAnalyzer(field string, a analysis.Analyzer) Option {
	return func(o *options) {
		if o.analyzers == nil {
			o.analyzers = make(map[string]analysis.Analyzer)
		}
		o.analyzers[field] = a
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		smallSetLimit: DefaultSmallSetLimit,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
