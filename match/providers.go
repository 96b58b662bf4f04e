package match

import (
	"bytes"

	"github.com/hupe1980/quarry/model"
	"github.com/hupe1980/quarry/store"
)

// TermProvider yields the term matches a MultiTermMatch unions.
type TermProvider interface {
	// Next returns the next term match, or false when no term is left.
	Next() (*TermMatch, bool, error)
	// Reset restarts the provider.
	Reset()
}

// InTermProvider yields the posting lists of a literal term list.
// Terms that are not in the dictionary are skipped.
type InTermProvider struct {
	env   *Env
	field model.FieldID
	terms [][]byte
	pos   int
}

// NewInTermProvider returns a provider over encoded terms.
func NewInTermProvider(env *Env, field model.FieldID, terms [][]byte) *InTermProvider {
	return &InTermProvider{env: env, field: field, terms: terms}
}

// Next implements TermProvider.
func (p *InTermProvider) Next() (*TermMatch, bool, error) {
	for p.pos < len(p.terms) {
		term := p.terms[p.pos]
		p.pos++
		tm, err := ResolveTerm(p.env, p.field, term)
		if err != nil {
			return nil, false, err
		}
		if !tm.IsEmpty() {
			return tm, true, nil
		}
	}
	return nil, false, nil
}

// Reset implements TermProvider.
func (p *InTermProvider) Reset() { p.pos = 0 }

// scanProvider walks a dictionary scan and yields the accepted terms.
type scanProvider struct {
	env    *Env
	field  model.FieldID
	prefix []byte
	accept func(term []byte) bool
	it     store.TermIterator
	done   bool
}

func (p *scanProvider) Next() (*TermMatch, bool, error) {
	if p.done {
		return nil, false, nil
	}
	if p.it == nil {
		dict, ok := p.env.snap.Terms(p.field)
		if !ok {
			p.done = true
			return nil, false, nil
		}
		p.it = dict.Scan(p.prefix)
	}
	for p.it.Next() {
		term := p.it.Term()
		if p.accept != nil && !p.accept(term) {
			continue
		}
		tm, err := NewTermMatch(p.env, p.field, term, p.it.Value())
		if err != nil {
			return nil, false, err
		}
		return tm, true, nil
	}
	p.done = true
	return nil, false, p.it.Err()
}

func (p *scanProvider) Reset() {
	p.it = nil
	p.done = false
}

// StartWithTermProvider yields every term starting with a prefix, in
// dictionary order. An empty prefix yields nothing.
type StartWithTermProvider struct {
	scanProvider
}

// NewStartWithTermProvider returns a prefix provider.
func NewStartWithTermProvider(env *Env, field model.FieldID, prefix []byte) *StartWithTermProvider {
	p := &StartWithTermProvider{scanProvider{env: env, field: field, prefix: prefix}}
	p.done = len(prefix) == 0
	return p
}

// Reset implements TermProvider.
func (p *StartWithTermProvider) Reset() {
	p.scanProvider.Reset()
	p.done = len(p.prefix) == 0
}

// ContainsTermProvider yields every term containing a substring, in
// dictionary order. It scans the whole dictionary. An empty substring yields
// nothing.
type ContainsTermProvider struct {
	scanProvider
	needle []byte
}

// NewContainsTermProvider returns a substring provider.
func NewContainsTermProvider(env *Env, field model.FieldID, needle []byte) *ContainsTermProvider {
	p := &ContainsTermProvider{needle: needle}
	p.scanProvider = scanProvider{
		env:    env,
		field:  field,
		accept: func(term []byte) bool { return bytes.Contains(term, needle) },
		done:   len(needle) == 0,
	}
	return p
}

// Reset implements TermProvider.
func (p *ContainsTermProvider) Reset() {
	p.scanProvider.Reset()
	p.done = len(p.needle) == 0
}
