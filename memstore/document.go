package memstore

// Document collects the fields of one entry.
type Document struct {
	keywords map[string][]string
	texts    map[string]string
	ints     map[string]int64
	floats   map[string]float64
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Keyword indexes each term as-is (after the field analyzer, if any).
// The first term is also stored as the field value.
func (d *Document) Keyword(field string, terms ...string) *Document {
	if d.keywords == nil {
		d.keywords = make(map[string][]string)
	}
	d.keywords[field] = append(d.keywords[field], terms...)
	return d
}

// Text splits text on white space and indexes every token.
// The raw text is stored as the field value.
func (d *Document) Text(field, text string) *Document {
	if d.texts == nil {
		d.texts = make(map[string]string)
	}
	d.texts[field] = text
	return d
}

// Int stores an int64 value.
func (d *Document) Int(field string, v int64) *Document {
	if d.ints == nil {
		d.ints = make(map[string]int64)
	}
	d.ints[field] = v
	return d
}

// Float stores a float64 value.
func (d *Document) Float(field string, v float64) *Document {
	if d.floats == nil {
		d.floats = make(map[string]float64)
	}
	d.floats[field] = v
	return d
}

func (d *Document) fieldNames(dst map[string]struct{}) {
	for f := range d.keywords {
		dst[f] = struct{}{}
	}
	for f := range d.texts {
		dst[f] = struct{}{}
	}
	for f := range d.ints {
		dst[f] = struct{}{}
	}
	for f := range d.floats {
		dst[f] = struct{}{}
	}
}
