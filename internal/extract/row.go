package extract

import "strings"

// Row holds the fields extracted from one document. Fields without a match are absent,
// never present with an empty placeholder. A Row is not modified after extraction.
type Row struct {
	Source string
	Values map[string]string
	Order  []string // fields present in Values, in rule order
}

// Get returns the value for field and whether it was extracted.
func (r Row) Get(field string) (string, bool) {
	v, ok := r.Values[field]
	return v, ok
}

func (r Row) Has(field string) bool {
	_, ok := r.Values[field]
	return ok
}

func (r Row) Len() int { return len(r.Values) }

// HasValue reports whether field is present and not blank.
func (r Row) HasValue(field string) bool {
	v, ok := r.Values[field]
	return ok && strings.TrimSpace(v) != ""
}

// WithSource returns a copy of r attributed to path.
func (r Row) WithSource(path string) Row {
	r.Source = path
	return r
}
