// Package rules holds the immutable set of field extraction patterns used for a run.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// DefaultRequiredField is the field a row must carry to be kept in the result table.
const DefaultRequiredField = common.DefaultRequiredField

// matchFlags makes '.' match line breaks and ^/$ match at line boundaries.
const matchFlags = "(?ms)"

// Entry is one field_extractors item as it appears in configuration.
type Entry struct {
	Field   string
	Pattern string
}

// Rule is a compiled field pattern.
type Rule struct {
	Field   string
	Pattern string
	re      *regexp.Regexp
}

// Regexp returns the compiled expression, including the dot-all and multi-line flags.
func (r Rule) Regexp() *regexp.Regexp { return r.re }

// RuleSet maps field names to compiled patterns in configuration order.
// It is never mutated after New returns and is safe for concurrent use.
type RuleSet struct {
	rules    []Rule
	index    map[string]int
	required string
}

// Compile compiles a configured pattern the way every rule is matched.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(matchFlags + pattern)
}

// New validates and compiles entries. An empty requiredField selects DefaultRequiredField.
func New(entries []Entry, requiredField string) (*RuleSet, error) {
	if len(entries) == 0 {
		return nil, common.ConfigError("field_extractors must define at least one field", nil)
	}
	requiredField = strings.TrimSpace(requiredField)
	if requiredField == "" {
		requiredField = DefaultRequiredField
	}

	rs := &RuleSet{
		rules:    make([]Rule, 0, len(entries)),
		index:    make(map[string]int, len(entries)),
		required: requiredField,
	}
	for _, e := range entries {
		name := strings.TrimSpace(e.Field)
		if name == "" {
			return nil, common.ConfigError("field name must not be empty", nil)
		}
		if _, dup := rs.index[name]; dup {
			return nil, common.ConfigError(fmt.Sprintf("field %q defined more than once", name), nil)
		}
		if e.Pattern == "" {
			return nil, common.ConfigError(fmt.Sprintf("field %q: pattern must not be empty", name), nil)
		}
		re, err := Compile(e.Pattern)
		if err != nil {
			return nil, common.ConfigError(fmt.Sprintf("field %q: invalid pattern", name), err)
		}
		if re.NumSubexp() < 1 {
			return nil, common.ConfigError(fmt.Sprintf("field %q: pattern has no capturing group", name), nil)
		}
		rs.index[name] = len(rs.rules)
		rs.rules = append(rs.rules, Rule{Field: name, Pattern: e.Pattern, re: re})
	}
	return rs, nil
}

// MustNew is New for tests and static rule tables; it panics on error.
func MustNew(entries []Entry, requiredField string) *RuleSet {
	rs, err := New(entries, requiredField)
	if err != nil {
		panic(err)
	}
	return rs
}

// Rules returns the rules in configuration order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Fields returns the field names in configuration order.
func (rs *RuleSet) Fields() []string {
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Field
	}
	return out
}

func (rs *RuleSet) Len() int { return len(rs.rules) }

// Has reports whether a rule exists for field.
func (rs *RuleSet) Has(field string) bool {
	_, ok := rs.index[field]
	return ok
}

// RequiredField is the field that decides whether a row is kept.
func (rs *RuleSet) RequiredField() string { return rs.required }

// WithRequiredField returns a copy of rs that requires field instead. The compiled rules are shared.
func (rs *RuleSet) WithRequiredField(field string) *RuleSet {
	field = strings.TrimSpace(field)
	if field == "" || field == rs.required {
		return rs
	}
	cp := *rs
	cp.required = field
	return &cp
}
