package extract

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/rules"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// ExtractFields applies every rule to text. For each rule the first match in document order
// wins and its first capturing group is the value: trimmed, with every line break replaced by
// a single space. A rule that does not match, or whose first group did not take part in the
// match, leaves the field out of the row.
func ExtractFields(text string, rs *rules.RuleSet) Row {
	row := Row{Values: make(map[string]string, rs.Len())}
	for _, rule := range rs.Rules() {
		re := rule.Regexp()
		if re.NumSubexp() < 1 {
			continue
		}
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil || loc[2] < 0 {
			continue
		}
		row.Values[rule.Field] = normalize(text[loc[2]:loc[3]])
		row.Order = append(row.Order, rule.Field)
	}
	return row
}

func normalize(s string) string {
	return lineBreaks.Replace(strings.TrimSpace(s))
}

// RuleExtractor is the pattern-based FieldExtractor.
type RuleExtractor struct {
	rules *rules.RuleSet
}

func NewRuleExtractor(rs *rules.RuleSet) *RuleExtractor {
	return &RuleExtractor{rules: rs}
}

func (e *RuleExtractor) ExtractFields(text string) Row {
	return ExtractFields(text, e.rules)
}

// RequiredField names the field that qualifies a row for the result table.
func (e *RuleExtractor) RequiredField() string {
	return e.rules.RequiredField()
}
