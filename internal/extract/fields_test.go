package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/rules"
)

func ruleSet(t *testing.T, kv ...string) *rules.RuleSet {
	t.Helper()
	require.Zero(t, len(kv)%2)
	var entries []rules.Entry
	for i := 0; i < len(kv); i += 2 {
		entries = append(entries, rules.Entry{Field: kv[i], Pattern: kv[i+1]})
	}
	rs, err := rules.New(entries, "")
	require.NoError(t, err)
	return rs
}

func TestExtractFields_FirstLineOnly(t *testing.T) {
	rs := ruleSet(t, "invoice_number", `Invoice:\s*(.+?)\n`)

	row := ExtractFields("Invoice: 12345\nDate: 2024-01-01", rs)
	assert.Equal(t, map[string]string{"invoice_number": "12345"}, row.Values)
	assert.Equal(t, []string{"invoice_number"}, row.Order)
}

func TestExtractFields_CollapsesLineBreaks(t *testing.T) {
	rs := ruleSet(t, "vendor", `Vendor:(.*?)Address`)

	row := ExtractFields("Vendor:\n  Acme\nCorp  \nAddress: 1 Main St", rs)
	v, ok := row.Get("vendor")
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", v)
}

func TestExtractFields_WindowsLineBreaks(t *testing.T) {
	rs := ruleSet(t, "vendor", `Vendor: (.*?);`)

	row := ExtractFields("Vendor: Acme\r\nCorp\rLtd;", rs)
	assert.Equal(t, "Acme Corp Ltd", row.Values["vendor"])
}

func TestExtractFields_FirstOccurrenceWins(t *testing.T) {
	rs := ruleSet(t, "invoice_number", `Invoice No\. (\d+)`)

	row := ExtractFields("Invoice No. 111\npage 2\nInvoice No. 222\n", rs)
	assert.Equal(t, "111", row.Values["invoice_number"])
}

func TestExtractFields_FirstGroupOnly(t *testing.T) {
	rs := ruleSet(t, "total", `Total: (\d+)\.(\d+)`)

	row := ExtractFields("Total: 99.50", rs)
	assert.Equal(t, "99", row.Values["total"])
}

func TestExtractFields_NoMatchIsAbsent(t *testing.T) {
	rs := ruleSet(t,
		"invoice_number", `Invoice: (\S+)`,
		"iban", `IBAN: (\S+)`,
	)

	row := ExtractFields("Invoice: A-1\n", rs)
	assert.True(t, row.Has("invoice_number"))
	assert.False(t, row.Has("iban"))
	_, present := row.Values["iban"]
	assert.False(t, present)
	assert.Equal(t, 1, row.Len())
}

func TestExtractFields_UnmatchedOptionalGroupIsAbsent(t *testing.T) {
	rs := ruleSet(t, "po", `Order(?: PO (\d+))?`)

	row := ExtractFields("Order without reference", rs)
	assert.False(t, row.Has("po"))
}

func TestExtractFields_EmptyCaptureIsPresentButBlank(t *testing.T) {
	rs := ruleSet(t, "invoice_number", `Invoice:([ ]*)\n`)

	row := ExtractFields("Invoice:   \n", rs)
	assert.True(t, row.Has("invoice_number"))
	assert.False(t, row.HasValue("invoice_number"))
}

func TestExtractFields_EmptyText(t *testing.T) {
	rs := ruleSet(t, "invoice_number", `Invoice: (\S+)`)

	row := ExtractFields("", rs)
	assert.Equal(t, 0, row.Len())
	assert.NotNil(t, row.Values)
}

func TestExtractFields_AllRulesMatch(t *testing.T) {
	rs := ruleSet(t,
		"invoice_number", `Invoice Number:\s*(\S+)`,
		"date", `Date:\s*(\d{2}/\d{2}/\d{4})`,
		"total", `Total due:\s*\$?([\d,]+\.\d{2})`,
		"customer", `Bill to:\s*(.+?)\n\n`,
	)
	text := "ACME INC\nInvoice Number: INV-2024-007\nDate: 03/15/2024\n" +
		"Bill to: Jane Doe\nSpringfield\n\nTotal due: $1,234.50\n"

	row := ExtractFields(text, rs)
	assert.Equal(t, map[string]string{
		"invoice_number": "INV-2024-007",
		"date":           "03/15/2024",
		"total":          "1,234.50",
		"customer":       "Jane Doe Springfield",
	}, row.Values)
	assert.Equal(t, rs.Fields(), row.Order)
}

func TestExtractFields_Deterministic(t *testing.T) {
	rs := ruleSet(t,
		"invoice_number", `Invoice: (\S+)`,
		"date", `Date: (\S+)`,
		"total", `Total: (\S+)`,
	)
	text := "Invoice: 7\nTotal: 10\n"

	first := ExtractFields(text, rs)
	second := ExtractFields(text, rs)
	assert.Equal(t, first, second)
}

func TestRuleExtractor(t *testing.T) {
	rs := ruleSet(t, "invoice_number", `#(\d+)`).WithRequiredField("invoice_number")
	e := NewRuleExtractor(rs)

	var fe FieldExtractor = e
	row := fe.ExtractFields("order #42")
	assert.Equal(t, "42", row.Values["invoice_number"])
	assert.Equal(t, "invoice_number", e.RequiredField())
}

func TestRow_Helpers(t *testing.T) {
	row := Row{Values: map[string]string{"a": "x", "b": " "}}
	assert.True(t, row.HasValue("a"))
	assert.False(t, row.HasValue("b"))
	assert.False(t, row.HasValue("c"))

	withSrc := row.WithSource("/in/a.pdf")
	assert.Equal(t, "/in/a.pdf", withSrc.Source)
	assert.Empty(t, row.Source)
}
