package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const sampleConfig = `
field_extractors:
  invoice_number: 'Invoice(?: No\.?| Number)?:\s*(\S+)'
  date: 'Date:\s*(\d{4}-\d{2}-\d{2})'
  total: 'Total:\s*([\d.,]+)'
  vendor: "Vendor:\\s*(.+?)\\n\\n"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadFile(t *testing.T) {
	p := writeFile(t, "config_file.yaml", sampleConfig)

	rs, err := LoadFile(p, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice_number", "date", "total", "vendor"}, rs.Fields())
	assert.Equal(t, "invoice_number", rs.RequiredField())
}

func TestLoadFile_RequiredFieldFromFile(t *testing.T) {
	p := writeFile(t, "config_file.yaml", sampleConfig+"required_field: total\n")

	rs, err := LoadFile(p, nil)
	require.NoError(t, err)
	assert.Equal(t, "total", rs.RequiredField())
}

func TestLoadFile_JSON(t *testing.T) {
	p := writeFile(t, "rules.json", `{"field_extractors": {"invoice_number": "No\\. (\\d+)", "iban": "IBAN (\\w+)"}}`)

	rs, err := LoadFile(p, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice_number", "iban"}, rs.Fields())
}

func TestLoadFile_ExtraTopLevelKeysIgnored(t *testing.T) {
	p := writeFile(t, "config_file.yaml", "project: invoices\n"+sampleConfig)

	rs, err := LoadFile(p, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, rs.Len())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConfiguration)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty document", ""},
		{"not yaml", "field_extractors: [unclosed"},
		{"missing field_extractors", "fields:\n  a: '(x)'\n"},
		{"field_extractors not a mapping", "field_extractors:\n  - '(x)'\n"},
		{"empty field_extractors", "field_extractors: {}\n"},
		{"non-string pattern", "field_extractors:\n  total: 42\n"},
		{"empty pattern", "field_extractors:\n  total: ''\n"},
		{"duplicate field", "field_extractors:\n  a: '(x)'\n  a: '(y)'\n"},
		{"bad regexp", "field_extractors:\n  a: '(x'\n"},
		{"no group", "field_extractors:\n  a: 'x+'\n"},
		{"empty required_field", "field_extractors:\n  a: '(x)'\nrequired_field: ''\n"},
		{"top level list", "- a\n- b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, rs)
			assert.ErrorIs(t, err, common.ErrConfiguration)
			assert.Equal(t, common.CodeConfig, common.CodeOf(err))
		})
	}
}

func TestParse_AliasedPattern(t *testing.T) {
	data := "patterns:\n  num: &num 'No\\. (\\d+)'\nfield_extractors:\n  invoice_number: *num\n"

	rs, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, `No\. (\d+)`, rs.Rules()[0].Pattern)
}

func TestLoadFile_BundledConfig(t *testing.T) {
	rs, err := LoadFile(filepath.Join("..", "..", "config_file.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "invoice_number", rs.RequiredField())
	assert.Equal(t, "invoice_number", rs.Fields()[0])
	assert.True(t, rs.Has("total"))

	re := rs.Rules()[0].Regexp()
	m := re.FindStringSubmatch("ACME Ltd\nInvoice No: INV-2024/017\nInvoice Date: 2024-03-01\n")
	require.Len(t, m, 2)
	assert.Equal(t, "INV-2024/017", m[1])
}
