package export

import (
	"sort"

	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
)

// SourceColumn is the header of the optional column naming each row's document.
const SourceColumn = "source_file"

// Table is the tabular projection of the kept rows. Every entry of Rows has len(Columns) cells;
// a field missing from a row is an empty cell.
type Table struct {
	Columns []string
	Rows    [][]string
}

type TableOptions struct {
	IncludeSource bool
}

// BuildTable lays rows out under the union of their fields, in the order each field is first
// seen walking the rows in order.
func BuildTable(rows []extract.Row, opts TableOptions) Table {
	var (
		cols []string
		seen = map[string]struct{}{}
	)
	if opts.IncludeSource {
		cols = append(cols, SourceColumn)
		seen[SourceColumn] = struct{}{}
	}
	for _, r := range rows {
		for _, f := range fieldOrder(r) {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			cols = append(cols, f)
		}
	}

	t := Table{Columns: cols, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if opts.IncludeSource && i == 0 {
				cells[i] = r.Source
				continue
			}
			cells[i] = r.Values[c]
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// fieldOrder prefers the extraction order and falls back to sorted keys for rows built by hand.
func fieldOrder(r extract.Row) []string {
	if len(r.Order) == len(r.Values) {
		return r.Order
	}
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t Table) Len() int { return len(t.Rows) }
