// Package tabular reads the delimited exports produced by the crawler and
// resolves columns through ordered alias lists, since exporter versions
// disagree on header names.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingColumn is returned when an export lacks a column the caller requires.
var ErrMissingColumn = errors.New("missing column")

const byteOrderMark = "\ufeff"

// Table is a parsed export: a header row plus data rows.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// Row is a single data row bound to its table's header.
type Row struct {
	table  *Table
	values []string
}

// ReadFile opens and parses the export at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// Read parses a delimited export with a header row.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty export")
	}

	// Older exports put a one-cell banner ("Internal - All") above the header.
	if len(records) > 1 && len(records[0]) == 1 && len(records[1]) > 1 {
		records = records[1:]
	}

	header := make([]string, len(records[0]))
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		name = strings.TrimSpace(name)
		header[i] = name
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}

	return &Table{header: header, index: index, rows: records[1:]}, nil
}

// Header returns the column names in file order.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Has reports whether the named column is present.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// HasAny reports whether at least one alias is present.
func (t *Table) HasAny(aliases ...string) bool {
	for _, alias := range aliases {
		if t.Has(alias) {
			return true
		}
	}
	return false
}

// Require returns ErrMissingColumn unless at least one alias is present.
func (t *Table) Require(aliases ...string) error {
	if t.HasAny(aliases...) {
		return nil
	}
	return fmt.Errorf("%w: one of %s", ErrMissingColumn, strings.Join(aliases, ", "))
}

// Rows returns every data row in file order.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, values := range t.rows {
		rows[i] = Row{table: t, values: values}
	}
	return rows
}

// Lookup returns the value of the first alias that is present and non-missing.
func (r Row) Lookup(aliases ...string) (string, bool) {
	for _, alias := range aliases {
		i, ok := r.table.index[alias]
		if !ok || i >= len(r.values) {
			continue
		}
		value := strings.TrimSpace(r.values[i])
		if isMissing(value) {
			continue
		}
		return value, true
	}
	return "", false
}

// Get is Lookup without the presence flag; absent values are the empty string.
func (r Row) Get(aliases ...string) string {
	value, _ := r.Lookup(aliases...)
	return value
}

// GetOr returns fallback when no alias yields a value.
func (r Row) GetOr(fallback string, aliases ...string) string {
	if value, ok := r.Lookup(aliases...); ok {
		return value
	}
	return fallback
}

func isMissing(value string) bool {
	switch strings.ToLower(value) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}
