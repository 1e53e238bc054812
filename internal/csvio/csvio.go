// Package csvio reads delimited export files into name-addressable rows.
// It is deliberately permissive: ragged rows are tolerated, quoting is
// lazy, and a UTF-8 byte order mark on the first header cell is stripped,
// since exports come from spreadsheet tooling with loose dialects.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is a single data record keyed by header column name. Rows created
// from the same Table share one header slice so column order stays
// available to callers that need positional scans.
type Row struct {
	fields map[string]string
	header []string
}

// Get returns the value of the named column, or the empty string when the
// column is absent or the record was too short to fill it.
func (r Row) Get(column string) string {
	return r.fields[column]
}

// Lookup returns the value of the named column and whether the record
// actually carried it.
func (r Row) Lookup(column string) (string, bool) {
	v, ok := r.fields[column]
	return v, ok
}

// Columns returns the header column names in file order.
func (r Row) Columns() []string {
	return r.header
}

// Table is a fully parsed delimited file: the cleaned header, every data
// row, and the delimiter the file was read with.
type Table struct {
	Header    []string
	Rows      []Row
	Delimiter rune
}

// HasColumn reports whether the header contains the named column.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Header {
		if col == name {
			return true
		}
	}
	return false
}

// Parse reads the raw file contents with the given delimiter. The first
// record becomes the header; each following record becomes a Row. Records
// shorter than the header leave the trailing columns unset, records longer
// than the header have their extra cells dropped.
func Parse(data []byte, delimiter rune) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file contains no records")
	}

	header := make([]string, len(records[0]))
	for i, cell := range records[0] {
		header[i] = strings.TrimSpace(cell)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				fields[col] = record[i]
			}
		}
		rows = append(rows, Row{fields: fields, header: header})
	}

	return &Table{Header: header, Rows: rows, Delimiter: delimiter}, nil
}
