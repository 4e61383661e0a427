package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row maps column name to cell value. A missing key means the cell is absent,
// which is distinct from an empty string.
type Row map[string]string

// Table is an ordered rectangular record set: Columns fixes the column order,
// Rows hold the cells. Cells may be sparse.
type Table struct {
	Columns []string
	Rows    []Row
}

func New(columns []string) *Table {
	return &Table{Columns: append([]string{}, columns...)}
}

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FindColumn returns the first column matching pred, or "" if none does.
func (t *Table) FindColumn(pred func(name string) bool) string {
	for _, c := range t.Columns {
		if pred(c) {
			return c
		}
	}
	return ""
}

// EnsureColumn appends the column if missing and fills only absent cells
// with value. Cells that already hold a value keep it, so re-running a
// transformation cannot wipe earlier results.
func (t *Table) EnsureColumn(name, value string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
	for _, row := range t.Rows {
		if _, ok := row[name]; !ok {
			row[name] = value
		}
	}
}

// DropColumn removes a column and its cells. Unknown names are a no-op.
func (t *Table) DropColumn(name string) {
	out := t.Columns[:0]
	for _, c := range t.Columns {
		if c != name {
			out = append(out, c)
		}
	}
	t.Columns = out
	for _, row := range t.Rows {
		delete(row, name)
	}
}

// RenameColumn renames from to to, keeping from's position. If to already
// exists, the earlier occurrence is dropped and the renamed column's cells
// win (last-wins by original column order).
func (t *Table) RenameColumn(from, to string) {
	if from == to || !t.HasColumn(from) {
		return
	}
	if t.HasColumn(to) {
		t.DropColumn(to)
	}
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
			break
		}
	}
	for _, row := range t.Rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
}

// Project keeps only the columns for which keep returns true, preserving
// relative order. Rows are untouched beyond dropped cells.
func (t *Table) Project(keep func(name string) bool) {
	kept := make([]string, 0, len(t.Columns))
	dropped := make([]string, 0)
	for _, c := range t.Columns {
		if keep(c) {
			kept = append(kept, c)
		} else {
			dropped = append(dropped, c)
		}
	}
	t.Columns = kept
	for _, row := range t.Rows {
		for _, c := range dropped {
			delete(row, c)
		}
	}
}

// ReadCSV parses a comma-delimited table with a header row. Ragged rows are
// tolerated: short rows leave trailing cells absent, overflow cells beyond
// the header are dropped.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header row")
	}

	t := New(records[0])
	for _, record := range records[1:] {
		row := Row{}
		for i, value := range record {
			if i >= len(t.Columns) {
				break
			}
			row[t.Columns[i]] = value
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV serializes the table back to comma-delimited text with a header
// row. Absent cells are written as empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			record[i] = row[c]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
