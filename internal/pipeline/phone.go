package pipeline

import (
	"strings"

	"memclean/internal/table"
)

// CleanPhone keeps only the digit characters of a phone-like value, in their
// original order. No length or format validation is applied.
func CleanPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c *Cleaner) cleanPhones(t *table.Table) {
	for _, col := range c.rules.PhoneFields {
		if !t.HasColumn(col) {
			continue
		}
		// Absent cells become empty strings: the column exists, so the
		// output carries an explicit empty value.
		for _, row := range t.Rows {
			row[col] = CleanPhone(row[col])
		}
	}
}
