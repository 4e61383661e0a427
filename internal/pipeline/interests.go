package pipeline

import (
	"strings"

	"memclean/internal/table"
)

// extractInterests decomposes the free-text interest column and the youth
// yes-flag column into the four boolean marker columns. The marker columns
// are created for every row regardless of whether a source column exists;
// consumed source columns are dropped. Returns the total number of keyword
// matches across all rows.
func (c *Cleaner) extractInterests(t *table.Table) int {
	for _, col := range c.rules.InterestColumns {
		t.EnsureColumn(col, "")
	}

	matches := 0
	src := t.FindColumn(func(name string) bool {
		return strings.EqualFold(name, c.rules.InterestColumn)
	})
	if src != "" {
		for _, row := range t.Rows {
			value, ok := row[src]
			if !ok || strings.TrimSpace(value) == "" {
				continue
			}
			lower := strings.ToLower(value)
			for phrase, target := range c.rules.InterestKeywords {
				if strings.Contains(lower, strings.ToLower(phrase)) {
					row[target] = "YES"
					matches++
				}
			}
		}
		t.DropColumn(src)
	}

	if t.HasColumn(c.rules.YouthFlagColumn) {
		for _, row := range t.Rows {
			// Compounds with keyword matches, never resets them.
			if strings.EqualFold(row[c.rules.YouthFlagColumn], "yes") {
				row[c.rules.YouthFlagTarget] = "YES"
			}
		}
		t.DropColumn(c.rules.YouthFlagColumn)
	}

	return matches
}
