package pipeline

import (
	"time"

	"memclean/internal"
	"memclean/internal/table"
)

// Cleaner normalizes one membership export into the canonical schema. It is
// a pure in-memory transformation: the five stages run in order on one table,
// rows are never added, removed, or reordered, and no stage can fail — cell
// level problems always degrade to the original raw value.
type Cleaner struct {
	rules Rules
	valid map[string]struct{}
	dates *dateCleaner
	now   func() time.Time
}

func NewCleaner(rules Rules) *Cleaner {
	c := &Cleaner{
		rules: rules,
		valid: rules.ValidColumns(),
		now:   time.Now,
	}
	c.dates = newDateCleaner(rules.YearPivot, rules.DateOutputLayout, func() time.Time { return c.now() })
	return c
}

// Clean runs the table through rename, interest extraction, value
// normalization, scalar cleaning, and projection, mutating it in place, and
// returns the diagnostic counts for the caller.
func (c *Cleaner) Clean(t *table.Table) internal.CleanStats {
	stats := internal.CleanStats{
		InputRows:    len(t.Rows),
		InputColumns: len(t.Columns),
	}

	c.renameHeaders(t)
	stats.InterestMatches = c.extractInterests(t)
	c.normalizeValues(t)
	c.cleanPhones(t)
	c.formatDates(t)
	c.projectSchema(t)

	stats.OutputRows = len(t.Rows)
	stats.OutputColumns = len(t.Columns)
	return stats
}

// renameHeaders applies the header mapping table to every column whose name
// matches exactly. When two source columns map to the same canonical name the
// later one wins (table.RenameColumn drops the earlier occurrence).
func (c *Cleaner) renameHeaders(t *table.Table) {
	original := append([]string{}, t.Columns...)
	for _, col := range original {
		if canonical, ok := c.rules.HeaderMappings[col]; ok {
			t.RenameColumn(col, canonical)
		}
	}
}

// projectSchema drops every column outside the canonical allow-list. This is
// the terminal stage.
func (c *Cleaner) projectSchema(t *table.Table) {
	t.Project(func(name string) bool {
		_, ok := c.valid[name]
		return ok
	})
}
