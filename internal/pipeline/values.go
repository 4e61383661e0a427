package pipeline

import "memclean/internal/table"

// normalizeValues defaults empty badge cells to the sentinel, then applies
// the per-column controlled-vocabulary maps. A lookup miss leaves the
// original value in place; rows are never dropped.
func (c *Cleaner) normalizeValues(t *table.Table) {
	if t.HasColumn(c.rules.BadgeColumn) {
		for _, row := range t.Rows {
			if v, ok := row[c.rules.BadgeColumn]; !ok || v == "" {
				row[c.rules.BadgeColumn] = c.rules.BadgeSentinel
			}
		}
	}

	for col, mapping := range c.rules.CellMappings {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			value, ok := row[col]
			if !ok {
				continue
			}
			if mapped, hit := mapping[value]; hit {
				row[col] = mapped
			}
		}
	}
}
