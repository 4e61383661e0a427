package pipeline

import (
	"strings"
	"time"

	"memclean/internal/table"
)

// Accepted four-digit-year layouts, in priority order. The first layout that
// parses wins, so US month-first forms outrank day-first forms on ambiguous
// input.
var fourDigitLayouts = []string{
	"01/02/2006",
	"01-02-2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"01.02.2006",
}

// Two-digit-year layouts, tried only after every four-digit layout failed.
var twoDigitLayouts = []string{
	"01/02/06",
	"01-02-06",
	"01.02.06",
}

// Last-resort layouts for the final best-effort parse.
var freeformLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04",
	"Jan 2 2006",
	"January 2 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2006.01.02",
	"01/02/06",
}

// dateCleaner canonicalizes date-like cell values. It never fails: a value
// no layout can make sense of is returned unchanged.
type dateCleaner struct {
	pivot  int
	output string
	now    func() time.Time
}

func newDateCleaner(pivot int, output string, now func() time.Time) *dateCleaner {
	return &dateCleaner{pivot: pivot, output: output, now: now}
}

// Format parses raw against the layout cascade and renders it with the
// output layout. age, when non-empty and numeric, disambiguates the century
// of a two-digit year; pass "" for date fields with no companion age.
func (d *dateCleaner) Format(raw, age string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	for _, layout := range fourDigitLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(d.output)
		}
	}

	for _, layout := range twoDigitLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		resolved, ok := d.resolveCentury(t, age)
		if !ok {
			// The resolved year made the month/day combination
			// invalid; keep trying the remaining layouts.
			continue
		}
		return resolved.Format(d.output)
	}

	for _, layout := range freeformLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(d.output)
		}
	}

	return raw
}

// resolveCentury picks the century of a two-digit year. With a numeric age
// the estimated birth year (current year minus age) steers years below the
// pivot toward 2000+yy or 1900+yy; years at or above the pivot always
// resolve to 1900+yy. Without a usable age, years below the pivot resolve to
// 2000+yy and the rest keep the layout's own century assumption.
func (d *dateCleaner) resolveCentury(t time.Time, age string) (time.Time, bool) {
	yy := t.Year() % 100
	year := t.Year()

	if n, ok := numericAge(age); ok {
		estimate := d.now().Year() - n
		if yy < d.pivot {
			if estimate >= 2000 {
				year = 2000 + yy
			} else {
				year = 1900 + yy
			}
		} else {
			year = 1900 + yy
		}
	} else if yy < d.pivot {
		year = 2000 + yy
	}

	resolved := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range combinations (Feb 29 in a non-leap
	// year becomes Mar 1), which would fabricate a date. Reject those.
	if resolved.Month() != t.Month() || resolved.Day() != t.Day() {
		return time.Time{}, false
	}
	return resolved, true
}

func numericAge(age string) (int, bool) {
	s := strings.TrimSpace(age)
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// formatDates rewrites every configured date column. The transformation is
// per-row because the age-linked field reads the companion age cell from the
// same row.
func (c *Cleaner) formatDates(t *table.Table) {
	for _, col := range c.rules.DateFields {
		if !t.HasColumn(col) {
			continue
		}
		withAge := col == c.rules.AgeDateField && t.HasColumn(c.rules.AgeColumn)
		for _, row := range t.Rows {
			age := ""
			if withAge {
				age = row[c.rules.AgeColumn]
			}
			row[col] = c.dates.Format(row[col], age)
		}
	}
}
