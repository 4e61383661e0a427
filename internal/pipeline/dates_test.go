package pipeline

import (
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func TestFormatDate(t *testing.T) {
	d := newDateCleaner(50, "01-02-2006", fixedClock)

	cases := []struct {
		name  string
		input string
		age   string
		want  string
	}{
		{name: "us slash", input: "03/04/1990", want: "03-04-1990"},
		{name: "us dash", input: "03-04-1990", want: "03-04-1990"},
		{name: "iso", input: "1990-03-04", want: "03-04-1990"},
		{name: "iso slash", input: "1990/03/04", want: "03-04-1990"},
		{name: "us dot", input: "03.04.1990", want: "03-04-1990"},
		{name: "long month", input: "March 4, 1990", want: "03-04-1990"},
		{name: "short month", input: "Mar 4, 1990", want: "03-04-1990"},
		{name: "month first wins ambiguity", input: "04/03/1990", want: "04-03-1990"},
		{name: "day first fallback", input: "13/04/1990", want: "04-13-1990"},

		{name: "two digit, age steers 1900s", input: "03/04/90", age: "34", want: "03-04-1990"},
		{name: "two digit, no age, below pivot", input: "03/04/05", want: "03-04-2005"},
		{name: "two digit, age steers 2000s", input: "03/04/05", age: "21", want: "03-04-2005"},
		{name: "two digit, age steers 1900s below pivot", input: "03/04/05", age: "71", want: "03-04-1905"},
		{name: "two digit at pivot with age", input: "03/04/65", age: "80", want: "03-04-1965"},
		{name: "two digit at pivot without age", input: "03/04/65", want: "03-04-2065"},
		{name: "two digit dash", input: "03-04-90", age: "34", want: "03-04-1990"},
		{name: "two digit dot", input: "03.04.90", age: "34", want: "03-04-1990"},
		{name: "non numeric age ignored", input: "03/04/05", age: "unknown", want: "03-04-2005"},

		{name: "leap day falls through to best effort", input: "02/29/00", age: "90", want: "02-29-2000"},

		{name: "timestamp best effort", input: "1990-03-04 08:15:00", want: "03-04-1990"},
		{name: "unparseable kept", input: "not-a-date", want: "not-a-date"},
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := d.Format(tc.input, tc.age)
			if got != tc.want {
				t.Fatalf("Format(%q, %q) = %q, want %q", tc.input, tc.age, got, tc.want)
			}
		})
	}
}

func TestResolveCenturyRejectsFabricatedDates(t *testing.T) {
	d := newDateCleaner(50, "01-02-2006", fixedClock)

	// Feb 29 parses as 2000 (leap); resolving to 1900 (non-leap) must fail
	// instead of normalizing to Mar 1.
	parsed, err := time.Parse("01/02/06", "02/29/00")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.resolveCentury(parsed, "90"); ok {
		t.Fatal("expected resolution to fail for Feb 29 1900")
	}
}
