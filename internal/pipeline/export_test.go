package pipeline

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"memclean/internal/table"
)

func cleanedFixture() *table.Table {
	t := table.New([]string{"BADGE", "FIRSTNAME", "SMS"})
	t.Rows = []table.Row{
		{"BADGE": "MEMBER", "FIRSTNAME": "Ada", "SMS": "5551234567"},
		{"BADGE": "GUEST", "FIRSTNAME": "Grace", "SMS": ""},
	}
	return t
}

func TestWriteTableCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "clean_members.csv")
	if err := WriteTableCSV(cleanedFixture(), out); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	back, err := table.ReadCSV(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Rows) != 2 || back.Rows[0]["BADGE"] != "MEMBER" {
		t.Fatalf("round trip: %+v", back)
	}
}

func TestExportTableToXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clean_members.xlsx")
	if err := ExportTableToXLSX(cleanedFixture(), out); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadTableFromFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[1]["FIRSTNAME"] != "Grace" {
		t.Fatalf("round trip: %+v", tbl)
	}
}

func TestZipCleanedCSVs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"clean_a.csv", "clean_b.csv"} {
		if err := WriteTableCSV(cleanedFixture(), filepath.Join(dir, name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "bundle.zip")
	count, err := ZipCleanedCSVs(dir, out)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("count: %d", count)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if len(r.File) != 2 {
		t.Fatalf("zip entries: %d", len(r.File))
	}
}

func TestCleanedName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"members.csv", "clean_members.csv"},
		{"members.xlsx", "clean_members.csv"},
		{"weekly export.csv", "clean_weekly_export.csv"},
		{"", "clean_export.csv"},
	}
	for _, tc := range cases {
		if got := CleanedName(tc.in); got != tc.want {
			t.Fatalf("CleanedName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
