package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadTableFromCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.csv")
	content := "Badge,First Name\nMember,Ada\n,Grace\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadTableFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0]["Badge"] != "Member" {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestReadTableFromXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	records := [][]string{
		{"Badge", "First Name"},
		{"Staff", "Ada"},
	}
	for r, record := range records {
		for c, value := range record {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadTableFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Columns) != 2 || len(tbl.Rows) != 1 {
		t.Fatalf("unexpected shape: cols=%v rows=%d", tbl.Columns, len(tbl.Rows))
	}
	if tbl.Rows[0]["Badge"] != "Staff" {
		t.Fatalf("cell: %q", tbl.Rows[0]["Badge"])
	}
}

func TestReadTableFromHTMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.html")
	content := `<html><body>
<p>Export preview</p>
<table>
  <tr><th>Badge</th><th>First Name</th></tr>
  <tr><td>Member</td><td> Ada </td></tr>
  <tr><td></td><td>Grace</td></tr>
</table>
</body></html>`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadTableFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows: %d", len(tbl.Rows))
	}
	if tbl.Rows[0]["First Name"] != "Ada" {
		t.Fatalf("cell should be trimmed, got %q", tbl.Rows[0]["First Name"])
	}
}

func TestReadTableFromFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTableFromFile(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestExtractTablesFromEmailRaw(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample_export.eml"))
	if err != nil {
		t.Fatal(err)
	}

	tables, subject, attachments, err := ExtractTablesFromEmailRaw(raw)
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Weekly member export" {
		t.Fatalf("subject: %q", subject)
	}
	if len(attachments) != 1 || attachments[0] != "members.csv" {
		t.Fatalf("attachments: %v", attachments)
	}
	if len(tables) != 1 {
		t.Fatalf("tables: %d", len(tables))
	}
	if tables[0].Name != "members.csv" {
		t.Fatalf("table name: %q", tables[0].Name)
	}
	if len(tables[0].Table.Rows) != 2 {
		t.Fatalf("rows: %d", len(tables[0].Table.Rows))
	}
}
