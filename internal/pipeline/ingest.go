package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	"github.com/xuri/excelize/v2"

	"memclean/internal/table"
)

// ExtractedTable is one tabular payload pulled out of a raw export, with the
// name the cleaned output should be derived from.
type ExtractedTable struct {
	Name  string
	Table *table.Table
}

// ReadTableFromFile parses a local export by extension: .csv, .xlsx/.xls, or
// .html/.htm.
func ReadTableFromFile(path string) (*table.Table, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return table.ReadCSV(bytes.NewReader(blob))
	case ".xlsx", ".xls":
		return readXLSX(blob)
	case ".html", ".htm":
		return readHTMLTable(blob)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", filepath.Ext(path))
	}
}

// ExtractTablesFromEmailRaw parses a raw RFC-822 message and returns every
// tabular payload it carries: .csv and .xlsx attachments plus an HTML-body
// table if one is present. Unreadable individual parts are skipped, not
// fatal.
func ExtractTablesFromEmailRaw(raw []byte) ([]ExtractedTable, string, []string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, "", nil, err
	}

	out := make([]ExtractedTable, 0, len(env.Attachments))
	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)

		var t *table.Table
		var parseErr error
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".csv":
			t, parseErr = table.ReadCSV(bytes.NewReader(att.Content))
		case ".xlsx", ".xls":
			t, parseErr = readXLSX(att.Content)
		default:
			continue
		}
		if parseErr != nil || len(t.Columns) == 0 {
			continue
		}
		out = append(out, ExtractedTable{Name: filename, Table: t})
	}

	if len(out) == 0 && env.HTML != "" {
		if t, err := readHTMLTable([]byte(env.HTML)); err == nil && len(t.Columns) > 0 {
			out = append(out, ExtractedTable{Name: "body.html", Table: t})
		}
	}

	return out, env.GetHeader("Subject"), attachmentNames, nil
}

// readXLSX loads the first sheet that has a header row plus at least the
// header itself. The first row is the header.
func readXLSX(content []byte) (*table.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		t := table.New(rows[0])
		for _, record := range rows[1:] {
			row := table.Row{}
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
	return nil, fmt.Errorf("xlsx: no non-empty sheet")
}

// readHTMLTable parses the first <table> with at least a header row. Header
// cells come from the first row's th/td elements.
func readHTMLTable(content []byte) (*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var out *table.Table
	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rows := sel.Find("tr")
		if rows.Length() < 1 {
			return true
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(cell.Text()))
		})
		if len(headers) == 0 {
			return true
		}

		t := table.New(headers)
		rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
			row := table.Row{}
			tr.Find("th,td").Each(func(i int, cell *goquery.Selection) {
				if i < len(t.Columns) {
					row[t.Columns[i]] = strings.TrimSpace(cell.Text())
				}
			})
			t.Rows = append(t.Rows, row)
		})
		out = t
		return false
	})

	if out == nil {
		return nil, fmt.Errorf("html: no table found")
	}
	return out, nil
}
