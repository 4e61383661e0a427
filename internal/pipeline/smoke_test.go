package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"memclean/internal"
	"memclean/internal/config"
	"memclean/internal/storage"
	"memclean/internal/table"
)

func TestSmokeLocalFileToCleanedCSV(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	src := filepath.Join("testdata", "sample_members.csv")
	file, err := db.UpsertFile(string(internal.ProviderLocal), src, "sample_members.csv", "", "", "unused", src, internal.StatusFetched)
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	cfg.OutputDir = tmp
	proc := NewProcessingService(db, cfg)

	res, err := proc.ProcessFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tables != 1 {
		t.Fatalf("tables: %d", res.Tables)
	}
	if res.Stats.InputRows != 3 || res.Stats.OutputRows != 3 {
		t.Fatalf("row counts: %+v", res.Stats)
	}
	if res.Stats.InterestMatches != 3 {
		t.Fatalf("interest matches: %d", res.Stats.InterestMatches)
	}

	out := filepath.Join(tmp, "clean_sample_members.csv")
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	cleaned, err := table.ReadCSV(f)
	_ = f.Close()
	if err != nil {
		t.Fatal(err)
	}

	valid := DefaultRules().ValidColumns()
	for _, col := range cleaned.Columns {
		if _, ok := valid[col]; !ok {
			t.Fatalf("output column %q outside allow-list", col)
		}
	}
	if len(cleaned.Rows) != 3 {
		t.Fatalf("output rows: %d", len(cleaned.Rows))
	}
	if cleaned.Rows[2]["BADGE"] != "GUEST" {
		t.Fatalf("badge sentinel: %q", cleaned.Rows[2]["BADGE"])
	}
	if cleaned.Rows[1]["INTEREST_YOUTH"] != "YES" {
		t.Fatal("youth flag lost in round trip")
	}

	updated, err := db.GetFileByID(file.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != internal.StatusCleaned {
		t.Fatalf("status: %q", updated.Status)
	}
}

func TestSmokeEmailToCleanedCSV(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rawBlob, err := os.ReadFile(filepath.Join("testdata", "sample_export.eml"))
	if err != nil {
		t.Fatal(err)
	}
	rawPath := filepath.Join(tmp, "fixture.eml")
	if err := os.WriteFile(rawPath, rawBlob, 0o644); err != nil {
		t.Fatal(err)
	}

	file, err := db.UpsertFile(string(internal.ProviderGmail), "<fixture-export-1@summitropes.example.com>", "Weekly member export", "crm@summitropes.example.com", "2026-08-10T10:00:00Z", "hash", rawPath, internal.StatusFetched)
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	cfg.OutputDir = tmp
	proc := NewProcessingService(db, cfg)

	res, err := proc.ProcessFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tables != 1 {
		t.Fatalf("tables: %d", res.Tables)
	}
	if _, err := os.Stat(filepath.Join(tmp, "clean_members.csv")); err != nil {
		t.Fatal(err)
	}

	updated, err := db.GetFileByID(file.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != internal.StatusCleaned {
		t.Fatalf("status: %q", updated.Status)
	}
}

func TestSmokeNonExportMailSkipped(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	raw := "From: news@summitropes.example.com\r\n" +
		"Subject: April climbing newsletter\r\n" +
		"Message-ID: <newsletter-1@summitropes.example.com>\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"See you at the gym!\r\n"
	rawPath := filepath.Join(tmp, "newsletter.eml")
	if err := os.WriteFile(rawPath, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	file, err := db.UpsertFile(string(internal.ProviderIMAP), "<newsletter-1@summitropes.example.com>", "April climbing newsletter", "news@summitropes.example.com", "2026-08-11T09:00:00Z", "hash2", rawPath, internal.StatusFetched)
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	cfg.OutputDir = tmp
	proc := NewProcessingService(db, cfg)

	res, err := proc.ProcessFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if res.Tables != 0 {
		t.Fatalf("tables: %d", res.Tables)
	}

	updated, err := db.GetFileByID(file.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != internal.StatusSkipped {
		t.Fatalf("status: %q", updated.Status)
	}
}

func TestProcessPendingContinuesPastBadFile(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	broken := filepath.Join(tmp, "broken.csv")
	if err := os.WriteFile(broken, []byte("A,B\n\"unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join("testdata", "sample_members.csv")

	badFile, err := db.UpsertFile(string(internal.ProviderLocal), broken, "broken.csv", "", "2026-08-01T00:00:00Z", "h1", broken, internal.StatusFetched)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertFile(string(internal.ProviderLocal), good, "sample_members.csv", "", "2026-08-02T00:00:00Z", "h2", good, internal.StatusFetched); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	cfg.OutputDir = tmp
	proc := NewProcessingService(db, cfg)

	processed, tables, err := proc.ProcessPending(10, "")
	if err != nil {
		t.Fatal(err)
	}
	if processed != 1 || tables != 1 {
		t.Fatalf("processed=%d tables=%d", processed, tables)
	}

	marked, err := db.GetFileByID(badFile.ID)
	if err != nil {
		t.Fatal(err)
	}
	if marked.Status != internal.StatusError || marked.Error == nil {
		t.Fatalf("bad file not marked: %+v", marked)
	}
}
