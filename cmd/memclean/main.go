package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"memclean/internal/config"
	"memclean/internal/connectors"
	gmailconnector "memclean/internal/connectors/gmail"
	imapconnector "memclean/internal/connectors/imap"
	"memclean/internal/listener"
	"memclean/internal/pipeline"
	"memclean/internal/storage"
	"memclean/internal/table"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "export file or directory of exports")
		out := fs.String("out", cfg.OutputDir, "output directory")
		zipPath := fs.String("zip", "", "optional zip archive of the cleaned files")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		inputs, err := collectInputs(*input)
		must(err)
		if len(inputs) == 0 {
			must(fmt.Errorf("no csv/xlsx/html exports found under %s", *input))
		}

		cleaner := pipeline.NewCleaner(pipeline.RulesFromConfig(cfg))
		results := pipeline.CleanLocalFiles(cleaner, inputs, *out)

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", res.Name, res.Err)
				continue
			}
			fmt.Printf("cleaned %s: rows=%d cols=%d->%d interests=%d -> %s\n",
				res.Name, res.Stats.InputRows, res.Stats.InputColumns, res.Stats.OutputColumns,
				res.Stats.InterestMatches, res.OutputPath)
		}
		fmt.Printf("clean done files=%d failed=%d\n", len(results), failed)

		if strings.TrimSpace(*zipPath) != "" && len(results) > failed {
			count, err := pipeline.ZipCleanedCSVs(*out, *zipPath)
			must(err)
			fmt.Printf("zipped %d files to %s\n", count, *zipPath)
		}
		if failed > 0 {
			os.Exit(1)
		}
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "", "gmail|imap (default both)")
		ref := fs.String("ref", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		db := openDB(cfg)
		defer db.Close()
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*ref) != "" {
			if strings.TrimSpace(*provider) == "" {
				must(fmt.Errorf("--provider is required with --ref"))
			}
			res, err := processor.ProcessByProviderRef(*provider, *ref)
			must(err)
			fmt.Printf("processed file id=%d tables=%d rows=%d interests=%d\n",
				res.FileID, res.Tables, res.Stats.InputRows, res.Stats.InterestMatches)
			return
		}
		processedFiles, cleanedTables, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending files=%d tables=%d\n", processedFiles, cleanedTables)
	case "mail:listen":
		db := openDB(cfg)
		defer db.Close()
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		in := fs.String("in", "", "cleaned csv path")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*in) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--in and --out are required"))
		}
		f, err := os.Open(*in)
		must(err)
		t, err := table.ReadCSV(f)
		_ = f.Close()
		must(err)
		must(pipeline.ExportTableToXLSX(t, *out))
		fmt.Printf("exported %d rows to %s\n", len(t.Rows), *out)
	case "export:zip":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dir := fs.String("dir", cfg.OutputDir, "directory of cleaned csv files")
		out := fs.String("out", "", "output zip path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		count, err := pipeline.ZipCleanedCSVs(*dir, *out)
		must(err)
		fmt.Printf("zipped %d files to %s\n", count, *out)
	default:
		usage()
		os.Exit(1)
	}
}

func collectInputs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xls", ".html", ".htm":
			out = append(out, filepath.Join(input, entry.Name()))
		}
	}
	return out, nil
}

func openDB(cfg config.Config) *storage.DB {
	db, err := storage.Open(cfg.DBPath)
	must(err)
	return db
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: memclean <command>")
	fmt.Println("commands:")
	fmt.Println("  clean --input=<file|dir> [--out=./out] [--zip=./out/cleaned.zip]")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process [--provider=gmail|imap] [--ref=<message-id>] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --in=./out/clean_members.csv --out=./out/clean_members.xlsx")
	fmt.Println("  export:zip [--dir=./out] --out=./out/cleaned.zip")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
