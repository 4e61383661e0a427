package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"memclean/internal"
	"memclean/internal/config"
	"memclean/internal/storage"
)

// ProcessingService drives tracked files through the cleaner: read raw,
// extract tables, clean, write cleaned CSVs, record a run.
type ProcessingService struct {
	db      *storage.DB
	cfg     config.Config
	cleaner *Cleaner
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, cleaner: NewCleaner(RulesFromConfig(cfg))}
}

type ProcessResult struct {
	FileID  int
	Tables  int
	Outputs []string
	Stats   internal.CleanStats
}

func (s *ProcessingService) ProcessByProviderRef(provider, ref string) (ProcessResult, error) {
	file, err := s.db.MustFileByProviderRef(provider, ref)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessFile(file)
}

// ProcessPending cleans fetched files in receipt order. A failing file is
// marked with its error and skipped; it never stops the rest of the batch.
func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListFilesByStatus(internal.StatusFetched, limit)
	if err != nil {
		return 0, 0, err
	}
	processedFiles := 0
	cleanedTables := 0
	for _, file := range pending {
		if provider != "" && file.Provider != provider {
			continue
		}
		res, err := s.ProcessFile(file)
		if err != nil {
			_ = s.db.MarkFileError(file.ID, err.Error())
			continue
		}
		processedFiles++
		cleanedTables += res.Tables
	}
	return processedFiles, cleanedTables, nil
}

// ProcessFile cleans one tracked file. Local files are cleaned
// unconditionally; mail is first run through export detection and marked
// skipped when it does not look like a membership export.
func (s *ProcessingService) ProcessFile(file internal.FileRow) (ProcessResult, error) {
	start := time.Now()

	var extracted []ExtractedTable
	subject := ""
	var attachmentNames []string

	if file.Provider == string(internal.ProviderLocal) {
		t, err := ReadTableFromFile(file.RawRef)
		if err != nil {
			return ProcessResult{}, err
		}
		extracted = []ExtractedTable{{Name: file.Name, Table: t}}
	} else {
		raw, err := os.ReadFile(file.RawRef)
		if err != nil {
			return ProcessResult{}, err
		}
		extracted, subject, attachmentNames, err = ExtractTablesFromEmailRaw(raw)
		if err != nil {
			return ProcessResult{}, err
		}

		headers := []string{}
		if len(extracted) > 0 {
			headers = extracted[0].Table.Columns
		}
		detect := DetectMemberExport(firstNonEmpty(subject, file.Name), attachmentNames, headers)
		if !detect.IsExport || len(extracted) == 0 {
			_ = s.db.UpdateFileStatus(file.ID, internal.StatusSkipped)
			_ = s.db.InsertRun(traceID(), file.ID,
				map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
				map[string]int{"tables": 0})
			return ProcessResult{FileID: file.ID}, nil
		}
	}

	result := ProcessResult{FileID: file.ID, Tables: len(extracted)}
	for _, ex := range extracted {
		stats := s.cleaner.Clean(ex.Table)
		outputPath := filepath.Join(s.cfg.OutputDir, CleanedName(ex.Name))
		if err := WriteTableCSV(ex.Table, outputPath); err != nil {
			return ProcessResult{}, err
		}
		result.Outputs = append(result.Outputs, outputPath)
		result.Stats.InputRows += stats.InputRows
		result.Stats.InputColumns += stats.InputColumns
		result.Stats.OutputRows += stats.OutputRows
		result.Stats.OutputColumns += stats.OutputColumns
		result.Stats.InterestMatches += stats.InterestMatches
	}

	if err := s.db.UpdateFileStatus(file.ID, internal.StatusCleaned); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), file.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{
			"tables":          result.Tables,
			"inputRows":       result.Stats.InputRows,
			"inputColumns":    result.Stats.InputColumns,
			"outputRows":      result.Stats.OutputRows,
			"outputColumns":   result.Stats.OutputColumns,
			"interestMatches": result.Stats.InterestMatches,
		})

	return result, nil
}

// CleanLocalFiles is the one-shot path: clean each input path into outDir
// with no run tracking. One bad file reports its error in its result and the
// batch continues.
func CleanLocalFiles(cleaner *Cleaner, inputs []string, outDir string) []internal.CleanResult {
	out := make([]internal.CleanResult, 0, len(inputs))
	for _, input := range inputs {
		name := filepath.Base(input)
		res := internal.CleanResult{Name: name}

		t, err := ReadTableFromFile(input)
		if err != nil {
			res.Err = err
			out = append(out, res)
			continue
		}

		res.Stats = cleaner.Clean(t)
		res.OutputPath = filepath.Join(outDir, CleanedName(name))
		if err := WriteTableCSV(t, res.OutputPath); err != nil {
			res.Err = err
		}
		out = append(out, res)
	}
	return out
}

// CleanedName derives the delivery filename: clean_ prefix, .csv extension,
// filesystem-hostile characters replaced.
func CleanedName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	base = repl.Replace(base)
	if base == "" || base == "." {
		base = "export"
	}
	if len(base) > 120 {
		base = base[:120]
	}
	return "clean_" + base + ".csv"
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
