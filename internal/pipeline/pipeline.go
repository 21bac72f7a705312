// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains the stages end to end: OCR preflight, split,
// roster merge, mail-merge build, and draft composition. Each stage logs to
// the shared writer and a failing stage aborts with a contextual error.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jtexier/evalmailer/internal/catalog"
	"github.com/jtexier/evalmailer/internal/compose"
	"github.com/jtexier/evalmailer/internal/mailmerge"
	"github.com/jtexier/evalmailer/internal/message"
	"github.com/jtexier/evalmailer/internal/ocr"
	"github.com/jtexier/evalmailer/internal/roster"
	"github.com/jtexier/evalmailer/internal/split"
	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

// Options drives one pipeline run.
type Options struct {
	Class    string
	Year     string
	InputPDF string

	// RosterPaths are the raw exports to merge. CSVIn short-circuits the
	// merge with a ready-made merged roster.
	RosterPaths []string
	CSVIn       string

	// SkipSplit reuses the PDFs already present in the output directory.
	SkipSplit bool

	// OutCSV overrides the mail-merge CSV path (default mailmerge_{class}.csv
	// in the output directory).
	OutCSV string

	MessageText string
	MessageFile string
	ConfigDir   string

	// Compose opens drafts after a successful build.
	Compose bool

	Config types.PipelineConfig
}

// Summary aggregates the stage results of one run.
type Summary struct {
	Split      int
	Unresolved int
	Matched    int
	Missing    int
	Drafts     int
}

// Run executes the pipeline. Stages log to w; the first hard failure
// aborts.
func Run(ctx context.Context, opts Options, w io.Writer) (Summary, error) {
	var sum Summary
	started := time.Now()
	class := textutil.NormalizeDivision(opts.Class)
	outDir := opts.Config.Split.OutputDir

	fmt.Fprintf(w, "=== %s — %s ===\n", class, opts.Year)

	// Split, with the scanned-input fallback in front of it.
	if !opts.SkipSplit {
		input, err := preflightOCR(opts.InputPDF, outDir, opts.Config.OCR, w)
		if err != nil {
			return sum, err
		}
		fmt.Fprintf(w, "\n--- split: %s ---\n", filepath.Base(input))
		res, err := split.Split(input, class, opts.Year, opts.Config.Split, w)
		if err != nil {
			return sum, fmt.Errorf("split stage: %w", err)
		}
		sum.Split = len(res.Reports)
		sum.Unresolved = len(res.Unresolved)
	}

	cat, err := mailmerge.Index(outDir)
	if err != nil {
		return sum, fmt.Errorf("indexing split output: %w", err)
	}
	if err := guardDivisions(cat, class); err != nil {
		return sum, err
	}

	// Roster.
	fmt.Fprintf(w, "\n--- roster ---\n")
	merged, err := loadRoster(opts, w)
	if err != nil {
		return sum, fmt.Errorf("roster stage: %w", err)
	}
	classRows, err := roster.FilterDivision(merged, class)
	if err != nil {
		return sum, fmt.Errorf("roster stage: %w", err)
	}
	fmt.Fprintf(w, "Class %s: %d students\n", class, len(classRows))

	// Preflight coverage.
	if err := preflightCoverage(cat, class, len(classRows), opts.Config.MailMerge, w); err != nil {
		return sum, err
	}

	// Build.
	fmt.Fprintf(w, "\n--- build ---\n")
	body, err := message.Resolve(opts.MessageText, opts.MessageFile, opts.ConfigDir)
	if err != nil {
		return sum, fmt.Errorf("build stage: %w", err)
	}
	res := mailmerge.Build(cat, classRows, class, opts.Year, body, w)
	sum.Matched = len(res.Rows)
	sum.Missing = len(res.Missing)

	filled, empty := mailmerge.FillEmails(res.Rows, merged)
	fmt.Fprintf(w, "Emails backfilled: %d, still empty: %d\n", filled, empty)

	if missing := mailmerge.VerifyAttachments(res.Rows, outDir); len(missing) > 0 {
		for _, p := range missing {
			fmt.Fprintf(w, "  missing attachment: %s\n", p)
		}
		if opts.Config.MailMerge.Strict {
			return sum, fmt.Errorf("build stage: %d attachments missing on disk", len(missing))
		}
	}

	outCSV := opts.OutCSV
	if outCSV == "" {
		outCSV = filepath.Join(outDir, fmt.Sprintf("mailmerge_%s.csv", class))
	}
	if err := mailmerge.WriteCSV(outCSV, res.Rows); err != nil {
		return sum, fmt.Errorf("build stage: %w", err)
	}
	fmt.Fprintf(w, "Mail-merge CSV: %s\n", outCSV)
	if res.HasMissing() {
		missCSV := outCSV[:len(outCSV)-len(filepath.Ext(outCSV))] + "_manquants.csv"
		if err := mailmerge.WriteMissing(missCSV, res.Missing); err != nil {
			return sum, fmt.Errorf("build stage: %w", err)
		}
		fmt.Fprintf(w, "Missing report: %s\n", missCSV)
	}

	recordCatalog(ctx, opts, class, started, sum, cat, w)

	// Compose.
	if opts.Compose {
		fmt.Fprintf(w, "\n--- compose ---\n")
		cres, err := compose.OpenDrafts(res.Rows, opts.Config.Compose, outDir, w)
		if err != nil {
			return sum, fmt.Errorf("compose stage: %w", err)
		}
		sum.Drafts = cres.Opened
	}

	fmt.Fprintf(w, "\nDone in %s\n", time.Since(started).Round(time.Second))
	return sum, nil
}

// preflightOCR probes the input for a text layer and, when it looks
// scanned, produces an OCR'd copy to split instead. A missing OCR stack
// degrades to a warning; splitting a scanned PDF then attributes nothing,
// which the guard below reports.
func preflightOCR(input, outDir string, cfg types.OCRConfig, w io.Writer) (string, error) {
	if !cfg.Enabled {
		return input, nil
	}
	probe, err := ocr.Probe(input, cfg.ProbePages)
	if err != nil {
		return "", fmt.Errorf("ocr probe: %w", err)
	}
	min := cfg.MinCharsPerPage
	if min <= 0 {
		min = ocr.DefaultMinCharsPerPage
	}
	if !probe.Scanned(min) {
		fmt.Fprintf(w, "Text layer present (%.0f chars/page), no OCR needed\n", probe.CharsPerPage)
		return input, nil
	}

	fmt.Fprintf(w, "Input looks scanned (%.0f chars/page over %d pages)\n",
		probe.CharsPerPage, probe.PagesSampled)
	engine := ocr.NewEngine(cfg.Binary, cfg.Language)
	if !engine.Available() {
		fmt.Fprintln(w, "warning: ocrmypdf not found, splitting the scanned input as-is")
		for _, h := range ocr.InstallHints() {
			fmt.Fprintf(w, "  install: %s\n", h)
		}
		return input, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	base := filepath.Base(input)
	ocrPath := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))]+"_ocr.pdf")
	fmt.Fprintf(w, "Running OCR -> %s\n", ocrPath)
	if err := engine.Run(input, ocrPath, w); err != nil {
		return "", fmt.Errorf("ocr stage: %w", err)
	}
	return ocrPath, nil
}

// guardDivisions verifies the output directory holds PDFs for exactly the
// requested class. Files from another class mean the wrong input PDF or a
// stale output directory, and building from them would mail the wrong
// families.
func guardDivisions(cat *mailmerge.Catalog, class string) error {
	divisions := cat.Divisions()
	if len(divisions) == 0 {
		return fmt.Errorf("no split PDFs for class %s in the output directory", class)
	}
	for _, d := range divisions {
		if d != class {
			return fmt.Errorf(
				"output directory holds PDFs for class %s as well as %s; wrong input or stale directory",
				d, class)
		}
	}
	return nil
}

func loadRoster(opts Options, w io.Writer) ([]types.RosterRow, error) {
	if opts.CSVIn != "" {
		fmt.Fprintf(w, "Using merged roster %s\n", opts.CSVIn)
		return roster.ReadFile(opts.CSVIn)
	}
	if len(opts.RosterPaths) == 0 {
		return nil, fmt.Errorf("no roster files given")
	}
	merged, err := roster.MergeFiles(opts.RosterPaths, w)
	if err != nil {
		return nil, err
	}

	outDir := opts.Config.Roster.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	mergedCSV := filepath.Join(outDir, "eleves_fusion.csv")
	if err := roster.WriteMerged(mergedCSV, merged); err != nil {
		return nil, err
	}
	mailCSV := filepath.Join(outDir, "eleves_fusion_mails.csv")
	if err := roster.WriteMailVariant(mailCSV, merged); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Merged roster: %s\nMail variant:  %s\n", mergedCSV, mailCSV)
	return merged, nil
}

// preflightCoverage compares per-discipline PDF counts against the class
// size. A low ratio means the split mis-attributed pages; building anyway
// would flood the missing report.
func preflightCoverage(cat *mailmerge.Catalog, class string, classSize int, cfg types.MailMergeConfig, w io.Writer) error {
	if classSize == 0 {
		return nil
	}
	threshold := cfg.PreflightThreshold
	if threshold <= 0 {
		threshold = 0.8
	}
	fr, ma := cat.DisciplineCounts(class)
	frRatio := float64(fr) / float64(classSize)
	maRatio := float64(ma) / float64(classSize)
	fmt.Fprintf(w, "Coverage: %d French, %d maths PDFs for %d students (%.0f%% / %.0f%%)\n",
		fr, ma, classSize, frRatio*100, maRatio*100)
	if frRatio >= threshold && maRatio >= threshold {
		return nil
	}
	if cfg.Strict {
		return fmt.Errorf("coverage below %.0f%% for class %s, aborting (strict)", threshold*100, class)
	}
	fmt.Fprintf(w, "warning: coverage below %.0f%%, check the split output\n", threshold*100)
	return nil
}

// recordCatalog refreshes the report catalog. Failures are logged, never
// fatal; the catalog is an index, not the source of truth.
func recordCatalog(ctx context.Context, opts Options, class string, started time.Time, sum Summary, cat *mailmerge.Catalog, w io.Writer) {
	workDir := opts.Config.Catalog.WorkDir
	if workDir == "" {
		workDir = opts.Config.Split.OutputDir
	}
	store, err := catalog.NewStore(types.CatalogConfig{WorkDir: workDir})
	if err != nil {
		fmt.Fprintf(w, "warning: catalog unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.RecordReports(ctx, cat.Reports(class, opts.Year)); err != nil {
		fmt.Fprintf(w, "warning: recording reports: %v\n", err)
	}
	run := types.RunRecord{
		Class: class, Year: opts.Year,
		StartedAt: started, FinishedAt: time.Now(),
		Split: sum.Split, Matched: sum.Matched, Missing: sum.Missing,
	}
	if err := store.RecordRun(ctx, run); err != nil {
		fmt.Fprintf(w, "warning: recording run: %v\n", err)
	}

	// A YAML copy of the last run next to the database, for humans.
	if data, err := yaml.Marshal(run); err == nil {
		path := filepath.Join(workDir, "index", "last_run.yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(w, "warning: writing %s: %v\n", path, err)
		}
	}
}
