package types

import "time"

// SplitConfig holds settings for the split stage.
type SplitConfig struct {
	// OutputDir is the directory that receives per-student PDFs.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// KeepAccents preserves accented characters in output filenames.
	// When false, accents are stripped (the safer default for mail clients
	// and network shares).
	KeepAccents bool `json:"keep_accents" yaml:"keep_accents"`
}

// OCRConfig holds settings for the scanned-input fallback.
type OCRConfig struct {
	// Enabled turns on the pre-split text probe and, when the input looks
	// scanned, the ocrmypdf pass.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Language is the tesseract/ocrmypdf language code (default "fra";
	// combined codes such as "fra+eng" are accepted).
	Language string `json:"language" yaml:"language"`

	// ProbePages is the number of pages sampled by the text probe (default 6).
	ProbePages int `json:"probe_pages" yaml:"probe_pages"`

	// MinCharsPerPage is the probe threshold below which the input is
	// treated as scanned (default 50).
	MinCharsPerPage float64 `json:"min_chars_per_page" yaml:"min_chars_per_page"`

	// Binary is an explicit path to ocrmypdf; empty means PATH lookup.
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty"`
}

// RosterConfig holds settings for the roster merge stage.
type RosterConfig struct {
	// OutDir is the directory for the merged roster CSVs (default ".").
	OutDir string `json:"out_dir" yaml:"out_dir"`
}

// MailMergeConfig holds settings for the mail-merge build stage.
type MailMergeConfig struct {
	// Year is the school year label used in filenames and subjects
	// (e.g. "2025-2026").
	Year string `json:"year" yaml:"year"`

	// PreflightThreshold is the minimum per-discipline ratio of split PDFs
	// to roster rows before the build runs (default 0.8).
	PreflightThreshold float64 `json:"preflight_threshold" yaml:"preflight_threshold"`

	// Strict aborts the pipeline on preflight alerts and missing attachments
	// instead of warning.
	Strict bool `json:"strict" yaml:"strict"`
}

// ComposeConfig holds settings for the email-draft stage.
type ComposeConfig struct {
	// Binary is an explicit path to the Thunderbird executable; empty means
	// platform-standard locations, then PATH.
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty"`

	// Sleep is the pause between consecutive drafts (default 600ms). The
	// mail client mis-orders compose windows when spawned back to back.
	Sleep time.Duration `json:"sleep" yaml:"sleep"`

	// Limit caps the number of drafts opened (0 = no limit).
	Limit int `json:"limit" yaml:"limit"`

	// Skip ignores the first N rows.
	Skip int `json:"skip" yaml:"skip"`

	// DryRun prints the compose commands without launching the client.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// CatalogConfig holds settings for the local report catalog.
type CatalogConfig struct {
	// WorkDir is the base directory for the catalog (contains index/).
	WorkDir string `json:"work_dir" yaml:"work_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Split     SplitConfig     `json:"split" yaml:"split"`
	OCR       OCRConfig       `json:"ocr" yaml:"ocr"`
	Roster    RosterConfig    `json:"roster" yaml:"roster"`
	MailMerge MailMergeConfig `json:"mail_merge" yaml:"mail_merge"`
	Compose   ComposeConfig   `json:"compose" yaml:"compose"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
}
