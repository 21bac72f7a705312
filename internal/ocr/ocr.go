// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr detects scanned PDFs and produces text-searchable copies
// through ocrmypdf. The split heuristics need an extractable text layer;
// scanner output has none until it goes through here.
package ocr

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

const (
	binOCRmyPDF  = "ocrmypdf"
	binTesseract = "tesseract"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// Engine wraps the ocrmypdf binary.
type Engine struct {
	bin  string
	lang string
	exec executor
}

// NewEngine builds an Engine for the configured binary (default "ocrmypdf")
// and Tesseract language (default "fra").
func NewEngine(bin, lang string) *Engine {
	if bin == "" {
		bin = binOCRmyPDF
	}
	if lang == "" {
		lang = "fra"
	}
	return &Engine{bin: bin, lang: lang, exec: defaultExec}
}

// Available reports whether the ocrmypdf binary is on PATH.
func (e *Engine) Available() bool {
	_, err := e.exec.LookPath(e.bin)
	return err == nil
}

// Run produces a text-searchable copy of inPath at outPath. Pages are
// force-rasterized so that broken embedded text layers from previous OCR
// attempts do not survive; rotation and deskew handle sloppy scans.
func (e *Engine) Run(inPath, outPath string, log io.Writer) error {
	args := []string{
		"--force-ocr",
		"--rotate-pages",
		"--deskew",
		"--clean-final",
		"--skip-text",
		"--language", e.lang,
		inPath,
		outPath,
	}
	if err := e.exec.Run(e.bin, args, log, log); err != nil {
		return fmt.Errorf("running %s on %s: %w", e.bin, inPath, err)
	}
	return nil
}

// StackStatus describes the locally available OCR tooling.
type StackStatus struct {
	TesseractPath string
	OCRmyPDFPath  string
}

// Ready reports whether automatic OCR can run.
func (s StackStatus) Ready() bool {
	return s.TesseractPath != "" && s.OCRmyPDFPath != ""
}

// Degraded reports whether tesseract exists but ocrmypdf does not; the
// pipeline then warns and skips automatic OCR instead of failing.
func (s StackStatus) Degraded() bool {
	return s.TesseractPath != "" && s.OCRmyPDFPath == ""
}

// DetectStack locates tesseract and ocrmypdf on PATH.
func DetectStack() StackStatus {
	return detectStack(defaultExec)
}

func detectStack(ex executor) StackStatus {
	var s StackStatus
	if p, err := ex.LookPath(binTesseract); err == nil {
		s.TesseractPath = p
	}
	if p, err := ex.LookPath(binOCRmyPDF); err == nil {
		s.OCRmyPDFPath = p
	}
	return s
}

// InstallHints returns installation commands for the missing OCR tools on
// the current platform.
func InstallHints() []string {
	return installHints(runtime.GOOS)
}

func installHints(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			"winget install --id UB-Mannheim.TesseractOCR",
			"choco install tesseract",
			"pip install ocrmypdf  (Ghostscript required: winget install ArtifexSoftware.GhostScript)",
		}
	case "darwin":
		return []string{
			"brew install tesseract tesseract-lang",
			"brew install ocrmypdf",
		}
	default:
		return []string{
			"sudo apt install tesseract-ocr tesseract-ocr-fra",
			"sudo apt install ocrmypdf",
		}
	}
}
