//go:build mage

// Package main contains Mage build targets for evalmailer developer tooling.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"

	"github.com/jtexier/evalmailer/internal/ocr"
)

// projectDirs lists the working directories a school-year workspace expects.
var projectDirs = []string{
	"eleves_pdfs",
	"exports",
	"index",
}

// Init creates the workspace directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Workspace directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "evalmailer"
	cmdPkg  = "./cmd/evalmailer"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	cmd := exec.Command("go", "build", "-o", out, cmdPkg)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// packageTargets are the platforms teachers actually run this on: the
// school Windows machines and personal Macs.
var packageTargets = []struct {
	goos, goarch string
}{
	{"windows", "amd64"},
	{"darwin", "arm64"},
	{"darwin", "amd64"},
	{"linux", "amd64"},
}

// Package cross-compiles release binaries into dist/. The sqlite driver
// needs cgo, so cross-builds only work from a host with the matching
// toolchains; Package skips targets whose build fails and reports them.
func Package() error {
	mg.Deps(Build)
	if err := os.MkdirAll("dist", 0o755); err != nil {
		return fmt.Errorf("creating dist: %w", err)
	}
	var failed []string
	for _, t := range packageTargets {
		name := fmt.Sprintf("%s_%s_%s", binName, t.goos, t.goarch)
		if t.goos == "windows" {
			name += ".exe"
		}
		out := filepath.Join("dist", name)
		cmd := exec.Command("go", "build", "-o", out, cmdPkg)
		cmd.Env = append(os.Environ(), "GOOS="+t.goos, "GOARCH="+t.goarch, "CGO_ENABLED=1")
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			failed = append(failed, t.goos+"/"+t.goarch)
			continue
		}
		fmt.Printf("Built %s\n", out)
	}
	if len(failed) > 0 {
		fmt.Printf("Skipped (no cross toolchain): %v\n", failed)
	}
	return nil
}

// Prereqs reports the external tools the pipeline needs on this machine
// and prints installation hints for what is missing.
func Prereqs() error {
	stack := ocr.DetectStack()
	status := func(path string) string {
		if path != "" {
			return path
		}
		return "missing"
	}
	fmt.Printf("tesseract: %s\n", status(stack.TesseractPath))
	fmt.Printf("ocrmypdf:  %s\n", status(stack.OCRmyPDFPath))
	if stack.Ready() {
		fmt.Println("OCR stack complete.")
		return nil
	}
	fmt.Printf("Install hints (%s):\n", runtime.GOOS)
	for _, h := range ocr.InstallHints() {
		fmt.Printf("  %s\n", h)
	}
	return nil
}

// Stats prints project metrics: Go production/test LOC.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	return nil
}

// countGoLines walks the directory tree and counts non-blank lines in Go
// files. If testOnly is true, count only _test.go files; otherwise count
// non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		isGo := filepath.Ext(path) == ".go"
		if !isGo {
			return nil
		}
		isTest := len(path) > 8 && path[len(path)-8:] == "_test.go"
		if testOnly != isTest {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range splitLines(data) {
			if len(line) > 0 {
				total++
			}
		}
		return nil
	})
	return total, err
}

// splitLines splits data by newline, returning each line as a trimmed string.
func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, trimSpace(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, trimSpace(data[start:]))
	}
	return lines
}

// trimSpace returns a string with leading and trailing whitespace removed.
func trimSpace(b []byte) string {
	start, end := 0, len(b)
	for start < end && (b[start] == ' ' || b[start] == '\t' || b[start] == '\r') {
		start++
	}
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t' || b[end-1] == '\r') {
		end--
	}
	return string(b[start:end])
}
