// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose opens pre-filled draft windows in Thunderbird, one per
// mail-merge row, through its -compose command-line interface. Drafts are
// opened, never sent; the teacher reviews and sends each one.
package compose

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/jtexier/evalmailer/internal/mailmerge"
	"github.com/jtexier/evalmailer/pkg/types"
)

// executor abstracts process handling for testing.
type executor interface {
	LookPath(file string) (string, error)
	FileExists(path string) bool
	// Start launches without waiting; drafts open in an already-running
	// Thunderbird and the spawned process returns immediately.
	Start(name string, args ...string) error
	Run(name string, args ...string) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osExecutor) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (osExecutor) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func (osExecutor) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

var defaultExec executor = osExecutor{}

// FindBinary locates the Thunderbird executable: the explicit path when
// given, then platform-standard install locations, then PATH.
func FindBinary(explicit string) (string, error) {
	return findBinary(explicit, runtime.GOOS, defaultExec)
}

func findBinary(explicit, goos string, ex executor) (string, error) {
	if explicit != "" {
		if ex.FileExists(explicit) {
			return explicit, nil
		}
		return "", fmt.Errorf("thunderbird binary not found at %s", explicit)
	}
	for _, p := range standardPaths(goos) {
		if ex.FileExists(p) {
			return p, nil
		}
	}
	if p, err := ex.LookPath("thunderbird"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("thunderbird not found in standard locations or PATH")
}

func standardPaths(goos string) []string {
	switch goos {
	case "darwin":
		home, _ := os.UserHomeDir()
		return []string{
			"/Applications/Thunderbird.app/Contents/MacOS/thunderbird",
			filepath.Join(home, "Applications/Thunderbird.app/Contents/MacOS/thunderbird"),
		}
	case "windows":
		return []string{
			`C:\Program Files\Mozilla Thunderbird\thunderbird.exe`,
			`C:\Program Files (x86)\Mozilla Thunderbird\thunderbird.exe`,
		}
	}
	return nil
}

var addrInBrackets = regexp.MustCompile(`<([^<>]+)>`)

// NormalizeRecipients turns an Emails cell into the comma-separated address
// list -compose expects. Semicolons become commas and "Name <addr>"
// wrappers are reduced to the bare address.
func NormalizeRecipients(emails string) string {
	var out []string
	for _, part := range strings.FieldsFunc(emails, func(r rune) bool {
		return r == ';' || r == ','
	}) {
		part = strings.TrimSpace(part)
		if m := addrInBrackets.FindStringSubmatch(part); m != nil {
			part = strings.TrimSpace(m[1])
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ",")
}

// quoteField escapes a -compose field value. The syntax wraps values in
// single quotes with doubling as the escape.
func quoteField(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// composeArg builds the value of the -compose flag.
func composeArg(to, subject, body string, attachments []string) string {
	fields := []string{
		"to=" + quoteField(to),
		"subject=" + quoteField(subject),
		"body=" + quoteField(body),
	}
	if len(attachments) > 0 {
		fields = append(fields, "attachment="+quoteField(strings.Join(attachments, ",")))
	}
	return strings.Join(fields, ",")
}

// Result summarizes a compose batch.
type Result struct {
	Opened   int
	Skipped  int
	Warnings []string
}

// HasWarnings reports whether any rows were skipped or degraded.
func (r Result) HasWarnings() bool { return len(r.Warnings) > 0 }

// OpenDrafts opens one draft per row. Rows without recipients are skipped
// with a warning; attachments that do not exist on disk are dropped with a
// warning. Relative attachment paths resolve against baseDir. With
// cfg.DryRun the command line is printed instead of executed.
func OpenDrafts(rows []types.MailMergeRow, cfg types.ComposeConfig, baseDir string, w io.Writer) (Result, error) {
	return openDrafts(rows, cfg, baseDir, w, defaultExec)
}

func openDrafts(rows []types.MailMergeRow, cfg types.ComposeConfig, baseDir string, w io.Writer, ex executor) (Result, error) {
	var res Result

	bin, err := findBinary(cfg.Binary, runtime.GOOS, ex)
	if err != nil {
		return res, err
	}

	if cfg.Skip > 0 && cfg.Skip < len(rows) {
		rows = rows[cfg.Skip:]
	} else if cfg.Skip >= len(rows) {
		rows = nil
	}
	if cfg.Limit > 0 && cfg.Limit < len(rows) {
		rows = rows[:cfg.Limit]
	}

	if !cfg.DryRun && runtime.GOOS == "darwin" {
		// Opening a compose window while the app is cold-starting loses
		// the draft; start it first and give it a moment.
		if err := ex.Run("open", "-ga", "Thunderbird"); err == nil {
			time.Sleep(2 * time.Second)
		}
	}

	for i, row := range rows {
		to := NormalizeRecipients(row.Emails)
		if to == "" {
			res.Skipped++
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s %s: no recipients, skipped", row.LastName, row.FirstName))
			continue
		}

		var attachments []string
		for _, p := range mailmerge.SplitAttachments(row.Attachments) {
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			if !ex.FileExists(p) {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("%s %s: attachment missing, dropped: %s", row.LastName, row.FirstName, p))
				continue
			}
			attachments = append(attachments, p)
		}

		arg := composeArg(to, row.Subject, row.Body, attachments)
		if cfg.DryRun {
			fmt.Fprintf(w, "[dry-run] %s -compose %s\n", bin, arg)
			res.Opened++
			continue
		}
		if err := ex.Start(bin, "-compose", arg); err != nil {
			return res, fmt.Errorf("opening draft for %s %s: %w", row.LastName, row.FirstName, err)
		}
		fmt.Fprintf(w, "draft %d/%d: %s %s (%s)\n", i+1, len(rows), row.LastName, row.FirstName, to)
		res.Opened++

		if cfg.Sleep > 0 && i < len(rows)-1 {
			time.Sleep(cfg.Sleep)
		}
	}

	fmt.Fprintf(w, "\nDrafts opened: %d", res.Opened)
	if res.Skipped > 0 {
		fmt.Fprintf(w, "  skipped: %d", res.Skipped)
	}
	fmt.Fprintln(w)
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	return res, nil
}
