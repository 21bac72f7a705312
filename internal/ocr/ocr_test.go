// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// fakeExecutor records invocations and returns scripted results.
type fakeExecutor struct {
	binaries map[string]string // name -> resolved path
	runErr   error
	ranName  string
	ranArgs  []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if p, ok := f.binaries[file]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeExecutor) Run(name string, args []string, stdout, stderr io.Writer) error {
	f.ranName = name
	f.ranArgs = args
	return f.runErr
}

func TestEngineRun_Args(t *testing.T) {
	fake := &fakeExecutor{binaries: map[string]string{"ocrmypdf": "/usr/bin/ocrmypdf"}}
	e := NewEngine("", "")
	e.exec = fake

	var log bytes.Buffer
	if err := e.Run("in.pdf", "out.pdf", &log); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fake.ranName != "ocrmypdf" {
		t.Errorf("ran %q, want ocrmypdf", fake.ranName)
	}

	got := strings.Join(fake.ranArgs, " ")
	want := "--force-ocr --rotate-pages --deskew --clean-final --skip-text --language fra in.pdf out.pdf"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestEngineRun_Error(t *testing.T) {
	fake := &fakeExecutor{runErr: errors.New("exit status 2")}
	e := NewEngine("ocrmypdf", "fra")
	e.exec = fake

	err := e.Run("in.pdf", "out.pdf", io.Discard)
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "ocrmypdf") {
		t.Errorf("error %q does not name the binary", err)
	}
}

func TestEngineAvailable(t *testing.T) {
	e := NewEngine("", "fra")
	e.exec = &fakeExecutor{binaries: map[string]string{"ocrmypdf": "/usr/bin/ocrmypdf"}}
	if !e.Available() {
		t.Error("Available = false with ocrmypdf on PATH")
	}

	e.exec = &fakeExecutor{}
	if e.Available() {
		t.Error("Available = true with empty PATH")
	}
}

func TestDetectStack(t *testing.T) {
	tests := []struct {
		name     string
		binaries map[string]string
		ready    bool
		degraded bool
	}{
		{
			name: "full stack",
			binaries: map[string]string{
				"tesseract": "/usr/bin/tesseract",
				"ocrmypdf":  "/usr/bin/ocrmypdf",
			},
			ready: true,
		},
		{
			name:     "tesseract only",
			binaries: map[string]string{"tesseract": "/usr/bin/tesseract"},
			degraded: true,
		},
		{
			name: "nothing installed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := detectStack(&fakeExecutor{binaries: tt.binaries})
			if s.Ready() != tt.ready {
				t.Errorf("Ready = %v, want %v", s.Ready(), tt.ready)
			}
			if s.Degraded() != tt.degraded {
				t.Errorf("Degraded = %v, want %v", s.Degraded(), tt.degraded)
			}
		})
	}
}

func TestInstallHints(t *testing.T) {
	for _, goos := range []string{"windows", "darwin", "linux"} {
		hints := installHints(goos)
		if len(hints) == 0 {
			t.Errorf("no hints for %s", goos)
		}
	}
	if !strings.Contains(strings.Join(installHints("darwin"), " "), "brew") {
		t.Error("darwin hints do not mention brew")
	}
}

func TestProbeResultScanned(t *testing.T) {
	r := ProbeResult{PagesSampled: 6, TotalChars: 120, CharsPerPage: 20}
	if !r.Scanned(50) {
		t.Error("20 chars/page should probe as scanned at threshold 50")
	}
	r = ProbeResult{PagesSampled: 6, TotalChars: 1200, CharsPerPage: 200}
	if r.Scanned(50) {
		t.Error("200 chars/page should not probe as scanned")
	}
}
