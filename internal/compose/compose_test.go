// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jtexier/evalmailer/pkg/types"
)

type fakeExecutor struct {
	files    map[string]bool
	path     map[string]string
	started  [][]string
	ran      [][]string
	startErr error
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if p, ok := f.path[file]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (f *fakeExecutor) FileExists(path string) bool { return f.files[path] }

func (f *fakeExecutor) Start(name string, args ...string) error {
	f.started = append(f.started, append([]string{name}, args...))
	return f.startErr
}

func (f *fakeExecutor) Run(name string, args ...string) error {
	f.ran = append(f.ran, append([]string{name}, args...))
	return nil
}

func TestNormalizeRecipients(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a@x.fr;b@x.fr", "a@x.fr,b@x.fr"},
		{"a@x.fr, b@x.fr", "a@x.fr,b@x.fr"},
		{"Jean Dupont <jean@x.fr>; b@x.fr", "jean@x.fr,b@x.fr"},
		{" ; ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeRecipients(tt.in); got != tt.want {
			t.Errorf("NormalizeRecipients(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComposeArg(t *testing.T) {
	got := composeArg("a@x.fr", "L'évaluation", "Bonjour, voici l'aperçu", []string{"/p/un.pdf", "/p/deux.pdf"})
	want := "to='a@x.fr',subject='L''évaluation',body='Bonjour, voici l''aperçu',attachment='/p/un.pdf,/p/deux.pdf'"
	if got != want {
		t.Errorf("composeArg = %q, want %q", got, want)
	}

	got = composeArg("a@x.fr", "s", "b", nil)
	if strings.Contains(got, "attachment") {
		t.Errorf("empty attachment list should omit the field: %q", got)
	}
}

func TestFindBinary(t *testing.T) {
	// Explicit path wins when it exists.
	ex := &fakeExecutor{files: map[string]bool{"/opt/tb/thunderbird": true}}
	p, err := findBinary("/opt/tb/thunderbird", "linux", ex)
	if err != nil || p != "/opt/tb/thunderbird" {
		t.Errorf("explicit = %q, %v", p, err)
	}

	// Explicit path that does not exist is an error, no fallback.
	ex = &fakeExecutor{path: map[string]string{"thunderbird": "/usr/bin/thunderbird"}}
	if _, err := findBinary("/nope", "linux", ex); err == nil {
		t.Error("missing explicit path should fail")
	}

	// Standard macOS location.
	ex = &fakeExecutor{files: map[string]bool{
		"/Applications/Thunderbird.app/Contents/MacOS/thunderbird": true,
	}}
	p, err = findBinary("", "darwin", ex)
	if err != nil || !strings.HasPrefix(p, "/Applications/") {
		t.Errorf("darwin = %q, %v", p, err)
	}

	// PATH fallback.
	ex = &fakeExecutor{path: map[string]string{"thunderbird": "/usr/bin/thunderbird"}}
	p, err = findBinary("", "linux", ex)
	if err != nil || p != "/usr/bin/thunderbird" {
		t.Errorf("PATH = %q, %v", p, err)
	}

	ex = &fakeExecutor{}
	if _, err := findBinary("", "linux", ex); err == nil {
		t.Error("nothing installed should fail")
	}
}

func testRows() []types.MailMergeRow {
	return []types.MailMergeRow{
		{LastName: "ARLOT", FirstName: "Robin", Emails: "a@x.fr;b@x.fr",
			Subject: "Sujet A", Body: "Corps", Attachments: "/pdfs/a.pdf"},
		{LastName: "CLÉMENT", FirstName: "Marie", Emails: "",
			Subject: "Sujet B", Body: "Corps"},
		{LastName: "DUPONT", FirstName: "Lily", Emails: "c@x.fr",
			Subject: "Sujet C", Body: "Corps", Attachments: "/pdfs/gone.pdf"},
	}
}

func TestOpenDrafts(t *testing.T) {
	ex := &fakeExecutor{
		files: map[string]bool{
			"/usr/bin/thunderbird": true,
			"/pdfs/a.pdf":          true,
		},
		path: map[string]string{"thunderbird": "/usr/bin/thunderbird"},
	}
	var log bytes.Buffer
	cfg := types.ComposeConfig{Binary: "/usr/bin/thunderbird"}

	res, err := openDrafts(testRows(), cfg, "/pdfs", &log, ex)
	if err != nil {
		t.Fatal(err)
	}
	if res.Opened != 2 || res.Skipped != 1 {
		t.Errorf("opened=%d skipped=%d, want 2/1", res.Opened, res.Skipped)
	}
	// One no-recipient warning, one dropped attachment.
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %v", res.Warnings)
	}
	if len(ex.started) != 2 {
		t.Fatalf("started %d processes, want 2", len(ex.started))
	}

	first := ex.started[0]
	if first[1] != "-compose" {
		t.Errorf("argv = %v", first)
	}
	if !strings.Contains(first[2], "to='a@x.fr,b@x.fr'") {
		t.Errorf("recipients not normalized: %q", first[2])
	}
	if !strings.Contains(first[2], "attachment='/pdfs/a.pdf'") {
		t.Errorf("attachment missing: %q", first[2])
	}

	// Third row's attachment was dropped, so no attachment field.
	if strings.Contains(ex.started[1][2], "attachment=") {
		t.Errorf("dropped attachment still present: %q", ex.started[1][2])
	}
}

func TestOpenDrafts_SkipLimitDryRun(t *testing.T) {
	ex := &fakeExecutor{files: map[string]bool{"/tb": true, "/pdfs/a.pdf": true}}
	var log bytes.Buffer
	cfg := types.ComposeConfig{Binary: "/tb", Skip: 1, Limit: 1, DryRun: true}

	res, err := openDrafts(testRows(), cfg, "/pdfs", &log, ex)
	if err != nil {
		t.Fatal(err)
	}
	// Skip drops ARLOT; limit keeps only CLÉMENT, who has no recipients.
	if res.Opened != 0 || res.Skipped != 1 {
		t.Errorf("opened=%d skipped=%d, want 0/1", res.Opened, res.Skipped)
	}
	if len(ex.started) != 0 {
		t.Errorf("dry-run started processes: %v", ex.started)
	}
}

func TestOpenDrafts_DryRunPrintsCommand(t *testing.T) {
	ex := &fakeExecutor{files: map[string]bool{"/tb": true, "/pdfs/a.pdf": true}}
	var log bytes.Buffer
	cfg := types.ComposeConfig{Binary: "/tb", DryRun: true, Limit: 1}

	res, err := openDrafts(testRows(), cfg, "/pdfs", &log, ex)
	if err != nil {
		t.Fatal(err)
	}
	if res.Opened != 1 {
		t.Errorf("opened = %d", res.Opened)
	}
	if !strings.Contains(log.String(), "[dry-run] /tb -compose") {
		t.Errorf("log = %q", log.String())
	}
	if len(ex.started) != 0 {
		t.Error("dry-run must not spawn")
	}
}
