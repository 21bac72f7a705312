// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roster

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jtexier/evalmailer/pkg/types"
)

func TestDecodeBytes(t *testing.T) {
	// UTF-8 with BOM.
	got, err := decodeBytes(append([]byte{0xEF, 0xBB, 0xBF}, []byte("Prénom")...))
	if err != nil || got != "Prénom" {
		t.Errorf("BOM decode = %q, %v", got, err)
	}

	// Windows-1252: é is 0xE9, invalid as UTF-8.
	got, err = decodeBytes([]byte{'P', 'r', 0xE9, 'n', 'o', 'm'})
	if err != nil || got != "Prénom" {
		t.Errorf("cp1252 decode = %q, %v", got, err)
	}
}

func TestDetectSeparator(t *testing.T) {
	if sep := detectSeparator("a;b;c\nd;e;f\n"); sep != ';' {
		t.Errorf("semicolon file detected as %q", sep)
	}
	if sep := detectSeparator("a,b,c\nd,e,f\n"); sep != ',' {
		t.Errorf("comma file detected as %q", sep)
	}
	// Tie (including empty) defaults to ';'.
	if sep := detectSeparator(""); sep != ';' {
		t.Errorf("empty file detected as %q", sep)
	}
}

func TestUnwrapCell(t *testing.T) {
	tests := []struct{ in, want string }{
		{`="01/02/2013"`, "01/02/2013"},
		{`= "4 D" `, "4 D"},
		{"plain", "plain"},
		{`=""`, ""},
	}
	for _, tt := range tests {
		if got := unwrapCell(tt.in); got != tt.want {
			t.Errorf("unwrapCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchColumn(t *testing.T) {
	tests := []struct {
		header string
		want   column
		ok     bool
	}{
		{"Nom de famille", colLastName, true},
		{"NOM DE FAMILLE", colLastName, true},
		{"Prénom 1", colFirstName, true},
		{"Prenom", colFirstName, true},
		{"Né(e) le", colBirthDate, true},
		{"Classe", colDivision, true},
		{"Division de scolarisation", colDivision, true}, // prefix fallback
		{"Courriel représentant légal", colGuardian1Email, true},
		{"Mail responsable 2", colGuardian2Email, true},
		{"Régime", 0, false},
	}
	for _, tt := range tests {
		col, ok := matchColumn(tt.header)
		if ok != tt.ok || (ok && col != tt.want) {
			t.Errorf("matchColumn(%q) = (%v, %v), want (%v, %v)",
				tt.header, col, ok, tt.want, tt.ok)
		}
	}
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFile(t *testing.T) {
	csvData := "Nom de famille;Prénom 1;Né(e) le;Division;Courriel repr. légal\n" +
		"ARLOT;Robin;=\"01/02/2013\";=\"4 D\";parent@example.org\n" +
		"CLÉMENT;Marie;02/03/2013;4ème D;\n" +
		";;;;\n"
	path := writeTemp(t, "export.csv", []byte(csvData))

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank row skipped)", len(rows))
	}
	if rows[0].BirthDate != "01/02/2013" {
		t.Errorf("BirthDate = %q, Excel wrapping not stripped", rows[0].BirthDate)
	}
	if rows[0].Division != "4D" || rows[1].Division != "4D" {
		t.Errorf("divisions = %q, %q, want 4D, 4D", rows[0].Division, rows[1].Division)
	}
	if rows[0].Guardian1Email != "parent@example.org" {
		t.Errorf("Guardian1Email = %q", rows[0].Guardian1Email)
	}
}

func TestReadFile_CP1252Comma(t *testing.T) {
	// "Prénom 1" with é as the cp1252 byte 0xE9, comma-separated.
	data := []byte("Nom de famille,Pr\xE9nom 1,Division\nARLOT,Robin,4D\n")
	path := writeTemp(t, "export_win.csv", data)

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].FirstName != "Robin" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestReadFile_NoKnownColumns(t *testing.T) {
	path := writeTemp(t, "bogus.csv", []byte("A;B;C\n1;2;3\n"))
	if _, err := ReadFile(path); err == nil {
		t.Fatal("want error for unrecognized header")
	}
}

func TestMerge(t *testing.T) {
	rows := []types.RosterRow{
		{LastName: "ARLOT", FirstName: "Robin", BirthDate: "01/02/2013", Division: "4D"},
		{LastName: "arlot", FirstName: "ROBIN", BirthDate: "01/02/2013",
			Guardian1Email: "un@example.org"},
		{LastName: "ARLOT", FirstName: "Robin", BirthDate: "01/02/2013",
			Guardian1Email: "IGNORED@example.org", Guardian2Email: "deux@example.org"},
		{LastName: "CLÉMENT", FirstName: "Marie", BirthDate: "02/03/2013", Division: "4D"},
	}
	merged := Merge(rows)
	if len(merged) != 2 {
		t.Fatalf("got %d students, want 2", len(merged))
	}
	got := merged[0]
	if got.Division != "4D" || got.Guardian1Email != "un@example.org" ||
		got.Guardian2Email != "deux@example.org" {
		t.Errorf("merged row = %+v; first non-empty value should win per column", got)
	}
	if merged[1].LastName != "CLÉMENT" {
		t.Errorf("first-seen order lost: %+v", merged[1])
	}
}

func TestCombineEmails(t *testing.T) {
	tests := []struct {
		name string
		row  types.RosterRow
		want string
	}{
		{"both", types.RosterRow{Guardian1Email: "a@x.fr", Guardian2Email: "b@x.fr"}, "a@x.fr;b@x.fr"},
		{"case-insensitive dedup", types.RosterRow{Guardian1Email: "A@x.fr", Guardian2Email: "a@x.fr"}, "A@x.fr"},
		{"second only", types.RosterRow{Guardian2Email: " b@x.fr "}, "b@x.fr"},
		{"none", types.RosterRow{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineEmails(tt.row); got != tt.want {
				t.Errorf("CombineEmails = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterDivision(t *testing.T) {
	rows := []types.RosterRow{
		{LastName: "A", Division: "4D"},
		{LastName: "B", Division: "4 D"},
		{LastName: "C", Division: "3A"},
	}
	out, err := FilterDivision(rows, "4ème D")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("got %d rows, want 2", len(out))
	}

	_, err = FilterDivision(rows, "6B")
	if err == nil {
		t.Fatal("want mismatch error")
	}
	if !strings.Contains(err.Error(), "3A") || !strings.Contains(err.Error(), "4D") {
		t.Errorf("error %q does not list divisions present", err)
	}
}

func TestMergeFiles(t *testing.T) {
	a := writeTemp(t, "a.csv",
		[]byte("Nom de famille;Prénom 1;Division\nARLOT;Robin;4D\n"))
	b := writeTemp(t, "b.csv",
		[]byte("Nom;Prénom;Courriel repr. légal\nARLOT;Robin;p@example.org\n"))

	var log bytes.Buffer
	merged, err := MergeFiles([]string{a, b}, &log)
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 1 {
		t.Fatalf("got %d students, want 1", len(merged))
	}
	if merged[0].Division != "4D" || merged[0].Guardian1Email != "p@example.org" {
		t.Errorf("merged = %+v", merged[0])
	}
	if !strings.Contains(log.String(), "1 students from 2 rows") {
		t.Errorf("log = %q", log.String())
	}
}

func TestWriteMailVariant(t *testing.T) {
	rows := []types.RosterRow{{
		LastName: "ARLOT", FirstName: "Robin", Division: "4D",
		Guardian1Email: "a@x.fr", Guardian2Email: "b@x.fr",
	}}
	path := filepath.Join(t.TempDir(), "mail.csv")
	if err := WriteMailVariant(path, rows); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, utf8BOM) {
		t.Error("output lacks UTF-8 BOM")
	}
	text := string(bytes.TrimPrefix(raw, utf8BOM))
	if !strings.Contains(text, "Emails") {
		t.Error("header lacks Emails column")
	}
	if !strings.Contains(text, "a@x.fr;b@x.fr") {
		t.Errorf("combined emails missing from %q", text)
	}

	// Round-trip through ReadFile: the mail variant is itself a valid
	// roster export.
	back, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0].LastName != "ARLOT" {
		t.Errorf("round-trip rows = %+v", back)
	}
}
