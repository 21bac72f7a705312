// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package roster reads school-information-system CSV exports and merges them
// into one canonical roster. The exports vary in encoding, separator, and
// header wording; everything is normalized on the way in so downstream
// stages see a single schema.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

// MailRow is a merged roster row plus the combined guardian emails, the
// shape the mail-oriented CSV variant carries.
type MailRow struct {
	types.RosterRow
	Emails string `csv:"Emails"`
}

var excelCell = regexp.MustCompile(`^=\s*"(.*)"\s*$`)

// unwrapCell strips the Excel formula wrapping some exports put around
// cells to preserve leading zeros: `="01/02/2013"` becomes `01/02/2013`.
func unwrapCell(s string) string {
	s = strings.TrimSpace(s)
	if m := excelCell.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ReadFile parses one roster export. Encoding and separator are detected
// per file; headers are canonicalized; unmapped columns are ignored.
func ReadFile(path string) ([]types.RosterRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := decodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = detectSeparator(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	mapping := make([]column, len(header))
	mapped := make([]bool, len(header))
	known := 0
	for i, h := range header {
		if col, ok := matchColumn(unwrapCell(h)); ok {
			mapping[i], mapped[i] = col, true
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("%s: no recognized roster columns in header %v", path, header)
	}

	var rows []types.RosterRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var row types.RosterRow
		for i, cell := range record {
			if i >= len(mapping) || !mapped[i] {
				continue
			}
			setColumn(&row, mapping[i], unwrapCell(cell))
		}
		row.Division = textutil.NormalizeDivision(row.Division)
		if row.LastName == "" && row.FirstName == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// studentKey identifies one student across exports.
func studentKey(row types.RosterRow) string {
	return textutil.Squash(row.LastName) + "|" +
		textutil.Squash(row.FirstName) + "|" +
		textutil.Squash(row.BirthDate)
}

// Merge deduplicates rows from several exports by (last name, first name,
// birth date). The first non-empty value wins per column, so a later export
// can fill guardian emails the first one lacked. First-seen order is kept.
func Merge(rows []types.RosterRow) []types.RosterRow {
	index := make(map[string]int)
	var merged []types.RosterRow
	for _, row := range rows {
		key := studentKey(row)
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, row)
			continue
		}
		for col := column(0); col < numColumns; col++ {
			if getColumn(merged[i], col) == "" {
				setColumn(&merged[i], col, getColumn(row, col))
			}
		}
	}
	return merged
}

// MergeFiles reads and merges several exports, logging per-file row counts.
func MergeFiles(paths []string, w io.Writer) ([]types.RosterRow, error) {
	var all []types.RosterRow
	for _, p := range paths {
		rows, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "  %s: %d rows\n", p, len(rows))
		all = append(all, rows...)
	}
	merged := Merge(all)
	fmt.Fprintf(w, "Merged: %d students from %d rows\n", len(merged), len(all))
	return merged, nil
}

// CombineEmails joins both guardian emails with ';', dropping empties and
// case-insensitive duplicates while keeping guardian order.
func CombineEmails(row types.RosterRow) string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range []string{row.Guardian1Email, row.Guardian2Email} {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		k := strings.ToLower(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return strings.Join(out, ";")
}

// FilterDivision keeps the rows of one class. Zero matches is a hard error:
// it means the roster and the requested class disagree, and the error lists
// the divisions actually present so the mismatch is obvious.
func FilterDivision(rows []types.RosterRow, class string) ([]types.RosterRow, error) {
	want := textutil.NormalizeDivision(class)
	var out []types.RosterRow
	seen := make(map[string]bool)
	for _, row := range rows {
		div := textutil.NormalizeDivision(row.Division)
		seen[div] = true
		if div == want {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		divisions := make([]string, 0, len(seen))
		for d := range seen {
			if d != "" {
				divisions = append(divisions, d)
			}
		}
		sort.Strings(divisions)
		return nil, fmt.Errorf("no roster rows for class %s (divisions present: %s)",
			want, strings.Join(divisions, ", "))
	}
	return out, nil
}

// WriteMerged writes the canonical merged roster as UTF-8 with BOM and ';'
// separators, the form French Excel opens correctly by double-click.
func WriteMerged(path string, rows []types.RosterRow) error {
	return writeBOMCSV(path, &rows)
}

// WriteMailVariant writes the mail-oriented roster with the Emails column.
func WriteMailVariant(path string, rows []types.RosterRow) error {
	mail := make([]MailRow, len(rows))
	for i, row := range rows {
		mail[i] = MailRow{RosterRow: row, Emails: CombineEmails(row)}
	}
	return writeBOMCSV(path, &mail)
}

func writeBOMCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
