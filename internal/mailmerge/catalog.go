// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailmerge matches split report PDFs against the merged roster and
// builds the CSV the mail client's mail-merge extension consumes.
package mailmerge

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

// Catalog indexes split PDFs by (division, first-name key, surname key,
// discipline, year). Filenames carry the name as one underscore-joined
// block whose internal split into first name and surname is ambiguous, so
// every contiguous token segment is indexed as a candidate first name with
// the remaining tokens forming an order-insensitive surname key.
type Catalog struct {
	byKey      map[string]string   // lookup key -> path
	byDivision map[string][]string // normalized division -> filenames present
	byDivDisc  map[string]int      // "division|discipline" -> file count
	Indexed    int
	Skipped    []string // filenames that did not parse
}

func lookupKey(division, firstKey, surnameKey, discipline, year string) string {
	return strings.Join([]string{
		textutil.NormalizeDivision(division),
		firstKey,
		surnameKey,
		textutil.NormalizeDiscipline(discipline),
		strings.TrimSpace(year),
	}, "|")
}

// Index walks dir and catalogs every PDF whose name parses as
// Class_[name block]_Discipline_Year.pdf.
func Index(dir string) (*Catalog, error) {
	c := &Catalog{
		byKey:      make(map[string]string),
		byDivision: make(map[string][]string),
		byDivDisc:  make(map[string]int),
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		if c.addFile(path) {
			c.Indexed++
		} else {
			c.Skipped = append(c.Skipped, filepath.Base(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", dir, err)
	}
	return c, nil
}

// addFile parses one filename and registers its lookup keys. Reports false
// when the name does not have the expected shape.
func (c *Catalog) addFile(path string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(stem, "_")
	// Class, at least one name token, discipline, year.
	if len(parts) < 4 {
		return false
	}
	division := textutil.NormalizeDivision(parts[0])
	year := parts[len(parts)-1]
	discipline := textutil.NormalizeDiscipline(parts[len(parts)-2])
	if discipline != "francais" && discipline != "mathematiques" {
		return false
	}

	tokens := textutil.SplitNameTokens(strings.Join(parts[1:len(parts)-2], " "))
	if len(tokens) == 0 {
		return false
	}

	c.byDivision[division] = append(c.byDivision[division], base)
	c.byDivDisc[division+"|"+discipline]++

	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j <= len(tokens); j++ {
			firstKey := concatKeys(tokens[i:j])
			rest := make([]string, 0, len(tokens)-(j-i))
			rest = append(rest, tokens[:i]...)
			rest = append(rest, tokens[j:]...)
			key := lookupKey(division, firstKey, textutil.SurnameKey(rest), discipline, year)
			if _, taken := c.byKey[key]; !taken {
				c.byKey[key] = path
			}
		}
	}
	return true
}

func concatKeys(tokens []string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(textutil.NameKey(t))
	}
	return b.String()
}

// Find returns the PDF path for one student and discipline. The primary
// lookup uses the full surname; the fallback retries with each surname
// token alone, which recovers files where the split stage folded part of a
// multi-token surname into the first-name block.
func (c *Catalog) Find(division, firstName, lastName, discipline, year string) (string, bool) {
	firstKey := concatKeys(textutil.SplitNameTokens(firstName))
	surnameTokens := textutil.SplitNameTokens(lastName)

	key := lookupKey(division, firstKey, textutil.SurnameKey(surnameTokens), discipline, year)
	if p, ok := c.byKey[key]; ok {
		return p, true
	}
	if len(surnameTokens) > 1 {
		for _, tok := range surnameTokens {
			key := lookupKey(division, firstKey, textutil.SurnameKey([]string{tok}), discipline, year)
			if p, ok := c.byKey[key]; ok {
				return p, true
			}
		}
	}
	return "", false
}

// DivisionSamples returns up to n filenames indexed under a division,
// sorted, for missing-report context.
func (c *Catalog) DivisionSamples(division string, n int) []string {
	files := append([]string(nil), c.byDivision[textutil.NormalizeDivision(division)]...)
	sort.Strings(files)
	if len(files) > n {
		files = files[:n]
	}
	return files
}

// Divisions lists the normalized divisions present in the catalog, sorted.
func (c *Catalog) Divisions() []string {
	out := make([]string, 0, len(c.byDivision))
	for d := range c.byDivision {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// CountForDivision returns how many files are indexed under a division.
func (c *Catalog) CountForDivision(division string) int {
	return len(c.byDivision[textutil.NormalizeDivision(division)])
}

// DisciplineCounts returns the per-discipline file counts of a division,
// for the preflight coverage check.
func (c *Catalog) DisciplineCounts(division string) (french, maths int) {
	div := textutil.NormalizeDivision(division)
	return c.byDivDisc[div+"|francais"], c.byDivDisc[div+"|mathematiques"]
}

// Reports reconstructs Report records for every indexed file of a division,
// for the status catalog. First/last name split follows the filename's
// final-token convention.
func (c *Catalog) Reports(division, year string) []types.Report {
	var out []types.Report
	div := textutil.NormalizeDivision(division)
	seen := make(map[string]bool)
	for key, path := range c.byKey {
		if seen[path] {
			continue
		}
		parts := strings.SplitN(key, "|", 5)
		if parts[0] != div || parts[4] != year {
			continue
		}
		seen[path] = true
		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		fields := strings.Split(stem, "_")
		disc := types.DisciplineFrench
		if textutil.NormalizeDiscipline(fields[len(fields)-2]) == "mathematiques" {
			disc = types.DisciplineMaths
		}
		name := fields[1 : len(fields)-2]
		out = append(out, types.Report{
			Class:      div,
			LastName:   name[0],
			FirstName:  strings.Join(name[1:], " "),
			Discipline: disc,
			Year:       year,
			Path:       path,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
