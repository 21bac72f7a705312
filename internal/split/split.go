// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split cuts a combined national-evaluation PDF into one-page PDFs
// per student and discipline. Pages are attributed by text heuristics: the
// student name is anchored on the report header, the discipline on keyword
// scores, with per-student reconciliation when single pages are ambiguous.
package split

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

// pageInfo carries the per-page heuristics before discipline assignment.
type pageInfo struct {
	idx  int // 1-based page number
	name string
	disc types.Discipline
	fr   int
	ma   int
	raw  string
}

// UnresolvedPage describes a page the heuristics could not attribute.
type UnresolvedPage struct {
	Page        int
	Name        string
	Discipline  types.Discipline
	FrenchScore int
	MathsScore  int
	Sample      string
}

// Result holds the outcome of a split run.
type Result struct {
	TotalPages int
	Reports    []types.Report
	Unresolved []UnresolvedPage
}

// HasUnresolved reports whether any pages could not be attributed.
func (r Result) HasUnresolved() bool {
	return len(r.Unresolved) > 0
}

// Split reads the combined PDF at inputPDF and writes one PDF per resolved
// page into cfg.OutputDir, named {class}_{NOM}_{Prénom}_{Discipline}_{year}.pdf.
// Per-page progress and the final summary go to w.
func Split(inputPDF, class, year string, cfg types.SplitConfig, w io.Writer) (Result, error) {
	f, reader, err := pdf.Open(inputPDF)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", inputPDF, err)
	}
	defer f.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating output directory: %w", err)
	}

	total := reader.NumPage()
	pages := make([]*pageInfo, 0, total)
	for i := 1; i <= total; i++ {
		lines := pageLines(reader.Page(i))
		raw := strings.Join(lines, "\n")
		fr, ma := scoreDisciplines(raw)
		pages = append(pages, &pageInfo{
			idx:  i,
			name: extractStudentName(lines),
			disc: guessDiscipline(raw),
			fr:   fr,
			ma:   ma,
			raw:  raw,
		})
	}

	byStudent := make(map[string][]*pageInfo)
	for _, p := range pages {
		if p.name == "" {
			continue
		}
		byStudent[p.name] = append(byStudent[p.name], p)
	}
	assignDisciplines(byStudent)

	// Reopen for page extraction; the text reader has consumed the handle.
	src, err := os.Open(inputPDF)
	if err != nil {
		return Result{}, fmt.Errorf("reopening %s: %w", inputPDF, err)
	}
	defer src.Close()
	ctx, err := api.ReadContext(src, nil)
	if err != nil {
		return Result{}, fmt.Errorf("reading PDF structure: %w", err)
	}

	var result Result
	result.TotalPages = total
	for _, p := range pages {
		if p.name == "" || p.disc == "" {
			result.Unresolved = append(result.Unresolved, UnresolvedPage{
				Page:        p.idx,
				Name:        p.name,
				Discipline:  p.disc,
				FrenchScore: p.fr,
				MathsScore:  p.ma,
				Sample:      sample(p.raw, 400),
			})
			continue
		}

		first, last := splitStudentName(p.name)
		filename := ReportFileName(class, last, first, p.disc, year, cfg.KeepAccents)
		outPath := filepath.Join(cfg.OutputDir, filename)

		if err := writePage(ctx, p.idx, outPath); err != nil {
			return result, fmt.Errorf("writing page %d: %w", p.idx, err)
		}
		fmt.Fprintf(w, "p.%3d  %s  [%s] -> %s\n", p.idx, p.name, p.disc, filename)

		result.Reports = append(result.Reports, types.Report{
			Class:      class,
			LastName:   last,
			FirstName:  first,
			Discipline: p.disc,
			Year:       year,
			Path:       outPath,
			SourcePage: p.idx,
		})
	}

	fmt.Fprintf(w, "\nPages attributed: %d / %d\n", len(result.Reports), total)
	for i, m := range result.Unresolved {
		if i == 0 {
			fmt.Fprintln(w, "Unresolved pages (missing name and/or discipline):")
		}
		if i == 10 {
			fmt.Fprintf(w, "  ... %d more\n", len(result.Unresolved)-10)
			break
		}
		fmt.Fprintf(w, "  p.%3d  name=%q  discipline=%q  scores(FR,MA)=(%d,%d)\n",
			m.Page, m.Name, m.Discipline, m.FrenchScore, m.MathsScore)
	}
	return result, nil
}

// assignDisciplines settles the discipline per student. With two or more
// pages the best French-scoring page becomes Français and the best
// maths-scoring page Mathématiques; when the same page wins both, the
// other page takes the weaker discipline. Leftover pages take their
// higher score. A lone ambiguous page stays unresolved unless one score
// is clearly ahead.
func assignDisciplines(byStudent map[string][]*pageInfo) {
	for _, items := range byStudent {
		sort.Slice(items, func(i, j int) bool { return items[i].idx < items[j].idx })

		if len(items) < 2 {
			it := items[0]
			if it.disc == "" {
				if it.fr > it.ma && it.fr >= 2 {
					it.disc = types.DisciplineFrench
				} else if it.ma > it.fr && it.ma >= 2 {
					it.disc = types.DisciplineMaths
				}
			}
			continue
		}

		bestFr, bestMa := items[0], items[0]
		for _, it := range items[1:] {
			if it.fr > bestFr.fr {
				bestFr = it
			}
			if it.ma > bestMa.ma {
				bestMa = it
			}
		}

		if bestFr == bestMa {
			var alt *pageInfo
			for _, it := range items {
				if it != bestFr {
					alt = it
					break
				}
			}
			if bestFr.fr >= bestFr.ma {
				bestFr.disc = types.DisciplineFrench
				if alt != nil {
					alt.disc = types.DisciplineMaths
				}
			} else {
				bestMa.disc = types.DisciplineMaths
				if alt != nil {
					alt.disc = types.DisciplineFrench
				}
			}
		} else {
			bestFr.disc = types.DisciplineFrench
			bestMa.disc = types.DisciplineMaths
		}

		for _, it := range items {
			if it.disc == "" {
				if it.fr >= it.ma {
					it.disc = types.DisciplineFrench
				} else {
					it.disc = types.DisciplineMaths
				}
			}
		}
	}
}

// ReportFileName builds the split output filename. The whole stem goes
// through SafeFileName so that multi-word first names become
// underscore-joined tokens.
func ReportFileName(class, last, first string, disc types.Discipline, year string, keepAccents bool) string {
	stem := strings.Join([]string{class, last, first, string(disc), year}, "_")
	return textutil.SafeFileName(stem, keepAccents) + ".pdf"
}

// pageLines extracts the text of one page as lines, preserving reading
// order. Row-based extraction keeps the header layout intact; plain-text
// extraction is the fallback for pages without row structure.
func pageLines(p pdf.Page) []string {
	if p.V.IsNull() {
		return nil
	}
	rows, err := p.GetTextByRow()
	if err == nil && len(rows) > 0 {
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var b strings.Builder
			for i, word := range row.Content {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			lines = append(lines, strings.TrimSpace(b.String()))
		}
		return lines
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return nil
	}
	return strings.Split(text, "\n")
}

// writePage extracts a single page from ctx into a new PDF at outPath.
func writePage(ctx *model.Context, page int, outPath string) error {
	pageCtx, err := pdfcpu.ExtractPages(ctx, []int{page}, false)
	if err != nil {
		return fmt.Errorf("extracting page %d: %w", page, err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := api.WriteContext(pageCtx, out); err != nil {
		out.Close()
		os.Remove(outPath)
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return out.Close()
}

func sample(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n]
	}
	return s
}
