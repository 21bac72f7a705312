// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailmerge

import (
	"fmt"
	"io"

	"github.com/jtexier/evalmailer/internal/roster"
	"github.com/jtexier/evalmailer/internal/split"
	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

// missingSamples caps how many division files a missing-report row lists.
const missingSamples = 5

// BuildResult is the outcome of matching a class roster against the
// split-PDF catalog.
type BuildResult struct {
	Rows    []types.MailMergeRow
	Missing []types.MissingReport
}

// Total returns the number of roster rows processed.
func (r BuildResult) Total() int {
	return len(r.Rows) + len(r.Missing)
}

// HasMissing reports whether any student lacked both attachments.
func (r BuildResult) HasMissing() bool {
	return len(r.Missing) > 0
}

// Subject renders the mail subject for one student.
func Subject(class, lastName, firstName string) string {
	return fmt.Sprintf("Évaluations nationales – %s %s (%s)", lastName, firstName, class)
}

// Build matches each roster row of one class against the catalog and
// produces mail-merge rows. A student with at least one discipline PDF gets
// a row; a student with neither goes to the missing report with the
// filenames the catalog was expected to contain. Per-row progress goes to w.
func Build(cat *Catalog, rows []types.RosterRow, class, year, body string, w io.Writer) BuildResult {
	var res BuildResult
	div := textutil.NormalizeDivision(class)
	for _, row := range rows {
		fr, frOK := cat.Find(div, row.FirstName, row.LastName, "francais", year)
		ma, maOK := cat.Find(div, row.FirstName, row.LastName, "mathematiques", year)

		if !frOK && !maOK {
			res.Missing = append(res.Missing, types.MissingReport{
				Division:       div,
				LastName:       row.LastName,
				FirstName:      row.FirstName,
				ExpectedFrench: split.ReportFileName(div, row.LastName, row.FirstName, types.DisciplineFrench, year, false),
				ExpectedMaths:  split.ReportFileName(div, row.LastName, row.FirstName, types.DisciplineMaths, year, false),
				SampleFiles:    joinSamples(cat.DivisionSamples(div, missingSamples)),
			})
			fmt.Fprintf(w, "  MISSING  %s %s\n", row.LastName, row.FirstName)
			continue
		}

		attachments := ""
		switch {
		case frOK && maOK:
			attachments = fr + ";" + ma
		case frOK:
			attachments = fr
		case maOK:
			attachments = ma
		}
		mark := func(ok bool) string {
			if ok {
				return "ok"
			}
			return "--"
		}
		fmt.Fprintf(w, "  %-24s FR:%s MA:%s\n", row.LastName+" "+row.FirstName, mark(frOK), mark(maOK))

		res.Rows = append(res.Rows, types.MailMergeRow{
			Class:       div,
			LastName:    row.LastName,
			FirstName:   row.FirstName,
			Emails:      roster.CombineEmails(row),
			FrenchPDF:   fr,
			MathsPDF:    ma,
			Attachments: attachments,
			Year:        year,
			Subject:     Subject(div, row.LastName, row.FirstName),
			Body:        body,
		})
	}

	fmt.Fprintf(w, "Matched %d / %d students", len(res.Rows), res.Total())
	if res.HasMissing() {
		fmt.Fprintf(w, " (%d without any report)", len(res.Missing))
	}
	fmt.Fprintln(w)
	return res
}

func joinSamples(files []string) string {
	out := ""
	for i, f := range files {
		if i > 0 {
			out += " | "
		}
		out += f
	}
	return out
}
