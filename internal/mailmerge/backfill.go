// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailmerge

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jtexier/evalmailer/internal/roster"
	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

func emailKey(division, lastName, firstName string) string {
	return textutil.Squash(textutil.NormalizeDivision(division)) + "|" +
		textutil.Squash(lastName) + "|" + textutil.Squash(firstName)
}

// FillEmails fills empty Emails cells from the merged roster, keyed by
// (division, last name, first name). Returns how many rows were filled and
// how many remain without any address.
func FillEmails(rows []types.MailMergeRow, merged []types.RosterRow) (filled, empty int) {
	byStudent := make(map[string]string, len(merged))
	for _, r := range merged {
		if e := roster.CombineEmails(r); e != "" {
			byStudent[emailKey(r.Division, r.LastName, r.FirstName)] = e
		}
	}
	for i := range rows {
		if strings.TrimSpace(rows[i].Emails) != "" {
			continue
		}
		if e, ok := byStudent[emailKey(rows[i].Class, rows[i].LastName, rows[i].FirstName)]; ok {
			rows[i].Emails = e
			filled++
		} else {
			empty++
		}
	}
	return filled, empty
}

// ApplyMessage overwrites the body of every row with a common message.
func ApplyMessage(rows []types.MailMergeRow, body string) {
	for i := range rows {
		rows[i].Body = body
	}
}

// SplitAttachments breaks an attachment cell into paths. Both ';' and ','
// are accepted as separators since both forms exist in circulating CSVs.
func SplitAttachments(cell string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == ','
	}) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// VerifyAttachments checks that every path named in the PJ and Attachments
// columns exists on disk, resolving relative paths against baseDir. Returns
// the missing paths, deduplicated.
func VerifyAttachments(rows []types.MailMergeRow, baseDir string) []string {
	var missing []string
	seen := make(map[string]bool)
	check := func(p string) {
		if p == "" {
			return
		}
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(baseDir, abs)
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			missing = append(missing, p)
		}
	}
	for _, row := range rows {
		check(strings.TrimSpace(row.FrenchPDF))
		check(strings.TrimSpace(row.MathsPDF))
		for _, p := range SplitAttachments(row.Attachments) {
			check(p)
		}
	}
	return missing
}
