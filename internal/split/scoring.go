// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"regexp"
	"strings"

	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

// Keyword sets for discipline scoring. Deliberately specific: generic words
// ("exercice", "question") appear on both report layouts and only produce
// false positives.
var (
	frenchKeywords = []string{
		"francais", "langue francaise", "lecture", "comprehension",
		"orthographe", "dictee", "vocabulaire", "grammaire", "conjugaison",
		"maitrise de la langue",
	}
	mathsKeywords = []string{
		"mathematiques", "maths", "nombres", "numeration", "calcul",
		"geometrie", "mesure", "grandeurs", "fractions",
		"proportionnalite", "equation", "probleme", "statistiques",
		"probabilites",
	}
)

const mathsOperators = "+-×x*/÷=<>≤≥"

// scoreDisciplines counts keyword hits for each discipline on one page.
// Maths pages additionally earn points for digit and operator density,
// which survives OCR better than words do.
func scoreDisciplines(pageText string) (fr, ma int) {
	t := strings.ToLower(textutil.StripAccents(pageText))
	for _, k := range frenchKeywords {
		fr += strings.Count(t, k)
	}
	for _, k := range mathsKeywords {
		ma += strings.Count(t, k)
	}
	var digits, ops int
	for _, r := range t {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(mathsOperators, r):
			ops++
		}
	}
	ma += digits/25 + ops/5
	return fr, ma
}

// guessDiscipline returns a discipline only when one score clearly
// dominates: at least two points ahead, or at least three with the other
// at zero. Ambiguous pages are settled later per student.
func guessDiscipline(pageText string) types.Discipline {
	fr, ma := scoreDisciplines(pageText)
	if fr == 0 && ma == 0 {
		return ""
	}
	if fr >= ma+2 || (fr >= 3 && ma == 0) {
		return types.DisciplineFrench
	}
	if ma >= fr+2 || (ma >= 3 && fr == 0) {
		return types.DisciplineMaths
	}
	return ""
}

// upperSurname matches an all-caps surname token, accents and hyphens
// included, as printed on the national evaluation report header.
var upperSurname = regexp.MustCompile(`^[A-ZÉÈÊËÀÂÄÔÖÛÜÇ\-]{2,}$`)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// extractStudentName finds the student's full name on a report page. The
// layout prints "Année scolaire ..." followed within a few lines by
// "Prénom NOM" with the surname in capitals. When the anchor is missing
// (OCR dropped it), the first line shaped like "Prénom NOM" anywhere on
// the page is used instead.
func extractStudentName(lines []string) string {
	anchor := -1
	for i, l := range lines {
		n := strings.ToLower(textutil.StripAccents(l))
		if strings.Contains(n, "annee scolaire") {
			anchor = i
			break
		}
	}

	var candidate string
	if anchor >= 0 {
		end := anchor + 8
		if end > len(lines) {
			end = len(lines)
		}
		candidate = firstNameLine(lines[anchor+1 : end])
	}
	if candidate == "" {
		candidate = firstNameLine(lines)
	}
	if candidate == "" {
		return ""
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(candidate, " "))
}

// firstNameLine returns the first line whose last token looks like an
// all-caps surname and which has at least a first name before it.
func firstNameLine(lines []string) string {
	for _, l := range lines {
		parts := strings.Fields(l)
		if len(parts) < 2 {
			continue
		}
		if upperSurname.MatchString(parts[len(parts)-1]) {
			return l
		}
	}
	return ""
}

// splitStudentName separates "Prénom NOM" into first-name and surname
// parts. The surname is taken to be the final token; with multi-token
// surnames ("Gael HAMON DE ALMEIDA") the leading surname tokens land in
// the first-name part. The mail-merge catalog compensates by trying every
// contiguous token segment as the first name.
func splitStudentName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
