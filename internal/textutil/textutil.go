// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil normalizes the names, class labels, and filenames the
// pipeline matches on. Roster exports, OCR output, and hand-renamed files
// disagree on accents, case, hyphens, and spacing; every cross-source
// comparison goes through the keys built here.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks: "Éloïse" becomes "Eloise".
func StripAccents(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Squash reduces a string to a lowercase alphanumeric key. It is the
// comparison form for class labels and student names across sources.
func Squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(StripAccents(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NameKey reduces a name token to lowercase letters only. Apostrophes,
// hyphens, and digits introduced by OCR are dropped: "Lily-Morgane"
// becomes "lilymorgane", "D'ARGENT" becomes "dargent".
func NameKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(StripAccents(s)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var nameSep = regexp.MustCompile(`[\s\-]+`)

// SplitNameTokens splits a name field on whitespace and hyphens, dropping
// empty tokens.
func SplitNameTokens(s string) []string {
	parts := nameSep.Split(strings.TrimSpace(s), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// SurnameKey builds an order-insensitive key from surname tokens, so that
// "HAMON DE ALMEIDA" and "DE ALMEIDA HAMON" compare equal. Tokens are
// normalized with NameKey, sorted, and concatenated.
func SurnameKey(tokens []string) string {
	keys := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if k := NameKey(t); k != "" {
			keys = append(keys, k)
		}
	}
	// Insertion sort; surname token counts are tiny.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return strings.Join(keys, "")
}

var (
	excelWrapped = regexp.MustCompile(`^=\s*"(.+)"\s*$`)
	divisionRe   = regexp.MustCompile(`([3-6])\D*([A-Z])`)
	digitLetter  = regexp.MustCompile(`(\d)\s+([A-Z])`)
)

// NormalizeDivision canonicalizes a class label. The roster export writes
// divisions as "4D", "4 D", "4ème D", or Excel-wrapped `="4 D"` depending
// on how it was produced; all collapse to "4D".
func NormalizeDivision(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.TrimSpace(s)
	if m := excelWrapped.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = strings.ToUpper(StripAccents(s))
	if m := divisionRe.FindStringSubmatch(s); m != nil {
		return m[1] + m[2]
	}
	return digitLetter.ReplaceAllString(s, "$1$2")
}

// NormalizeDiscipline maps a discipline label (including the mangled forms
// produced by accent stripping, e.g. "Franais") to its comparison key:
// "francais" or "mathematiques". Unknown labels pass through squashed.
func NormalizeDiscipline(s string) string {
	k := strings.ToLower(StripAccents(strings.TrimSpace(s)))
	switch {
	case strings.HasPrefix(k, "fran"):
		return "francais"
	case strings.HasPrefix(k, "math"):
		return "mathematiques"
	}
	return Squash(s)
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeRunes   = regexp.MustCompile(`[^\p{L}\p{N}_.\-]`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// SafeFileName turns an arbitrary label into a filename segment: whitespace
// becomes underscores, anything outside letters/digits/underscore/dot/hyphen
// is dropped, and runs of underscores collapse. With keepAccents false,
// accented letters are flattened first.
func SafeFileName(s string, keepAccents bool) string {
	s = strings.TrimSpace(s)
	if keepAccents {
		s = norm.NFC.String(s)
	} else {
		s = StripAccents(s)
	}
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = unsafeRunes.ReplaceAllString(s, "")
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
