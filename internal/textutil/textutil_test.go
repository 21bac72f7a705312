// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Éloïse", "Eloise"},
		{"Français", "Francais"},
		{"Mathématiques", "Mathematiques"},
		{"ANNÉE SCOLAIRE", "ANNEE SCOLAIRE"},
		{"no accents", "no accents"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripAccents(tt.in), "input %q", tt.in)
	}
}

func TestSquash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4D", "4d"},
		{"Nom de famille", "nomdefamille"},
		{"Courriel repr. légal", "courrielreprlegal"},
		{"  Prénom 1 ", "prenom1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Squash(tt.in), "input %q", tt.in)
	}
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Lily-Morgane", "lilymorgane"},
		{"D'ARGENT", "dargent"},
		{"Gaël", "gael"},
		{"N°12", "n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameKey(tt.in), "input %q", tt.in)
	}
}

func TestSurnameKey(t *testing.T) {
	// Order-insensitive: both token orders produce the same key.
	a := SurnameKey([]string{"HAMON", "DE", "ALMEIDA"})
	b := SurnameKey([]string{"DE", "ALMEIDA", "HAMON"})
	assert.Equal(t, a, b)
	assert.Equal(t, "almeidadehamon", a)

	assert.Equal(t, "dupont", SurnameKey([]string{"DUPONT"}))
	assert.Equal(t, "", SurnameKey(nil))
}

func TestSplitNameTokens(t *testing.T) {
	assert.Equal(t, []string{"Lily", "Morgane"}, SplitNameTokens("Lily-Morgane"))
	assert.Equal(t, []string{"HAMON", "DE", "ALMEIDA"}, SplitNameTokens(" HAMON  DE ALMEIDA "))
	assert.Empty(t, SplitNameTokens("  "))
}

func TestNormalizeDivision(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4D", "4D"},
		{"4 D", "4D"},
		{`="4 D"`, "4D"},
		{"4ème D", "4D"},
		{"4EME D", "4D"},
		{"4 D", "4D"},
		{"6a", "6A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDivision(tt.in), "input %q", tt.in)
	}
	// Idempotence: normalizing twice changes nothing.
	for _, tt := range tests {
		once := NormalizeDivision(tt.in)
		assert.Equal(t, once, NormalizeDivision(once))
	}
}

func TestNormalizeDiscipline(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Français", "francais"},
		{"Francais", "francais"},
		{"Franais", "francais"}, // accent-stripped filename form
		{"Mathématiques", "mathematiques"},
		{"Mathmatiques", "mathematiques"},
		{"Maths", "mathematiques"},
		{"Histoire", "histoire"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDiscipline(tt.in), "input %q", tt.in)
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		keepAccents bool
		want        string
	}{
		{"strips accents by default", "4D_Gaël_HAMON_Français_2025-2026.pdf", false, "4D_Gael_HAMON_Francais_2025-2026.pdf"},
		{"keeps accents on request", "4D_Gaël_Français.pdf", true, "4D_Gaël_Français.pdf"},
		{"collapses whitespace", "4D  Dupont   Marie", false, "4D_Dupont_Marie"},
		{"drops unsafe runes", "a/b\\c:d*e?.pdf", false, "abcde.pdf"},
		{"collapses underscores", "a__b___c", false, "a_b_c"},
		{"trims edge underscores", "_a_", false, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFileName(tt.in, tt.keepAccents))
		})
	}
}
