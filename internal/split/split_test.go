// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package split

import (
	"strings"
	"testing"

	"github.com/jtexier/evalmailer/pkg/types"
)

const frenchPage = `Évaluation nationale
Année scolaire 2025-2026
Robin ARLOT
Compréhension de l'écrit
Lecture et maîtrise de la langue
Orthographe, grammaire, conjugaison`

const mathsPage = `Évaluation nationale
Année scolaire 2025-2026
Robin ARLOT
Mathématiques
Nombres et calcul : 12 + 34 = 46
Géométrie, grandeurs et mesure
Fractions et proportionnalité`

func TestScoreDisciplines(t *testing.T) {
	fr, ma := scoreDisciplines(frenchPage)
	if fr <= ma {
		t.Errorf("French page scored fr=%d ma=%d, want fr > ma", fr, ma)
	}

	fr, ma = scoreDisciplines(mathsPage)
	if ma <= fr {
		t.Errorf("maths page scored fr=%d ma=%d, want ma > fr", fr, ma)
	}

	fr, ma = scoreDisciplines("nothing relevant here")
	if fr != 0 || ma != 0 {
		t.Errorf("neutral text scored fr=%d ma=%d, want 0,0", fr, ma)
	}
}

func TestGuessDiscipline(t *testing.T) {
	if got := guessDiscipline(frenchPage); got != types.DisciplineFrench {
		t.Errorf("guessDiscipline(frenchPage) = %q", got)
	}
	if got := guessDiscipline(mathsPage); got != types.DisciplineMaths {
		t.Errorf("guessDiscipline(mathsPage) = %q", got)
	}
	// One keyword each way: no clear winner, stays ambiguous.
	if got := guessDiscipline("lecture calcul"); got != "" {
		t.Errorf("ambiguous text guessed %q, want empty", got)
	}
}

func TestExtractStudentName(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "anchored after Année scolaire",
			lines: strings.Split(frenchPage, "\n"),
			want:  "Robin ARLOT",
		},
		{
			name: "skips blank lines after anchor",
			lines: []string{
				"Année scolaire 2025-2026", "", "  ", "Lily-Morgane DUPONT",
			},
			want: "Lily-Morgane DUPONT",
		},
		{
			name: "accent-stripped anchor from OCR",
			lines: []string{
				"ANNEE SCOLAIRE 2025-2026", "Gael HAMON DE ALMEIDA",
			},
			want: "Gael HAMON DE ALMEIDA",
		},
		{
			name: "fallback without anchor",
			lines: []string{
				"Évaluation nationale", "Marie CLÉMENT", "Résultats",
			},
			want: "Marie CLÉMENT",
		},
		{
			name:  "collapses OCR double spaces",
			lines: []string{"Année scolaire", "Robin  ARLOT"},
			want:  "Robin ARLOT",
		},
		{
			name:  "no candidate",
			lines: []string{"Évaluation nationale", "page 3"},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractStudentName(tt.lines); got != tt.want {
				t.Errorf("extractStudentName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitStudentName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Robin ARLOT", "Robin", "ARLOT"},
		{"Gael HAMON DE ALMEIDA", "Gael HAMON DE", "ALMEIDA"},
		{"ARLOT", "", "ARLOT"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := splitStudentName(tt.full)
		if first != tt.first || last != tt.last {
			t.Errorf("splitStudentName(%q) = (%q, %q), want (%q, %q)",
				tt.full, first, last, tt.first, tt.last)
		}
	}
}

func TestAssignDisciplines_TwoPages(t *testing.T) {
	a := &pageInfo{idx: 1, name: "Robin ARLOT", fr: 4, ma: 1}
	b := &pageInfo{idx: 2, name: "Robin ARLOT", fr: 0, ma: 6}
	assignDisciplines(map[string][]*pageInfo{"Robin ARLOT": {a, b}})

	if a.disc != types.DisciplineFrench {
		t.Errorf("page 1 = %q, want French", a.disc)
	}
	if b.disc != types.DisciplineMaths {
		t.Errorf("page 2 = %q, want maths", b.disc)
	}
}

func TestAssignDisciplines_SamePageWinsBoth(t *testing.T) {
	// Page 1 outscores page 2 on both axes; its stronger side wins and
	// page 2 takes the other discipline.
	a := &pageInfo{idx: 1, name: "X Y", fr: 5, ma: 3}
	b := &pageInfo{idx: 2, name: "X Y", fr: 1, ma: 1}
	assignDisciplines(map[string][]*pageInfo{"X Y": {a, b}})

	if a.disc != types.DisciplineFrench {
		t.Errorf("dominant page = %q, want French", a.disc)
	}
	if b.disc != types.DisciplineMaths {
		t.Errorf("other page = %q, want maths", b.disc)
	}
}

func TestAssignDisciplines_SinglePage(t *testing.T) {
	tests := []struct {
		name string
		page *pageInfo
		want types.Discipline
	}{
		{"clear french", &pageInfo{idx: 1, fr: 3, ma: 0}, types.DisciplineFrench},
		{"clear maths", &pageInfo{idx: 1, fr: 0, ma: 4}, types.DisciplineMaths},
		{"too weak", &pageInfo{idx: 1, fr: 1, ma: 0}, ""},
		{"tied", &pageInfo{idx: 1, fr: 2, ma: 2}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignDisciplines(map[string][]*pageInfo{"S": {tt.page}})
			if tt.page.disc != tt.want {
				t.Errorf("disc = %q, want %q", tt.page.disc, tt.want)
			}
		})
	}
}

func TestReportFileName(t *testing.T) {
	got := ReportFileName("4D", "ARLOT", "Robin", types.DisciplineFrench, "2025-2026", false)
	want := "4D_ARLOT_Robin_Francais_2025-2026.pdf"
	if got != want {
		t.Errorf("ReportFileName = %q, want %q", got, want)
	}

	got = ReportFileName("4D", "CLÉMENT", "Marie Lou", types.DisciplineMaths, "2025-2026", false)
	want = "4D_CLEMENT_Marie_Lou_Mathematiques_2025-2026.pdf"
	if got != want {
		t.Errorf("ReportFileName = %q, want %q", got, want)
	}

	got = ReportFileName("4D", "CLÉMENT", "Marie", types.DisciplineFrench, "2025-2026", true)
	want = "4D_CLÉMENT_Marie_Français_2025-2026.pdf"
	if got != want {
		t.Errorf("ReportFileName(keepAccents) = %q, want %q", got, want)
	}
}
