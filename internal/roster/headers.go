// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roster

import (
	"strings"

	"github.com/jtexier/evalmailer/internal/textutil"
	"github.com/jtexier/evalmailer/pkg/types"
)

// column identifies one canonical roster column.
type column int

const (
	colLastName column = iota
	colFirstName
	colBirthDate
	colDivision
	colGuardian1Last
	colGuardian1First
	colGuardian1Email
	colGuardian2Last
	colGuardian2First
	colGuardian2Email
	numColumns
)

// canonicalHeaders are the output column names, in order. They match the
// csv tags on types.RosterRow.
var canonicalHeaders = [numColumns]string{
	"Nom de famille",
	"Prénom 1",
	"Date de naissance",
	"Division",
	"Nom de famille repr. légal",
	"Prénom repr. légal",
	"Courriel repr. légal",
	"Nom de famille autre repr. légal",
	"Prénom autre repr. légal",
	"Courriel autre repr. légal",
}

// headerVariants maps the squashed form of every header wording seen in the
// wild to its canonical column. The exports differ by accents, case,
// "repr."/"représentant"/"responsable" wording, and numbering style.
var headerVariants = map[string]column{}

func init() {
	add := func(col column, variants ...string) {
		for _, v := range variants {
			headerVariants[textutil.Squash(v)] = col
		}
	}
	add(colLastName, "Nom de famille", "Nom", "Nom élève", "Nom de l'élève")
	add(colFirstName, "Prénom 1", "Prénom", "Prénom élève", "Prénom de l'élève")
	add(colBirthDate, "Date de naissance", "Né(e) le", "Date naissance")
	add(colDivision, "Division", "Classe", "Division de l'élève")
	add(colGuardian1Last,
		"Nom de famille repr. légal",
		"Nom repr. légal",
		"Nom de famille représentant légal",
		"Nom du représentant légal",
		"Nom responsable 1")
	add(colGuardian1First,
		"Prénom repr. légal",
		"Prénom représentant légal",
		"Prénom du représentant légal",
		"Prénom responsable 1")
	add(colGuardian1Email,
		"Courriel repr. légal",
		"Courriel représentant légal",
		"Email repr. légal",
		"Mail responsable 1",
		"Adresse mail représentant légal")
	add(colGuardian2Last,
		"Nom de famille autre repr. légal",
		"Nom autre repr. légal",
		"Nom de famille autre représentant légal",
		"Nom responsable 2")
	add(colGuardian2First,
		"Prénom autre repr. légal",
		"Prénom autre représentant légal",
		"Prénom responsable 2")
	add(colGuardian2Email,
		"Courriel autre repr. légal",
		"Courriel autre représentant légal",
		"Email autre repr. légal",
		"Mail responsable 2",
		"Adresse mail autre représentant légal")
}

// matchColumn resolves one header cell to its canonical column. Exact
// squashed variants win; otherwise prefix heuristics catch export wordings
// not in the table ("Prénom 2" style numbering stays unmapped on purpose:
// only the first first-name column is kept).
func matchColumn(header string) (column, bool) {
	k := textutil.Squash(header)
	if col, ok := headerVariants[k]; ok {
		return col, true
	}
	switch {
	case strings.HasPrefix(k, "division"):
		return colDivision, true
	case k == "prenom1" || k == "prenom":
		return colFirstName, true
	}
	return 0, false
}

// setColumn writes one cell into the matching RosterRow field.
func setColumn(row *types.RosterRow, col column, val string) {
	switch col {
	case colLastName:
		row.LastName = val
	case colFirstName:
		row.FirstName = val
	case colBirthDate:
		row.BirthDate = val
	case colDivision:
		row.Division = val
	case colGuardian1Last:
		row.Guardian1Last = val
	case colGuardian1First:
		row.Guardian1First = val
	case colGuardian1Email:
		row.Guardian1Email = val
	case colGuardian2Last:
		row.Guardian2Last = val
	case colGuardian2First:
		row.Guardian2First = val
	case colGuardian2Email:
		row.Guardian2Email = val
	}
}

// getColumn reads one canonical field from a RosterRow.
func getColumn(row types.RosterRow, col column) string {
	switch col {
	case colLastName:
		return row.LastName
	case colFirstName:
		return row.FirstName
	case colBirthDate:
		return row.BirthDate
	case colDivision:
		return row.Division
	case colGuardian1Last:
		return row.Guardian1Last
	case colGuardian1First:
		return row.Guardian1First
	case colGuardian1Email:
		return row.Guardian1Email
	case colGuardian2Last:
		return row.Guardian2Last
	case colGuardian2First:
		return row.Guardian2First
	case colGuardian2Email:
		return row.Guardian2Email
	}
	return ""
}
