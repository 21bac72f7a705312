// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records shared across pipeline stages: the
// roster rows read from school-information-system exports, the per-student
// report PDFs produced by the split stage, and the mail-merge rows consumed
// by the email client.
package types

import "time"

// Discipline identifies the subject of an evaluation report.
type Discipline string

const (
	DisciplineFrench Discipline = "Français"
	DisciplineMaths  Discipline = "Mathématiques"
)

// Report is one per-student PDF produced by the split stage.
type Report struct {
	Class      string     `json:"class" yaml:"class"`
	LastName   string     `json:"last_name" yaml:"last_name"`
	FirstName  string     `json:"first_name" yaml:"first_name"`
	Discipline Discipline `json:"discipline" yaml:"discipline"`
	Year       string     `json:"year" yaml:"year"`
	Path       string     `json:"path" yaml:"path"`

	// SourcePage is the 1-based page in the combined input PDF.
	SourcePage int `json:"source_page" yaml:"source_page"`
}

// RosterRow is one student record after header canonicalization. The csv
// tags carry the canonical column names of the source export so that the
// merged roster round-trips into the school information system's vocabulary.
type RosterRow struct {
	LastName       string `csv:"Nom de famille"`
	FirstName      string `csv:"Prénom 1"`
	BirthDate      string `csv:"Date de naissance"`
	Division       string `csv:"Division"`
	Guardian1Last  string `csv:"Nom de famille repr. légal"`
	Guardian1First string `csv:"Prénom repr. légal"`
	Guardian1Email string `csv:"Courriel repr. légal"`
	Guardian2Last  string `csv:"Nom de famille autre repr. légal"`
	Guardian2First string `csv:"Prénom autre repr. légal"`
	Guardian2Email string `csv:"Courriel autre repr. légal"`
}

// MailMergeRow is one line of the CSV handed to the mail client's mail-merge
// extension. Column names are fixed by the extension's template bindings.
type MailMergeRow struct {
	Class       string `csv:"Classe"`
	LastName    string `csv:"Nom"`
	FirstName   string `csv:"Prénom"`
	Emails      string `csv:"Emails"`
	FrenchPDF   string `csv:"PJ_francais"`
	MathsPDF    string `csv:"PJ_math"`
	Attachments string `csv:"Attachments"`
	Year        string `csv:"Annee"`
	Subject     string `csv:"Objet"`
	Body        string `csv:"CorpsMessage"`
}

// MissingReport describes a roster row for which no split PDF was found,
// with the filenames the build stage expected to see.
type MissingReport struct {
	Division       string `csv:"Division"`
	LastName       string `csv:"Nom"`
	FirstName      string `csv:"Prénom"`
	ExpectedFrench string `csv:"Attendu_Francais"`
	ExpectedMaths  string `csv:"Attendu_Maths"`
	SampleFiles    string `csv:"ExemplesFichiersDansDivision"`
}

// RunRecord summarizes one pipeline run for the catalog.
type RunRecord struct {
	Class      string    `json:"class" yaml:"class"`
	Year       string    `json:"year" yaml:"year"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Split      int       `json:"split" yaml:"split"`
	Matched    int       `json:"matched" yaml:"matched"`
	Missing    int       `json:"missing" yaml:"missing"`
}
