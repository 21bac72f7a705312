// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists split reports and pipeline runs in a local
// SQLite database, so coverage can be inspected without re-scanning the
// output directory.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jtexier/evalmailer/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "evalmailer.db"
)

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the catalog database at
// workDir/index/evalmailer.db, creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.WorkDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			class TEXT NOT NULL,
			last_name TEXT NOT NULL,
			first_name TEXT NOT NULL,
			discipline TEXT NOT NULL,
			year TEXT NOT NULL,
			path TEXT NOT NULL,
			source_page INTEGER,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (class, last_name, first_name, discipline, year)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_class_year ON reports(class, year)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			class TEXT NOT NULL,
			year TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			split INTEGER,
			matched INTEGER,
			missing INTEGER
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordReports upserts one report row per split PDF. Re-running a split
// for the same class and year replaces the stored paths.
func (s *Store) RecordReports(ctx context.Context, reports []types.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reports (class, last_name, first_name, discipline, year, path, source_page, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(class, last_name, first_name, discipline, year) DO UPDATE SET
			path=excluded.path, source_page=excluded.source_page, recorded_at=excluded.recorded_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range reports {
		_, err := stmt.ExecContext(ctx,
			r.Class, r.LastName, r.FirstName, string(r.Discipline), r.Year,
			r.Path, r.SourcePage, now)
		if err != nil {
			return fmt.Errorf("inserting report %s: %w", filepath.Base(r.Path), err)
		}
	}
	return tx.Commit()
}

// RecordRun appends one pipeline run record.
func (s *Store) RecordRun(ctx context.Context, run types.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (class, year, started_at, finished_at, split, matched, missing)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Class, run.Year,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Split, run.Matched, run.Missing)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// StudentCoverage lists which disciplines are on file for one student.
type StudentCoverage struct {
	LastName  string
	FirstName string
	French    bool
	Maths     bool
}

// Complete reports whether both disciplines are on file.
func (c StudentCoverage) Complete() bool {
	return c.French && c.Maths
}

// ClassCoverage summarizes one class and year.
type ClassCoverage struct {
	Class    string
	Year     string
	Students []StudentCoverage
}

// Incomplete returns the students missing at least one discipline.
func (c ClassCoverage) Incomplete() []StudentCoverage {
	var out []StudentCoverage
	for _, s := range c.Students {
		if !s.Complete() {
			out = append(out, s)
		}
	}
	return out
}

// Coverage aggregates the stored reports of one class and year per
// student.
func (s *Store) Coverage(ctx context.Context, class, year string) (ClassCoverage, error) {
	cov := ClassCoverage{Class: class, Year: year}

	rows, err := s.db.QueryContext(ctx,
		`SELECT last_name, first_name, discipline FROM reports
		 WHERE class = ? AND year = ?`, class, year)
	if err != nil {
		return cov, fmt.Errorf("querying coverage: %w", err)
	}
	defer rows.Close()

	byStudent := make(map[string]*StudentCoverage)
	var order []string
	for rows.Next() {
		var last, first, disc string
		if err := rows.Scan(&last, &first, &disc); err != nil {
			return cov, fmt.Errorf("scanning coverage row: %w", err)
		}
		key := last + "|" + first
		sc, ok := byStudent[key]
		if !ok {
			sc = &StudentCoverage{LastName: last, FirstName: first}
			byStudent[key] = sc
			order = append(order, key)
		}
		if types.Discipline(disc) == types.DisciplineMaths {
			sc.Maths = true
		} else {
			sc.French = true
		}
	}
	if err := rows.Err(); err != nil {
		return cov, err
	}

	sort.Strings(order)
	for _, key := range order {
		cov.Students = append(cov.Students, *byStudent[key])
	}
	return cov, nil
}

// Classes lists the (class, year) pairs with stored reports, most recent
// year first.
func (s *Store) Classes(ctx context.Context) ([][2]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT class, year FROM reports ORDER BY year DESC, class`)
	if err != nil {
		return nil, fmt.Errorf("querying classes: %w", err)
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var class, year string
		if err := rows.Scan(&class, &year); err != nil {
			return nil, err
		}
		out = append(out, [2]string{class, year})
	}
	return out, rows.Err()
}

// LastRun returns the most recent run record for a class, or nil when none
// is stored.
func (s *Store) LastRun(ctx context.Context, class string) (*types.RunRecord, error) {
	var run types.RunRecord
	var started, finished string
	err := s.db.QueryRowContext(ctx,
		`SELECT class, year, started_at, finished_at, split, matched, missing
		 FROM runs WHERE class = ? ORDER BY id DESC LIMIT 1`, class,
	).Scan(&run.Class, &run.Year, &started, &finished, &run.Split, &run.Matched, &run.Missing)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last run: %w", err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return &run, nil
}
