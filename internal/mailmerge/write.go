// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailmerge

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/jtexier/evalmailer/pkg/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the mail-merge rows as UTF-8 with BOM and comma
// separators, the form the mail-merge extension parses.
func WriteCSV(path string, rows []types.MailMergeRow) error {
	return writeBOMCSV(path, &rows)
}

// WriteMissing writes the missing-report CSV next to the mail-merge output.
func WriteMissing(path string, rows []types.MissingReport) error {
	return writeBOMCSV(path, &rows)
}

// ReadCSV loads a previously built mail-merge CSV, tolerating a BOM.
func ReadCSV(path string) ([]types.MailMergeRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	var rows []types.MailMergeRow
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

func writeBOMCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
