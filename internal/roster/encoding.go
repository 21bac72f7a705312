// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roster

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeBytes turns a raw roster export into UTF-8 text. Exports arrive as
// UTF-8 (sometimes with a BOM) or as Windows-1252/Latin-1 depending on which
// machine produced them; invalid UTF-8 is re-decoded as cp1252, which is a
// superset of Latin-1 for the bytes these files contain.
func decodeBytes(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// detectSeparator picks ';' or ',' by counting occurrences in the first
// 4 KiB of the file. Ties go to ';', the separator the school export uses.
func detectSeparator(text string) rune {
	sample := text
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	var semis, commas int
	for _, r := range sample {
		switch r {
		case ';':
			semis++
		case ',':
			commas++
		}
	}
	if commas > semis {
		return ','
	}
	return ';'
}
