// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultProbePages is how many pages the scan probe samples.
const DefaultProbePages = 6

// DefaultMinCharsPerPage is the probe threshold: below this many extracted
// characters per sampled page the PDF is treated as scanned.
const DefaultMinCharsPerPage = 50

// ProbeResult summarizes the text-layer probe of a PDF.
type ProbeResult struct {
	PagesSampled int
	TotalChars   int
	CharsPerPage float64
}

// Scanned reports whether the probe fell below the given per-page
// character threshold.
func (r ProbeResult) Scanned(minCharsPerPage float64) bool {
	return r.CharsPerPage < minCharsPerPage
}

// Probe samples up to maxPages pages of the PDF at path and measures how
// much text extracts from them. Extraction errors on individual pages count
// as zero characters; a scan with a corrupt text layer should still probe
// as scanned.
func Probe(path string, maxPages int) (ProbeResult, error) {
	if maxPages <= 0 {
		maxPages = DefaultProbePages
	}
	f, reader, err := pdf.Open(path)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	if total < maxPages {
		maxPages = total
	}

	var res ProbeResult
	for i := 1; i <= maxPages; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			res.PagesSampled++
			continue
		}
		text, err := p.GetPlainText(nil)
		if err == nil {
			res.TotalChars += len(strings.TrimSpace(text))
		}
		res.PagesSampled++
	}
	if res.PagesSampled > 0 {
		res.CharsPerPage = float64(res.TotalChars) / float64(res.PagesSampled)
	}
	return res, nil
}
