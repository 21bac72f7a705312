// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/ocr"
	"github.com/jtexier/evalmailer/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split [input.pdf]",
	Short: "Cut the combined evaluation PDF into per-student PDFs",
	Long: `Split reads the combined national-evaluation PDF, attributes every page to
a student and a discipline from the page text, and writes one PDF per page
named {Classe}_{NOM}_{Prénom}_{Discipline}_{Année}.pdf.

When the input has no usable text layer (a scan), split runs ocrmypdf first
if it is installed, unless --no-ocr is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		input := args[0]
		class, _ := cmd.Flags().GetString("class")
		year, _ := cmd.Flags().GetString("year")
		if class == "" {
			return fmt.Errorf("--class is required")
		}
		if year == "" {
			year = cfg.MailMerge.Year
		}
		if out, _ := cmd.Flags().GetString("out-dir"); out != "" {
			cfg.Split.OutputDir = out
		}
		if keep, _ := cmd.Flags().GetBool("keep-accents"); keep {
			cfg.Split.KeepAccents = true
		}
		if noOCR, _ := cmd.Flags().GetBool("no-ocr"); noOCR {
			cfg.OCR.Enabled = false
		}

		w := cmd.OutOrStdout()
		if cfg.OCR.Enabled {
			probe, err := ocr.Probe(input, cfg.OCR.ProbePages)
			if err != nil {
				return err
			}
			if probe.Scanned(cfg.OCR.MinCharsPerPage) {
				engine := ocr.NewEngine(cfg.OCR.Binary, cfg.OCR.Language)
				if !engine.Available() {
					fmt.Fprintln(w, "warning: input looks scanned and ocrmypdf is not installed; run 'evalmailer doctor'")
				} else {
					ocrPath := input[:len(input)-4] + "_ocr.pdf"
					fmt.Fprintf(w, "Input looks scanned, running OCR -> %s\n", ocrPath)
					if err := engine.Run(input, ocrPath, os.Stderr); err != nil {
						return err
					}
					input = ocrPath
				}
			}
		}

		res, err := split.Split(input, class, year, cfg.Split, w)
		if err != nil {
			return err
		}
		if res.HasUnresolved() {
			return fmt.Errorf("%d of %d pages unresolved", len(res.Unresolved), res.TotalPages)
		}
		return nil
	},
}

func init() {
	splitCmd.Flags().String("class", "", "class label, e.g. 4D (required)")
	splitCmd.Flags().String("year", "", "school year, e.g. 2025-2026 (default: current)")
	splitCmd.Flags().String("out-dir", "", "output directory for per-student PDFs")
	splitCmd.Flags().Bool("keep-accents", false, "keep accented characters in filenames")
	splitCmd.Flags().Bool("no-ocr", false, "skip the scanned-input probe and OCR pass")

	rootCmd.AddCommand(splitCmd)
}
