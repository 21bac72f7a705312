// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [input.pdf]",
	Short: "Run the whole pipeline: split, roster, build, optionally compose",
	Long: `Run chains the stages end to end: OCR probe, split of the combined PDF,
roster merge, class filter, coverage preflight, mail-merge build, email
backfill and attachment checks, and (with --compose) the Thunderbird
drafts.

A ready-made merged roster can be passed with --csv-in to skip the merge,
and --skip-split reuses the PDFs already in the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		class, _ := cmd.Flags().GetString("class")
		if class == "" {
			return fmt.Errorf("--class is required")
		}
		year, _ := cmd.Flags().GetString("year")
		if year == "" {
			year = cfg.MailMerge.Year
		}
		if out, _ := cmd.Flags().GetString("out-dir"); out != "" {
			cfg.Split.OutputDir = out
		}
		if noOCR, _ := cmd.Flags().GetBool("no-ocr"); noOCR {
			cfg.OCR.Enabled = false
		}
		if strict, _ := cmd.Flags().GetBool("strict"); strict {
			cfg.MailMerge.Strict = true
		}
		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			cfg.Compose.DryRun = true
		}

		opts := pipeline.Options{
			Class:     class,
			Year:      year,
			ConfigDir: configDir(),
			Config:    cfg,
		}
		opts.RosterPaths, _ = cmd.Flags().GetStringSlice("roster")
		opts.CSVIn, _ = cmd.Flags().GetString("csv-in")
		opts.SkipSplit, _ = cmd.Flags().GetBool("skip-split")
		opts.OutCSV, _ = cmd.Flags().GetString("out")
		opts.MessageText, _ = cmd.Flags().GetString("message-text")
		opts.MessageFile, _ = cmd.Flags().GetString("message-file")
		opts.Compose, _ = cmd.Flags().GetBool("compose")

		if len(args) == 1 {
			opts.InputPDF = args[0]
		} else if !opts.SkipSplit {
			return fmt.Errorf("an input PDF is required unless --skip-split is given")
		}

		_, err := pipeline.Run(cmd.Context(), opts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	runCmd.Flags().String("class", "", "class label, e.g. 4D (required)")
	runCmd.Flags().String("year", "", "school year (default: current)")
	runCmd.Flags().String("out-dir", "", "output directory for per-student PDFs")
	runCmd.Flags().StringSlice("roster", nil, "roster export CSVs to merge (repeatable)")
	runCmd.Flags().String("csv-in", "", "ready-made merged roster, skips the merge")
	runCmd.Flags().Bool("skip-split", false, "reuse the PDFs already in the output directory")
	runCmd.Flags().String("out", "", "mail-merge CSV path")
	runCmd.Flags().String("message-text", "", "common mail body text")
	runCmd.Flags().String("message-file", "", "file with the common mail body")
	runCmd.Flags().Bool("no-ocr", false, "skip the scanned-input probe and OCR pass")
	runCmd.Flags().Bool("strict", false, "abort on coverage alerts and missing attachments")
	runCmd.Flags().Bool("compose", false, "open Thunderbird drafts after the build")
	runCmd.Flags().Bool("dry-run", false, "with --compose, print commands instead of launching")

	rootCmd.AddCommand(runCmd)
}
