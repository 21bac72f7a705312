// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/catalog"
	"github.com/jtexier/evalmailer/internal/mailmerge"
	"github.com/jtexier/evalmailer/internal/message"
	"github.com/jtexier/evalmailer/internal/roster"
	"github.com/jtexier/evalmailer/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the mail-merge CSV from split PDFs and the merged roster",
	Long: `Build indexes the per-student PDFs in the output directory, matches them
against the merged roster of one class, and writes the mail-merge CSV
consumed by the Thunderbird mail-merge extension. Students without any
report land in a separate missing-report CSV.`,
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
		pdfDir, _ := cmd.Flags().GetString("pdf-dir")
		if pdfDir == "" {
			pdfDir = cfg.Split.OutputDir
		}
		rosterCSV, _ := cmd.Flags().GetString("roster")
		if rosterCSV == "" {
			return fmt.Errorf("--roster is required (the merged roster CSV)")
		}
		msgText, _ := cmd.Flags().GetString("message-text")
		msgFile, _ := cmd.Flags().GetString("message-file")
		strict, _ := cmd.Flags().GetBool("strict")
		w := cmd.OutOrStdout()

		cat, err := mailmerge.Index(pdfDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Indexed %d PDFs", cat.Indexed)
		if len(cat.Skipped) > 0 {
			fmt.Fprintf(w, " (%d unparseable names)", len(cat.Skipped))
		}
		fmt.Fprintln(w)

		merged, err := roster.ReadFile(rosterCSV)
		if err != nil {
			return err
		}
		classRows, err := roster.FilterDivision(merged, class)
		if err != nil {
			return err
		}

		body, err := message.Resolve(msgText, msgFile, configDir())
		if err != nil {
			return err
		}

		res := mailmerge.Build(cat, classRows, class, year, body, w)
		filled, empty := mailmerge.FillEmails(res.Rows, merged)
		fmt.Fprintf(w, "Emails backfilled: %d, still empty: %d\n", filled, empty)

		if missing := mailmerge.VerifyAttachments(res.Rows, pdfDir); len(missing) > 0 {
			for _, p := range missing {
				fmt.Fprintf(w, "  missing attachment: %s\n", p)
			}
			if strict || cfg.MailMerge.Strict {
				return fmt.Errorf("%d attachments missing on disk", len(missing))
			}
		}

		outCSV, _ := cmd.Flags().GetString("out")
		if outCSV == "" {
			outCSV = filepath.Join(pdfDir, fmt.Sprintf("mailmerge_%s.csv", class))
		}
		if err := mailmerge.WriteCSV(outCSV, res.Rows); err != nil {
			return err
		}
		fmt.Fprintf(w, "Mail-merge CSV: %s\n", outCSV)
		if res.HasMissing() {
			missCSV := outCSV[:len(outCSV)-len(filepath.Ext(outCSV))] + "_manquants.csv"
			if err := mailmerge.WriteMissing(missCSV, res.Missing); err != nil {
				return err
			}
			fmt.Fprintf(w, "Missing report: %s\n", missCSV)
		}

		// Refresh the catalog; failures only warn.
		workDir := cfg.Catalog.WorkDir
		if workDir == "" {
			workDir = pdfDir
		}
		if store, err := catalog.NewStore(types.CatalogConfig{WorkDir: workDir}); err == nil {
			defer store.Close()
			if err := store.RecordReports(context.Background(), cat.Reports(class, year)); err != nil {
				fmt.Fprintf(w, "warning: catalog update failed: %v\n", err)
			}
		} else {
			fmt.Fprintf(w, "warning: catalog unavailable: %v\n", err)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().String("class", "", "class label, e.g. 4D (required)")
	buildCmd.Flags().String("year", "", "school year (default: current)")
	buildCmd.Flags().String("pdf-dir", "", "directory with split PDFs (default: config split.output_dir)")
	buildCmd.Flags().String("roster", "", "merged roster CSV (required)")
	buildCmd.Flags().String("out", "", "mail-merge CSV path (default: mailmerge_{class}.csv in pdf-dir)")
	buildCmd.Flags().String("message-text", "", "common mail body text for all rows")
	buildCmd.Flags().String("message-file", "", "file with the common mail body")
	buildCmd.Flags().Bool("strict", false, "abort when attachments are missing on disk")

	rootCmd.AddCommand(buildCmd)
}
