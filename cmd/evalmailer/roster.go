// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/roster"
)

var rosterCmd = &cobra.Command{
	Use:   "roster [exports...]",
	Short: "Merge school roster exports into one canonical CSV",
	Long: `Roster reads one or more school-information-system exports (any mix of
encodings, separators, and header wordings), deduplicates students across
them, and writes a merged roster plus a mail-oriented variant with a
combined Emails column.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if out, _ := cmd.Flags().GetString("out-dir"); out != "" {
			cfg.Roster.OutDir = out
		}
		w := cmd.OutOrStdout()

		merged, err := roster.MergeFiles(args, w)
		if err != nil {
			return err
		}
		if class, _ := cmd.Flags().GetString("class"); class != "" {
			merged, err = roster.FilterDivision(merged, class)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Filtered to class %s: %d students\n", class, len(merged))
		}

		mergedCSV := filepath.Join(cfg.Roster.OutDir, "eleves_fusion.csv")
		if err := roster.WriteMerged(mergedCSV, merged); err != nil {
			return err
		}
		mailCSV := filepath.Join(cfg.Roster.OutDir, "eleves_fusion_mails.csv")
		if err := roster.WriteMailVariant(mailCSV, merged); err != nil {
			return err
		}
		fmt.Fprintf(w, "Merged roster: %s\nMail variant:  %s\n", mergedCSV, mailCSV)
		return nil
	},
}

func init() {
	rosterCmd.Flags().String("out-dir", "", "directory for the merged CSVs (default: config roster.out_dir)")
	rosterCmd.Flags().String("class", "", "keep only one class (e.g. 4D)")

	rootCmd.AddCommand(rosterCmd)
}
