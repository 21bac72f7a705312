// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/catalog"
	"github.com/jtexier/evalmailer/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-class report coverage from the local catalog",
	Long: `Status reads the local catalog written by build and run: which classes have
reports on file, per-student discipline coverage, and the last pipeline run
per class.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		workDir := cfg.Catalog.WorkDir
		if workDir == "" {
			workDir = cfg.Split.OutputDir
		}
		if dir, _ := cmd.Flags().GetString("work-dir"); dir != "" {
			workDir = dir
		}
		class, _ := cmd.Flags().GetString("class")
		w := cmd.OutOrStdout()

		store, err := catalog.NewStore(types.CatalogConfig{WorkDir: workDir})
		if err != nil {
			return err
		}
		defer store.Close()
		ctx := cmd.Context()

		classes, err := store.Classes(ctx)
		if err != nil {
			return err
		}
		if len(classes) == 0 {
			fmt.Fprintln(w, "Catalog is empty; run a build first.")
			return nil
		}

		for _, cy := range classes {
			if class != "" && cy[0] != class {
				continue
			}
			cov, err := store.Coverage(ctx, cy[0], cy[1])
			if err != nil {
				return err
			}
			incomplete := cov.Incomplete()
			fmt.Fprintf(w, "%s (%s): %d students on file, %d incomplete\n",
				cy[0], cy[1], len(cov.Students), len(incomplete))
			for _, s := range incomplete {
				missing := "Français"
				if s.French {
					missing = "Mathématiques"
				}
				fmt.Fprintf(w, "  %s %s: missing %s\n", s.LastName, s.FirstName, missing)
			}
			if run, err := store.LastRun(ctx, cy[0]); err == nil && run != nil {
				fmt.Fprintf(w, "  last run %s: %d split, %d matched, %d missing\n",
					run.FinishedAt.Local().Format("2006-01-02 15:04"),
					run.Split, run.Matched, run.Missing)
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("work-dir", "", "catalog directory (default: the split output directory)")
	statusCmd.Flags().String("class", "", "limit to one class")

	rootCmd.AddCommand(statusCmd)
}
