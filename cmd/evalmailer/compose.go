// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/compose"
	"github.com/jtexier/evalmailer/internal/mailmerge"
)

var composeCmd = &cobra.Command{
	Use:   "compose [mailmerge.csv]",
	Short: "Open one pre-filled Thunderbird draft per mail-merge row",
	Long: `Compose reads a mail-merge CSV and opens one draft window per row in
Thunderbird, recipients, subject, body, and attachments pre-filled. Drafts
are never sent automatically; each one is reviewed and sent by hand.

Use --dry-run to print the commands instead of launching the client, and
--skip/--limit to resume an interrupted batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if bin, _ := cmd.Flags().GetString("thunderbird"); bin != "" {
			cfg.Compose.Binary = bin
		}
		if sleep, _ := cmd.Flags().GetDuration("sleep"); sleep > 0 {
			cfg.Compose.Sleep = sleep
		}
		cfg.Compose.Limit, _ = cmd.Flags().GetInt("limit")
		cfg.Compose.Skip, _ = cmd.Flags().GetInt("skip")
		cfg.Compose.DryRun, _ = cmd.Flags().GetBool("dry-run")

		rows, err := mailmerge.ReadCSV(args[0])
		if err != nil {
			return err
		}
		baseDir := filepath.Dir(args[0])
		_, err = compose.OpenDrafts(rows, cfg.Compose, baseDir, cmd.OutOrStdout())
		return err
	},
}

func init() {
	composeCmd.Flags().String("thunderbird", "", "explicit path to the Thunderbird binary")
	composeCmd.Flags().Duration("sleep", 0, "pause between drafts (default 600ms)")
	composeCmd.Flags().Int("limit", 0, "open at most N drafts (0 = all)")
	composeCmd.Flags().Int("skip", 0, "skip the first N rows")
	composeCmd.Flags().Bool("dry-run", false, "print compose commands without launching the client")

	rootCmd.AddCommand(composeCmd)
}
