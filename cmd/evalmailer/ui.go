// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Run the pipeline behind a terminal form",
	Long: `UI opens a terminal form for the run parameters (class, year, input PDF,
roster exports, output directory) and shows the pipeline log live while it
executes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		app := tui.NewApp(cfg, cfg.MailMerge.Year)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running terminal UI: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
