// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evalmailer CLI: it splits a
// combined national-evaluation PDF into per-student reports, merges roster
// exports to recover guardian emails, builds the mail-merge CSV, and opens
// pre-filled drafts in Thunderbird.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jtexier/evalmailer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the evalmailer CLI.
var rootCmd = &cobra.Command{
	Use:   "evalmailer",
	Short: "Send national evaluation reports to families",
	Long: `evalmailer turns the combined national-evaluation PDF into per-student,
per-discipline reports and gets them to the right families.

Each step is a subcommand: split cuts the combined PDF, roster merges the
school exports, build produces the mail-merge CSV, compose opens one draft
per family in Thunderbird. run chains them; ui does the same behind a
terminal form.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evalmailer.yaml or ~/.config/evalmailer/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evalmailer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evalmailer"))
		}
	}

	viper.SetEnvPrefix("EVALMAILER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configDir is where per-user overrides (message.txt) live.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "evalmailer")
}

// defaultYear guesses the school year from the current date: September
// through December belong to the year that just started.
func defaultYear() string {
	if y := viper.GetString("year"); y != "" {
		return y
	}
	now := time.Now()
	start := now.Year()
	if now.Month() < time.August {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// loadConfig builds the pipeline configuration from viper with defaults.
func loadConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Split: types.SplitConfig{
			OutputDir:   stringOr("split.output_dir", "eleves_pdfs"),
			KeepAccents: viper.GetBool("split.keep_accents"),
		},
		OCR: types.OCRConfig{
			Enabled:         boolOr("ocr.enabled", true),
			Language:        stringOr("ocr.language", "fra"),
			ProbePages:      intOr("ocr.probe_pages", 6),
			MinCharsPerPage: floatOr("ocr.min_chars_per_page", 50),
			Binary:          viper.GetString("ocr.binary"),
		},
		Roster: types.RosterConfig{
			OutDir: stringOr("roster.out_dir", "."),
		},
		MailMerge: types.MailMergeConfig{
			Year:               defaultYear(),
			PreflightThreshold: floatOr("mail_merge.preflight_threshold", 0.8),
			Strict:             viper.GetBool("mail_merge.strict"),
		},
		Compose: types.ComposeConfig{
			Binary: viper.GetString("compose.binary"),
			Sleep:  durationOr("compose.sleep", 600*time.Millisecond),
		},
		Catalog: types.CatalogConfig{
			WorkDir: viper.GetString("catalog.work_dir"),
		},
	}
	return cfg
}

func stringOr(key, fallback string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return fallback
}

func boolOr(key string, fallback bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return fallback
}

func floatOr(key string, fallback float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
