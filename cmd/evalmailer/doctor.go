// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtexier/evalmailer/internal/compose"
	"github.com/jtexier/evalmailer/internal/ocr"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the external tools the pipeline depends on",
	Long: `Doctor checks for Thunderbird, tesseract, and ocrmypdf, and prints
installation hints for whatever is missing on this platform. The pipeline
works without the OCR stack as long as the input PDFs carry a text layer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		w := cmd.OutOrStdout()
		healthy := true

		mark := func(ok bool) string {
			if ok {
				return "ok     "
			}
			return "MISSING"
		}

		tb, err := compose.FindBinary(cfg.Compose.Binary)
		fmt.Fprintf(w, "%s thunderbird  %s\n", mark(err == nil), tb)
		if err != nil {
			healthy = false
			fmt.Fprintf(w, "        %v\n", err)
		}

		stack := ocr.DetectStack()
		fmt.Fprintf(w, "%s tesseract    %s\n", mark(stack.TesseractPath != ""), stack.TesseractPath)
		fmt.Fprintf(w, "%s ocrmypdf     %s\n", mark(stack.OCRmyPDFPath != ""), stack.OCRmyPDFPath)

		switch {
		case stack.Ready():
			fmt.Fprintln(w, "\nOCR stack complete; scanned inputs are handled automatically.")
		case stack.Degraded():
			fmt.Fprintln(w, "\nOCR degraded: tesseract found but ocrmypdf missing; scanned inputs will not be converted.")
		default:
			fmt.Fprintln(w, "\nNo OCR stack; only PDFs with a text layer can be split.")
		}
		if !stack.Ready() {
			fmt.Fprintln(w, "Install hints:")
			for _, h := range ocr.InstallHints() {
				fmt.Fprintf(w, "  %s\n", h)
			}
		}

		if !healthy {
			return fmt.Errorf("some required tools are missing")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
