package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fileforge",
	Short: "Convert images, PDFs, and data files",
	Long: `FileForge converts files between common formats.

Images:    png, jpg, jpeg, webp, bmp, gif
Documents: pdf (to txt or extracted images)
Data:      csv, json, xlsx, xls

Run a one-shot conversion with "fileforge convert", list the supported
pairs with "fileforge formats", or start the web API and browser UI
with "fileforge serve".`,
}

// SetVersionInfo wires build-time version metadata into the CLI.
func SetVersionInfo(version, buildTime, gitCommit string) {
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", version, buildTime, gitCommit)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to config file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
