package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fileforge/internal/formats"
)

var formatsCategory string

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported conversions",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := formats.Category(formatsCategory)
		switch filter {
		case "", formats.CategoryImage, formats.CategoryDocument, formats.CategoryData:
		default:
			return fmt.Errorf("unknown category %q (expected image, document, or data)", formatsCategory)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INPUT\tCATEGORY\tOUTPUTS")
		for _, entry := range formats.All(filter) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Input, entry.Category, strings.Join(entry.Outputs, ", "))
		}
		return w.Flush()
	},
}

func init() {
	formatsCmd.Flags().StringVar(&formatsCategory, "category", "", "Filter by category: image, document, or data")
	rootCmd.AddCommand(formatsCmd)
}
