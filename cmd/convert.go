package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fileforge/internal/config"
	"fileforge/internal/convert"
	"fileforge/internal/jobs"
)

var (
	convertOutput  string
	convertFormat  string
	convertQuality int
	convertWidth   int
	convertHeight  int
	convertScale   float64
	convertPretty  bool
	convertPages   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input-file>",
	Short: "Convert a single file",
	Long: `Convert a single file to another format.

The output format comes from --format, or from the extension of
--output when --format is omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		data, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("reading input file: %w", err)
		}

		outputFormat := convertFormat
		if outputFormat == "" && convertOutput != "" {
			outputFormat = strings.TrimPrefix(filepath.Ext(convertOutput), ".")
		}
		if outputFormat == "" {
			return fmt.Errorf("output format is required: pass --format or an --output filename with an extension")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		workDir, err := os.MkdirTemp("", "fileforge-convert-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(workDir)

		st, err := jobs.NewStore(workDir)
		if err != nil {
			return err
		}
		converter := convert.New(convert.Limits{
			MaxImageDimension: cfg.Limits.MaxImageDimension,
			MaxPDFPages:       cfg.Limits.MaxPDFPages,
			MaxRows:           cfg.Limits.MaxRows,
			MaxColumns:        cfg.Limits.MaxColumns,
		})
		orch := jobs.NewOrchestrator(st, converter, discardLogger(), 0, 1)

		job, err := orch.Upload(filepath.Base(inputFile), data)
		if err != nil {
			return err
		}

		done, err := orch.Convert(job.ID, outputFormat, collectCLIOptions())
		if err != nil {
			return err
		}
		if done.Status != jobs.StatusCompleted {
			return fmt.Errorf("conversion failed: %s", done.Error)
		}

		payload, suggested, err := orch.Download(job.ID)
		if err != nil {
			return err
		}

		outputFile := convertOutput
		if outputFile == "" {
			outputFile = filepath.Join(filepath.Dir(inputFile), suggested)
		}
		if err := os.WriteFile(outputFile, payload, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}

		fmt.Printf("Converted %s -> %s (%d bytes)\n", inputFile, outputFile, len(payload))
		return nil
	},
}

// discardLogger keeps orchestrator logging out of CLI output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collectCLIOptions translates the convert flags into the raw options
// map the orchestrator validates, including only flags the user set.
func collectCLIOptions() map[string]any {
	opts := map[string]any{}
	if convertQuality > 0 {
		opts["quality"] = convertQuality
	}
	if convertWidth > 0 {
		opts["width"] = convertWidth
	}
	if convertHeight > 0 {
		opts["height"] = convertHeight
	}
	if convertScale > 0 {
		opts["scale"] = convertScale
	}
	if convertPretty {
		opts["pretty"] = true
	}
	if convertPages != "" {
		opts["pageRange"] = convertPages
	}
	return opts
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: <input>_converted.<format>)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format (e.g. jpg, txt, json)")
	convertCmd.Flags().IntVar(&convertQuality, "quality", 0, "Quality for lossy image output, 1-100 (default: 85)")
	convertCmd.Flags().IntVar(&convertWidth, "width", 0, "Output image width in pixels")
	convertCmd.Flags().IntVar(&convertHeight, "height", 0, "Output image height in pixels")
	convertCmd.Flags().Float64Var(&convertScale, "scale", 0, "Uniform image scale factor (exclusive with width/height)")
	convertCmd.Flags().BoolVar(&convertPretty, "pretty", false, "Pretty-print JSON output")
	convertCmd.Flags().StringVar(&convertPages, "pages", "", "Page range for PDF input, e.g. 1-5")

	rootCmd.AddCommand(convertCmd)
}
