package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fileforge/internal/config"
	"fileforge/internal/convert"
	server "fileforge/internal/http"
	"fileforge/internal/jobs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web API and browser UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

		st, err := jobs.NewStore(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("opening data directory failed: %v", err)
		}

		converter := convert.New(convert.Limits{
			MaxImageDimension: cfg.Limits.MaxImageDimension,
			MaxPDFPages:       cfg.Limits.MaxPDFPages,
			MaxRows:           cfg.Limits.MaxRows,
			MaxColumns:        cfg.Limits.MaxColumns,
		})
		orch := jobs.NewOrchestrator(st, converter, logger, cfg.MaxUploadBytes(), cfg.Worker.MaxConcurrentJobs)

		go jobs.StartRetentionLoop(context.Background(), cfg, st, logger)

		logger.Info("starting server",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"data_dir", cfg.Storage.DataDir,
		)

		s := server.NewServer(cfg, orch, logger)
		if err := s.Listen(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
