package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/screenwatch/screenwatch/internal/config"
	"github.com/screenwatch/screenwatch/internal/server"
)

func newServeCommand() *cobra.Command {
	var (
		listen   string
		apiKey   string
		storeDir string
		sourceDB string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ScreenWatch HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.ServerFromEnv()
			if listen != "" {
				cfg.ListenAddr = listen
			}
			if apiKey != "" {
				cfg.APIKey = apiKey
			}
			if storeDir != "" {
				cfg.StoreDir = storeDir
			}
			if sourceDB != "" {
				cfg.SourceDBPath = sourceDB
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			if cfg.APIKey == "" {
				logger.Warn("no API key configured, all authenticated endpoints will refuse requests",
					"hint", "set SCREENWATCH_API_KEY or pass --api-key")
			}

			srv, err := server.New(cfg, logger)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("listening", "addr", cfg.ListenAddr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default :8000, or SCREENWATCH_LISTEN)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key clients must present (or SCREENWATCH_API_KEY)")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "directory for the sync store database (or SCREENWATCH_STORE_DIR)")
	cmd.Flags().StringVar(&sourceDB, "source-db", "", "path to knowledgeC.db to serve usage from (or SCREENWATCH_SOURCE_DB)")

	return cmd
}
