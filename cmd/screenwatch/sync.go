package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/screenwatch/screenwatch/internal/config"
	"github.com/screenwatch/screenwatch/internal/syncclient"
)

func newSyncCommand() *cobra.Command {
	var (
		apiURL string
		apiKey string
		days   int
		save   bool
		quiet  bool
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload recent usage records to a ScreenWatch server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if apiURL == "" {
				apiURL = os.Getenv("SCREENWATCH_API_URL")
			}
			if apiURL == "" {
				apiURL = cfg.APIURL
			}
			if apiKey == "" {
				apiKey = os.Getenv("SCREENWATCH_API_KEY")
			}
			if apiKey == "" {
				apiKey = cfg.APIKey
			}
			if dbPath == "" {
				dbPath = cfg.SourceDBPath
			}
			if apiURL == "" {
				return fmt.Errorf("no server URL: pass --api-url, set SCREENWATCH_API_URL, or add api_url to %s", config.ConfigPath())
			}

			if save {
				cfg.APIURL = apiURL
				cfg.APIKey = apiKey
				if err := config.Save(cfg); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				if !quiet {
					fmt.Printf("saved settings to %s\n", config.ConfigPath())
				}
			}

			if days < 1 {
				days = 1
			}
			start := time.Now().AddDate(0, 0, -days)

			records, err := readUsage(cmd.Context(), dbPath, &start, nil)
			if err != nil {
				return describeSourceError(err)
			}
			if len(records) == 0 {
				if !quiet {
					fmt.Println("nothing to sync: no usage records in the window")
				}
				return nil
			}

			resp, err := syncclient.New(apiURL, apiKey).Upload(cmd.Context(), records)
			if err != nil {
				if errors.Is(err, syncclient.ErrNetwork) {
					return fmt.Errorf("%w\nis the server running at %s?", err, apiURL)
				}
				return err
			}

			if !quiet {
				fmt.Printf("synced %d records, %d new\n", resp.RecordsReceived, resp.RecordsInserted)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "base URL of the ScreenWatch server")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the server")
	cmd.Flags().IntVar(&days, "days", 7, "how many days back to sync")
	cmd.Flags().BoolVar(&save, "save", false, "persist --api-url and --api-key to the config file")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress output")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to knowledgeC.db (defaults to the system Screen Time database)")

	return cmd
}
