package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/screenwatch/screenwatch/internal/export"
	"github.com/screenwatch/screenwatch/internal/knowledge"
	"github.com/screenwatch/screenwatch/internal/render"
	"github.com/screenwatch/screenwatch/internal/usage"
)

const dateLayout = "2006-01-02"

type reportFlags struct {
	startDate string
	endDate   string
	summary   bool
	top       int
	format    string
	output    string
	dbPath    string
}

func newReportCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a screen time report from the local Screen Time database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.startDate, "start-date", "", "only include usage on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.endDate, "end-date", "", "only include usage on or before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "collapse the report into per-app totals")
	cmd.Flags().IntVar(&flags.top, "top", 0, "limit to the N apps with the most usage (0 = all)")
	cmd.Flags().StringVar(&flags.format, "format", "", "write csv or json instead of the terminal report")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the export to a file instead of stdout")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "path to knowledgeC.db (defaults to the system Screen Time database)")

	return cmd
}

func runReport(ctx context.Context, flags reportFlags) error {
	if flags.format != "" && flags.format != "csv" && flags.format != "json" {
		return fmt.Errorf("unknown format %q, use csv or json", flags.format)
	}

	start, end, err := parseDateWindow(flags.startDate, flags.endDate)
	if err != nil {
		return err
	}

	records, err := readUsage(ctx, flags.dbPath, start, end)
	if err != nil {
		return describeSourceError(err)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no usage records found for the requested window")
		if flags.format == "" {
			return nil
		}
	}

	if flags.format != "" {
		return writeExport(records, flags)
	}

	if flags.summary {
		totals := usage.ByApp(records)
		if flags.top > 0 && len(totals) > flags.top {
			totals = totals[:flags.top]
		}
		fmt.Print(render.Summary(totals))
		return nil
	}

	topApps := flags.top
	if topApps == 0 {
		topApps = 10
	}
	fmt.Print(render.Daily(usage.ByDay(records, topApps)))
	return nil
}

// readUsage copies the source database aside and extracts usage from the copy,
// so the live database is never opened while Screen Time holds it.
func readUsage(ctx context.Context, dbPath string, start, end *time.Time) ([]usage.Record, error) {
	if dbPath == "" {
		dbPath = knowledge.DefaultSourcePath()
	}

	snap, err := knowledge.CopySnapshot(dbPath)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	return knowledge.NewExtractor(snap.DBPath).Usage(ctx, start, end)
}

func writeExport(records []usage.Record, flags reportFlags) error {
	var w io.Writer = os.Stdout
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if flags.summary {
		totals := usage.ByApp(records)
		if flags.top > 0 && len(totals) > flags.top {
			totals = totals[:flags.top]
		}
		if flags.format == "csv" {
			return export.CSVSummary(w, totals)
		}
		return export.JSONSummary(w, totals)
	}

	if flags.format == "csv" {
		return export.CSV(w, records)
	}
	return export.JSON(w, records)
}

func parseDateWindow(startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --start-date %q, use YYYY-MM-DD", startDate)
		}
		start = &t
	}
	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --end-date %q, use YYYY-MM-DD", endDate)
		}
		endOfDay := t.AddDate(0, 0, 1).Add(-time.Second)
		end = &endOfDay
	}
	return start, end, nil
}

func describeSourceError(err error) error {
	switch {
	case errors.Is(err, knowledge.ErrNotFound):
		return fmt.Errorf("%w\nScreen Time database not found; is Screen Time enabled in System Settings?", err)
	case errors.Is(err, knowledge.ErrPermissionDenied):
		return fmt.Errorf("%w\ngrant Full Disk Access to your terminal in System Settings > Privacy & Security", err)
	default:
		return err
	}
}
