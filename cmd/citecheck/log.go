package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/matsen/citecheck/internal/config"
	"github.com/matsen/citecheck/internal/storage"
	"github.com/spf13/cobra"
)

var (
	logFile  string
	logLimit int
)

func init() {
	logCmd.Flags().StringVar(&logFile, "log", "", "JSONL report log to read (default: global report_log)")
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Show at most this many of the latest reports (0 for all)")
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show past check reports",
	Long: `Show reports appended by 'check --log', oldest first.

Examples:
  citecheck log --human
  citecheck log --log reports.jsonl --limit 5`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

// tailRecords returns the last n records, or all of them when n <= 0.
func tailRecords(records []storage.Record, n int) []storage.Record {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}

func runLog(cmd *cobra.Command, args []string) error {
	path := logFile
	if path == "" {
		path = config.GetReportLog()
	}
	if path == "" {
		exitWithError(ExitConfigError, "no report log configured\n\nPass --log or set report_log in %s", config.GlobalConfigPath())
	}
	path = config.ExpandPath(path)

	records, err := storage.ReadReports(path)
	if err != nil {
		exitWithError(ExitDataError, "reading report log: %v", err)
	}
	records = tailRecords(records, logLimit)

	if humanOutput {
		printRecordsHuman(os.Stdout, records)
		return nil
	}
	if records == nil {
		records = []storage.Record{}
	}
	return outputJSON(records)
}

// printRecordsHuman writes one line per logged report.
func printRecordsHuman(w io.Writer, records []storage.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No reports logged.")
		return
	}
	for _, rec := range records {
		status := "NOT CLEAR"
		if rec.Report != nil && rec.Report.AllClear {
			status = "all clear"
		}
		var found, verified, suspicious, unverified int
		if rec.Report != nil {
			found, verified = rec.Report.CitationsFound, rec.Report.Verified
			suspicious, unverified = rec.Report.Suspicious, rec.Report.Unverified
		}
		fmt.Fprintf(w, "%s  %-9s  %s  %d found, %d verified, %d suspicious, %d unverified  (%s)\n",
			rec.ID[:min(8, len(rec.ID))], status, rec.Input,
			found, verified, suspicious, unverified, humanize.Time(rec.CheckedAt))
	}
}
