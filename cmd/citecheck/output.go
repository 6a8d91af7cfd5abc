package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/matsen/citecheck/internal/checker"
	"github.com/matsen/citecheck/internal/kb"
)

// ReportRuleWidth is the width of the horizontal rules in human reports.
const ReportRuleWidth = 60

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// StatsResponse is the response for kb stats.
type StatsResponse struct {
	Root       string           `json:"root"`
	Verified   int              `json:"verified"`
	Suspicious int              `json:"suspicious"`
	Sources    []kb.SourceStats `json:"sources"`
}

// LookupResponse is the response for kb lookup.
type LookupResponse struct {
	Query  string         `json:"query"`
	Result checker.Result `json:"result"`
}

// ExportResponse is the response for kb export.
type ExportResponse struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	Verified   int    `json:"verified"`
	Suspicious int    `json:"suspicious"`
	Sources    int    `json:"sources"`
}

// printReportHuman writes a check report in human-readable form.
func printReportHuman(w io.Writer, report *checker.Report) {
	rule := strings.Repeat("=", ReportRuleWidth)

	fmt.Fprintln(w, "CITATION VERIFICATION REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Citations found: %d\n", report.CitationsFound)
	fmt.Fprintf(w, "Verified:        %d\n", report.Verified)
	fmt.Fprintf(w, "Unverified:      %d\n", report.Unverified)
	fmt.Fprintf(w, "Suspicious:      %d\n", report.Suspicious)
	fmt.Fprintln(w)

	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No citations detected.")
	} else {
		fmt.Fprintln(w, "DETAILS:")
		fmt.Fprintln(w, strings.Repeat("-", ReportRuleWidth))
		for i, r := range report.Results {
			fmt.Fprintf(w, "\n%d. %s\n", i+1, r.OriginalText)
			fmt.Fprintf(w, "   Status: %s\n", r.Status)
			if r.Reason != "" {
				fmt.Fprintf(w, "   Reason: %s\n", r.Reason)
			}
			if r.Unverified() {
				fmt.Fprintln(w, "   Not found in verified database - possible hallucination")
			}
		}
	}

	if len(report.FlaggedIdentifiers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "FLAGGED IDENTIFIERS:")
		for _, f := range report.FlaggedIdentifiers {
			fmt.Fprintf(w, "   %s: %s\n", f.Key, f.Reason)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	if report.AllClear {
		fmt.Fprintln(w, "All citations verified.")
	} else {
		fmt.Fprintln(w, "WARNING: Unverified or suspicious citations detected!")
		fmt.Fprintln(w, "These may be hallucinated. Please verify manually.")
	}
}

// printStatsHuman writes knowledge-base statistics in human-readable form.
func printStatsHuman(w io.Writer, stats StatsResponse) {
	fmt.Fprintf(w, "Root:       %s\n", stats.Root)
	fmt.Fprintf(w, "Verified:   %s keys\n", humanize.Comma(int64(stats.Verified)))
	fmt.Fprintf(w, "Suspicious: %s keys\n", humanize.Comma(int64(stats.Suspicious)))
	var verifying, flagging int
	for _, s := range stats.Sources {
		if s.Tier.Verified() {
			verifying++
		} else {
			flagging++
		}
	}
	fmt.Fprintf(w, "Sources:    %d (%d verifying, %d flagging)\n", len(stats.Sources), verifying, flagging)

	for _, s := range stats.Sources {
		if s.Skipped {
			fmt.Fprintf(w, "  [%s] %s  skipped: %s\n", s.Tier, s.Name, s.SkipReason)
			continue
		}
		fmt.Fprintf(w, "  [%s] %s  %s, %d citations", s.Tier, s.Name, humanize.Bytes(uint64(s.Bytes)), s.Citations)
		if s.Identifiers > 0 {
			fmt.Fprintf(w, ", %d identifiers", s.Identifiers)
		}
		fmt.Fprintln(w)
	}
}
