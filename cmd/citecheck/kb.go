package main

import (
	"fmt"
	"os"

	"github.com/matsen/citecheck/internal/checker"
	"github.com/matsen/citecheck/internal/citation"
	"github.com/matsen/citecheck/internal/config"
	"github.com/matsen/citecheck/internal/kb"
	"github.com/matsen/citecheck/internal/storage"
	"github.com/spf13/cobra"
)

var (
	kbExportDB   string
	kbLookupDB   string
	kbStatsTiers []string
)

func init() {
	kbExportCmd.Flags().StringVar(&kbExportDB, "db", "", "SQLite file to write (required)")
	kbExportCmd.MarkFlagRequired("db")
	kbLookupCmd.Flags().StringVar(&kbLookupDB, "db", "", "Look up in a snapshot written by 'kb export' instead of the project sources")
	kbStatsCmd.Flags().StringSliceVar(&kbStatsTiers, "tier", nil, "Only show sources of these tiers (repeatable or comma-separated)")

	kbCmd.AddCommand(kbStatsCmd)
	kbCmd.AddCommand(kbLookupCmd)
	kbCmd.AddCommand(kbExportCmd)
	rootCmd.AddCommand(kbCmd)
}

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the knowledge base",
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what each source contributed",
	Long: `Show the size of the verified set and suspicious map, and what each source
contributed to them.

Tiers: corrections, bibliography, reviews, consensus, suspicious_list, fabricated.

Examples:
  citecheck kb stats --human
  citecheck kb stats --tier reviews,consensus`,
	Args: cobra.NoArgs,
	RunE:  runKBStats,
}

var kbLookupCmd = &cobra.Command{
	Use:   "lookup <citation>",
	Short: "Classify a single citation",
	Long: `Classify a single citation. The argument may be a normalized key such as
"Smith et al. (2020)" or any text containing one citation.

With --db the citation is looked up in a snapshot written by 'kb export'
instead of rebuilding the knowledge base from the project sources.

Examples:
  citecheck kb lookup "Smith et al. (2020)"
  citecheck kb lookup "(Wilson & Chen, 2022)"
  citecheck kb lookup --db kb.db "Lee et al. (2021)"`,
	Args: cobra.ExactArgs(1),
	RunE: runKBLookup,
}

var kbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot the knowledge base to SQLite",
	Long: `Write the verified set, the suspicious map and per-source statistics to a
SQLite database. Existing rows in the file are replaced.

Examples:
  citecheck kb export --db kb.db`,
	Args: cobra.NoArgs,
	RunE: runKBExport,
}

func runKBStats(cmd *cobra.Command, args []string) error {
	// Reject unknown tiers before paying for the build.
	if _, err := filterSources(nil, kbStatsTiers); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	root := mustResolveRoot()
	base := mustBuildKnowledgeBase()

	sources, _ := filterSources(base.Sources(), kbStatsTiers)
	stats := StatsResponse{
		Root:       root,
		Verified:   base.VerifiedCount(),
		Suspicious: base.SuspiciousCount(),
		Sources:    sources,
	}
	if humanOutput {
		printStatsHuman(os.Stdout, stats)
		return nil
	}
	return outputJSON(stats)
}

// filterSources keeps the sources whose tier is named in tiers. An empty
// tiers list keeps everything; an unknown tier name is an error.
func filterSources(sources []kb.SourceStats, tiers []string) ([]kb.SourceStats, error) {
	if len(tiers) == 0 {
		return sources, nil
	}

	want := make(map[kb.Tier]bool)
	for _, name := range tiers {
		tier, err := kb.ParseTier(name)
		if err != nil {
			return nil, err
		}
		want[tier] = true
	}

	out := []kb.SourceStats{}
	for _, s := range sources {
		if want[s.Tier] {
			out = append(out, s)
		}
	}
	return out, nil
}

func runKBLookup(cmd *cobra.Command, args []string) error {
	key := lookupKey(args[0])

	var result checker.Result
	if kbLookupDB != "" {
		r, err := lookupSnapshot(config.ExpandPath(kbLookupDB), key)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		result = r
	} else {
		result = mustNewChecker().Verify(key)
	}

	if humanOutput {
		outputHumanResult(result)
		return nil
	}
	return outputJSON(LookupResponse{Query: args[0], Result: result})
}

// lookupKey returns the normalized key for a lookup argument. An argument
// that already parses as a key is used as is; otherwise the first citation
// found in it is used, falling back to the raw argument.
func lookupKey(arg string) string {
	if _, _, _, err := citation.Parse(arg); err == nil {
		return arg
	}
	if mentions := citation.Extract(arg); len(mentions) > 0 {
		return mentions[0].Normalized
	}
	return arg
}

// lookupSnapshot classifies key against an exported SQLite snapshot.
func lookupSnapshot(path, key string) (checker.Result, error) {
	// OpenDB would create a missing file, which would then answer UNVERIFIED
	// for everything.
	if _, err := os.Stat(path); err != nil {
		return checker.Result{}, fmt.Errorf("opening snapshot: %w", err)
	}

	db, err := storage.OpenDB(path)
	if err != nil {
		return checker.Result{}, err
	}
	defer db.Close()

	verified, suspicious, reason, err := db.Lookup(key)
	if err != nil {
		return checker.Result{}, fmt.Errorf("looking up %s: %w", key, err)
	}
	return checker.Result{
		Citation:   key,
		Verified:   verified,
		Suspicious: suspicious,
		Reason:     reason,
		Status:     checker.StatusFor(verified, suspicious),
	}, nil
}

func outputHumanResult(r checker.Result) {
	fmt.Printf("%s: %s\n", r.Citation, r.Status)
	if r.Reason != "" {
		fmt.Printf("  Reason: %s\n", r.Reason)
	}
}

func runKBExport(cmd *cobra.Command, args []string) error {
	base := mustBuildKnowledgeBase()

	path := config.ExpandPath(kbExportDB)
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	if err := db.SaveKnowledgeBase(base); err != nil {
		exitWithError(ExitError, "exporting knowledge base: %v", err)
	}

	verified, suspicious, sources, err := db.Counts()
	if err != nil {
		exitWithError(ExitError, "counting rows: %v", err)
	}

	resp := ExportResponse{
		Status:     "exported",
		Path:       path,
		Verified:   verified,
		Suspicious: suspicious,
		Sources:    sources,
	}
	if humanOutput {
		fmt.Printf("Exported %d verified and %d suspicious keys from %d sources to %s\n",
			verified, suspicious, sources, path)
		return nil
	}
	return outputJSON(resp)
}
