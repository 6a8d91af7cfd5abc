// Package main provides the citecheck CLI entry point.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/matsen/citecheck/internal/checker"
	"github.com/matsen/citecheck/internal/config"
	"github.com/matsen/citecheck/internal/kb"
	"github.com/matsen/citecheck/internal/sources"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	rootFlag    string
	configFlag  string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citecheck",
	Short: "Flag possibly hallucinated author-year citations",
	Long: `citecheck extracts author-year citations from a text and checks each one
against a knowledge base built from the project's research files:
correction logs, bibliographies, approved PDF reviews, consensus notes,
suspicious-citation lists and fabrication lists.

All commands output JSON by default for AI agent integration.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Project root (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a config file (default: <root>/"+config.ConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

func setupLogging(cmd *cobra.Command, args []string) error {
	// .env is optional; it may set CITECHECK_ROOT
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return nil
}

// mustResolveRoot finds the project root, exits on error.
func mustResolveRoot() string {
	root, err := config.ResolveRoot(rootFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		exitWithError(ExitConfigError, "%v", err)
	}
	return root
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadFile(config.ExpandPath(configFlag))
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustBuildKnowledgeBase reads every configured source and builds the
// knowledge base. Unreadable sources are logged and skipped, never fatal.
func mustBuildKnowledgeBase() *kb.KnowledgeBase {
	root := mustResolveRoot()
	cfg := mustLoadConfig(root)

	provider := sources.NewProvider(root, cfg, log.Logger)
	base := kb.Build(provider.Sources(), log.Logger)
	log.Debug().
		Str("root", root).
		Int("verified", base.VerifiedCount()).
		Int("suspicious", base.SuspiciousCount()).
		Msg("knowledge base built")
	return base
}

// mustNewChecker builds the knowledge base and wraps it in a checker.
func mustNewChecker(opts ...checker.Option) *checker.Checker {
	return checker.New(mustBuildKnowledgeBase(), opts...)
}
