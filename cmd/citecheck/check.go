package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/citecheck/internal/checker"
	"github.com/matsen/citecheck/internal/config"
	"github.com/matsen/citecheck/internal/storage"
	"github.com/matsen/citecheck/internal/watch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	checkText        string
	checkFile        string
	checkStdin       bool
	checkQuiet       bool
	checkIdentifiers bool
	checkLog         string
	checkWatch       bool
)

var (
	// ErrNoInput is returned when none of --text, --file or --stdin is given.
	ErrNoInput = errors.New("no input: pass one of --text, --file or --stdin")
	// ErrConflictingInput is returned when more than one input flag is given.
	ErrConflictingInput = errors.New("pass only one of --text, --file or --stdin")
)

func init() {
	checkCmd.Flags().StringVar(&checkText, "text", "", "Text to check")
	checkCmd.Flags().StringVar(&checkFile, "file", "", "File whose contents to check")
	checkCmd.Flags().BoolVar(&checkStdin, "stdin", false, "Read the text to check from stdin")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Print nothing; report through the exit code only")
	checkCmd.Flags().BoolVar(&checkIdentifiers, "identifiers", false, "Also flag fabricated arXiv identifiers")
	checkCmd.Flags().StringVar(&checkLog, "log", "", "Append the report to this JSONL file (default: global report_log)")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "Re-check --file whenever it is written")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the citations in a text",
	Long: `Check every author-year citation in a text against the knowledge base.

Exits 0 when every citation is verified and none is flagged, 1 otherwise.

Examples:
  citecheck check --text "As shown by Smith et al. (2020), ..."
  citecheck check --file draft.md --human
  cat draft.md | citecheck check --stdin --quiet
  citecheck check --file draft.md --watch --human`,
	RunE: runCheck,
}

// inputKind names where the text to check comes from.
type inputKind int

const (
	inputText inputKind = iota + 1
	inputFile
	inputStdin
)

// selectInput validates that exactly one input was requested.
func selectInput(hasText bool, file string, stdin bool) (inputKind, error) {
	var kinds []inputKind
	if hasText {
		kinds = append(kinds, inputText)
	}
	if file != "" {
		kinds = append(kinds, inputFile)
	}
	if stdin {
		kinds = append(kinds, inputStdin)
	}

	switch len(kinds) {
	case 0:
		return 0, ErrNoInput
	case 1:
		return kinds[0], nil
	default:
		return 0, ErrConflictingInput
	}
}

// readInput returns the text to check and the label it is logged under.
func readInput(kind inputKind, text, file string, stdin io.Reader) (body, label string, err error) {
	switch kind {
	case inputText:
		return text, "text", nil
	case inputFile:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", file, fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), file, nil
	case inputStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "stdin", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	return "", "", ErrNoInput
}

// exitCodeFor maps a report to the process exit code.
func exitCodeFor(report *checker.Report) int {
	if report.AllClear {
		return ExitSuccess
	}
	return ExitUnverified
}

func runCheck(cmd *cobra.Command, args []string) error {
	kind, err := selectInput(cmd.Flags().Changed("text"), checkFile, checkStdin)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if checkWatch && kind != inputFile {
		exitWithError(ExitError, "--watch requires --file")
	}

	var opts []checker.Option
	if checkIdentifiers {
		opts = append(opts, checker.WithIdentifiers())
	}

	logPath := checkLog
	if logPath == "" {
		logPath = config.GetReportLog()
	}

	if checkWatch {
		c := mustNewChecker(opts...)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := watch.New(checkFile, watch.DefaultInterval, log.Logger)
		err := w.Run(ctx, func(text string) {
			emitReport(c.Check(text), checkFile, logPath)
		})
		if err != nil {
			exitWithError(ExitError, "watching %s: %v", checkFile, err)
		}
		return nil
	}

	body, label, err := readInput(kind, checkText, checkFile, cmd.InOrStdin())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	report := mustNewChecker(opts...).Check(body)
	emitReport(report, label, logPath)
	os.Exit(exitCodeFor(report))
	return nil
}

// emitReport prints the report unless --quiet is set and appends it to the
// report log when one is configured. A failed log write is only a warning.
func emitReport(report *checker.Report, label, logPath string) {
	if logPath != "" {
		path := config.ExpandPath(logPath)
		if err := storage.AppendReport(path, storage.NewRecord(label, report)); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not append to report log")
		}
	}

	if checkQuiet {
		return
	}
	if humanOutput {
		printReportHuman(os.Stdout, report)
		return
	}
	if err := outputJSON(report); err != nil {
		exitWithError(ExitError, "writing output: %v", err)
	}
}
