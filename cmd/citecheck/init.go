package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/citecheck/internal/config"
	"github.com/spf13/cobra"
)

// ErrAlreadyInitialized is returned when the directory already has a config file.
var ErrAlreadyInitialized = errors.New("directory already contains " + config.ConfigFile)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a citecheck project",
	Long: `Initialize a citecheck project in the current directory (or --root).

Creates:
  .citecheck.yml   # Default source layout, one glob list per tier
  research/        # Where the default layout looks for sources`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// initProject writes the default config into dir and returns its absolute path.
func initProject(dir string) (string, error) {
	root, err := filepath.Abs(config.ExpandPath(dir))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if config.IsRepository(root) {
		return root, ErrAlreadyInitialized
	}

	if err := os.MkdirAll(filepath.Join(root, "research"), 0755); err != nil {
		return root, fmt.Errorf("creating research directory: %w", err)
	}
	if err := config.Default().Save(root); err != nil {
		return root, err
	}
	return root, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := rootFlag
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			exitWithError(ExitError, "getting current directory: %v", err)
		}
		dir = cwd
	}

	root, err := initProject(dir)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized citecheck project in %s\n", root)
		return nil
	}
	return outputJSON(StatusResponse{
		Status: "initialized",
		Path:   config.ConfigPath(root),
	})
}
