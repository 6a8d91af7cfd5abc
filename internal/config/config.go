// Package config handles project configuration: where knowledge-base sources
// live and how the project root is found.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/citecheck/internal/kb"
	"gopkg.in/yaml.v3"
)

// Config represents project configuration stored in .citecheck.yml.
type Config struct {
	Sources     Sources `yaml:"sources"`
	PDFMaxPages int     `yaml:"pdf_max_pages,omitempty"` // 0 reads every page
}

// Sources lists glob patterns, relative to the project root, per tier.
// Patterns support ** via doublestar.
type Sources struct {
	Corrections     []string `yaml:"corrections"`
	Bibliography    []string `yaml:"bibliography"`
	Reviews         []string `yaml:"reviews"`
	Consensus       []string `yaml:"consensus"`
	SuspiciousLists []string `yaml:"suspicious_lists"`
	Fabricated      []string `yaml:"fabricated"`
}

const (
	ConfigFile = ".citecheck.yml"
	// EnvRoot overrides project root discovery.
	EnvRoot = "CITECHECK_ROOT"
)

// ErrRootNotFound is returned when no project root can be located.
var ErrRootNotFound = errors.New("not in a citecheck project (no " + ConfigFile + " found)")

// Default returns the layout used when no .citecheck.yml exists.
func Default() *Config {
	return &Config{
		Sources: Sources{
			Corrections:     []string{"research/CITATION_CORRECTIONS_APPLIED_*.md"},
			Bibliography:    []string{"research/BIBLIOGRAPHY.md", "research/*.bib"},
			Reviews:         []string{"research/pdf_review_*.md"},
			Consensus:       []string{".claude/chatroom/research-consensus-*.txt"},
			SuspiciousLists: []string{"research/suspicious_citations_*.json"},
			Fabricated:      []string{"research/COMMONLY_HALLUCINATED_CITATIONS.md"},
		},
	}
}

// Patterns returns the glob patterns configured for tier.
func (s Sources) Patterns(tier kb.Tier) []string {
	switch tier {
	case kb.TierCorrections:
		return s.Corrections
	case kb.TierBibliography:
		return s.Bibliography
	case kb.TierReviews:
		return s.Reviews
	case kb.TierConsensus:
		return s.Consensus
	case kb.TierSuspiciousList:
		return s.SuspiciousLists
	case kb.TierFabricated:
		return s.Fabricated
	}
	return nil
}

// ConfigPath returns the path to .citecheck.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// IsRepository checks if the given path contains a .citecheck.yml file.
func IsRepository(root string) bool {
	info, err := os.Stat(ConfigPath(root))
	return err == nil && !info.IsDir()
}

// FindRepository walks up from the given path to find a project root.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrRootNotFound
		}
		abs = parent
	}
}

// ResolveRoot picks the project root. Precedence: explicit flag value,
// CITECHECK_ROOT, global config root, nearest ancestor with .citecheck.yml,
// then the current directory.
func ResolveRoot(flagRoot string) (string, error) {
	for _, candidate := range []string{flagRoot, os.Getenv(EnvRoot), GetRoot()} {
		if candidate == "" {
			continue
		}
		path := ExpandPath(candidate)
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("project root %s: %w", path, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("project root is not a directory: %s", path)
		}
		return filepath.Abs(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if root, err := FindRepository(cwd); err == nil {
		return root, nil
	}
	return cwd, nil
}

// Load reads configuration from the project at root. A missing file yields
// the default layout; tiers omitted from the file keep their defaults.
func Load(root string) (*Config, error) {
	return LoadFile(ConfigPath(root))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.PDFMaxPages < 0 {
		return nil, fmt.Errorf("parsing config: pdf_max_pages must be >= 0, got %d", cfg.PDFMaxPages)
	}

	return cfg, nil
}

// Save writes configuration to the project at root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
