// Package sources discovers and reads knowledge-base source files.
package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/matsen/citecheck/internal/bibtex"
	"github.com/matsen/citecheck/internal/config"
	"github.com/matsen/citecheck/internal/kb"
	"github.com/matsen/citecheck/internal/pdf"
	"github.com/rs/zerolog"
)

// Provider turns a project layout into knowledge-base sources.
type Provider struct {
	Root        string
	Layout      config.Sources
	PDFMaxPages int
	Logger      zerolog.Logger
}

// NewProvider returns a provider for the project at root.
func NewProvider(root string, cfg *config.Config, logger zerolog.Logger) *Provider {
	return &Provider{
		Root:        root,
		Layout:      cfg.Sources,
		PDFMaxPages: cfg.PDFMaxPages,
		Logger:      logger,
	}
}

// Sources returns every source in tier order. Within a tier, files are
// sorted by path. A file that cannot be read is returned with Err set; a
// bad glob pattern is returned as a failed source named after the pattern.
func (p *Provider) Sources() []kb.Source {
	var out []kb.Source
	for _, tier := range kb.Tiers() {
		for _, path := range p.discover(tier, &out) {
			out = append(out, p.read(tier, path))
		}
	}
	return out
}

// discover expands the tier's patterns. Relative patterns are matched inside
// the root, so glob metacharacters in the root path itself are taken
// literally. Invalid patterns are appended to failed so the builder reports
// them like unreadable files.
func (p *Provider) discover(tier kb.Tier, failed *[]kb.Source) []string {
	patterns := p.Layout.Patterns(tier)
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := p.glob(pattern)
		if err != nil {
			*failed = append(*failed, kb.Source{
				Name: pattern,
				Tier: tier,
				Err:  fmt.Errorf("glob error: %w", err),
			})
			continue
		}
		p.Logger.Debug().Str("tier", string(tier)).Str("pattern", pattern).Int("matches", len(matches)).Msg("discovered sources")

		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			paths = append(paths, m)
		}
	}

	if len(patterns) > 0 && len(paths) == 0 {
		p.Logger.Warn().
			Str("tier", string(tier)).
			Strs("patterns", patterns).
			Str("root", p.Root).
			Msg("no sources matched")
	}

	sort.Strings(paths)
	return paths
}

// glob returns absolute paths of the regular files matching pattern.
func (p *Provider) glob(pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) {
		return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	}

	rel := filepath.ToSlash(filepath.Clean(pattern))
	matches, err := doublestar.Glob(os.DirFS(p.Root), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(p.Root, filepath.FromSlash(m))
	}
	return out, nil
}

func (p *Provider) read(tier kb.Tier, path string) kb.Source {
	src := kb.Source{Name: p.name(path), Tier: tier}
	text, err := ReadText(path, p.PDFMaxPages)
	if err != nil {
		src.Err = err
		return src
	}
	src.Text = text
	return src
}

// name returns path relative to the project root when possible.
func (p *Provider) name(path string) string {
	if rel, err := filepath.Rel(p.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// ReadText returns the scannable text of a source file. PDFs are converted
// to text, BibTeX files are rendered as author-year lines, and anything else
// is read as UTF-8 text.
func ReadText(path string, pdfMaxPages int) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdf.ExtractText(path, pdfMaxPages)
	case ".bib":
		entries, err := bibtex.ParseFile(path)
		if err != nil {
			return "", fmt.Errorf("parsing bibtex: %w", err)
		}
		return bibtex.Render(entries), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
