package sources

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/citecheck/internal/config"
	"github.com/matsen/citecheck/internal/kb"
	"github.com/rs/zerolog"
)

// writeProject creates files under root, creating parent directories.
func writeProject(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestProvider_DefaultLayout(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, map[string]string{
		"research/CITATION_CORRECTIONS_APPLIED_20251101.md": "Smith et al. (2024)",
		"research/CITATION_CORRECTIONS_APPLIED_20251030.md": "Adams (2019)",
		"research/BIBLIOGRAPHY.md":                          "Richardson et al. (2023)",
		"research/refs.bib":                                 "@article{K,\n  author = {Knuth, Donald},\n  year = {1984},\n}\n",
		"research/pdf_review_001.md":                        "Status: ✅ VERIFIED\nPark (2020)",
		"research/pdf_review_002.md":                        "Status: pending\nHidden (2020)",
		".claude/chatroom/research-consensus-1.txt":         "Nguyen (2018)",
		"research/suspicious_citations_20251029.json":       `{"high": [{"line": "Lee et al. (2021)", "reason": "retracted"}]}`,
		"research/COMMONLY_HALLUCINATED_CITATIONS.md":       "Brown (2022) arXiv:2301.99999",
		"research/notes.md":                                 "Ignored (2000)",
	})

	p := NewProvider(root, config.Default(), zerolog.Nop())
	srcs := p.Sources()

	wantNames := []string{
		"research/CITATION_CORRECTIONS_APPLIED_20251030.md",
		"research/CITATION_CORRECTIONS_APPLIED_20251101.md",
		"research/BIBLIOGRAPHY.md",
		"research/refs.bib",
		"research/pdf_review_001.md",
		"research/pdf_review_002.md",
		".claude/chatroom/research-consensus-1.txt",
		"research/suspicious_citations_20251029.json",
		"research/COMMONLY_HALLUCINATED_CITATIONS.md",
	}
	if len(srcs) != len(wantNames) {
		t.Fatalf("Sources() returned %d sources, want %d: %+v", len(srcs), len(wantNames), srcs)
	}
	for i, want := range wantNames {
		if srcs[i].Name != want {
			t.Errorf("source %d = %q, want %q", i, srcs[i].Name, want)
		}
		if srcs[i].Err != nil {
			t.Errorf("source %s error = %v", srcs[i].Name, srcs[i].Err)
		}
	}
	if srcs[3].Text != "Knuth (1984)\n" {
		t.Errorf("bib source text = %q", srcs[3].Text)
	}

	base := kb.Build(srcs, zerolog.Nop())
	for _, key := range []string{"Smith (2024)", "Adams et al. (2019)", "Richardson (2023)", "Knuth (1984)", "Park (2020)", "Nguyen (2018)"} {
		if !base.IsVerified(key) {
			t.Errorf("IsVerified(%q) = false", key)
		}
	}
	for _, key := range []string{"Hidden (2020)", "Ignored (2000)"} {
		if base.IsVerified(key) {
			t.Errorf("IsVerified(%q) = true", key)
		}
	}
	for _, key := range []string{"Lee (2021)", "Brown et al. (2022)", "arXiv:2301.99999"} {
		if _, ok := base.Suspicion(key); !ok {
			t.Errorf("Suspicion(%q) missing", key)
		}
	}
}

func TestProvider_EmptyProject(t *testing.T) {
	p := NewProvider(t.TempDir(), config.Default(), zerolog.Nop())
	if srcs := p.Sources(); len(srcs) != 0 {
		t.Errorf("Sources() = %+v, want none", srcs)
	}
}

func TestProvider_RootWithGlobCharacters(t *testing.T) {
	for _, dir := range []string{"papers [2024]", "drafts {v2}", "what?", "star*"} {
		t.Run(dir, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), dir)
			writeProject(t, root, map[string]string{
				"research/BIBLIOGRAPHY.md": "Smith (2020)",
			})

			srcs := NewProvider(root, config.Default(), zerolog.Nop()).Sources()
			if len(srcs) != 1 || srcs[0].Name != "research/BIBLIOGRAPHY.md" || srcs[0].Err != nil {
				t.Fatalf("Sources() = %+v, want research/BIBLIOGRAPHY.md", srcs)
			}
			if !kb.Build(srcs, zerolog.Nop()).IsVerified("Smith (2020)") {
				t.Error("bibliography citation not verified")
			}
		})
	}
}

func TestProvider_AbsolutePattern(t *testing.T) {
	shared := t.TempDir()
	writeProject(t, shared, map[string]string{"consensus.txt": "Nguyen (2018)"})

	cfg := config.Default()
	cfg.Sources = config.Sources{Consensus: []string{filepath.Join(shared, "*.txt")}}
	srcs := NewProvider(t.TempDir(), cfg, zerolog.Nop()).Sources()

	if len(srcs) != 1 || srcs[0].Err != nil {
		t.Fatalf("Sources() = %+v, want one consensus source", srcs)
	}
	if srcs[0].Name != filepath.Join(shared, "consensus.txt") {
		t.Errorf("Name = %q, want absolute path outside root", srcs[0].Name)
	}
}

func TestProvider_WarnsWhenTierMatchesNothing(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, map[string]string{"research/BIBLIOGRAPHY.md": "Smith (2020)"})

	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Sources = config.Sources{
		Bibliography: []string{"research/BIBLIOGRAPHY.md"},
		Reviews:      []string{"research/pdf_review_*.md"},
	}
	NewProvider(root, cfg, zerolog.New(&buf).Level(zerolog.WarnLevel)).Sources()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one warning, got:\n%s", buf.String())
	}
	for _, want := range []string{`"level":"warn"`, `"tier":"reviews"`, "no sources matched"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("warning %s missing %s", lines[0], want)
		}
	}
}

func TestProvider_BadFilesBecomeFailedSources(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, map[string]string{
		"docs/paper.pdf": "this is not a pdf",
		"docs/good.md":   "Smith (2020)",
		"docs/deep/x.md": "Deep (2001)",
	})

	cfg := config.Default()
	cfg.Sources = config.Sources{Bibliography: []string{"docs/**/*.md", "docs/*.pdf"}}
	srcs := NewProvider(root, cfg, zerolog.Nop()).Sources()

	var failed, ok int
	for _, s := range srcs {
		if s.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	if failed != 1 || ok != 2 {
		t.Errorf("Sources() = %d ok, %d failed; want 2 and 1: %+v", ok, failed, srcs)
	}

	base := kb.Build(srcs, zerolog.Nop())
	if !base.IsVerified("Smith (2020)") || !base.IsVerified("Deep (2001)") {
		t.Error("good sources not loaded alongside failures")
	}
}

func TestReadText(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, map[string]string{"a.txt": "Smith (2020)"})

	text, err := ReadText(filepath.Join(root, "a.txt"), 0)
	if err != nil || text != "Smith (2020)" {
		t.Errorf("ReadText() = %q, %v", text, err)
	}
	if _, err := ReadText(root, 0); err == nil {
		t.Error("ReadText() should fail on a directory")
	}
	if _, err := ReadText(filepath.Join(root, "missing.md"), 0); err == nil {
		t.Error("ReadText() should fail on a missing file")
	}
}
