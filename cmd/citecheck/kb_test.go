package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/citecheck/internal/checker"
	"github.com/matsen/citecheck/internal/kb"
	"github.com/matsen/citecheck/internal/storage"
	"github.com/rs/zerolog"
)

func TestFilterSources(t *testing.T) {
	sources := []kb.SourceStats{
		{Name: "a.md", Tier: kb.TierBibliography},
		{Name: "b.md", Tier: kb.TierReviews},
		{Name: "c.json", Tier: kb.TierSuspiciousList},
	}

	tests := []struct {
		name    string
		tiers   []string
		want    []string
		wantErr bool
	}{
		{name: "no filter", tiers: nil, want: []string{"a.md", "b.md", "c.json"}},
		{name: "one tier", tiers: []string{"reviews"}, want: []string{"b.md"}},
		{name: "two tiers", tiers: []string{"suspicious_list", "bibliography"}, want: []string{"a.md", "c.json"}},
		{name: "no match", tiers: []string{"fabricated"}, want: []string{}},
		{name: "unknown tier", tiers: []string{"reviews", "papers"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filterSources(sources, tt.tiers)
			if tt.wantErr {
				if err == nil {
					t.Fatal("filterSources() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("filterSources() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("filterSources() = %+v, want %v", got, tt.want)
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("source %d = %q, want %q", i, got[i].Name, name)
				}
			}
		})
	}
}

func TestLookupSnapshot(t *testing.T) {
	base := kb.Build([]kb.Source{
		{Name: "BIBLIOGRAPHY.md", Tier: kb.TierBibliography, Text: "Smith et al. (2020) and Lee (2021)"},
		{Name: "list.json", Tier: kb.TierSuspiciousList, Text: `{"high": [{"line": "Lee (2021)", "reason": "retracted"}]}`},
	}, zerolog.Nop())

	path := filepath.Join(t.TempDir(), "kb.db")
	db, err := storage.OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SaveKnowledgeBase(base); err != nil {
		t.Fatal(err)
	}
	db.Close()

	live := checker.New(base)
	for _, key := range []string{"Smith (2020)", "Lee et al. (2021)", "Brown (2019)"} {
		t.Run(key, func(t *testing.T) {
			got, err := lookupSnapshot(path, key)
			if err != nil {
				t.Fatalf("lookupSnapshot() error = %v", err)
			}
			if want := live.Verify(key); got != want {
				t.Errorf("lookupSnapshot() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestLookupSnapshot_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	if _, err := lookupSnapshot(path, "Smith (2020)"); err == nil {
		t.Fatal("lookupSnapshot() expected error for missing snapshot")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("lookupSnapshot() created %s", path)
	}
}
