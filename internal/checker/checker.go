package checker

import (
	"github.com/matsen/citecheck/internal/citation"
	"github.com/matsen/citecheck/internal/kb"
)

// Report aggregates the results for one checked text.
//
// A VERIFIED_BUT_FLAGGED citation counts toward both Verified and Suspicious,
// so Verified+Suspicious+Unverified can exceed CitationsFound.
type Report struct {
	CitationsFound int      `json:"citations_found"`
	Verified       int      `json:"verified"`
	Suspicious     int      `json:"suspicious"`
	Unverified     int      `json:"unverified"`
	Results        []Result `json:"results"`
	// FlaggedIdentifiers is only populated when identifier scanning is on.
	FlaggedIdentifiers []kb.Flag `json:"flagged_identifiers,omitempty"`
	AllClear           bool      `json:"all_clear"`
}

// Checker owns a knowledge base and checks texts against it. Check does not
// modify the checker, so repeated calls with the same text give the same
// report.
type Checker struct {
	base        *kb.KnowledgeBase
	identifiers bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithIdentifiers also flags arXiv identifiers in the text that appear on a
// fabrication list.
func WithIdentifiers() Option {
	return func(c *Checker) { c.identifiers = true }
}

// New returns a checker over base. A nil base behaves as an empty one.
func New(base *kb.KnowledgeBase, opts ...Option) *Checker {
	if base == nil {
		base = kb.New()
	}
	c := &Checker{base: base}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// KnowledgeBase returns the checker's knowledge base.
func (c *Checker) KnowledgeBase() *kb.KnowledgeBase {
	return c.base
}

// Verify classifies a single normalized citation key.
func (c *Checker) Verify(key string) Result {
	return Verify(c.base, key)
}

// Check extracts and verifies every citation in text.
func (c *Checker) Check(text string) *Report {
	mentions := citation.Extract(text)
	report := &Report{Results: make([]Result, 0, len(mentions))}

	for _, m := range mentions {
		r := Verify(c.base, m.Normalized)
		r.OriginalText = m.Text
		r.Author = m.Author
		r.Year = m.Year
		report.Results = append(report.Results, r)

		if r.Verified {
			report.Verified++
		}
		if r.Suspicious {
			report.Suspicious++
		}
		if r.Unverified() {
			report.Unverified++
		}
	}
	report.CitationsFound = len(report.Results)

	if c.identifiers {
		report.FlaggedIdentifiers = c.flaggedIdentifiers(text)
	}

	report.AllClear = report.Unverified == 0 && report.Suspicious == 0 && len(report.FlaggedIdentifiers) == 0
	return report
}

func (c *Checker) flaggedIdentifiers(text string) []kb.Flag {
	var flags []kb.Flag
	seen := make(map[string]bool)
	for _, id := range citation.ScanIdentifiers(text) {
		if seen[id] {
			continue
		}
		seen[id] = true
		if reason, ok := c.base.Suspicion(id); ok {
			flags = append(flags, kb.Flag{Key: id, Reason: reason})
		}
	}
	return flags
}
