package kb

import (
	"fmt"
	"strings"

	"github.com/matsen/citecheck/internal/citation"
	"github.com/rs/zerolog"
)

// IdentifierReason is recorded for identifiers found on a fabrication list.
const IdentifierReason = "fabricated identifier — not found at canonical registry"

// ApprovalGlyphs are the marks a review must carry, together with the word
// VERIFIED, before its citations are trusted.
var ApprovalGlyphs = []string{"✅", "✔", "✓"}

// Builder accumulates sources into a KnowledgeBase. A Builder is single-use:
// once KnowledgeBase has been called, further Adds are ignored.
type Builder struct {
	kb     *KnowledgeBase
	logger zerolog.Logger
	done   bool
}

// NewBuilder returns a builder that reports skipped sources to logger.
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{kb: New(), logger: logger}
}

// Build adds every source in order and returns the result.
func Build(sources []Source, logger zerolog.Logger) *KnowledgeBase {
	b := NewBuilder(logger)
	for _, src := range sources {
		b.Add(src)
	}
	return b.KnowledgeBase()
}

// Add folds one source into the knowledge base. Unreadable or malformed
// sources are logged and skipped; they never stop the build.
func (b *Builder) Add(src Source) {
	if b.done {
		return
	}
	stats := SourceStats{Name: src.Name, Tier: src.Tier, Bytes: len(src.Text)}

	if src.Err != nil {
		b.skip(&stats, src.Err.Error())
		return
	}

	switch src.Tier {
	case TierCorrections, TierBibliography, TierConsensus:
		stats.Citations = b.addVerified(src.Text)
	case TierReviews:
		if !IsApprovedReview(src.Text) {
			b.logger.Debug().Str("source", src.Name).Msg("review not marked verified; skipping")
			stats.Skipped = true
			stats.SkipReason = "review not marked verified"
			break
		}
		stats.Citations = b.addVerified(src.Text)
	case TierSuspiciousList:
		list, err := ParseSuspiciousList(src.Text)
		if err != nil {
			b.skip(&stats, err.Error())
			return
		}
		stats.Citations = b.addSuspiciousList(list)
	case TierFabricated:
		stats.Citations, stats.Identifiers = b.addFabricated(src.Name, src.Text)
	default:
		b.skip(&stats, fmt.Sprintf("unknown tier %q", src.Tier))
		return
	}

	b.logger.Debug().
		Str("source", src.Name).
		Str("tier", string(src.Tier)).
		Int("citations", stats.Citations).
		Msg("loaded source")
	b.kb.sources = append(b.kb.sources, stats)
}

// AddSuspiciousList adds an already-parsed suspicious list under name.
func (b *Builder) AddSuspiciousList(name string, list SuspiciousList) {
	if b.done {
		return
	}
	n := b.addSuspiciousList(list)
	b.kb.sources = append(b.kb.sources, SourceStats{Name: name, Tier: TierSuspiciousList, Citations: n})
}

// KnowledgeBase finishes the build and returns the result.
func (b *Builder) KnowledgeBase() *KnowledgeBase {
	b.done = true
	return b.kb
}

func (b *Builder) skip(stats *SourceStats, reason string) {
	b.logger.Warn().
		Str("source", stats.Name).
		Str("tier", string(stats.Tier)).
		Str("reason", reason).
		Msg("could not read source; skipping")
	stats.Skipped = true
	stats.SkipReason = reason
	b.kb.sources = append(b.kb.sources, *stats)
}

// addVerified registers both forms of every match in text.
func (b *Builder) addVerified(text string) int {
	matches := citation.Scan(text)
	for _, m := range matches {
		for _, key := range m.BothForms() {
			b.kb.verified[key] = struct{}{}
		}
	}
	return len(matches)
}

func (b *Builder) addSuspiciousList(list SuspiciousList) int {
	n := 0
	for _, entry := range list.Entries() {
		reason := entry.ReasonOrDefault()
		for _, m := range citation.Scan(entry.Line) {
			b.flag(m, reason)
			n++
		}
	}
	return n
}

func (b *Builder) addFabricated(name, text string) (citations, identifiers int) {
	reason := "FABRICATED - see " + name
	matches := citation.Scan(text)
	for _, m := range matches {
		b.flag(m, reason)
	}
	ids := citation.ScanIdentifiers(text)
	for _, id := range ids {
		b.kb.suspicious[id] = IdentifierReason
	}
	return len(matches), len(ids)
}

func (b *Builder) flag(m citation.Match, reason string) {
	for _, key := range m.BothForms() {
		b.kb.suspicious[key] = reason
	}
}

// IsApprovedReview reports whether a review text carries an approval glyph
// and the word VERIFIED (any case).
func IsApprovedReview(text string) bool {
	if !strings.Contains(strings.ToUpper(text), "VERIFIED") {
		return false
	}
	for _, glyph := range ApprovalGlyphs {
		if strings.Contains(text, glyph) {
			return true
		}
	}
	return false
}
