// Package kb builds the citation knowledge base: a set of verified citation
// keys and a map of suspicious keys with a reason for each.
package kb

import (
	"fmt"
	"sort"
)

// Tier is a category of knowledge-base source with its own trust rule.
type Tier string

// Verified tiers feed the verified set; suspicious tiers feed the suspicious map.
const (
	TierCorrections    Tier = "corrections"
	TierBibliography   Tier = "bibliography"
	TierReviews        Tier = "reviews"
	TierConsensus      Tier = "consensus"
	TierSuspiciousList Tier = "suspicious_list"
	TierFabricated     Tier = "fabricated"
)

// Tiers returns all tiers in build order.
func Tiers() []Tier {
	return []Tier{
		TierCorrections,
		TierBibliography,
		TierReviews,
		TierConsensus,
		TierSuspiciousList,
		TierFabricated,
	}
}

// ParseTier converts a tier name to a Tier.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tier: %s", s)
}

// Verified reports whether sources of this tier contribute to the verified set.
func (t Tier) Verified() bool {
	switch t {
	case TierCorrections, TierBibliography, TierReviews, TierConsensus:
		return true
	}
	return false
}

// Source is one named text blob handed to the builder. A provider that could
// not read the source sets Err instead of Text.
type Source struct {
	Name string
	Tier Tier
	Text string
	Err  error
}

// SourceStats records what a single source contributed to the build.
type SourceStats struct {
	Name        string `json:"name"`
	Tier        Tier   `json:"tier"`
	Bytes       int    `json:"bytes"`
	Citations   int    `json:"citations"`
	Identifiers int    `json:"identifiers,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
	SkipReason  string `json:"skip_reason,omitempty"`
}

// Flag is a suspicious key and the reason it was flagged.
type Flag struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// KnowledgeBase holds the lookup structures. It is not modified after the
// builder hands it out, so concurrent lookups are safe.
type KnowledgeBase struct {
	verified   map[string]struct{}
	suspicious map[string]string
	sources    []SourceStats
}

// New returns an empty knowledge base.
func New() *KnowledgeBase {
	return &KnowledgeBase{
		verified:   make(map[string]struct{}),
		suspicious: make(map[string]string),
	}
}

// IsVerified reports exact membership of key in the verified set.
func (kb *KnowledgeBase) IsVerified(key string) bool {
	_, ok := kb.verified[key]
	return ok
}

// Suspicion returns the reason key was flagged, if it was.
func (kb *KnowledgeBase) Suspicion(key string) (string, bool) {
	reason, ok := kb.suspicious[key]
	return reason, ok
}

// Lookup returns both memberships for key in one call.
func (kb *KnowledgeBase) Lookup(key string) (verified, suspicious bool, reason string) {
	verified = kb.IsVerified(key)
	reason, suspicious = kb.Suspicion(key)
	return verified, suspicious, reason
}

// VerifiedCount returns the size of the verified set.
func (kb *KnowledgeBase) VerifiedCount() int {
	return len(kb.verified)
}

// SuspiciousCount returns the size of the suspicious map.
func (kb *KnowledgeBase) SuspiciousCount() int {
	return len(kb.suspicious)
}

// VerifiedKeys returns the verified set sorted.
func (kb *KnowledgeBase) VerifiedKeys() []string {
	keys := make([]string, 0, len(kb.verified))
	for k := range kb.verified {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flags returns the suspicious map as a slice sorted by key.
func (kb *KnowledgeBase) Flags() []Flag {
	flags := make([]Flag, 0, len(kb.suspicious))
	for k, r := range kb.suspicious {
		flags = append(flags, Flag{Key: k, Reason: r})
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Key < flags[j].Key })
	return flags
}

// Sources returns per-source build statistics in the order sources were added.
func (kb *KnowledgeBase) Sources() []SourceStats {
	out := make([]SourceStats, len(kb.sources))
	copy(out, kb.sources)
	return out
}
