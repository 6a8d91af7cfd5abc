// Package checker classifies the citations of a text against a knowledge base.
package checker

import "github.com/matsen/citecheck/internal/kb"

// Status is the classification of a single citation.
type Status string

// Status values, one per cell of the verified × suspicious matrix.
const (
	StatusVerified           Status = "VERIFIED"
	StatusVerifiedButFlagged Status = "VERIFIED_BUT_FLAGGED"
	StatusSuspicious         Status = "SUSPICIOUS"
	StatusUnverified         Status = "UNVERIFIED"
)

// StatusFor maps set membership to a status.
func StatusFor(verified, suspicious bool) Status {
	switch {
	case verified && !suspicious:
		return StatusVerified
	case verified && suspicious:
		return StatusVerifiedButFlagged
	case suspicious:
		return StatusSuspicious
	default:
		return StatusUnverified
	}
}

// Result is the verification outcome for one citation.
type Result struct {
	Citation     string `json:"citation"`
	Verified     bool   `json:"verified"`
	Suspicious   bool   `json:"suspicious"`
	Reason       string `json:"suspicious_reason,omitempty"`
	Status       Status `json:"status"`
	OriginalText string `json:"original_text"`
	Author       string `json:"author"`
	Year         string `json:"year"`
}

// Unverified reports whether the citation is in neither lookup structure.
func (r Result) Unverified() bool {
	return !r.Verified && !r.Suspicious
}

// Verify classifies a normalized citation key by exact lookup.
func Verify(base *kb.KnowledgeBase, key string) Result {
	verified, suspicious, reason := base.Lookup(key)
	return Result{
		Citation:   key,
		Verified:   verified,
		Suspicious: suspicious,
		Reason:     reason,
		Status:     StatusFor(verified, suspicious),
	}
}
