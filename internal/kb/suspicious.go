package kb

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownReason is used for suspicious-list entries without a reason.
const UnknownReason = "Unknown reason"

// SuspiciousList is the structured suspicious-citation record, bucketed by
// severity.
type SuspiciousList struct {
	High   []SuspiciousEntry `json:"high" yaml:"high"`
	Medium []SuspiciousEntry `json:"medium" yaml:"medium"`
}

// SuspiciousEntry is one flagged line of prose and why it was flagged.
// Reason is nil when the record has no reason key (or a null one); an
// explicit empty reason is kept as is.
type SuspiciousEntry struct {
	Line   string  `json:"line" yaml:"line"`
	Reason *string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ReasonOrDefault returns the entry's reason, or UnknownReason when absent.
func (e SuspiciousEntry) ReasonOrDefault() string {
	if e.Reason == nil {
		return UnknownReason
	}
	return *e.Reason
}

// Entries returns the high bucket followed by the medium bucket.
func (l SuspiciousList) Entries() []SuspiciousEntry {
	out := make([]SuspiciousEntry, 0, len(l.High)+len(l.Medium))
	out = append(out, l.High...)
	return append(out, l.Medium...)
}

// ParseSuspiciousList decodes a suspicious list. JSON objects are decoded as
// JSON, anything else as YAML.
func ParseSuspiciousList(text string) (SuspiciousList, error) {
	var list SuspiciousList
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return list, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return SuspiciousList{}, fmt.Errorf("parsing suspicious list: %w", err)
		}
		return list, nil
	}

	if err := yaml.Unmarshal([]byte(trimmed), &list); err != nil {
		return SuspiciousList{}, fmt.Errorf("parsing suspicious list: %w", err)
	}
	return list, nil
}
