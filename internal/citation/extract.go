package citation

import (
	"fmt"
	"regexp"
	"strings"
)

// Mention is a deduplicated citation found in a text.
type Mention struct {
	Text       string `json:"text"`       // first-seen literal substring
	Normalized string `json:"normalized"` // canonical lookup key
	Author     string `json:"author"`
	Year       string `json:"year"`
}

// Normalize builds the canonical key for an author/year pair:
// "Author et al. (Year)" when etAl is set, "Author (Year)" otherwise.
func Normalize(author, year string, etAl bool) string {
	if etAl {
		return author + " et al. (" + year + ")"
	}
	return author + " (" + year + ")"
}

// HasEtAl reports whether raw contains an "et al" marker, ignoring case.
func HasEtAl(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "et al")
}

// Normalized returns the canonical key for the match.
func (m Match) Normalized() string {
	return Normalize(m.Author, m.Year, HasEtAl(m.Text))
}

// BothForms returns the "et al." and plain keys for the match's author and
// year, regardless of which form the text used.
func (m Match) BothForms() [2]string {
	return [2]string{Normalize(m.Author, m.Year, true), Normalize(m.Author, m.Year, false)}
}

// Extract scans text with the ordered rule set and returns one Mention per
// distinct normalized key, in first-seen order. When several rules hit the
// same key, the first rule (then the first position) supplies Text.
func Extract(text string) []Mention {
	mentions := []Mention{}
	seen := make(map[string]bool)
	for _, m := range Scan(text) {
		key := m.Normalized()
		if seen[key] {
			continue
		}
		seen[key] = true
		mentions = append(mentions, Mention{
			Text:       m.Text,
			Normalized: key,
			Author:     m.Author,
			Year:       m.Year,
		})
	}
	return mentions
}

var keyPattern = regexp.MustCompile(`^(` + authorToken + `)( et al\.)? \((` + yearToken + `)\)$`)

// Parse splits a canonical key back into author, year and the et-al. flag.
// Parse(Normalize(a, y, e)) returns (a, y, e) for any valid author and year.
func Parse(key string) (author, year string, etAl bool, err error) {
	m := keyPattern.FindStringSubmatch(key)
	if m == nil {
		return "", "", false, fmt.Errorf("not a normalized citation: %q", key)
	}
	return m[1], m[3], m[2] != "", nil
}
