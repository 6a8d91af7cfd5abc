// Package citation recognizes inline author-year citations in free text.
package citation

import "regexp"

// Pattern is a single citation-matching rule. Every rule exposes exactly two
// capture groups: the author surname and the year (with optional
// disambiguation letter, e.g. "2023a").
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// Author and year tokens shared by all rules.
const (
	authorToken = `[A-Z][a-z]+`
	yearToken   = `\d{4}[a-z]?`
)

// patterns is evaluated in order. The "et al." forms come before the bare
// "Author (YYYY)" form so the broader rule cannot claim an et-al. citation
// first. The parenthetical two-author rule is last so it never changes the
// precedence of the others.
var patterns = []Pattern{
	// Smith et al. (2023), Smith et al (2023)
	{Name: "et_al", Re: regexp.MustCompile(`\b(` + authorToken + `)\s+et\s+al\.?\s*\((` + yearToken + `)\)`)},
	// Smith & Jones (2023)
	{Name: "two_authors", Re: regexp.MustCompile(`\b(` + authorToken + `)\s+&\s+` + authorToken + `\s*\((` + yearToken + `)\)`)},
	// Smith (2023)
	{Name: "author_year", Re: regexp.MustCompile(`\b(` + authorToken + `)\s*\((` + yearToken + `)\)`)},
	// (Smith et al., 2023)
	{Name: "paren_et_al", Re: regexp.MustCompile(`\((` + authorToken + `)\s+et\s+al\.?,\s*(` + yearToken + `)\)`)},
	// (Smith, 2023)
	{Name: "paren_author", Re: regexp.MustCompile(`\((` + authorToken + `),\s*(` + yearToken + `)\)`)},
	// (Smith & Jones, 2023)
	{Name: "paren_two_authors", Re: regexp.MustCompile(`\((` + authorToken + `)\s+&\s+` + authorToken + `,\s*(` + yearToken + `)\)`)},
}

// identifierPattern finds arXiv-style paper identifiers (scheme:digits.digits).
var identifierPattern = regexp.MustCompile(`arXiv:(\d+\.\d+)`)

// IdentifierScheme is the prefix used for identifier keys.
const IdentifierScheme = "arXiv"

// Patterns returns the ordered rule set. The returned slice is a copy; the
// compiled expressions are shared and safe for concurrent use.
func Patterns() []Pattern {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	return out
}

// Match is one raw pattern hit.
type Match struct {
	Text   string // literal matched substring
	Author string
	Year   string
	Rule   string // name of the rule that produced the hit
}

// Scan applies every rule in order and returns all raw matches, without
// deduplication. Within a rule, matches are in scan position order.
func Scan(text string) []Match {
	var out []Match
	for _, p := range patterns {
		for _, m := range p.Re.FindAllStringSubmatch(text, -1) {
			if len(m) != 3 {
				continue
			}
			out = append(out, Match{Text: m[0], Author: m[1], Year: m[2], Rule: p.Name})
		}
	}
	return out
}

// ScanIdentifiers returns every identifier key ("arXiv:2301.00001") found in
// text, in scan order. Duplicates are kept.
func ScanIdentifiers(text string) []string {
	var out []string
	for _, m := range identifierPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, IdentifierScheme+":"+m[1])
	}
	return out
}
