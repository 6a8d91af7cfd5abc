// Package bibtex turns .bib bibliographies into author-year text so they can
// serve as knowledge-base sources.
package bibtex

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

// Entry is the part of a BibTeX entry needed to cite it.
type Entry struct {
	Key     string
	Authors []string // surnames, in order
	Year    string
}

var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`^\s*@\w+\s*\{\s*([^,\s]+)\s*,`)
	// Match author field: author = {value} or author = "value"
	authorFieldRegex = regexp.MustCompile(`(?i)^\s*author\s*=\s*[\{"](.+)[\}"]\s*,?\s*$`)
	// Match year field, braced, quoted or bare.
	yearFieldRegex = regexp.MustCompile(`(?i)^\s*year\s*=\s*[\{"]?(\d{4}[a-z]?)`)
	authorSplit    = regexp.MustCompile(`\s+and\s+`)
)

// ParseFile parses the .bib file at path.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads BibTeX entries line by line. Fields must sit on one line;
// entries without a year are kept but produce no citation.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var current *Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			entries = append(entries, Entry{Key: strings.TrimSpace(matches[1])})
			current = &entries[len(entries)-1]
			continue
		}
		if current == nil {
			continue
		}

		if matches := authorFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			current.Authors = parseAuthors(matches[1])
			continue
		}
		if matches := yearFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			current.Year = matches[1]
		}
	}
	return entries, scanner.Err()
}

// parseAuthors extracts surnames from "Last, First and First Last" lists.
func parseAuthors(field string) []string {
	var out []string
	for _, name := range authorSplit.Split(field, -1) {
		name = strings.NewReplacer("{", "", "}", "").Replace(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if i := strings.Index(name, ","); i >= 0 {
			out = append(out, strings.TrimSpace(name[:i]))
			continue
		}
		parts := strings.Fields(name)
		out = append(out, parts[len(parts)-1])
	}
	return out
}

// Citation renders the entry as an inline author-year mention, or "" when
// the entry lacks authors or a year.
func (e Entry) Citation() string {
	if e.Year == "" || len(e.Authors) == 0 {
		return ""
	}
	switch len(e.Authors) {
	case 1:
		return e.Authors[0] + " (" + e.Year + ")"
	case 2:
		return e.Authors[0] + " & " + e.Authors[1] + " (" + e.Year + ")"
	default:
		return e.Authors[0] + " et al. (" + e.Year + ")"
	}
}

// Render returns one citation per line for every citable entry.
func Render(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if c := e.Citation(); c != "" {
			b.WriteString(c)
			b.WriteString("\n")
		}
	}
	return b.String()
}
