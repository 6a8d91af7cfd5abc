// Package pdf extracts plain text from PDF knowledge-base sources.
package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages bounds extraction for large documents; 0 means all pages.
const DefaultMaxPages = 0

// ExtractText extracts text from the first maxPages pages of a PDF file.
// maxPages <= 0 extracts every page.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	return pageText(r, maxPages), nil
}

// pageText concatenates page text. Pages that fail to decode are skipped so a
// single bad page does not lose the rest of the document.
func pageText(r *pdf.Reader, maxPages int) string {
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String()
}
