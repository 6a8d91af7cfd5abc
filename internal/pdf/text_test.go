package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractText_MissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.pdf"), DefaultMaxPages)
	if err == nil {
		t.Fatal("ExtractText() expected error for missing file")
	}
}

func TestExtractText_NotPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("Smith et al. (2024) is plain text, not a PDF"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractText(path, DefaultMaxPages); err == nil {
		t.Fatal("ExtractText() expected error for non-PDF input")
	}
}
