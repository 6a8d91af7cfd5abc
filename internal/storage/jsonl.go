// Package storage persists check reports as JSONL and knowledge-base
// snapshots as SQLite.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/matsen/citecheck/internal/checker"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Record is one logged check.
type Record struct {
	ID        string          `json:"id"`
	CheckedAt time.Time       `json:"checked_at"`
	Input     string          `json:"input"` // file path, "text" or "stdin"
	Report    *checker.Report `json:"report"`
}

// NewRecord stamps a report with a fresh ID and the current time.
func NewRecord(input string, report *checker.Report) Record {
	return Record{
		ID:        uuid.NewString(),
		CheckedAt: time.Now().UTC(),
		Input:     input,
		Report:    report,
	}
}

// AppendReport adds a record to the end of a JSONL file.
func AppendReport(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening report log for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}

	return nil
}

// ReadReports reads all records from a JSONL file.
func ReadReports(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing log returns empty slice
		}
		return nil, fmt.Errorf("opening report log: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report log: %w", err)
	}

	return records, nil
}
