// Package storage persists publication snapshots (CSV or JSONL) and the
// ephemeral SQLite query index.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matsen/pubwatch/internal/publication"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadJSONL reads all publications from a JSONL stream.
func ReadJSONL(r io.Reader) ([]publication.Record, error) {
	var recs []publication.Record
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long abstracts
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var rec publication.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading publications: %w", err)
	}

	return recs, nil
}

// WriteJSONL writes one publication per line.
func WriteJSONL(w io.Writer, recs []publication.Record) error {
	for i, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding publication %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing publication %d: %w", i, err)
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return nil
}
