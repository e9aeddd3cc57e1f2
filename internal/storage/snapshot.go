package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/matsen/pubwatch/internal/publication"
)

var (
	// ErrSnapshotNotFound indicates no snapshot file exists yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrMissingAuthors indicates a CSV snapshot without an authors column.
	ErrMissingAuthors = errors.New("snapshot has no authors column")
)

// snapshotRow is the CSV layout of a snapshot; list fields are comma-joined.
type snapshotRow struct {
	ArxivID    string `csv:"arxiv_id"`
	IDURL      string `csv:"id_url"`
	Title      string `csv:"title"`
	Summary    string `csv:"summary"`
	Authors    string `csv:"authors"`
	Published  string `csv:"published"`
	Updated    string `csv:"updated"`
	Year       string `csv:"year"`
	DOI        string `csv:"doi"`
	JournalRef string `csv:"journal_ref"`
	Categories string `csv:"categories"`
	Source     string `csv:"source"`
}

// IsJSONL reports whether a snapshot path uses the JSONL format.
func IsJSONL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".jsonl")
}

// ReadSnapshot loads publications from a .csv or .jsonl snapshot.
func ReadSnapshot(path string) ([]publication.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if IsJSONL(path) {
		return ReadJSONL(f)
	}
	return ReadCSV(f)
}

// WriteSnapshot replaces the snapshot at path, creating parent directories.
func WriteSnapshot(path string, recs []publication.Record) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()

	if IsJSONL(path) {
		err = WriteJSONL(f, recs)
	} else {
		err = WriteCSV(f, recs)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// ReadCSV decodes a CSV snapshot. Empty input yields no records.
func ReadCSV(r io.Reader) ([]publication.Record, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}
	if !hasColumn(dec.Header(), "authors") {
		return nil, ErrMissingAuthors
	}

	var recs []publication.Record
	for {
		var row snapshotRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding snapshot row %d: %w", len(recs)+1, err)
		}
		recs = append(recs, row.record())
	}
	return recs, nil
}

// WriteCSV encodes records with a header row.
func WriteCSV(w io.Writer, recs []publication.Record) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(snapshotRow{}); err != nil {
		return fmt.Errorf("writing snapshot header: %w", err)
	}
	for i, rec := range recs {
		if err := enc.Encode(rowFor(rec)); err != nil {
			return fmt.Errorf("encoding publication %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func rowFor(r publication.Record) snapshotRow {
	year := ""
	if r.Year != 0 {
		year = strconv.Itoa(r.Year)
	}
	return snapshotRow{
		ArxivID:    r.ArxivID,
		IDURL:      r.IDURL,
		Title:      r.Title,
		Summary:    r.Summary,
		Authors:    r.AuthorsText(),
		Published:  r.Published,
		Updated:    r.Updated,
		Year:       year,
		DOI:        r.DOI,
		JournalRef: r.JournalRef,
		Categories: r.CategoriesText(),
		Source:     string(r.Source),
	}
}

func (row snapshotRow) record() publication.Record {
	return publication.Record{
		ArxivID:    strings.TrimSpace(row.ArxivID),
		IDURL:      row.IDURL,
		Title:      row.Title,
		Summary:    row.Summary,
		Authors:    publication.SplitList(row.Authors),
		Published:  row.Published,
		Updated:    row.Updated,
		Year:       parseYearCell(row.Year),
		DOI:        row.DOI,
		JournalRef: row.JournalRef,
		Categories: publication.SplitList(row.Categories),
		Source:     publication.Source(row.Source),
	}
}

// parseYearCell accepts "2024", "2024.0" (float-rendered columns) and treats
// blank, NaN or junk as unknown.
func parseYearCell(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) == name {
			return true
		}
	}
	return false
}
