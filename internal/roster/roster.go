// Package roster reads and appends the curated author reference table.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
)

// ErrEmptyName is returned when appending an author without a name.
var ErrEmptyName = errors.New("author name cannot be empty")

// Author is one curated name.
type Author struct {
	Name       string `json:"name"` // Must match the spelling in publication author lists exactly
	ShortName  string `json:"short_name"`
	IsEmployee bool   `json:"is_employee"`
	Notes      string `json:"notes,omitempty"`
}

// row is the on-disk CSV layout.
type row struct {
	Name       string `csv:"name"`
	ShortName  string `csv:"short_name"`
	IsEmployee Flag   `csv:"is_quandela_employee"`
	Notes      string `csv:"notes"`
}

// Flag is a CSV 0/1 flag. Blank and NaN cells decode as false.
type Flag bool

// MarshalText encodes the flag as "1" or "0".
func (f Flag) MarshalText() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalText accepts 0/1, true/false, yes/no, float renderings and NaN.
func (f *Flag) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "0", "0.0", "false", "no", "n", "nan":
		*f = false
	case "1", "1.0", "true", "yes", "y":
		*f = true
	default:
		return fmt.Errorf("invalid flag value %q", string(b))
	}
	return nil
}

// DeriveShortName lower-cases a name and replaces spaces with underscores.
func DeriveShortName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Table is an ordered set of authors with unique names.
type Table struct {
	authors []Author
	byName  map[string]int
}

// NewTable builds a table. Later rows with an already-seen name are dropped.
func NewTable(authors []Author) *Table {
	t := &Table{byName: make(map[string]int, len(authors))}
	for _, a := range authors {
		t.Add(a)
	}
	return t
}

// Add inserts an author. It returns false for a blank or duplicate name.
func (t *Table) Add(a Author) bool {
	if strings.TrimSpace(a.Name) == "" {
		return false
	}
	if _, ok := t.byName[a.Name]; ok {
		return false
	}
	t.byName[a.Name] = len(t.authors)
	t.authors = append(t.authors, a)
	return true
}

// Lookup finds an author by exact name.
func (t *Table) Lookup(name string) (Author, bool) {
	if t == nil {
		return Author{}, false
	}
	idx, ok := t.byName[name]
	if !ok {
		return Author{}, false
	}
	return t.authors[idx], true
}

// Authors returns the authors in file order.
func (t *Table) Authors() []Author {
	if t == nil {
		return nil
	}
	return append([]Author(nil), t.authors...)
}

// Names returns every author name in file order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.authors))
	for i, a := range t.authors {
		names[i] = a.Name
	}
	return names
}

// Len returns the number of authors.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.authors)
}

// Load reads the table at path. A missing file is an empty table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewTable(nil), nil
		}
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	return t, nil
}

// Read decodes a table from CSV. Unknown columns are ignored.
func Read(r io.Reader) (*Table, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable(nil), nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var authors []Author
	for {
		var rw row
		if err := dec.Decode(&rw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decoding row %d: %w", len(authors)+1, err)
		}
		authors = append(authors, Author{
			Name:       strings.TrimSpace(rw.Name),
			ShortName:  strings.TrimSpace(rw.ShortName),
			IsEmployee: bool(rw.IsEmployee),
			Notes:      rw.Notes,
		})
	}
	return NewTable(authors), nil
}

// Write encodes the table as CSV, header first.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(row{}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, a := range t.Authors() {
		rw := row{
			Name:       a.Name,
			ShortName:  a.ShortName,
			IsEmployee: Flag(a.IsEmployee),
			Notes:      a.Notes,
		}
		if err := enc.Encode(rw); err != nil {
			return fmt.Errorf("encoding %q: %w", a.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes the table to path, replacing existing content.
func Save(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating roster: %w", err)
	}
	defer f.Close()

	if err := Write(f, t); err != nil {
		return err
	}
	return f.Close()
}

// Append adds an author to the table at path, creating the file if needed.
//
// Inputs are trimmed and a blank short name is derived from the name. If the
// exact name is already present the file is left untouched and added is false.
func Append(path string, a Author) (stored Author, added bool, err error) {
	a.Name = strings.TrimSpace(a.Name)
	a.ShortName = strings.TrimSpace(a.ShortName)
	a.Notes = strings.TrimSpace(a.Notes)
	if a.Name == "" {
		return Author{}, false, ErrEmptyName
	}
	if a.ShortName == "" {
		a.ShortName = DeriveShortName(a.Name)
	}

	t, err := Load(path)
	if err != nil {
		return Author{}, false, err
	}
	if existing, ok := t.Lookup(a.Name); ok {
		return existing, false, nil
	}

	t.Add(a)
	if err := Save(path, t); err != nil {
		return Author{}, false, err
	}
	return a, true, nil
}
