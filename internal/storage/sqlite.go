package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matsen/pubwatch/internal/publication"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite query index. The index is rebuilt wholesale from a
// pipeline result and never edited in place.
type DB struct {
	db *sql.DB
}

// IndexMeta describes the run an index was built from.
type IndexMeta struct {
	Mode    string    `json:"mode"`
	Keyword string    `json:"keyword"`
	BuiltAt time.Time `json:"built_at"`
}

// selectPubFields contains the standard field list for publication queries.
const selectPubFields = `pub_idx, arxiv_id, id_url, title, summary, authors,
	published, updated, year, doi, journal_ref, categories, source`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- One row per aggregated publication; pub_idx is its position in the run
		CREATE TABLE IF NOT EXISTS publications (
			pub_idx INTEGER PRIMARY KEY,
			arxiv_id TEXT,
			id_url TEXT,
			title TEXT,
			summary TEXT,
			authors TEXT NOT NULL,
			published TEXT,
			updated TEXT,
			year INTEGER,
			doi TEXT,
			journal_ref TEXT,
			categories TEXT NOT NULL,
			source TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_publications_arxiv ON publications(arxiv_id) WHERE arxiv_id IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(year);

		-- One row per (publication, author token)
		CREATE TABLE IF NOT EXISTS edges (
			pub_idx INTEGER NOT NULL,
			position INTEGER NOT NULL,
			author_name TEXT NOT NULL,
			is_known_author INTEGER NOT NULL,
			is_employee INTEGER NOT NULL,
			relation TEXT NOT NULL,
			short_name TEXT,
			notes TEXT,
			PRIMARY KEY (pub_idx, position)
		);

		CREATE INDEX IF NOT EXISTS idx_edges_author ON edges(author_name);
		CREATE INDEX IF NOT EXISTS idx_edges_relation ON edges(relation);

		CREATE TABLE IF NOT EXISTS index_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// insertPublications writes all publications inside tx.
func insertPublications(tx *sql.Tx, pubs []publication.Record) error {
	stmt, err := tx.Prepare(`
		INSERT INTO publications (
			pub_idx, arxiv_id, id_url, title, summary, authors,
			published, updated, year, doi, journal_ref, categories, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing publications insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range pubs {
		_, err := stmt.Exec(
			i, nullableStringValue(p.ArxivID), nullableStringValue(p.IDURL),
			nullableStringValue(p.Title), nullableStringValue(p.Summary), p.AuthorsText(),
			nullableStringValue(p.Published), nullableStringValue(p.Updated), nullableYear(p.Year),
			nullableStringValue(p.DOI), nullableStringValue(p.JournalRef), p.CategoriesText(),
			nullableStringValue(string(p.Source)),
		)
		if err != nil {
			return fmt.Errorf("inserting publication %d: %w", i, err)
		}
	}
	return nil
}

// LoadPublications returns all publications in run order.
func (d *DB) LoadPublications() ([]publication.Record, error) {
	rows, err := d.db.Query(`SELECT ` + selectPubFields + ` FROM publications ORDER BY pub_idx`)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	var pubs []publication.Record
	for rows.Next() {
		var idx int
		var p publication.Record
		var arxivID, idURL, title, summary, published, updated, doi, journalRef, source sql.NullString
		var authors, categories string
		var year sql.NullInt64

		err := rows.Scan(
			&idx, &arxivID, &idURL, &title, &summary, &authors,
			&published, &updated, &year, &doi, &journalRef, &categories, &source,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}

		p.ArxivID = arxivID.String
		p.IDURL = idURL.String
		p.Title = title.String
		p.Summary = summary.String
		p.Authors = publication.SplitList(authors)
		p.Published = published.String
		p.Updated = updated.String
		if year.Valid {
			p.Year = int(year.Int64)
		}
		p.DOI = doi.String
		p.JournalRef = journalRef.String
		p.Categories = publication.SplitList(categories)
		p.Source = publication.Source(source.String)
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// CountPublications returns the number of indexed publications.
func (d *DB) CountPublications() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// Meta returns the metadata of the last rebuild. A never-built index yields a zero value.
func (d *DB) Meta() (IndexMeta, error) {
	rows, err := d.db.Query(`SELECT key, value FROM index_meta`)
	if err != nil {
		return IndexMeta{}, fmt.Errorf("reading index metadata: %w", err)
	}
	defer rows.Close()

	var m IndexMeta
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return IndexMeta{}, err
		}
		switch key {
		case "mode":
			m.Mode = value
		case "keyword":
			m.Keyword = value
		case "built_at":
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				m.BuiltAt = t
			}
		}
	}
	return m, rows.Err()
}

func writeMeta(tx *sql.Tx, m IndexMeta) error {
	if _, err := tx.Exec("DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("clearing index metadata: %w", err)
	}
	entries := map[string]string{
		"mode":     m.Mode,
		"keyword":  m.Keyword,
		"built_at": m.BuiltAt.UTC().Format(time.RFC3339),
	}
	for k, v := range entries {
		if _, err := tx.Exec(`INSERT INTO index_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing index metadata %s: %w", k, err)
		}
	}
	return nil
}

// nullableStringValue returns nil for empty strings, otherwise the string.
func nullableStringValue(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableYear stores an unknown year (0) as NULL.
func nullableYear(year int) any {
	if year == 0 {
		return nil
	}
	return year
}

// escapeLike escapes LIKE wildcards so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
