package storage

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/matsen/pubwatch/internal/publication"
	"github.com/matsen/pubwatch/internal/reconcile"
)

// EdgeRow is an edge joined with the publication fields a listing needs.
type EdgeRow struct {
	reconcile.Edge
	Title      string   `json:"title"`
	Year       int      `json:"year,omitempty"`
	Published  string   `json:"published,omitempty"`
	IDURL      string   `json:"id_url,omitempty"`
	DOI        string   `json:"doi,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Rebuild replaces the entire index contents with pubs and edges.
func (d *DB) Rebuild(pubs []publication.Record, edges []reconcile.Edge, meta IndexMeta) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"edges", "publications"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertPublications(tx, pubs); err != nil {
		return err
	}
	if err := insertEdges(tx, edges); err != nil {
		return err
	}
	if err := writeMeta(tx, meta); err != nil {
		return err
	}

	return tx.Commit()
}

func insertEdges(tx *sql.Tx, edges []reconcile.Edge) error {
	stmt, err := tx.Prepare(`
		INSERT INTO edges (
			pub_idx, position, author_name, is_known_author, is_employee,
			relation, short_name, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing edges insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range edges {
		_, err := stmt.Exec(
			e.PublicationIndex, i, e.AuthorName, e.IsKnownAuthor, e.IsEmployee,
			string(e.Relation), nullableStringValue(e.ShortName), nullableStringValue(e.Notes),
		)
		if err != nil {
			return fmt.Errorf("inserting edge %s/%s: %w", e.PublicationID, e.AuthorName, err)
		}
	}
	return nil
}

// LoadEdges returns all edges in insertion order.
func (d *DB) LoadEdges() ([]reconcile.Edge, error) {
	rows, err := d.QueryEdges(reconcile.Filter{}, 0)
	if err != nil {
		return nil, err
	}
	edges := make([]reconcile.Edge, len(rows))
	for i, r := range rows {
		edges[i] = r.Edge
	}
	return edges, nil
}

// edgeQuery builds the joined edge selection for a filter. An empty filter
// keeps insertion order; any filter sorts like reconcile.Filter.Apply.
func edgeQuery(f reconcile.Filter, limit int) sq.SelectBuilder {
	q := sq.Select(
		"e.pub_idx", "p.arxiv_id", "e.author_name", "e.is_known_author", "e.is_employee",
		"e.relation", "e.short_name", "e.notes",
		"p.title", "p.year", "p.published", "p.id_url", "p.doi", "p.categories",
	).
		From("edges e").
		Join("publications p ON p.pub_idx = e.pub_idx")

	filtered := false
	if len(f.Years) > 0 {
		filtered = true
		years := sq.Or{}
		var known []int
		for _, y := range f.Years {
			if y == 0 {
				years = append(years, sq.Eq{"p.year": nil})
				continue
			}
			known = append(known, y)
		}
		if len(known) > 0 {
			years = append(years, sq.Eq{"p.year": known})
		}
		q = q.Where(years)
	}
	if len(f.Authors) > 0 {
		filtered = true
		q = q.Where(sq.Eq{"e.author_name": f.Authors})
	}
	if len(f.Relations) > 0 {
		filtered = true
		rels := make([]string, len(f.Relations))
		for i, r := range f.Relations {
			rels[i] = string(r)
		}
		q = q.Where(sq.Eq{"e.relation": rels})
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		filtered = true
		pattern := "%" + escapeLike(text) + "%"
		q = q.Where(sq.Or{
			sq.Expr(`p.title LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`p.summary LIKE ? ESCAPE '\'`, pattern),
		})
	}

	if filtered {
		q = q.OrderBy("COALESCE(p.year, 0) DESC", "e.author_name", "p.title", "e.position")
	} else {
		q = q.OrderBy("e.position")
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

// QueryEdges returns edges matching f joined with their publication. A
// non-positive limit returns every match.
func (d *DB) QueryEdges(f reconcile.Filter, limit int) ([]EdgeRow, error) {
	rows, err := edgeQuery(f, limit).RunWith(d.db).Query()
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var out []EdgeRow
	for rows.Next() {
		var r EdgeRow
		var arxivID, shortName, notes, title, published, idURL, doi sql.NullString
		var relation, categories string
		var year sql.NullInt64

		err := rows.Scan(
			&r.PublicationIndex, &arxivID, &r.AuthorName, &r.IsKnownAuthor, &r.IsEmployee,
			&relation, &shortName, &notes,
			&title, &year, &published, &idURL, &doi, &categories,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}

		r.PublicationID = arxivID.String
		r.Relation = reconcile.Relation(relation)
		r.ShortName = shortName.String
		r.Notes = notes.String
		r.Title = title.String
		if year.Valid {
			r.Year = int(year.Int64)
		}
		r.Published = published.String
		r.IDURL = idURL.String
		r.DOI = doi.String
		r.Categories = publication.SplitList(categories)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AuthorPublications returns the indexed publications an author appears on,
// newest first.
func (d *DB) AuthorPublications(name string) ([]EdgeRow, error) {
	return d.QueryEdges(reconcile.Filter{Authors: []string{name}}, 0)
}
