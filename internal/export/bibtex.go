// Package export renders publications as BibTeX.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/pubwatch/internal/author"
	"github.com/matsen/pubwatch/internal/publication"
)

var (
	versionSuffix = regexp.MustCompile(`v\d+$`)
	monthPattern  = regexp.MustCompile(`^\d{4}-(\d{2})-`)
)

// ToBibTeX converts a publication to a BibTeX entry under the given key.
func ToBibTeX(rec publication.Record, key string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@article{%s,\n", key))

	// Authors
	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(rec.Authors)))
	}

	// Title
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))

	// Venue: the journal reference when published, else the preprint
	switch {
	case rec.JournalRef != "":
		b.WriteString(fmt.Sprintf("  journal = {%s},\n", escapeLatex(rec.JournalRef)))
	case rec.ArxivID != "":
		b.WriteString(fmt.Sprintf("  journal = {arXiv preprint arXiv:%s},\n", baseID(rec.ArxivID)))
	}

	// Year and month (optional)
	if rec.Year != 0 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", rec.Year))
	}
	if m := month(rec.Published); m > 0 {
		b.WriteString(fmt.Sprintf("  month = {%d},\n", m))
	}

	// Identifiers (optional)
	if rec.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", rec.DOI))
	}
	if rec.ArxivID != "" {
		b.WriteString(fmt.Sprintf("  eprint = {%s},\n", baseID(rec.ArxivID)))
		b.WriteString("  archivePrefix = {arXiv},\n")
		if len(rec.Categories) > 0 {
			b.WriteString(fmt.Sprintf("  primaryClass = {%s},\n", rec.Categories[0]))
		}
	}
	if rec.IDURL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", rec.IDURL))
	}

	// Abstract (optional, if present)
	if rec.Summary != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(rec.Summary)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple publications, giving each a unique key.
func ToBibTeXList(recs []publication.Record) string {
	seen := make(map[string]int)
	var entries []string
	for _, rec := range recs {
		key := CiteKey(rec)
		seen[key]++
		if n := seen[key]; n > 1 {
			key += "-" + strconv.Itoa(n)
		}
		entries = append(entries, ToBibTeX(rec, key))
	}
	return strings.Join(entries, "\n")
}

// CiteKey derives a key of the form Surname2024-2401.01234 from the first
// author, the year and the version-less arXiv ID. Missing parts are dropped.
func CiteKey(rec publication.Record) string {
	var b strings.Builder
	if len(rec.Authors) > 0 {
		for _, r := range author.ParseName(rec.Authors[0]).Last {
			if unicode.IsLetter(r) {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		b.WriteString("Anon")
	}
	if rec.Year != 0 {
		b.WriteString(strconv.Itoa(rec.Year))
	}
	if rec.ArxivID != "" {
		b.WriteString("-")
		b.WriteString(strings.ReplaceAll(baseID(rec.ArxivID), "/", "_"))
	}
	return b.String()
}

// baseID strips the version suffix from an arXiv identifier.
func baseID(id string) string {
	return versionSuffix.ReplaceAllString(id, "")
}

func month(published string) int {
	m := monthPattern.FindStringSubmatch(published)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	if n < 1 || n > 12 {
		return 0
	}
	return n
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []string) string {
	var formatted []string
	for _, full := range authors {
		n := author.ParseName(full)
		switch {
		case n.Full == "":
			continue
		case n.First == "":
			formatted = append(formatted, n.Full)
		default:
			given := strings.TrimSpace(strings.TrimSuffix(n.Full, n.Last))
			formatted = append(formatted, fmt.Sprintf("%s, %s", n.Last, given))
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
