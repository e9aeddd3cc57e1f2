package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/reconcile"
)

// filterFlags holds the shared edge filter flags.
type filterFlags struct {
	years     []string
	authors   []string
	relations []string
	text      string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.years, "year", nil, "Filter by year (repeatable; 'unknown' for undated)")
	cmd.Flags().StringArrayVar(&f.authors, "author", nil, "Filter by exact author name (repeatable)")
	cmd.Flags().StringSliceVar(&f.relations, "relation", nil, "Filter by relation: employee, known, unknown")
	cmd.Flags().StringVar(&f.text, "text", "", "Case-insensitive substring of title or summary")
}

// build converts the flag values to a filter.
func (f *filterFlags) build() (reconcile.Filter, error) {
	years, err := parseYears(f.years)
	if err != nil {
		return reconcile.Filter{}, err
	}

	var relations []reconcile.Relation
	for _, s := range f.relations {
		r, err := reconcile.ParseRelation(s)
		if err != nil {
			return reconcile.Filter{}, err
		}
		relations = append(relations, r)
	}

	var authors []string
	for _, a := range f.authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	return reconcile.Filter{
		Years:     years,
		Authors:   authors,
		Relations: relations,
		Text:      strings.TrimSpace(f.text),
	}, nil
}

// mustBuild is build that exits on invalid flags.
func (f *filterFlags) mustBuild() reconcile.Filter {
	filter, err := f.build()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return filter
}

// parseYears accepts four-digit years and "unknown" (year 0).
func parseYears(values []string) ([]int, error) {
	var years []int
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, "unknown") {
			years = append(years, 0)
			continue
		}
		y, err := strconv.Atoi(v)
		if err != nil || y < 1000 || y > 9999 {
			return nil, fmt.Errorf("invalid year: %q (want YYYY or 'unknown')", v)
		}
		years = append(years, y)
	}
	return years, nil
}
