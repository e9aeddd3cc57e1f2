package arxiv

import (
	"net/url"
	"strconv"
	"strings"
)

// KeywordQuery builds a full-text fragment matching the keyword in any field.
func KeywordQuery(keyword string) string {
	return "all:" + strings.TrimSpace(keyword)
}

// TitleQuery builds a quoted title fragment. A blank title yields "".
func TitleQuery(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return `ti:"` + title + `"`
}

// BuildURL returns the request URL for one page of a search.
//
// The fragment is passed through as-is (query-escaped); malformed fragments
// surface as an API or parse error.
func BuildURL(baseURL, searchQuery string, start, pageSize int) string {
	if start < 0 {
		start = 0
	}
	if pageSize < 0 {
		pageSize = 0
	}
	params := url.Values{}
	params.Set("search_query", searchQuery)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(pageSize))

	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + params.Encode()
}
