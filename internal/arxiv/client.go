// Package arxiv provides a paginated client for the arXiv Atom search API.
//
// arXiv asks clients to make no more than one request every three seconds;
// the client paces itself accordingly unless configured otherwise.
package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/matsen/pubwatch/internal/publication"
)

const (
	// BaseURL is the arXiv search endpoint.
	BaseURL = "http://export.arxiv.org/api/query"

	// MaxResultsPerPage caps the size of a single page request.
	MaxResultsPerPage = 100

	// DefaultTimeout bounds each page request. Timed-out requests are not retried.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestInterval is the minimum spacing between requests.
	DefaultRequestInterval = 3 * time.Second

	// DefaultTitleLimit is the default cap for title lookups.
	DefaultTitleLimit = 5

	userAgent = "pubwatch/1.0 (+https://github.com/matsen/pubwatch)"
)

// Client issues paginated search requests against the arXiv API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	pageSize   int
	log        *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom endpoint (for testing or mirrors).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithPageSize sets the page cap. Values outside 1..MaxResultsPerPage are clamped.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		switch {
		case n <= 0:
			c.pageSize = 1
		case n > MaxResultsPerPage:
			c.pageSize = MaxResultsPerPage
		default:
			c.pageSize = n
		}
	}
}

// WithRequestInterval sets the minimum spacing between requests. Zero disables pacing.
func WithRequestInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger sets the logger used for per-page debug output.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a new arXiv client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		baseURL:    BaseURL,
		pageSize:   MaxResultsPerPage,
		log:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// PageSize returns the configured page cap.
func (c *Client) PageSize() int {
	return c.pageSize
}

// FetchPage requests a single page of results.
func (c *Client) FetchPage(ctx context.Context, searchQuery string, start, size int) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := BuildURL(c.baseURL, searchQuery, start, size)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Query: searchQuery, Start: start}
	}

	page, err := ParseFeed(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.Debug("fetched page",
		zap.String("query", searchQuery),
		zap.Int("start", start),
		zap.Int("requested", size),
		zap.Int("entries", len(page.Entries)),
		zap.Int("total", page.TotalResults),
	)
	return page, nil
}

// FetchEntries pages through a search until maxResults entries are collected,
// a page comes back empty or short, or the reported total is exhausted.
// Any page failure fails the whole fetch.
func (c *Client) FetchEntries(ctx context.Context, searchQuery string, maxResults int) ([]*atom.Entry, error) {
	var entries []*atom.Entry
	start := 0

	for len(entries) < maxResults {
		size := min(c.pageSize, maxResults-len(entries))

		page, err := c.FetchPage(ctx, searchQuery, start, size)
		if err != nil {
			return nil, err
		}

		got := page.Entries
		if len(got) == 0 {
			break
		}
		if len(got) > size {
			got = got[:size]
		}
		entries = append(entries, got...)

		// A short page means the result set ended.
		if len(got) < size {
			break
		}

		start += size
		if page.TotalResults >= 0 && start >= page.TotalResults {
			break
		}
	}

	return entries, nil
}

// Search fetches and parses up to maxResults records for a query fragment.
func (c *Client) Search(ctx context.Context, searchQuery string, maxResults int) ([]publication.Record, error) {
	entries, err := c.FetchEntries(ctx, searchQuery, maxResults)
	if err != nil {
		return nil, err
	}
	return ParseEntries(entries), nil
}

// SearchTitle looks up papers by (the start of) their title.
// A blank title returns no records without issuing a request.
func (c *Client) SearchTitle(ctx context.Context, title string, maxResults int) ([]publication.Record, error) {
	q := TitleQuery(title)
	if q == "" {
		return []publication.Record{}, nil
	}
	if maxResults <= 0 {
		maxResults = DefaultTitleLimit
	}
	return c.Search(ctx, q, maxResults)
}
