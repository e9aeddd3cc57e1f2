package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	got := BuildURL("http://export.arxiv.org/api/query", `au:"Notton_C"`, 100, 50)
	u, err := url.Parse(got)
	require.NoError(t, err)

	assert.Equal(t, "export.arxiv.org", u.Host)
	assert.Equal(t, "/api/query", u.Path)
	assert.Equal(t, `au:"Notton_C"`, u.Query().Get("search_query"))
	assert.Equal(t, "100", u.Query().Get("start"))
	assert.Equal(t, "50", u.Query().Get("max_results"))
}

func TestBuildURLClampsNegatives(t *testing.T) {
	u, err := url.Parse(BuildURL("http://x/api?format=atom", "all:x", -5, -1))
	require.NoError(t, err)
	assert.Equal(t, "atom", u.Query().Get("format"))
	assert.Equal(t, "0", u.Query().Get("start"))
	assert.Equal(t, "0", u.Query().Get("max_results"))
}

func TestQueries(t *testing.T) {
	assert.Equal(t, "all:quandela", KeywordQuery(" quandela "))
	assert.Equal(t, `ti:"High-rate entanglement"`, TitleQuery(" High-rate entanglement "))
	assert.Equal(t, "", TitleQuery("   "))
}

func TestFetchEntriesStopsOnShortPage(t *testing.T) {
	srv := newPagedServer(t, 7, true)
	c := newTestClient(srv.URL, 3)

	entries, err := c.FetchEntries(context.Background(), "all:photon", 50)
	require.NoError(t, err)
	assert.Len(t, entries, 7)

	reqs := srv.Requests()
	require.Len(t, reqs, 3, "must not request past the short page")
	assert.Equal(t, pagedRequest{Query: "all:photon", Start: 0, Max: 3}, reqs[0])
	assert.Equal(t, pagedRequest{Query: "all:photon", Start: 3, Max: 3}, reqs[1])
	assert.Equal(t, pagedRequest{Query: "all:photon", Start: 6, Max: 3}, reqs[2])
}

func TestFetchEntriesStopsAtMax(t *testing.T) {
	srv := newPagedServer(t, 100, true)
	c := newTestClient(srv.URL, 3)

	entries, err := c.FetchEntries(context.Background(), "all:photon", 5)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, 3, reqs[1].Start)
	assert.Equal(t, 2, reqs[1].Max, "last page is shrunk to the remaining budget")
}

func TestFetchEntriesStopsOnEmptyPage(t *testing.T) {
	srv := newPagedServer(t, 0, true)
	c := newTestClient(srv.URL, 3)

	entries, err := c.FetchEntries(context.Background(), "all:nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Len(t, srv.Requests(), 1)
}

func TestFetchEntriesStopsAtReportedTotal(t *testing.T) {
	srv := newPagedServer(t, 6, false)
	c := newTestClient(srv.URL, 3)

	entries, err := c.FetchEntries(context.Background(), "all:photon", 50)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
	assert.Len(t, srv.Requests(), 2)
}

func TestFetchEntriesZeroMax(t *testing.T) {
	srv := newPagedServer(t, 10, true)
	c := newTestClient(srv.URL, 3)

	entries, err := c.FetchEntries(context.Background(), "all:photon", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, srv.Requests())
}

func TestFetchEntriesHTTPError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	_, err := c.FetchEntries(context.Background(), "all:photon", 10)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.True(t, IsRateLimited(err))
	assert.False(t, IsParseError(err))
	assert.Equal(t, int32(1), calls.Load(), "failures are not retried")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "all:photon", apiErr.Query)
}

func TestFetchEntriesFailsWholeRunOnLaterPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "0" {
			fmt.Fprint(w, "<feed><broken")
			return
		}
		fmt.Fprint(w, buildFeed(-1, minimalEntry("1"), minimalEntry("2")))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	entries, err := c.FetchEntries(context.Background(), "all:photon", 10)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Nil(t, entries)
}

func TestFetchEntriesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(srv.URL, 3)
	_, err := c.FetchEntries(context.Background(), "all:photon", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkError)
	assert.True(t, IsTransportError(err))
}

func TestFetchEntriesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRequestInterval(0), WithTimeout(20*time.Millisecond))
	_, err := c.FetchEntries(context.Background(), "all:photon", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkError)
}

func TestSearchParsesEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, buildFeed(1, sampleEntry))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 10)
	recs, err := c.Search(context.Background(), "all:photon", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2301.00001v2", recs[0].ArxivID)
	assert.Equal(t, 2023, recs[0].Year)
}

func TestSearchTitle(t *testing.T) {
	srv := newPagedServer(t, 2, false)
	c := newTestClient(srv.URL, 100)

	recs, err := c.SearchTitle(context.Background(), "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Empty(t, srv.Requests(), "blank title issues no request")

	recs, err = c.SearchTitle(context.Background(), "High-rate entanglement", 0)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, `ti:"High-rate entanglement"`, reqs[0].Query)
	assert.Equal(t, DefaultTitleLimit, reqs[0].Max)
}

func TestWithPageSizeClamps(t *testing.T) {
	assert.Equal(t, MaxResultsPerPage, NewClient(WithPageSize(5000)).PageSize())
	assert.Equal(t, 1, NewClient(WithPageSize(-3)).PageSize())
	assert.Equal(t, 25, NewClient(WithPageSize(25)).PageSize())
}

func TestFetchPageHonorsContext(t *testing.T) {
	c := NewClient(WithRequestInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPage(ctx, "all:x", 0, 1)
	require.Error(t, err)
}
