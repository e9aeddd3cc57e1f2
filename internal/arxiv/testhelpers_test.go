package arxiv

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const feedHeader = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title type="html">ArXiv Query</title>
  <id>http://arxiv.org/api/test</id>
  <updated>2024-01-01T00:00:00-05:00</updated>
`

// sampleEntry is a fully populated entry as arXiv returns it.
const sampleEntry = `  <entry>
    <id>http://arxiv.org/abs/2301.00001v2</id>
    <updated>2023-02-01T10:00:00Z</updated>
    <published>2023-01-02T18:00:00Z</published>
    <title>A Photonic
  Quantum Computer</title>
    <summary>  We build
  a machine.
</summary>
    <author><name>Jane Doe</name></author>
    <author><name>John Roe</name></author>
    <link title="doi" href="http://dx.doi.org/10.1000/xyz" rel="related"/>
    <link href="http://arxiv.org/abs/2301.00001v2" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2301.00001v2" rel="related" type="application/pdf"/>
    <link title="doi" href="http://dx.doi.org/10.1000/second" rel="related"/>
    <arxiv:journal_ref>Nature 1, 2 (2023)</arxiv:journal_ref>
    <arxiv:primary_category term="quant-ph" scheme="http://arxiv.org/schemas/atom"/>
    <category term="quant-ph" scheme="http://arxiv.org/schemas/atom"/>
    <category term="physics.optics" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
`

// buildFeed wraps entries into a feed. A negative total omits opensearch:totalResults.
func buildFeed(total int, entries ...string) string {
	var sb strings.Builder
	sb.WriteString(feedHeader)
	if total >= 0 {
		fmt.Fprintf(&sb, "  <opensearch:totalResults>%d</opensearch:totalResults>\n", total)
	}
	for _, e := range entries {
		sb.WriteString(e)
	}
	sb.WriteString("</feed>\n")
	return sb.String()
}

// minimalEntry returns an entry with an id and a title only.
func minimalEntry(id string) string {
	return fmt.Sprintf("  <entry>\n    <id>http://arxiv.org/abs/%s</id>\n    <title>Paper %s</title>\n  </entry>\n", id, id)
}

// pagedRequest records the paging parameters of one request.
type pagedRequest struct {
	Query string
	Start int
	Max   int
}

// pagedServer serves a synthetic result set of size total.
type pagedServer struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []pagedRequest
	total     int
	hideTotal bool
}

func newPagedServer(t *testing.T, total int, hideTotal bool) *pagedServer {
	t.Helper()
	ps := &pagedServer{total: total, hideTotal: hideTotal}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, _ := strconv.Atoi(q.Get("start"))
		max, _ := strconv.Atoi(q.Get("max_results"))

		ps.mu.Lock()
		ps.requests = append(ps.requests, pagedRequest{Query: q.Get("search_query"), Start: start, Max: max})
		ps.mu.Unlock()

		var entries []string
		for i := start; i < start+max && i < ps.total; i++ {
			entries = append(entries, minimalEntry(fmt.Sprintf("2401.%05d", i)))
		}
		reported := ps.total
		if ps.hideTotal {
			reported = -1
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, buildFeed(reported, entries...))
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pagedServer) Requests() []pagedRequest {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]pagedRequest(nil), ps.requests...)
}

func newTestClient(baseURL string, pageSize int) *Client {
	return NewClient(
		WithBaseURL(baseURL),
		WithPageSize(pageSize),
		WithRequestInterval(0),
	)
}
