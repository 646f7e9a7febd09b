package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-research/internal/fetcher"
	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/model"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com/html/"

// ErrNoSession is returned when a search that fetches pages runs without a
// session in its context.
var ErrNoSession = eris.New("search: no fetch session in context")

// DuckDuckGoProvider scrapes the DuckDuckGo HTML results page. It needs no
// credentials and carries no structured metadata. Result pages are fetched
// through the session attached to the request context, so the provider
// itself holds no connection or rate-limit state.
type DuckDuckGoProvider struct {
	baseURL    string
	maxResults int
	metrics    *metrics.Metrics
}

// NewDuckDuckGoProvider creates a DuckDuckGo provider. An empty baseURL uses
// the public endpoint.
func NewDuckDuckGoProvider(baseURL string, maxResults int, m *metrics.Metrics) *DuckDuckGoProvider {
	if baseURL == "" {
		baseURL = duckDuckGoBaseURL
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &DuckDuckGoProvider{baseURL: baseURL, maxResults: maxResults, metrics: m}
}

func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

// Search fetches and parses one results page for query using the session
// from fetcher.WithSession.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string) ([]model.SearchHit, error) {
	session := fetcher.SessionFrom(ctx)
	if session == nil {
		return nil, ErrNoSession
	}
	body, err := session.Fetch(ctx, p.baseURL+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, eris.Wrapf(err, "search: duckduckgo query %q", query)
	}

	hits, err := parseDuckDuckGo(body, p.maxResults)
	if err != nil {
		return nil, err
	}
	p.metrics.AddSearchHits(p.Name(), len(hits))
	return hits, nil
}

func parseDuckDuckGo(body string, limit int) ([]model.SearchHit, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "search: parse duckduckgo results")
	}

	var hits []model.SearchHit
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := s.Find("a.result__a, a.result__title").First()
		snippet := s.Find("a.result__snippet, .result__snippet").First()

		href, ok := snippet.Attr("href")
		if !ok || href == "" {
			href, _ = title.Attr("href")
		}
		link := resolveDuckDuckGoLink(href)
		if link == "" {
			return true
		}

		hits = append(hits, model.SearchHit{
			Title:   strings.TrimSpace(title.Text()),
			URL:     link,
			Snippet: strings.TrimSpace(snippet.Text()),
			Source:  "duckduckgo",
		})
		return len(hits) < limit
	})
	return hits, nil
}

// resolveDuckDuckGoLink unwraps DuckDuckGo's redirect links
// (//duckduckgo.com/l/?uddg=<target>) to the target URL.
func resolveDuckDuckGoLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
