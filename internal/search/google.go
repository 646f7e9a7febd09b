package search

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/model"
	"github.com/sells-group/prospect-research/internal/resilience"
	"github.com/sells-group/prospect-research/pkg/google"
)

// GoogleProvider searches through the Google Custom Search JSON API.
type GoogleProvider struct {
	client     google.Client
	maxResults int
	retry      resilience.RetryConfig
	metrics    *metrics.Metrics
}

// GoogleOptions configures a GoogleProvider.
type GoogleOptions struct {
	APIKey     string
	EngineID   string
	MaxResults int
	Retry      resilience.RetryConfig
	Metrics    *metrics.Metrics
	// ClientOptions are passed to google.NewClient.
	ClientOptions []google.Option
}

// NewGoogleProvider creates a GoogleProvider. When either credential is
// missing the provider is still usable but every search returns no hits.
func NewGoogleProvider(opts GoogleOptions) *GoogleProvider {
	p := &GoogleProvider{
		maxResults: opts.MaxResults,
		retry:      opts.Retry,
		metrics:    opts.Metrics,
	}
	if p.maxResults <= 0 {
		p.maxResults = DefaultMaxResults
	}
	if p.retry.MaxAttempts <= 0 {
		p.retry = resilience.RetryConfig{MaxAttempts: 1}
	}
	p.retry.ShouldRetry = isRetryableGoogleError
	p.retry.OnRetry = resilience.RetryLogger("google", "custom_search")

	if opts.APIKey != "" && opts.EngineID != "" {
		p.client = google.NewClient(opts.APIKey, opts.EngineID, opts.ClientOptions...)
	}
	return p
}

// NewGoogleProviderWithClient wraps an existing client.
func NewGoogleProviderWithClient(client google.Client, maxResults int, m *metrics.Metrics) *GoogleProvider {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &GoogleProvider{
		client:     client,
		maxResults: maxResults,
		retry:      resilience.RetryConfig{MaxAttempts: 1},
		metrics:    m,
	}
}

func (p *GoogleProvider) Name() string { return "google" }

// Configured reports whether both credentials were supplied.
func (p *GoogleProvider) Configured() bool { return p.client != nil }

// Search returns the top hits for query.
func (p *GoogleProvider) Search(ctx context.Context, query string) ([]model.SearchHit, error) {
	if p.client == nil {
		zap.L().Warn("search: google credentials not configured, returning no results",
			zap.String("query", query),
		)
		return nil, nil
	}

	resp, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*google.SearchResponse, error) {
		return p.client.Search(ctx, query, p.maxResults)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "search: google query %q", query)
	}

	hits := make([]model.SearchHit, 0, len(resp.Items))
	for _, item := range resp.Items {
		if len(hits) == p.maxResults {
			break
		}
		hits = append(hits, hitFromItem(item))
	}
	p.metrics.AddSearchHits(p.Name(), len(hits))
	return hits, nil
}

func hitFromItem(item google.Item) model.SearchHit {
	pm := item.PageMap
	return model.SearchHit{
		Title:   item.Title,
		URL:     item.Link,
		Snippet: item.Snippet,
		Source:  "google",
		Metadata: model.Metadata{
			Description:       pm.MetaTag("og:description"),
			Type:              pm.MetaTag("og:type"),
			SiteName:          pm.MetaTag("og:site_name"),
			PublishedTime:     pm.MetaTag("article:published_time"),
			ModifiedTime:      pm.MetaTag("article:modified_time"),
			Author:            pm.MetaTag("article:author"),
			Section:           pm.MetaTag("article:section"),
			OrganizationName:  pm.OrganizationField("name"),
			OrganizationURL:   pm.OrganizationField("url"),
			PersonName:        pm.PersonField("name"),
			PersonJobTitle:    pm.PersonField("jobtitle"),
			PersonAffiliation: pm.PersonField("affiliation"),
		},
	}
}

func isRetryableGoogleError(err error) bool {
	var apiErr *google.APIError
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
