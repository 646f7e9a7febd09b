// Package pipeline runs entity lookups: keyword generation, search,
// relevance selection, page fetching and extraction, strictly one call at a
// time. A lookup always yields a record; only a missing name is an error.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/extract"
	"github.com/sells-group/prospect-research/internal/fetcher"
	"github.com/sells-group/prospect-research/internal/llm"
	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/model"
	"github.com/sells-group/prospect-research/internal/relevance"
	"github.com/sells-group/prospect-research/internal/scrape"
	"github.com/sells-group/prospect-research/internal/search"
)

// ErrNameRequired is returned when a lookup is requested without a name.
var ErrNameRequired = eris.New("pipeline: entity name is required")

// Lookup outcomes recorded in metrics.
const (
	OutcomeComplete    = "complete"
	OutcomePlaceholder = "placeholder"
	OutcomeFailed      = "failed"
)

// Session is the fetch resource a single lookup owns.
type Session interface {
	fetcher.Fetcher
	Close()
}

// SessionFactory opens a fresh Session for each lookup.
type SessionFactory func() Session

// HTTPSessions returns a factory of HTTP fetchers built from opts.
func HTTPSessions(opts fetcher.HTTPOptions) SessionFactory {
	return func() Session { return fetcher.NewHTTPFetcher(opts) }
}

// Options tunes a Pipeline.
type Options struct {
	MaxKeywords int // cap on generated search keywords; defaults to 5
	MaxChars    int // per-page text cap; defaults to scrape.DefaultMaxChars
}

// Researcher is the lookup surface used by the CLI and the HTTP API.
type Researcher interface {
	Company(ctx context.Context, name string) (*model.Company, error)
	Prospect(ctx context.Context, name, companyHint string) (*model.Prospect, error)
	Research(ctx context.Context, req Request) (*Synthesis, error)
	ParseRequest(ctx context.Context, text string) Request
}

// Pipeline implements Researcher.
type Pipeline struct {
	llm       llm.Completer
	search    search.Provider
	selector  *relevance.Selector
	extractor *extract.Engine
	sessions  SessionFactory
	opts      Options
	metrics   *metrics.Metrics
}

var _ Researcher = (*Pipeline)(nil)

// New creates a Pipeline. c serves every model call site; m may be nil.
func New(c llm.Completer, provider search.Provider, sessions SessionFactory, opts Options, m *metrics.Metrics) *Pipeline {
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = DefaultMaxKeywords
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = scrape.DefaultMaxChars
	}
	return &Pipeline{
		llm:       c,
		search:    provider,
		selector:  relevance.NewSelector(c, m),
		extractor: extract.NewEngine(c, m),
		sessions:  sessions,
		opts:      opts,
		metrics:   m,
	}
}

// target describes one entity lookup.
type target struct {
	typ         model.TargetType
	name        string
	companyHint string
	context     string
	querySuffix string
}

// lookupLogger returns the child logger for one lookup.
func lookupLogger(t target) *zap.Logger {
	return zap.L().With(
		zap.String("request_id", uuid.NewString()),
		zap.String("entity", t.name),
		zap.String("target_type", string(t.typ)),
	)
}

// phaseTimer logs a phase's duration when the returned func is called.
func phaseTimer(log *zap.Logger, name string) func(fields ...zap.Field) {
	start := time.Now()
	return func(fields ...zap.Field) {
		fields = append([]zap.Field{
			zap.String("phase", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}, fields...)
		log.Info("pipeline: phase complete", fields...)
	}
}

// gather runs discovery for t and returns the combined page text. An empty
// corpus means nothing usable was found and extraction must be skipped.
func (p *Pipeline) gather(ctx context.Context, log *zap.Logger, session fetcher.Fetcher, t target) string {
	hooks := hooksFrom(ctx)
	ctx = fetcher.WithSession(ctx, session)

	done := phaseTimer(log, "keywords")
	keywords := p.GenerateKeywords(ctx, t.name, t.context)
	done(zap.Strings("keywords", keywords))
	hooks.keywords(keywords)

	queries := make([]string, 0, len(keywords))
	for _, k := range keywords {
		queries = append(queries, k+t.querySuffix)
	}

	done = phaseTimer(log, "search")
	pool := search.Collect(ctx, p.search, queries)
	done(zap.String("provider", p.search.Name()), zap.Int("candidates", len(pool)))
	if len(pool) == 0 {
		log.Info("pipeline: no candidate urls found")
		return ""
	}

	done = phaseTimer(log, "select")
	selected := p.selector.Select(ctx, pool, t.name, t.typ, t.companyHint)
	done(zap.Int("selected", len(selected)))
	hooks.selected(selected)
	if len(selected) == 0 {
		return ""
	}

	done = phaseTimer(log, "fetch")
	scraper := scrape.NewPageScraper(session, p.opts.MaxChars, p.metrics)
	var pages []string
	for i, hit := range selected {
		if ctx.Err() != nil {
			break
		}
		text, err := scraper.Scrape(ctx, hit.URL)
		hooks.fetched(i+1, len(selected), hit.URL, err)
		if err != nil {
			log.Info("pipeline: no content from url", zap.String("url", hit.URL), zap.Error(err))
			continue
		}
		pages = append(pages, text)
		log.Debug("pipeline: added content", zap.String("url", hit.URL), zap.Int("chars", len(text)))
	}
	corpus := strings.Join(pages, "\n\n")
	done(zap.Int("pages", len(pages)), zap.Int("corpus_chars", len(corpus)))
	return corpus
}

// finish records the lookup outcome and logs token spend.
func (p *Pipeline) finish(log *zap.Logger, t target, usage *llm.Usage, outcome string) {
	usage.LogCost(string(t.typ))
	p.metrics.ObserveLookup(string(t.typ), outcome)
	log.Info("pipeline: lookup finished",
		zap.String("outcome", outcome),
		zap.Int("llm_calls", usage.Calls()),
	)
}
