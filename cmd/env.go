package main

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/config"
	"github.com/sells-group/prospect-research/internal/fetcher"
	"github.com/sells-group/prospect-research/internal/llm"
	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/pipeline"
	"github.com/sells-group/prospect-research/internal/resilience"
	"github.com/sells-group/prospect-research/internal/search"
	anthropicpkg "github.com/sells-group/prospect-research/pkg/anthropic"
	"github.com/sells-group/prospect-research/pkg/google"
)

// researchEnv holds the clients and pipeline needed by the research and
// serve commands.
type researchEnv struct {
	Pipeline *pipeline.Pipeline
	Metrics  *metrics.Metrics
}

// fetchOptions maps fetch config onto fetcher options.
func fetchOptions(c *config.Config, m *metrics.Metrics) fetcher.HTTPOptions {
	return fetcher.HTTPOptions{
		UserAgent:             c.Fetch.UserAgent,
		Timeout:               c.Fetch.Timeout(),
		Retry:                 c.Fetch.Retry(),
		MaxBodyBytes:          c.Fetch.MaxBodyBytes,
		RatePerHost:           c.Fetch.RatePerHost,
		AllowInsecureFallback: c.Fetch.AllowInsecureFallback,
		Metrics:               m,
	}
}

// initCompleter builds the configured LLM backend.
func initCompleter(c *config.Config) (llm.Completer, error) {
	switch c.LLM.Provider {
	case "ollama":
		oc, err := llm.NewOllamaCompleter(c.Ollama.Model, c.Ollama.ServerURL)
		if err != nil {
			return nil, eris.Wrap(err, "init ollama")
		}
		zap.L().Info("llm backend: ollama", zap.String("model", c.Ollama.Model))
		return oc, nil
	default:
		if c.Anthropic.Key == "" {
			zap.L().Warn("anthropic.key not set, model calls will fail and lookups will return placeholders")
		}
		client := anthropicpkg.NewClient(c.Anthropic.Key)
		zap.L().Info("llm backend: anthropic", zap.String("model", c.Anthropic.Model))
		return llm.NewAnthropicCompleter(client, c.Anthropic.Model, c.Anthropic.MaxTokens), nil
	}
}

// initProvider builds the configured search provider. DuckDuckGo fetches
// through each lookup's own session.
func initProvider(c *config.Config, m *metrics.Metrics) search.Provider {
	if c.Search.Provider == "duckduckgo" {
		return search.NewDuckDuckGoProvider(c.Search.BaseURL, c.Search.MaxResults, m)
	}

	var opts []google.Option
	if c.Search.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(c.Search.BaseURL))
	}
	if c.Search.TimeoutSecs > 0 {
		opts = append(opts, google.WithHTTPClient(&http.Client{
			Timeout: time.Duration(c.Search.TimeoutSecs) * time.Second,
		}))
	}
	p := search.NewGoogleProvider(search.GoogleOptions{
		APIKey:        c.Search.APIKey,
		EngineID:      c.Search.EngineID,
		MaxResults:    c.Search.MaxResults,
		Retry:         resilience.FromRetryConfig(2, 1000, 0, 2),
		Metrics:       m,
		ClientOptions: opts,
	})
	if !p.Configured() {
		zap.L().Warn("google search credentials not set, searches will return no results",
			zap.String("hint", "set GOOGLE_API_KEY and GOOGLE_SEARCH_ENGINE_ID"))
	}
	return p
}

// initResearch validates config for mode and wires the pipeline.
func initResearch(mode string) (*researchEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	m := metrics.New()
	completer, err := initCompleter(cfg)
	if err != nil {
		return nil, err
	}
	provider := initProvider(cfg, m)

	p := pipeline.New(completer, provider, pipeline.HTTPSessions(fetchOptions(cfg, m)), pipeline.Options{
		MaxKeywords: cfg.Pipeline.MaxKeywords,
		MaxChars:    cfg.Clean.MaxChars,
	}, m)

	return &researchEnv{Pipeline: p, Metrics: m}, nil
}
