package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-research/internal/config"
	"github.com/sells-group/prospect-research/internal/llm"
	"github.com/sells-group/prospect-research/internal/search"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.Search.Provider = "google"
	c.Search.MaxResults = 5
	c.LLM.Provider = "anthropic"
	c.Anthropic.Model = "claude-sonnet-4-5-20250929"
	c.Fetch.TimeoutSecs = 30
	c.Fetch.MaxAttempts = 3
	c.Fetch.BaseDelayMs = 2000
	c.Fetch.Multiplier = 2
	c.Fetch.AllowInsecureFallback = true
	c.Clean.MaxChars = 4000
	c.Pipeline.MaxKeywords = 5
	c.Server.Port = 8080
	return c
}

func TestInitProvider_GoogleWithoutCredentials(t *testing.T) {
	p := initProvider(testConfig(), nil)
	g, ok := p.(*search.GoogleProvider)
	require.True(t, ok)
	assert.False(t, g.Configured())
}

func TestInitProvider_Google(t *testing.T) {
	c := testConfig()
	c.Search.APIKey = "key"
	c.Search.EngineID = "cx"

	p := initProvider(c, nil)
	assert.True(t, p.(*search.GoogleProvider).Configured())
}

func TestInitProvider_DuckDuckGo(t *testing.T) {
	c := testConfig()
	c.Search.Provider = "duckduckgo"

	p := initProvider(c, nil)
	assert.IsType(t, &search.DuckDuckGoProvider{}, p)
	assert.Equal(t, "duckduckgo", p.Name())
}

func TestInitCompleter(t *testing.T) {
	c := testConfig()
	comp, err := initCompleter(c)
	require.NoError(t, err)
	assert.IsType(t, &llm.AnthropicCompleter{}, comp)

	c.LLM.Provider = "ollama"
	c.Ollama.Model = "llama3.1"
	c.Ollama.ServerURL = "http://localhost:11434"
	comp, err = initCompleter(c)
	require.NoError(t, err)
	assert.IsType(t, &llm.OllamaCompleter{}, comp)
}

func TestFetchOptions(t *testing.T) {
	opts := fetchOptions(testConfig(), nil)
	assert.Equal(t, 3, opts.Retry.MaxAttempts)
	assert.Equal(t, "30s", opts.Timeout.String())
	assert.True(t, opts.AllowInsecureFallback)
}

func TestInitResearch_InvalidMode(t *testing.T) {
	cfg = testConfig()
	t.Cleanup(func() { cfg = nil })

	_, err := initResearch("bogus")
	assert.Error(t, err)

	env, err := initResearch("research")
	require.NoError(t, err)
	assert.NotNil(t, env.Pipeline)
	assert.NotNil(t, env.Metrics)
}
