package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/prospect-research/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Ollama    OllamaConfig    `yaml:"ollama" mapstructure:"ollama"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Clean     CleanConfig     `yaml:"clean" mapstructure:"clean"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SearchConfig selects and configures the search provider.
type SearchConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"`
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	EngineID    string `yaml:"engine_id" mapstructure:"engine_id"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	MaxResults  int    `yaml:"max_results" mapstructure:"max_results"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LLMConfig selects the completion backend.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OllamaConfig holds local Ollama settings.
type OllamaConfig struct {
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	Model     string `yaml:"model" mapstructure:"model"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	TimeoutSecs           int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts           int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelayMs           int     `yaml:"base_delay_ms" mapstructure:"base_delay_ms"`
	Multiplier            float64 `yaml:"multiplier" mapstructure:"multiplier"`
	MaxBodyBytes          int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RatePerHost           float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	AllowInsecureFallback bool    `yaml:"allow_insecure_fallback" mapstructure:"allow_insecure_fallback"`
	UserAgent             string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns the per-attempt timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// Retry returns the retry policy for fetches.
func (f FetchConfig) Retry() resilience.RetryConfig {
	return resilience.FromRetryConfig(f.MaxAttempts, f.BaseDelayMs, 0, f.Multiplier)
}

// CleanConfig configures page text cleaning.
type CleanConfig struct {
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
}

// PipelineConfig configures lookups.
type PipelineConfig struct {
	MaxKeywords int `yaml:"max_keywords" mapstructure:"max_keywords"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LoadEnvFiles loads .env.local and then .env into the process environment.
// Variables already set are never overridden, so .env.local wins over .env.
// Missing files are ignored.
func LoadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "config: load %s", name)
		}
	}
	return nil
}

// Load reads configuration from .env files, config.yaml and environment.
func Load() (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing .env files.
	_ = v.BindEnv("search.api_key", "RESEARCH_SEARCH_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("search.engine_id", "RESEARCH_SEARCH_ENGINE_ID", "GOOGLE_SEARCH_ENGINE_ID")
	_ = v.BindEnv("anthropic.key", "RESEARCH_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")

	// Defaults
	v.SetDefault("search.provider", "google")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("ollama.server_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.1")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.base_delay_ms", 2000)
	v.SetDefault("fetch.multiplier", 2.0)
	v.SetDefault("fetch.max_body_bytes", 5<<20)
	v.SetDefault("fetch.rate_per_host", 0.0)
	v.SetDefault("fetch.allow_insecure_fallback", true)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("clean.max_chars", 4000)
	v.SetDefault("pipeline.max_keywords", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a run mode depends on. Mode is "research"
// (one-shot CLI lookups) or "serve". Missing credentials are not errors; the
// components that need them degrade instead.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "research":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Search.Provider {
	case "google", "duckduckgo":
	default:
		errs = append(errs, fmt.Sprintf("search.provider %q must be google or duckduckgo", c.Search.Provider))
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 10 {
		errs = append(errs, "search.max_results must be between 1 and 10")
	}
	switch c.LLM.Provider {
	case "anthropic", "ollama":
	default:
		errs = append(errs, fmt.Sprintf("llm.provider %q must be anthropic or ollama", c.LLM.Provider))
	}
	if c.Fetch.MaxAttempts < 1 {
		errs = append(errs, "fetch.max_attempts must be >= 1")
	}
	if c.Clean.MaxChars < 1 {
		errs = append(errs, "clean.max_chars must be >= 1")
	}
	if c.Pipeline.MaxKeywords < 1 {
		errs = append(errs, "pipeline.max_keywords must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.Search.APIKey = mask(c.Search.APIKey)
	c.Anthropic.Key = mask(c.Anthropic.Key)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
