package llm

import (
	"context"
	"sync"

	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/pkg/anthropic"
)

// Usage tallies token consumption across the model calls of one lookup.
// A nil *Usage ignores everything.
type Usage struct {
	mu      sync.Mutex
	calls   int
	model   string
	tokens  anthropic.TokenUsage
	metrics *metrics.Metrics
}

// NewUsage creates a tally that also feeds m (which may be nil).
func NewUsage(m *metrics.Metrics) *Usage {
	return &Usage{metrics: m}
}

// Add records one call's usage.
func (u *Usage) Add(model string, t anthropic.TokenUsage) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.calls++
	u.model = model
	u.tokens = u.tokens.Add(t)
	u.mu.Unlock()
	u.metrics.AddTokens(t.InputTokens, t.OutputTokens)
}

// Calls returns the number of recorded calls.
func (u *Usage) Calls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// Tokens returns the accumulated usage.
func (u *Usage) Tokens() anthropic.TokenUsage {
	if u == nil {
		return anthropic.TokenUsage{}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tokens
}

// LogCost logs the accumulated usage with its estimated cost.
func (u *Usage) LogCost(phase string) {
	if u == nil || u.Calls() == 0 {
		return
	}
	u.mu.Lock()
	model, tokens := u.model, u.tokens
	u.mu.Unlock()
	tokens.LogCost(model, phase)
}

type usageKey struct{}

// WithUsage attaches u to ctx so completers record into it.
func WithUsage(ctx context.Context, u *Usage) context.Context {
	return context.WithValue(ctx, usageKey{}, u)
}

// UsageFrom returns the Usage attached to ctx, or nil.
func UsageFrom(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}
