package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-research/pkg/anthropic"
)

const defaultMaxTokens = 2048

// systemPrompt frames every call site; the per-call instructions live in the
// user prompt.
const systemPrompt = "You are a precise business research assistant. Follow the output format requested in each message exactly and never invent facts that are not supported by the provided material."

// AnthropicCompleter implements Completer with the Anthropic Messages API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter creates an AnthropicCompleter. Empty model and
// non-positive maxTokens use defaults.
func NewAnthropicCompleter(client anthropic.Client, model string, maxTokens int64) *AnthropicCompleter {
	if model == "" {
		model = anthropic.DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicCompleter{client: client, model: model, maxTokens: maxTokens}
}

// Complete sends prompt as a single user message. Token usage is recorded in
// the Usage attached to ctx, if any.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	temp := 0.0
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.SystemBlock{
			{Text: systemPrompt, CacheControl: &anthropic.CacheControl{TTL: "5m"}},
		},
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic completion")
	}

	UsageFrom(ctx).Add(c.model, resp.Usage)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.Errorf("llm: empty completion (stop reason %q)", resp.StopReason)
	}
	return text, nil
}
