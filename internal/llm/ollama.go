package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/sells-group/prospect-research/pkg/anthropic"
)

// OllamaCompleter implements Completer with a local Ollama server through
// langchaingo.
type OllamaCompleter struct {
	model string
	llm   llms.Model
}

// NewOllamaCompleter connects to the Ollama server at serverURL.
func NewOllamaCompleter(model, serverURL string) (*OllamaCompleter, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	m, err := ollama.New(opts...)
	if err != nil {
		return nil, eris.Wrap(err, "llm: create ollama client")
	}
	return &OllamaCompleter{model: model, llm: m}, nil
}

// NewModelCompleter wraps any langchaingo model.
func NewModelCompleter(model string, m llms.Model) *OllamaCompleter {
	return &OllamaCompleter{model: model, llm: m}
}

func (c *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.llm.GenerateContent(ctx, content, llms.WithTemperature(0))
	if err != nil {
		return "", eris.Wrap(err, "llm: ollama completion")
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", eris.New("llm: ollama returned no choices")
	}

	choice := resp.Choices[0]
	UsageFrom(ctx).Add(c.model, anthropic.TokenUsage{
		InputTokens:  intInfo(choice.GenerationInfo, "PromptTokens"),
		OutputTokens: intInfo(choice.GenerationInfo, "CompletionTokens"),
	})

	text := strings.TrimSpace(choice.Content)
	if text == "" {
		return "", eris.New("llm: empty completion")
	}
	return text, nil
}

func intInfo(info map[string]any, key string) int64 {
	switch v := info[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
