package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// DefaultMaxKeywords caps the search phrases generated per lookup.
const DefaultMaxKeywords = 5

const keywordPrompt = `Given the following research query and context, generate 3-5 specific search keywords or phrases
that would help find accurate information. Focus on unique identifiers and specific terms.

Query: %s
Context: %s

Respond with only the keywords, one per line, no numbering or additional text.`

// listMarker matches bullets and numbering models add despite being told not to.
var listMarker = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)

// GenerateKeywords asks the model for search phrases about query. Lines are
// trimmed, list markers and quotes stripped, case-insensitive duplicates
// removed and the list capped. On model failure or empty output the query
// itself is the only keyword.
func (p *Pipeline) GenerateKeywords(ctx context.Context, query, focus string) []string {
	fallback := []string{query}

	raw, err := p.llm.Complete(ctx, fmt.Sprintf(keywordPrompt, query, focus))
	if err != nil {
		zap.L().Warn("pipeline: keyword generation failed, searching the name only",
			zap.String("entity", query), zap.Error(err))
		return fallback
	}

	keywords := ParseKeywords(raw, p.opts.MaxKeywords)
	if len(keywords) == 0 {
		zap.L().Warn("pipeline: model returned no keywords, searching the name only",
			zap.String("entity", query))
		return fallback
	}
	return keywords
}

// ParseKeywords splits a one-per-line keyword response. limit <= 0 means no cap.
func ParseKeywords(raw string, limit int) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{})
	var out []string

	for _, line := range strings.Split(raw, "\n") {
		k := strings.TrimSpace(line)
		if strings.HasPrefix(k, "```") {
			continue
		}
		k = listMarker.ReplaceAllString(k, "")
		k = strings.TrimSpace(strings.Trim(k, "\"'`"))
		if k == "" {
			continue
		}
		key := fold.String(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
