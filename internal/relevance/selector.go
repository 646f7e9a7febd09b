// Package relevance asks the model which candidate URLs are worth fetching
// for an entity. Any model or parse failure keeps every candidate.
package relevance

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/llm"
	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/model"
)

// verdictSchema is the minimum shape a selection response must have.
const verdictSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["url", "is_relevant"],
    "properties": {
      "url": {"type": "string"},
      "is_relevant": {"type": ["boolean", "string"]},
      "key_factors": {"type": ["array", "string", "null"]}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(verdictSchema)

// Selector filters search hits with the model.
type Selector struct {
	llm     llm.Completer
	metrics *metrics.Metrics
}

// NewSelector creates a Selector.
func NewSelector(c llm.Completer, m *metrics.Metrics) *Selector {
	return &Selector{llm: c, metrics: m}
}

// Select annotates each candidate with the model's verdict and returns the
// relevant ones in candidate order. Verdicts for unknown URLs are ignored and
// candidates without a verdict are dropped. If the model call fails or its
// output cannot be parsed, the candidates are returned unfiltered.
func (s *Selector) Select(ctx context.Context, candidates []model.SearchHit, targetName string, targetType model.TargetType, companyHint string) []model.SearchHit {
	if len(candidates) == 0 {
		return candidates
	}
	log := zap.L().With(zap.String("entity", targetName), zap.String("target_type", string(targetType)))

	raw, err := s.llm.Complete(ctx, BuildPrompt(candidates, targetName, targetType, companyHint))
	if err != nil {
		log.Warn("relevance: model call failed, keeping all candidates", zap.Error(err))
		s.metrics.IncSelectorFailOpen()
		return candidates
	}

	verdicts, err := ParseVerdicts(raw)
	if err != nil {
		log.Warn("relevance: could not parse verdicts, keeping all candidates", zap.Error(err))
		log.Debug("relevance: raw model output", zap.String("raw", raw))
		s.metrics.IncSelectorFailOpen()
		return candidates
	}

	byURL := make(map[string]model.RelevanceVerdict, len(verdicts))
	for _, v := range verdicts {
		if _, seen := byURL[v.URL]; !seen {
			byURL[v.URL] = v
		}
	}

	var selected []model.SearchHit
	for _, c := range candidates {
		v, ok := byURL[c.URL]
		if !ok || !v.IsRelevant {
			continue
		}
		c.Relevance = &v
		selected = append(selected, c)
		log.Info("relevance: selected url",
			zap.String("url", c.URL),
			zap.Int("score", v.RelevanceScore),
			zap.String("content_type", v.ContentType),
			zap.Strings("key_factors", v.KeyFactors),
			zap.String("reason", v.Reason),
		)
	}

	log.Info("relevance: selection complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)),
	)
	return selected
}

// ParseVerdicts decodes a selection response. Code fences and surrounding
// prose are tolerated; scores and booleans may arrive as strings.
func ParseVerdicts(raw string) ([]model.RelevanceVerdict, error) {
	cleaned := llm.CleanJSON(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, eris.Wrap(err, "relevance: decode response")
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, eris.Wrap(err, "relevance: validate response")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, eris.Errorf("relevance: response does not match verdict schema: %s", strings.Join(msgs, "; "))
	}

	var wire []wireVerdict
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, eris.Wrap(err, "relevance: decode verdicts")
	}

	out := make([]model.RelevanceVerdict, 0, len(wire))
	for _, w := range wire {
		out = append(out, model.RelevanceVerdict{
			URL:            w.URL,
			IsRelevant:     bool(w.IsRelevant),
			RelevanceScore: int(w.RelevanceScore),
			Reason:         w.Reason,
			ContentType:    w.ContentType,
			KeyFactors:     []string(w.KeyFactors),
		})
	}
	return out, nil
}

type wireVerdict struct {
	URL            string      `json:"url"`
	IsRelevant     looseBool   `json:"is_relevant"`
	RelevanceScore looseInt    `json:"relevance_score"`
	Reason         string      `json:"reason"`
	ContentType    string      `json:"content_type"`
	KeyFactors     looseString `json:"key_factors"`
}

// looseBool accepts true/false or their string forms.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = looseBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return eris.Errorf("relevance: is_relevant is neither bool nor string: %s", data)
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return eris.Errorf("relevance: is_relevant %q is not a boolean", s)
	}
	*b = looseBool(parsed)
	return nil
}

// looseInt accepts a number, a numeric string, or a string like "8/10".
// Anything else decodes as 0.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseInt(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*n = 0
		return nil
	}
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "/ "); i > 0 {
		s = s[:i]
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*n = looseInt(v)
	}
	return nil
}

// looseString accepts a list of strings or a single string.
type looseString []string

func (l *looseString) UnmarshalJSON(data []byte) error {
	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			if item != nil {
				b, _ := json.Marshal(item)
				out = append(out, string(b))
			}
		}
		*l = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		*l = []string{s}
	}
	return nil
}
