package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/llm"
)

// ResearchType is the kind of research a free-text request asks for.
type ResearchType string

const (
	ResearchCompany  ResearchType = "company"
	ResearchProspect ResearchType = "prospect"
	ResearchBoth     ResearchType = "both"
	ResearchUnknown  ResearchType = "unknown"
)

// Request names the entities to research.
type Request struct {
	CompanyName  string       `json:"company_name,omitempty"`
	ProspectName string       `json:"prospect_name,omitempty"`
	Type         ResearchType `json:"research_type,omitempty"`
}

const requestPrompt = `Analyze the following text and extract:
1. Company name (if mentioned)
2. Prospect name (if mentioned)
3. Type of research needed (company research, prospect research, or both)

Text: %s

You must respond with ONLY a JSON object in the following format, with no additional text or explanation:
{
    "company_name": "extracted company name or null",
    "prospect_name": "extracted prospect name or null",
    "research_type": "company", "prospect", or "both"
}`

// ParseRequest asks the model which company and person text refers to.
// Unparseable output falls back to a keyword scan; any other failure yields
// a request of type unknown.
func (p *Pipeline) ParseRequest(ctx context.Context, text string) Request {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{Type: ResearchUnknown}
	}

	raw, err := p.llm.Complete(ctx, fmt.Sprintf(requestPrompt, text))
	if err != nil {
		zap.L().Warn("pipeline: request parsing failed", zap.Error(err))
		return Request{Type: ResearchUnknown}
	}

	req, err := decodeRequest(raw)
	if err != nil {
		zap.L().Warn("pipeline: request response is not JSON, scanning for names", zap.Error(err))
		zap.L().Debug("pipeline: raw model output", zap.String("raw", raw))
		req = scanRequest(raw)
	}
	return req
}

func decodeRequest(raw string) (Request, error) {
	var w struct {
		CompanyName  *string `json:"company_name"`
		ProspectName *string `json:"prospect_name"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &w); err != nil {
		return Request{}, err
	}
	req := Request{
		CompanyName:  nullableName(w.CompanyName),
		ProspectName: nullableName(w.ProspectName),
	}
	req.Type = inferType(req)
	return req, nil
}

// nullableName treats the literal words models emit for "nothing" as empty.
func nullableName(s *string) string {
	if s == nil {
		return ""
	}
	v := strings.TrimSpace(*s)
	switch strings.ToLower(v) {
	case "null", "none", "n/a", "unknown":
		return ""
	}
	return v
}

var (
	companyWord  = regexp.MustCompile(`(?i)company(?:_name)?["']?\s*[:=]?\s*["']?([^\s"',{}]+)`)
	prospectWord = regexp.MustCompile(`(?i)prospect(?:_name)?["']?\s*[:=]?\s*["']?([^\s"',{}]+)`)
)

// scanRequest takes the word following "company" and "prospect" in raw.
func scanRequest(raw string) Request {
	req := Request{
		CompanyName:  wordAfter(raw, companyWord),
		ProspectName: wordAfter(raw, prospectWord),
	}
	req.Type = inferType(req)
	return req
}

func wordAfter(raw string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(raw)
	if m == nil || strings.EqualFold(m[1], "null") {
		return ""
	}
	return m[1]
}

// inferType derives the research type from which names are present. The
// model's own research_type is ignored since the names decide what can run.
func inferType(r Request) ResearchType {
	switch {
	case r.CompanyName != "" && r.ProspectName != "":
		return ResearchBoth
	case r.CompanyName != "":
		return ResearchCompany
	case r.ProspectName != "":
		return ResearchProspect
	default:
		return ResearchUnknown
	}
}
