package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/prospect-research/internal/model"
)

// heuristicLabels maps the labels searched for in free-form output to the
// company field each one fills, in lookup order.
var heuristicLabels = []struct {
	label string
	set   func(c *model.Company, v string)
}{
	{"description", func(c *model.Company, v string) { c.Description = &v }},
	{"industry", func(c *model.Company, v string) { c.Industry = &v }},
	{"location", func(c *model.Company, v string) { c.Headquarters = &v }},
	{"founding", func(c *model.Company, v string) { c.Founded = &v }},
	{"size", func(c *model.Company, v string) { c.Size = &v }},
	{"ceo", func(c *model.Company, v string) { c.CEO = &v }},
	{"website", func(c *model.Company, v string) { c.Website = &v }},
}

var labelPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(heuristicLabels))
	for i, l := range heuristicLabels {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(l.label))
	}
	return out
}()

// HeuristicCompany recovers company fields from non-JSON model output. For
// each label the first case-insensitive occurrence is located; the rest of
// that line after its first colon becomes the value. Labels without a colon
// on their line, or with an empty value, are skipped.
func HeuristicCompany(raw string) *model.Company {
	c := &model.Company{Source: model.ExtractionHeuristic}
	for i, l := range heuristicLabels {
		loc := labelPatterns[i].FindStringIndex(raw)
		if loc == nil {
			continue
		}
		line := raw[loc[0]:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.Trim(value, " \t\r\"',")
		if value == "" {
			continue
		}
		l.set(c, value)
	}
	return c
}
