package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-research/internal/model"
)

// ErrNothingToSynthesize is returned when neither record is present.
var ErrNothingToSynthesize = eris.New("pipeline: at least one of company or prospect is required")

// Synthesis combines the records of one research request with plain-text
// summaries built only from fields that are set.
type Synthesis struct {
	Company         *model.Company  `json:"company,omitempty"`
	Prospect        *model.Prospect `json:"prospect,omitempty"`
	CompanySummary  string          `json:"company_summary,omitempty"`
	ProspectSummary string          `json:"prospect_summary,omitempty"`
	Insights        []string        `json:"insights"`
}

// Synthesize summarizes company and prospect. Either may be nil, not both.
func Synthesize(company *model.Company, prospect *model.Prospect) (*Synthesis, error) {
	if company == nil && prospect == nil {
		return nil, ErrNothingToSynthesize
	}
	s := &Synthesis{
		Company:  company,
		Prospect: prospect,
		Insights: insights(company, prospect),
	}
	if company != nil {
		s.CompanySummary = CompanySummary(company)
	}
	if prospect != nil {
		s.ProspectSummary = ProspectSummary(prospect)
	}
	return s, nil
}

// CompanySummary renders c as a short multi-line description.
func CompanySummary(c *model.Company) string {
	if c.IsPlaceholder() {
		return "No company data available for " + c.Name + "."
	}

	var b strings.Builder
	b.WriteString(c.Name)
	if c.Industry != nil {
		b.WriteString(" is in the " + *c.Industry + " industry")
	}
	if c.Headquarters != nil {
		b.WriteString(", headquartered in " + *c.Headquarters)
	}
	if c.Size != nil {
		b.WriteString(", with a size of " + *c.Size)
	}
	b.WriteString(".")
	if c.CEO != nil {
		b.WriteString(" CEO: " + *c.CEO + ".")
	}
	if c.Description != nil {
		b.WriteString("\n" + *c.Description)
	}

	es := c.ExecutiveSummary
	if es.IsEmpty() {
		return b.String()
	}
	line(&b, "Overview", es.Overview)
	line(&b, "Market Position", es.MarketPosition)
	inline(&b, "Key Products/Services", es.KeyProductsServices)
	bullets(&b, "Recent Developments", es.RecentDevelopments)
	if si := es.SalesInsights; !si.IsEmpty() {
		bullets(&b, "Potential Pain Points", si.PainPoints)
		bullets(&b, "Sales Opportunities", si.Opportunities)
		bullets(&b, "Key Decision Makers", si.DecisionMakers)
		line(&b, "Budget Indicators", si.BudgetIndicators)
		inline(&b, "Technology Stack", si.TechnologyStack)
		line(&b, "Growth Indicators", si.GrowthIndicators)
		line(&b, "Recommended Sales Approach", si.RecommendedApproach)
	}
	return b.String()
}

// ProspectSummary renders p as one sentence.
func ProspectSummary(p *model.Prospect) string {
	if p.Title == nil && p.Company == nil && p.Location == nil {
		return "No prospect data available for " + p.Name + "."
	}
	parts := []string{p.Name, "is"}
	if p.Title != nil {
		parts = append(parts, "a", *p.Title)
	}
	if p.Company != nil {
		parts = append(parts, "at", *p.Company)
	}
	if p.Location != nil {
		parts = append(parts, "in", *p.Location)
	}
	return strings.Join(parts, " ") + "."
}

func insights(c *model.Company, p *model.Prospect) []string {
	out := []string{}
	if c != nil && c.Industry != nil && c.Size != nil {
		out = append(out, c.Name+" is a "+*c.Size+" organization in "+*c.Industry+".")
	}
	if p != nil && p.Title != nil && p.Company != nil {
		out = append(out, p.Name+" holds the "+*p.Title+" role at "+*p.Company+".")
	}
	if c != nil && p != nil && c.CEO != nil && strings.EqualFold(strings.TrimSpace(*c.CEO), p.Name) {
		out = append(out, p.Name+" is the CEO of "+c.Name+" and the final decision maker.")
	}
	if c != nil && c.ExecutiveSummary != nil && c.ExecutiveSummary.SalesInsights != nil {
		if a := c.ExecutiveSummary.SalesInsights.RecommendedApproach; a != nil {
			out = append(out, "Recommended approach: "+*a)
		}
	}
	return out
}

func line(b *strings.Builder, label string, v *string) {
	if v != nil {
		b.WriteString("\n" + label + ": " + *v)
	}
}

func inline(b *strings.Builder, label string, v []string) {
	if len(v) > 0 {
		b.WriteString("\n" + label + ": " + strings.Join(v, ", "))
	}
}

func bullets(b *strings.Builder, label string, v []string) {
	if len(v) > 0 {
		b.WriteString("\n" + label + ":\n- " + strings.Join(v, "\n- "))
	}
}
