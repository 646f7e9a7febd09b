package model

// TargetType names the kind of entity a lookup researches.
type TargetType string

const (
	TargetCompany  TargetType = "company"
	TargetProspect TargetType = "prospect"
)

// ExtractionSource records which parse path populated a record.
type ExtractionSource string

const (
	ExtractionNone      ExtractionSource = ""
	ExtractionJSON      ExtractionSource = "json"
	ExtractionHeuristic ExtractionSource = "heuristic"
)

// Company is the research record for a company lookup. Every field except
// Name is optional; nil means the field was never found.
type Company struct {
	Name             string            `json:"name"`
	Description      *string           `json:"description"`
	Industry         *string           `json:"industry"`
	Headquarters     *string           `json:"headquarters"`
	Founded          *string           `json:"founded"`
	Size             *string           `json:"size"`
	CEO              *string           `json:"ceo"`
	Website          *string           `json:"website"`
	ExecutiveSummary *ExecutiveSummary `json:"executive_summary"`

	// Source is set by the extraction engine for debugging; it is not an
	// entity attribute.
	Source ExtractionSource `json:"extraction_source,omitempty"`
}

// NewCompany returns the placeholder record for a company lookup.
func NewCompany(name string) *Company {
	return &Company{Name: name}
}

// IsPlaceholder reports whether no field beyond the name has been set.
func (c *Company) IsPlaceholder() bool {
	return c.Description == nil && c.Industry == nil && c.Headquarters == nil &&
		c.Founded == nil && c.Size == nil && c.CEO == nil && c.Website == nil &&
		c.ExecutiveSummary == nil
}

// ExecutiveSummary is the sales-oriented narrative for a company.
type ExecutiveSummary struct {
	Overview            *string        `json:"overview"`
	MarketPosition      *string        `json:"market_position"`
	KeyProductsServices []string       `json:"key_products_services"`
	RecentDevelopments  []string       `json:"recent_developments"`
	SalesInsights       *SalesInsights `json:"sales_insights"`
}

// IsEmpty reports whether the summary carries no information.
func (e *ExecutiveSummary) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.Overview == nil && e.MarketPosition == nil &&
		len(e.KeyProductsServices) == 0 && len(e.RecentDevelopments) == 0 &&
		e.SalesInsights.IsEmpty()
}

// SalesInsights holds the actionable sales analysis of a company.
type SalesInsights struct {
	PainPoints          []string `json:"pain_points"`
	Opportunities       []string `json:"opportunities"`
	DecisionMakers      []string `json:"decision_makers"`
	BudgetIndicators    *string  `json:"budget_indicators"`
	TechnologyStack     []string `json:"technology_stack"`
	GrowthIndicators    *string  `json:"growth_indicators"`
	RecommendedApproach *string  `json:"recommended_approach"`
}

// IsEmpty reports whether the insights carry no information.
func (s *SalesInsights) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.PainPoints) == 0 && len(s.Opportunities) == 0 &&
		len(s.DecisionMakers) == 0 && s.BudgetIndicators == nil &&
		len(s.TechnologyStack) == 0 && s.GrowthIndicators == nil &&
		s.RecommendedApproach == nil
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
