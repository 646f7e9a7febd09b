package extract

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// companyWire mirrors the company extraction schema the model is asked for.
type companyWire struct {
	Description      flexString   `json:"description"`
	Industry         flexString   `json:"industry"`
	Location         flexString   `json:"location"`
	FoundingDate     flexString   `json:"founding_date"`
	Size             flexString   `json:"size"`
	CEOName          flexString   `json:"ceo_name"`
	Website          flexString   `json:"website"`
	ExecutiveSummary *summaryWire `json:"executive_summary"`
}

type summaryWire struct {
	Overview            flexString    `json:"overview"`
	MarketPosition      flexString    `json:"market_position"`
	KeyProductsServices flexStrings   `json:"key_products_services"`
	RecentDevelopments  flexStrings   `json:"recent_developments"`
	SalesInsights       *insightsWire `json:"sales_insights"`
}

// UnmarshalJSON accepts the structured object or, from weaker models, a
// plain string which becomes the overview.
func (s *summaryWire) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = summaryWire{Overview: flexString(strings.TrimSpace(text))}
		return nil
	}
	type plain summaryWire
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = summaryWire(p)
	return nil
}

type insightsWire struct {
	PainPoints          flexStrings `json:"pain_points"`
	Opportunities       flexStrings `json:"opportunities"`
	DecisionMakers      flexStrings `json:"decision_makers"`
	BudgetIndicators    flexString  `json:"budget_indicators"`
	TechnologyStack     flexStrings `json:"technology_stack"`
	GrowthIndicators    flexString  `json:"growth_indicators"`
	RecommendedApproach flexString  `json:"recommended_approach"`
}

// prospectWire mirrors the prospect extraction schema.
type prospectWire struct {
	CurrentTitle flexString  `json:"current_title"`
	CompanyName  flexString  `json:"company_name"`
	Location     flexString  `json:"location"`
	Experience   flexStrings `json:"experience"`
	Education    flexStrings `json:"education"`
	LinkedInURL  flexString  `json:"linkedin_url"`
}

// flexString decodes a string, number or bool into trimmed text. Null
// decodes as empty. Objects and arrays are kept as compact JSON.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*f = flexString(buf.String())
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil && string(data) != "true" && string(data) != "false" {
			return eris.Errorf("extract: unsupported scalar %q", data)
		}
		*f = flexString(data)
	}
	return nil
}

// flexStrings decodes a list, or a single value as a one-element list.
// Empty entries are dropped.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []flexString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				out = append(out, string(it))
			}
		}
		*f = out
		return nil
	}
	var one flexString
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*f = nil
		return nil
	}
	*f = flexStrings{string(one)}
	return nil
}

func (f flexString) ptr() *string {
	s := string(f)
	if s == "" {
		return nil
	}
	return &s
}

func (f flexStrings) slice() []string {
	if len(f) == 0 {
		return nil
	}
	return []string(f)
}
