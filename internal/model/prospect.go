package model

// Prospect is the research record for a person lookup. Name is required;
// everything else is optional.
type Prospect struct {
	Name        string   `json:"name"`
	Title       *string  `json:"title"`
	Company     *string  `json:"company"`
	Location    *string  `json:"location"`
	Experience  []string `json:"experience"`
	Education   []string `json:"education"`
	LinkedInURL *string  `json:"linkedin_url"`

	Source ExtractionSource `json:"extraction_source,omitempty"`
}

// NewProspect returns the placeholder record for a prospect lookup. The
// company hint, when given, seeds the Company field.
func NewProspect(name, companyHint string) *Prospect {
	return &Prospect{Name: name, Company: String(companyHint)}
}
