package model

// Metadata is the normalized page metadata attached to a search hit. Absent
// values are empty strings, never missing keys.
type Metadata struct {
	Description       string `json:"description"`
	Type              string `json:"type"`
	SiteName          string `json:"site_name"`
	PublishedTime     string `json:"published_time"`
	ModifiedTime      string `json:"modified_time"`
	Author            string `json:"author"`
	Section           string `json:"section"`
	OrganizationName  string `json:"organization_name"`
	OrganizationURL   string `json:"organization_url"`
	PersonName        string `json:"person_name"`
	PersonJobTitle    string `json:"person_job_title"`
	PersonAffiliation string `json:"person_affiliation"`
}

// SearchHit is a single normalized search result. URL is its identity.
type SearchHit struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Snippet  string   `json:"snippet"`
	Source   string   `json:"source"`
	Metadata Metadata `json:"metadata"`

	// Relevance is set once the hit has been judged by the selector.
	Relevance *RelevanceVerdict `json:"relevance,omitempty"`
}

// RelevanceVerdict is the model's judgement of one candidate URL.
type RelevanceVerdict struct {
	URL            string   `json:"url"`
	IsRelevant     bool     `json:"is_relevant"`
	RelevanceScore int      `json:"relevance_score"`
	Reason         string   `json:"reason"`
	ContentType    string   `json:"content_type"`
	KeyFactors     []string `json:"key_factors"`
}

// URLs returns the URL of every hit, in order.
func URLs(hits []SearchHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.URL)
	}
	return out
}
