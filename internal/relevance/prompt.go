package relevance

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-research/internal/model"
)

const companyPrompt = `Given the following company information and URLs, analyze each URL and determine if it is relevant for researching this company.
Consider these factors for each URL:
1. Official company website and pages
2. Company profiles on business directories
3. Recent news and updates
4. Source credibility
5. Information freshness
6. Organization metadata matching
7. URL structure and domain credibility
8. Content type and depth

Company Name: %s

URLs to analyze:
%s

Return ONLY a JSON array with one assessment per URL in this format:
[
  {
    "url": "URL to evaluate",
    "is_relevant": true or false,
    "relevance_score": 1-10,
    "reason": "why this URL is relevant or not",
    "content_type": "company_website, business_directory, news, etc.",
    "key_factors": ["factors that make this URL relevant or irrelevant"]
  }
]

Include ALL URLs in the response, marking irrelevant ones with "is_relevant": false.
Do not include any other text or markdown formatting.`

const prospectPrompt = `Given the following prospect information and URLs, analyze each URL and determine if it is relevant for researching this prospect.
Consider these factors for each URL:
1. Relevance to the prospect's professional information
2. Presence of a LinkedIn profile
3. Source credibility (company website, professional networks, etc.)
4. Information freshness
5. Content type (profile pages, news articles, etc.)
6. Organization and person metadata matching
7. URL structure and domain credibility

Prospect Name: %s
Company Name: %s

URLs to analyze:
%s

Return ONLY a JSON array with one assessment per URL in this format:
[
  {
    "url": "URL to evaluate",
    "is_relevant": true or false,
    "relevance_score": 1-10,
    "reason": "why this URL is relevant or not",
    "content_type": "linkedin, company_profile, news, etc.",
    "key_factors": ["factors that make this URL relevant or irrelevant"]
  }
]

Include ALL URLs in the response, marking irrelevant ones with "is_relevant": false.
Do not include any other text or markdown formatting.`

// BuildPrompt renders the selection prompt for the candidates.
func BuildPrompt(candidates []model.SearchHit, targetName string, targetType model.TargetType, companyHint string) string {
	block := describeCandidates(candidates)
	if targetType == model.TargetProspect {
		if companyHint == "" {
			companyHint = "Not specified"
		}
		return fmt.Sprintf(prospectPrompt, targetName, companyHint, block)
	}
	return fmt.Sprintf(companyPrompt, targetName, block)
}

func describeCandidates(candidates []model.SearchHit) string {
	var sb strings.Builder
	for i, c := range candidates {
		md := c.Metadata
		fmt.Fprintf(&sb, "URL %d:\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", c.Title)
		fmt.Fprintf(&sb, "URL: %s\n", c.URL)
		fmt.Fprintf(&sb, "Snippet: %s\n", c.Snippet)
		sb.WriteString("Metadata:\n")
		fmt.Fprintf(&sb, "- Description: %s\n", md.Description)
		fmt.Fprintf(&sb, "- Content Type: %s\n", md.Type)
		fmt.Fprintf(&sb, "- Site Name: %s\n", md.SiteName)
		fmt.Fprintf(&sb, "- Publication Date: %s\n", md.PublishedTime)
		fmt.Fprintf(&sb, "- Last Modified: %s\n", md.ModifiedTime)
		fmt.Fprintf(&sb, "- Author: %s\n", md.Author)
		fmt.Fprintf(&sb, "- Content Section: %s\n", md.Section)
		fmt.Fprintf(&sb, "- Organization Name: %s\n", md.OrganizationName)
		fmt.Fprintf(&sb, "- Organization URL: %s\n", md.OrganizationURL)
		fmt.Fprintf(&sb, "- Person Name: %s\n", md.PersonName)
		fmt.Fprintf(&sb, "- Person Title: %s\n", md.PersonJobTitle)
		fmt.Fprintf(&sb, "- Person Affiliation: %s\n", md.PersonAffiliation)
		sb.WriteString("---\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
