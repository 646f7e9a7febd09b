package extract

const companyPrompt = `Analyze this text and extract company information in JSON format:
%s

Return ONLY a JSON object with these fields:
{
  "description": "Brief company description",
  "industry": "Main industry",
  "location": "Company headquarters location",
  "founding_date": "When the company was founded",
  "size": "Company size/employee count",
  "ceo_name": "Current CEO name",
  "website": "Company website URL",
  "executive_summary": {
    "overview": "Overview of the company's business, mission and key operations",
    "market_position": "Company's position in its industry and market share",
    "key_products_services": ["Main products or services"],
    "recent_developments": ["Recent significant news, acquisitions or changes"],
    "sales_insights": {
      "pain_points": ["Challenges or pain points the company might be facing"],
      "opportunities": ["Opportunities for a SaaS product based on the company's situation"],
      "decision_makers": ["Key decision makers and their roles"],
      "budget_indicators": "Indicators of budget capacity and spending patterns",
      "technology_stack": ["Current technology solutions or stack if mentioned"],
      "growth_indicators": "Signs of growth or expansion",
      "recommended_approach": "Suggested approach for reaching out to this company"
    }
  }
}

For the sales_insights section, analyze the company's situation and provide actionable insights for a SaaS sales approach. Consider:
1. Current challenges and pain points
2. Growth stage and trajectory
3. Technology adoption patterns
4. Budget capacity indicators
5. Decision-making structure
6. Recent developments that might create opportunities

If a field cannot be found, use null. Do not include any other text or markdown formatting.`

const prospectPrompt = `Analyze this text and extract prospect information in JSON format:
%s

Return ONLY a JSON object with these fields:
{
  "current_title": "Current job title",
  "company_name": "Current company name",
  "location": "Current location",
  "experience": ["Previous job titles and companies"],
  "education": ["Educational background"],
  "linkedin_url": "LinkedIn profile URL if found"
}

If a field cannot be found, use null. Do not include any other text.`
