package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"

	"github.com/sells-group/prospect-research/internal/model"
	"github.com/sells-group/prospect-research/internal/pipeline"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Bold)
	mutedColor   = color.New(color.Faint)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func heading(w io.Writer, title string) {
	headingColor.Fprintln(w, "\n"+title)
	fmt.Fprintln(w, strings.Repeat("-", 50))
}

func field(w io.Writer, label string, v *string) {
	if v == nil {
		return
	}
	labelColor.Fprintf(w, "%s: ", label)
	fmt.Fprintln(w, *v)
}

func list(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	labelColor.Fprintf(w, "\n%s:\n", label)
	for _, it := range items {
		fmt.Fprintf(w, "- %s\n", it)
	}
}

func printCompany(w io.Writer, c *model.Company) {
	heading(w, "Company Information")
	labelColor.Fprint(w, "Name: ")
	fmt.Fprintln(w, c.Name)
	if c.IsPlaceholder() {
		mutedColor.Fprintln(w, "No information found.")
		return
	}
	field(w, "Description", c.Description)
	field(w, "Industry", c.Industry)
	field(w, "Headquarters", c.Headquarters)
	field(w, "Founded", c.Founded)
	field(w, "Size", c.Size)
	field(w, "CEO", c.CEO)
	field(w, "Website", c.Website)

	es := c.ExecutiveSummary
	if es.IsEmpty() {
		return
	}
	heading(w, "Executive Summary")
	field(w, "Overview", es.Overview)
	field(w, "Market Position", es.MarketPosition)
	list(w, "Key Products/Services", es.KeyProductsServices)
	list(w, "Recent Developments", es.RecentDevelopments)

	si := es.SalesInsights
	if si.IsEmpty() {
		return
	}
	heading(w, "Sales Insights")
	list(w, "Potential Pain Points", si.PainPoints)
	list(w, "Sales Opportunities", si.Opportunities)
	list(w, "Key Decision Makers", si.DecisionMakers)
	field(w, "Budget Indicators", si.BudgetIndicators)
	if len(si.TechnologyStack) > 0 {
		labelColor.Fprint(w, "Technology Stack: ")
		fmt.Fprintln(w, strings.Join(si.TechnologyStack, ", "))
	}
	field(w, "Growth Indicators", si.GrowthIndicators)
	field(w, "Recommended Approach", si.RecommendedApproach)
}

func printProspect(w io.Writer, p *model.Prospect) {
	heading(w, "Prospect Information")
	labelColor.Fprint(w, "Name: ")
	fmt.Fprintln(w, p.Name)
	field(w, "Title", p.Title)
	field(w, "Company", p.Company)
	field(w, "Location", p.Location)
	field(w, "LinkedIn", p.LinkedInURL)
	list(w, "Experience", p.Experience)
	list(w, "Education", p.Education)
}

func printSynthesis(w io.Writer, s *pipeline.Synthesis) {
	if s.Company != nil {
		printCompany(w, s.Company)
	}
	if s.Prospect != nil {
		printProspect(w, s.Prospect)
	}
	if s.ProspectSummary != "" {
		heading(w, "Summary")
		fmt.Fprintln(w, s.ProspectSummary)
	}
	list(w, "Insights", s.Insights)
}

// printVerdicts renders the selected sources and the model's verdicts.
func printVerdicts(w io.Writer, hits []model.SearchHit) {
	if len(hits) == 0 {
		mutedColor.Fprintln(w, "No relevant sources selected.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "URL", "Score", "Type", "Reason"})
	for i, h := range hits {
		score, kind, reason := "-", "-", "kept without verdict"
		if v := h.Relevance; v != nil {
			score = strconv.Itoa(v.RelevanceScore)
			kind = v.ContentType
			reason = v.Reason
		}
		t.AppendRow(table.Row{i + 1, h.URL, score, kind, reason})
	}
	t.Render()
}

// consoleHooks reports lookup progress on w: keywords, the verdict table and
// a progress bar over page fetches.
func consoleHooks(w io.Writer) *pipeline.Hooks {
	var bar *progressbar.ProgressBar
	return &pipeline.Hooks{
		OnKeywords: func(keywords []string) {
			mutedColor.Fprintf(w, "Searching: %s\n", strings.Join(keywords, "; "))
		},
		OnSelected: func(hits []model.SearchHit) {
			printVerdicts(w, hits)
		},
		OnFetch: func(done, total int, url string, err error) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(w),
					progressbar.OptionSetDescription(color.BlueString("fetching pages")),
					progressbar.OptionSetItsString("pages"),
					progressbar.OptionShowCount(),
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetRenderBlankState(true),
				)
			}
			_ = bar.Add(1)
			if done == total {
				_ = bar.Finish()
				fmt.Fprintln(w)
				bar = nil
			}
		},
	}
}
