package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-research/internal/model"
	"github.com/sells-group/prospect-research/internal/pipeline"
)

func init() {
	color.NoColor = true
}

func TestPrintCompany(t *testing.T) {
	c := model.NewCompany("Acme")
	c.Industry = model.String("Robotics")
	c.CEO = model.String("Jane Doe")
	c.ExecutiveSummary = &model.ExecutiveSummary{
		Overview:            model.String("Builds robots"),
		KeyProductsServices: []string{"Arms"},
		SalesInsights:       &model.SalesInsights{TechnologyStack: []string{"Go", "Postgres"}},
	}

	var buf bytes.Buffer
	printCompany(&buf, c)
	out := buf.String()

	assert.Contains(t, out, "Name: Acme")
	assert.Contains(t, out, "Industry: Robotics")
	assert.Contains(t, out, "CEO: Jane Doe")
	assert.NotContains(t, out, "Headquarters:")
	assert.Contains(t, out, "Executive Summary")
	assert.Contains(t, out, "- Arms")
	assert.Contains(t, out, "Technology Stack: Go, Postgres")
}

func TestPrintCompany_Placeholder(t *testing.T) {
	var buf bytes.Buffer
	printCompany(&buf, model.NewCompany("Acme"))
	assert.Contains(t, buf.String(), "No information found.")
}

func TestPrintVerdicts(t *testing.T) {
	hits := []model.SearchHit{
		{URL: "https://acme.example", Relevance: &model.RelevanceVerdict{RelevanceScore: 9, ContentType: "company_website", Reason: "official"}},
		{URL: "https://wiki.example/Acme"},
	}
	var buf bytes.Buffer
	printVerdicts(&buf, hits)
	out := buf.String()

	assert.Contains(t, out, "https://acme.example")
	assert.Contains(t, out, "company_website")
	assert.Contains(t, out, "kept without verdict")
}

func TestRunCompany_JSON(t *testing.T) {
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	r := &mockResearcher{}
	r.On("Company", mock.Anything, "Acme").Return(model.NewCompany("Acme"), nil)

	var buf bytes.Buffer
	require.NoError(t, runCompany(context.Background(), r, &buf, "Acme"))
	assert.Contains(t, buf.String(), `"name": "Acme"`)
	assert.Contains(t, buf.String(), `"industry": null`)
}

func TestRunAsk_Unknown(t *testing.T) {
	r := &mockResearcher{}
	r.On("ParseRequest", mock.Anything, "hello").Return(pipeline.Request{Type: pipeline.ResearchUnknown})

	err := runAsk(context.Background(), r, &bytes.Buffer{}, "hello")
	assert.ErrorIs(t, err, errNotUnderstood)
	r.AssertNotCalled(t, "Research", mock.Anything, mock.Anything)
}

func TestAskLoop(t *testing.T) {
	req := pipeline.Request{CompanyName: "Acme", Type: pipeline.ResearchCompany}
	r := &mockResearcher{}
	r.On("ParseRequest", mock.Anything, "Tell me about Acme").Return(req).Once()
	r.On("ParseRequest", mock.Anything, "gibberish").Return(pipeline.Request{Type: pipeline.ResearchUnknown}).Once()
	r.On("Research", mock.Anything, req).Return(&pipeline.Synthesis{
		Company:  model.NewCompany("Acme"),
		Insights: []string{"Acme is worth a call."},
	}, nil).Once()

	in := strings.NewReader("Tell me about Acme\n\ngibberish\nexit\nnever read\n")
	var out bytes.Buffer
	require.NoError(t, askLoop(context.Background(), r, in, &out))

	assert.Contains(t, out.String(), "Name: Acme")
	assert.Contains(t, out.String(), "- Acme is worth a call.")
	assert.Contains(t, out.String(), errNotUnderstood.Error())
	r.AssertExpectations(t)
}

func TestConsoleHooks_ProgressAcrossLookups(t *testing.T) {
	var buf bytes.Buffer
	h := consoleHooks(&buf)

	h.OnKeywords([]string{"Acme", "Acme robots"})
	h.OnFetch(1, 2, "https://a.example", nil)
	h.OnFetch(2, 2, "https://b.example", errors.New("timeout"))
	h.OnFetch(1, 1, "https://c.example", nil)

	assert.Contains(t, buf.String(), "Searching: Acme; Acme robots")
	assert.Contains(t, buf.String(), "fetching pages")
}
