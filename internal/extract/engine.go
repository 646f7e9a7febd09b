// Package extract turns cleaned page text into structured company and
// prospect records with the model. Extraction never clears a field that is
// already set.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/llm"
	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/model"
)

// Engine runs extraction prompts and merges the results into records.
type Engine struct {
	llm     llm.Completer
	metrics *metrics.Metrics
}

// NewEngine creates an Engine.
func NewEngine(c llm.Completer, m *metrics.Metrics) *Engine {
	return &Engine{llm: c, metrics: m}
}

// Company extracts company attributes from corpus into rec. When the model
// output is not valid JSON a labelled-line heuristic is tried instead. An
// error is returned only when the model call itself fails; rec is left
// untouched in that case.
func (e *Engine) Company(ctx context.Context, corpus string, rec *model.Company) error {
	log := zap.L().With(zap.String("entity", rec.Name), zap.String("target_type", string(model.TargetCompany)))

	raw, err := e.llm.Complete(ctx, fmt.Sprintf(companyPrompt, corpus))
	if err != nil {
		return eris.Wrap(err, "extract: company completion")
	}

	found, err := ParseCompany(raw)
	if err != nil {
		log.Warn("extract: company response is not JSON, using heuristic parse", zap.Error(err))
		log.Debug("extract: raw model output", zap.String("raw", raw))
		found = HeuristicCompany(raw)
	}

	n := MergeCompany(rec, found)
	if n > 0 {
		rec.Source = found.Source
	}
	e.metrics.ObserveExtraction(string(model.TargetCompany), string(rec.Source))
	log.Info("extract: company fields merged",
		zap.Int("fields", n),
		zap.String("source", string(found.Source)),
	)
	return nil
}

// Prospect extracts person attributes from corpus into rec. Unparseable
// model output leaves rec unchanged.
func (e *Engine) Prospect(ctx context.Context, corpus string, rec *model.Prospect) error {
	log := zap.L().With(zap.String("entity", rec.Name), zap.String("target_type", string(model.TargetProspect)))

	raw, err := e.llm.Complete(ctx, fmt.Sprintf(prospectPrompt, corpus))
	if err != nil {
		return eris.Wrap(err, "extract: prospect completion")
	}

	found, err := ParseProspect(raw)
	if err != nil {
		log.Warn("extract: prospect response is not JSON, keeping record as is", zap.Error(err))
		log.Debug("extract: raw model output", zap.String("raw", raw))
		e.metrics.ObserveExtraction(string(model.TargetProspect), string(rec.Source))
		return nil
	}

	n := MergeProspect(rec, found)
	if n > 0 {
		rec.Source = model.ExtractionJSON
	}
	e.metrics.ObserveExtraction(string(model.TargetProspect), string(rec.Source))
	log.Info("extract: prospect fields merged", zap.Int("fields", n))
	return nil
}

// ParseCompany decodes a company extraction response. Code fences and
// surrounding prose are tolerated; the payload must be a JSON object.
func ParseCompany(raw string) (*model.Company, error) {
	var w companyWire
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &w); err != nil {
		return nil, eris.Wrap(err, "extract: decode company response")
	}

	c := &model.Company{
		Description:  w.Description.ptr(),
		Industry:     w.Industry.ptr(),
		Headquarters: w.Location.ptr(),
		Founded:      w.FoundingDate.ptr(),
		Size:         w.Size.ptr(),
		CEO:          w.CEOName.ptr(),
		Website:      w.Website.ptr(),
		Source:       model.ExtractionJSON,
	}
	if s := w.ExecutiveSummary; s != nil {
		summary := &model.ExecutiveSummary{
			Overview:            s.Overview.ptr(),
			MarketPosition:      s.MarketPosition.ptr(),
			KeyProductsServices: s.KeyProductsServices.slice(),
			RecentDevelopments:  s.RecentDevelopments.slice(),
		}
		if si := s.SalesInsights; si != nil {
			summary.SalesInsights = &model.SalesInsights{
				PainPoints:          si.PainPoints.slice(),
				Opportunities:       si.Opportunities.slice(),
				DecisionMakers:      si.DecisionMakers.slice(),
				BudgetIndicators:    si.BudgetIndicators.ptr(),
				TechnologyStack:     si.TechnologyStack.slice(),
				GrowthIndicators:    si.GrowthIndicators.ptr(),
				RecommendedApproach: si.RecommendedApproach.ptr(),
			}
			if summary.SalesInsights.IsEmpty() {
				summary.SalesInsights = nil
			}
		}
		if !summary.IsEmpty() {
			c.ExecutiveSummary = summary
		}
	}
	return c, nil
}

// ParseProspect decodes a prospect extraction response.
func ParseProspect(raw string) (*model.Prospect, error) {
	var w prospectWire
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &w); err != nil {
		return nil, eris.Wrap(err, "extract: decode prospect response")
	}
	return &model.Prospect{
		Title:       w.CurrentTitle.ptr(),
		Company:     w.CompanyName.ptr(),
		Location:    w.Location.ptr(),
		Experience:  w.Experience.slice(),
		Education:   w.Education.slice(),
		LinkedInURL: w.LinkedInURL.ptr(),
		Source:      model.ExtractionJSON,
	}, nil
}
