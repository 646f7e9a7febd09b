package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/llm"
	"github.com/sells-group/prospect-research/internal/model"
)

func prospectContext(name, companyHint string) string {
	var b strings.Builder
	b.WriteString("Find information about ")
	b.WriteString(name)
	if companyHint != "" {
		b.WriteString(" who works at ")
		b.WriteString(companyHint)
	}
	b.WriteString(" including their title, location, experience, education, and LinkedIn profile")
	return b.String()
}

// Prospect researches a person, optionally narrowed by the company they
// work at, and returns their record.
func (p *Pipeline) Prospect(ctx context.Context, name, companyHint string) (rec *model.Prospect, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	companyHint = strings.TrimSpace(companyHint)

	t := target{
		typ:         model.TargetProspect,
		name:        name,
		companyHint: companyHint,
		context:     prospectContext(name, companyHint),
		querySuffix: " profile information",
	}
	log := lookupLogger(t)
	if companyHint != "" {
		log = log.With(zap.String("company_hint", companyHint))
	}
	log.Info("pipeline: starting prospect lookup")

	rec = model.NewProspect(name, companyHint)
	usage := llm.NewUsage(p.metrics)
	ctx = llm.WithUsage(ctx, usage)

	session := p.sessions()
	defer session.Close()

	outcome := OutcomeFailed
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: prospect lookup panicked", zap.Any("panic", r), zap.Stack("stack"))
			outcome = OutcomeFailed
		}
		p.finish(log, t, usage, outcome)
	}()

	corpus := p.gather(ctx, log, session, t)
	if corpus == "" {
		outcome = OutcomePlaceholder
		return rec, nil
	}

	done := phaseTimer(log, "extract")
	if xerr := p.extractor.Prospect(ctx, corpus, rec); xerr != nil {
		log.Error("pipeline: prospect extraction failed", zap.Error(xerr))
		return rec, nil
	}
	done(zap.String("source", string(rec.Source)))

	outcome = OutcomeComplete
	if rec.Source == model.ExtractionNone {
		outcome = OutcomePlaceholder
	}
	return rec, nil
}
