package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-research/internal/llm"
	"github.com/sells-group/prospect-research/internal/model"
)

const companyContext = "Find accurate company information including description, industry, headquarters, founding date, size, and CEO"

// Company researches a company and returns its record. Any failure past
// validation degrades to the record as built so far.
func (p *Pipeline) Company(ctx context.Context, name string) (rec *model.Company, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	t := target{
		typ:         model.TargetCompany,
		name:        name,
		context:     companyContext,
		querySuffix: " company information",
	}
	log := lookupLogger(t)
	log.Info("pipeline: starting company lookup")

	rec = model.NewCompany(name)
	usage := llm.NewUsage(p.metrics)
	ctx = llm.WithUsage(ctx, usage)

	session := p.sessions()
	defer session.Close()

	outcome := OutcomeFailed
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: company lookup panicked", zap.Any("panic", r), zap.Stack("stack"))
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
	if xerr := p.extractor.Company(ctx, corpus, rec); xerr != nil {
		log.Error("pipeline: company extraction failed", zap.Error(xerr))
		return rec, nil
	}
	done(zap.String("source", string(rec.Source)))

	outcome = OutcomeComplete
	if rec.IsPlaceholder() {
		outcome = OutcomePlaceholder
	}
	return rec, nil
}
