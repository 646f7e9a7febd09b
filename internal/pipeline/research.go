package pipeline

import (
	"context"
	"strings"

	"github.com/sells-group/prospect-research/internal/model"
)

// Research runs the company lookup when a company is named, then the
// prospect lookup with the company as its hint, and synthesizes both.
func (p *Pipeline) Research(ctx context.Context, req Request) (*Synthesis, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	prospectName := strings.TrimSpace(req.ProspectName)
	if companyName == "" && prospectName == "" {
		return nil, ErrNameRequired
	}

	var (
		company  *model.Company
		prospect *model.Prospect
		err      error
	)
	if companyName != "" {
		if company, err = p.Company(ctx, companyName); err != nil {
			return nil, err
		}
	}
	if prospectName != "" {
		if prospect, err = p.Prospect(ctx, prospectName, companyName); err != nil {
			return nil, err
		}
	}
	return Synthesize(company, prospect)
}
