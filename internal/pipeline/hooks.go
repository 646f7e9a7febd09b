package pipeline

import (
	"context"

	"github.com/sells-group/prospect-research/internal/model"
)

// Hooks receive progress from a running lookup. Any field may be nil.
type Hooks struct {
	OnKeywords func(keywords []string)
	OnSelected func(hits []model.SearchHit)
	OnFetch    func(done, total int, url string, err error)
}

type hooksKey struct{}

// WithHooks attaches h to ctx for the lookups run with it.
func WithHooks(ctx context.Context, h *Hooks) context.Context {
	return context.WithValue(ctx, hooksKey{}, h)
}

func hooksFrom(ctx context.Context) *Hooks {
	h, _ := ctx.Value(hooksKey{}).(*Hooks)
	return h
}

func (h *Hooks) keywords(k []string) {
	if h != nil && h.OnKeywords != nil {
		h.OnKeywords(k)
	}
}

func (h *Hooks) selected(hits []model.SearchHit) {
	if h != nil && h.OnSelected != nil {
		h.OnSelected(hits)
	}
}

func (h *Hooks) fetched(done, total int, url string, err error) {
	if h != nil && h.OnFetch != nil {
		h.OnFetch(done, total, url, err)
	}
}
