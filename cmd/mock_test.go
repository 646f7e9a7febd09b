package main

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-research/internal/model"
	"github.com/sells-group/prospect-research/internal/pipeline"
)

type mockResearcher struct {
	mock.Mock
}

func (m *mockResearcher) Company(ctx context.Context, name string) (*model.Company, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *mockResearcher) Prospect(ctx context.Context, name, companyHint string) (*model.Prospect, error) {
	args := m.Called(ctx, name, companyHint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prospect), args.Error(1)
}

func (m *mockResearcher) Research(ctx context.Context, req pipeline.Request) (*pipeline.Synthesis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Synthesis), args.Error(1)
}

func (m *mockResearcher) ParseRequest(ctx context.Context, text string) pipeline.Request {
	args := m.Called(ctx, text)
	return args.Get(0).(pipeline.Request)
}
