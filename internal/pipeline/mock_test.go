package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-research/internal/model"
)

// --- Search provider mock ---

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Search(ctx context.Context, query string) ([]model.SearchHit, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchHit), args.Error(1)
}

func (m *mockProvider) Name() string { return "mock" }

// --- Fetch session mock ---

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *mockSession) Close() { m.Called() }

func sessionsOf(s *mockSession) SessionFactory {
	return func() Session { return s }
}

// --- Scripted model ---

// scriptLLM answers each call site by the start of its prompt and records
// every prompt it sees.
type scriptLLM struct {
	mu sync.Mutex

	keywords  string
	selection string
	company   string
	prospect  string
	request   string
	err       error

	prompts []string
}

func (s *scriptLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	switch {
	case strings.HasPrefix(prompt, "Given the following research query"):
		return s.keywords, nil
	case strings.HasPrefix(prompt, "Given the following company information"),
		strings.HasPrefix(prompt, "Given the following prospect information"):
		return s.selection, nil
	case strings.HasPrefix(prompt, "Analyze this text and extract company"):
		return s.company, nil
	case strings.HasPrefix(prompt, "Analyze this text and extract prospect"):
		return s.prospect, nil
	case strings.HasPrefix(prompt, "Analyze the following text and extract:"):
		return s.request, nil
	}
	return "", nil
}

// promptsWithPrefix returns the recorded prompts starting with prefix.
func (s *scriptLLM) promptsWithPrefix(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, p := range s.prompts {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}
