package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-research/internal/fetcher"
	"github.com/sells-group/prospect-research/internal/metrics"
	"github.com/sells-group/prospect-research/internal/model"
	"github.com/sells-group/prospect-research/internal/search"
)

const (
	acmeHome  = "https://acme.example"
	acmeAbout = "https://news.example/acme-profile"
)

func page(body string) string {
	return "<html><head><script>var x = 1;</script></head><body><nav>Home | About</nav><main><p>" + body + "</p></main><footer>Copyright</footer></body></html>"
}

func acmeHits() []model.SearchHit {
	return []model.SearchHit{
		{Title: "Acme Corp", URL: acmeHome, Snippet: "Robots for everyone", Source: "mock"},
		{Title: "Acme profile", URL: acmeAbout, Snippet: "Company profile", Source: "mock"},
	}
}

func TestCompany_EndToEnd(t *testing.T) {
	m := metrics.New()
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, "Acme Corp company information").Return(acmeHits(), nil).Once()

	session := &mockSession{}
	session.On("Fetch", mock.Anything, acmeHome).Return(page("Acme Corp builds industrial robots."), nil).Once()
	session.On("Fetch", mock.Anything, acmeAbout).Return(page("Jane Doe has led Acme since 2019."), nil).Once()
	session.On("Close").Return().Once()

	llm := &scriptLLM{
		keywords: "Acme Corp",
		selection: `[{"url": "` + acmeHome + `", "is_relevant": true, "relevance_score": 9, "reason": "official", "content_type": "company_website", "key_factors": []},
{"url": "` + acmeAbout + `", "is_relevant": true, "relevance_score": 7, "reason": "profile", "content_type": "news", "key_factors": []}]`,
		company: `{"industry": "Robotics", "ceo_name": "Jane Doe", "executive_summary": null}`,
	}

	var fetched []string
	ctx := WithHooks(context.Background(), &Hooks{
		OnFetch: func(done, total int, url string, err error) {
			assert.NoError(t, err)
			assert.Equal(t, 2, total)
			fetched = append(fetched, url)
		},
	})

	p := New(llm, provider, sessionsOf(session), Options{}, m)
	rec, err := p.Company(ctx, "Acme Corp")
	require.NoError(t, err)

	want := model.NewCompany("Acme Corp")
	want.Industry = model.String("Robotics")
	want.CEO = model.String("Jane Doe")
	want.Source = model.ExtractionJSON
	assert.Equal(t, want, rec)
	assert.Nil(t, rec.ExecutiveSummary)

	assert.Equal(t, []string{acmeHome, acmeAbout}, fetched)

	extraction := llm.promptsWithPrefix("Analyze this text and extract company")
	require.Len(t, extraction, 1)
	assert.Contains(t, extraction[0], "Acme Corp builds industrial robots.\n\nJane Doe has led Acme since 2019.")
	assert.NotContains(t, extraction[0], "Copyright")

	provider.AssertExpectations(t)
	session.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues("company", OutcomeComplete)))
}

func TestCompany_NoCredentialsReturnsPlaceholder(t *testing.T) {
	provider := search.NewGoogleProvider(search.GoogleOptions{})
	require.False(t, provider.Configured())

	session := &mockSession{}
	session.On("Close").Return().Once()

	llm := &scriptLLM{keywords: "Acme Corp\nAcme robotics"}
	p := New(llm, provider, sessionsOf(session), Options{}, nil)

	rec, err := p.Company(context.Background(), "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, model.NewCompany("Acme Corp"), rec)

	assert.Empty(t, llm.promptsWithPrefix("Analyze this text"))
	assert.Empty(t, llm.promptsWithPrefix("Given the following company information"))
	session.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	session.AssertExpectations(t)
}

func TestCompany_NameRequired(t *testing.T) {
	p := New(&scriptLLM{}, &mockProvider{}, sessionsOf(&mockSession{}), Options{}, nil)

	rec, err := p.Company(context.Background(), "   ")
	assert.Nil(t, rec)
	assert.True(t, eris.Is(err, ErrNameRequired))
}

func TestCompany_SelectorFailureKeepsAllCandidates(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Return(acmeHits(), nil)

	session := &mockSession{}
	session.On("Fetch", mock.Anything, acmeHome).Return(page("Acme Corp builds industrial robots."), nil).Once()
	session.On("Fetch", mock.Anything, acmeAbout).Return("", errors.New("connection reset")).Once()
	session.On("Close").Return().Once()

	llm := &scriptLLM{
		keywords:  "Acme Corp",
		selection: "I think both are fine.",
		company:   "Industry: Fintech\n",
	}
	rec, err := New(llm, provider, sessionsOf(session), Options{}, nil).Company(context.Background(), "Acme Corp")
	require.NoError(t, err)

	assert.Equal(t, "Fintech", model.Deref(rec.Industry))
	assert.Equal(t, model.ExtractionHeuristic, rec.Source)
	session.AssertExpectations(t)
}

func TestCompany_ExtractionFailureKeepsRecord(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Return(acmeHits()[:1], nil)

	session := &mockSession{}
	session.On("Fetch", mock.Anything, acmeHome).Return(page("Acme Corp builds industrial robots."), nil)
	session.On("Close").Return().Once()

	calls := 0
	llm := &scriptLLM{keywords: "Acme Corp", selection: `[{"url": "` + acmeHome + `", "is_relevant": true}]`}
	failing := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 3 {
			return "", errors.New("overloaded")
		}
		return llm.Complete(ctx, prompt)
	})

	m := metrics.New()
	rec, err := New(failing, provider, sessionsOf(session), Options{}, m).Company(context.Background(), "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, model.NewCompany("Acme Corp"), rec)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupsTotal.WithLabelValues("company", OutcomeFailed)))
	session.AssertExpectations(t)
}

func TestCompany_PanicDegradesToRecord(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("index exploded")
	})

	session := &mockSession{}
	session.On("Close").Return().Once()

	rec, err := New(&scriptLLM{keywords: "Acme"}, provider, sessionsOf(session), Options{}, nil).Company(context.Background(), "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, model.NewCompany("Acme Corp"), rec)
	session.AssertExpectations(t)
}

func TestCompany_NoRelevantURLsSkipsFetch(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Return(acmeHits(), nil)

	session := &mockSession{}
	session.On("Close").Return().Once()

	llm := &scriptLLM{
		keywords:  "Acme Corp",
		selection: `[{"url": "` + acmeHome + `", "is_relevant": false}, {"url": "` + acmeAbout + `", "is_relevant": false}]`,
	}
	rec, err := New(llm, provider, sessionsOf(session), Options{}, nil).Company(context.Background(), "Acme Corp")
	require.NoError(t, err)
	assert.True(t, rec.IsPlaceholder())
	session.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestCompany_DeduplicatesAcrossKeywords(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, "Acme Corp company information").Return(acmeHits(), nil).Once()
	provider.On("Search", mock.Anything, "Acme robots company information").Return([]model.SearchHit{
		{Title: "Acme again", URL: acmeHome},
	}, nil).Once()

	session := &mockSession{}
	session.On("Close").Return().Once()

	var selected []model.SearchHit
	ctx := WithHooks(context.Background(), &Hooks{OnSelected: func(h []model.SearchHit) { selected = h }})

	llm := &scriptLLM{keywords: "Acme Corp\nAcme robots", selection: "not json"}
	session.On("Fetch", mock.Anything, mock.Anything).Return("", errors.New("offline"))

	_, err := New(llm, provider, sessionsOf(session), Options{}, nil).Company(ctx, "Acme Corp")
	require.NoError(t, err)

	require.Len(t, selected, 2)
	assert.Equal(t, "Acme Corp", selected[0].Title)
	assert.Equal(t, []string{acmeHome, acmeAbout}, model.URLs(selected))
	provider.AssertExpectations(t)
}

func TestProspect_EndToEnd(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, "Jane Doe Acme profile information").Return([]model.SearchHit{
		{Title: "Jane Doe - VP Sales", URL: "https://people.example/jane"},
	}, nil).Once()

	session := &mockSession{}
	session.On("Fetch", mock.Anything, "https://people.example/jane").Return(page("Jane Doe is VP Sales at Acme in Austin."), nil)
	session.On("Close").Return().Once()

	llm := &scriptLLM{
		keywords:  "Jane Doe Acme",
		selection: `[{"url": "https://people.example/jane", "is_relevant": true}]`,
		prospect:  `{"current_title": "VP Sales", "company_name": null, "location": "Austin", "experience": [], "education": null, "linkedin_url": null}`,
	}
	rec, err := New(llm, provider, sessionsOf(session), Options{}, nil).Prospect(context.Background(), "Jane Doe", "Acme")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "VP Sales", model.Deref(rec.Title))
	assert.Equal(t, "Acme", model.Deref(rec.Company))
	assert.Equal(t, "Austin", model.Deref(rec.Location))
	assert.Nil(t, rec.Experience)

	kw := llm.promptsWithPrefix("Given the following research query")
	require.Len(t, kw, 1)
	assert.Contains(t, kw[0], "Find information about Jane Doe who works at Acme including their title")

	sel := llm.promptsWithPrefix("Given the following prospect information")
	require.Len(t, sel, 1)
	assert.Contains(t, sel[0], "Acme")
	session.AssertExpectations(t)
}

func TestProspect_MalformedExtractionIsNoop(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Search", mock.Anything, mock.Anything).Return([]model.SearchHit{{URL: "https://people.example/jane"}}, nil)

	session := &mockSession{}
	session.On("Fetch", mock.Anything, mock.Anything).Return(page("Jane Doe profile."), nil)
	session.On("Close").Return().Once()

	llm := &scriptLLM{keywords: "Jane Doe", selection: "garbage", prospect: "Title: VP"}
	rec, err := New(llm, provider, sessionsOf(session), Options{}, nil).Prospect(context.Background(), "Jane Doe", "")
	require.NoError(t, err)
	assert.Equal(t, model.NewProspect("Jane Doe", ""), rec)
}

func TestProspectContext(t *testing.T) {
	assert.Equal(t,
		"Find information about Jane including their title, location, experience, education, and LinkedIn profile",
		prospectContext("Jane", ""))
}

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestCompany_SearchRunsOnLookupSession(t *testing.T) {
	first := &mockSession{}
	first.On("Close").Return().Once()
	second := &mockSession{}
	second.On("Close").Return().Once()
	sessions := []*mockSession{first, second}

	provider := &mockProvider{}
	provider.On("Search", mock.MatchedBy(func(ctx context.Context) bool {
		return fetcher.SessionFrom(ctx) == first
	}), "Acme Corp company information").Return(nil, nil).Once()
	provider.On("Search", mock.MatchedBy(func(ctx context.Context) bool {
		return fetcher.SessionFrom(ctx) == second
	}), "Globex company information").Return(nil, nil).Once()

	next := 0
	factory := func() Session {
		s := sessions[next]
		next++
		return s
	}

	p := New(&scriptLLM{err: errors.New("model down")}, provider, factory, Options{}, nil)
	_, err := p.Company(context.Background(), "Acme Corp")
	require.NoError(t, err)
	_, err = p.Company(context.Background(), "Globex")
	require.NoError(t, err)

	provider.AssertExpectations(t)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}
