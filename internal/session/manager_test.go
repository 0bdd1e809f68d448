package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
	"go.uber.org/zap"
)

type analyzerStub struct {
	analysis *profile.Analysis
	err      error
	inputs   []profile.Input
}

func (a *analyzerStub) Analyze(_ context.Context, in profile.Input) (*profile.Analysis, error) {
	a.inputs = append(a.inputs, in)
	return a.analysis, a.err
}

type searcherStub struct {
	results []opportunity.Opportunity
	country string
	role    string
}

func (s *searcherStub) Search(_ context.Context, _ *profile.Analysis, country, role string) []opportunity.Opportunity {
	s.country, s.role = country, role
	return s.results
}

type recordingStore struct {
	*MemoryStore
	phases []Phase
}

func (r *recordingStore) Save(ctx context.Context, state *State) error {
	r.phases = append(r.phases, state.Phase)
	return r.MemoryStore.Save(ctx, state)
}

func newTestManager(analyzer Analyzer, searcher Searcher) (*Manager, *recordingStore) {
	store := &recordingStore{MemoryStore: NewMemoryStore(0)}
	m := NewManager(store, analyzer, searcher, zap.NewNop())
	m.newID = func() string { return "s-1" }
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return m, store
}

var sampleAnalysis = &profile.Analysis{
	HardSkills:     []string{"SQL", "Python"},
	SuggestedRoles: []string{"Data Analyst", "BI Developer"},
}

func TestManagerStart(t *testing.T) {
	m, store := newTestManager(&analyzerStub{}, &searcherStub{})

	state, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.ID != "s-1" || state.Phase != PhaseIdle || state.Country != DefaultCountry {
		t.Fatalf("unexpected state: %+v", state)
	}

	if len(store.phases) != 1 {
		t.Fatalf("expected start to persist, got %v", store.phases)
	}

	if _, err := m.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManagerAnalyze(t *testing.T) {
	analyzer := &analyzerStub{analysis: sampleAnalysis}
	m, store := newTestManager(analyzer, &searcherStub{})
	ctx := context.Background()
	_, _ = m.Start(ctx)

	state, err := m.Analyze(ctx, "s-1", profile.TextInput("ten years of SQL"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Phase != PhaseReviewAnalysis || state.Analysis == nil || state.CVText != "ten years of SQL" || state.Error != "" {
		t.Fatalf("unexpected state: %+v", state)
	}

	want := []Phase{PhaseIdle, PhaseAnalyzing, PhaseReviewAnalysis}
	if len(store.phases) != len(want) {
		t.Fatalf("expected saves %v, got %v", want, store.phases)
	}
	for i := range want {
		if store.phases[i] != want[i] {
			t.Fatalf("expected saves %v, got %v", want, store.phases)
		}
	}

	loaded, _ := m.Get(ctx, "s-1")
	if loaded.Analysis.PrimaryRole() != "Data Analyst" {
		t.Fatalf("expected persisted analysis, got %+v", loaded.Analysis)
	}
}

func TestManagerAnalyzeFailure(t *testing.T) {
	analyzer := &analyzerStub{err: profile.ErrAnalysisFailed}
	m, _ := newTestManager(analyzer, &searcherStub{})
	ctx := context.Background()
	_, _ = m.Start(ctx)

	state, err := m.Analyze(ctx, "s-1", profile.TextInput("cv"))
	if !errors.Is(err, profile.ErrAnalysisFailed) {
		t.Fatalf("expected analysis error, got %v", err)
	}

	if state.Phase != PhaseIdle || state.Error != analysisFailedMessage || state.Analysis != nil {
		t.Fatalf("unexpected state: %+v", state)
	}

	loaded, _ := m.Get(ctx, "s-1")
	if loaded.Phase != PhaseIdle || loaded.Error == "" {
		t.Fatalf("expected failure to be persisted, got %+v", loaded)
	}
}

func TestManagerSearch(t *testing.T) {
	searcher := &searcherStub{results: []opportunity.Opportunity{{ID: "job-0-1", Title: "Data Analyst"}}}
	m, _ := newTestManager(&analyzerStub{analysis: sampleAnalysis}, searcher)
	ctx := context.Background()
	_, _ = m.Start(ctx)

	if _, err := m.Search(ctx, "s-1", "", ""); !errors.Is(err, ErrNoAnalysis) {
		t.Fatalf("expected ErrNoAnalysis, got %v", err)
	}

	if _, err := m.Analyze(ctx, "s-1", profile.TextInput("cv")); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	state, err := m.Search(ctx, "s-1", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if searcher.role != "Data Analyst" || searcher.country != DefaultCountry {
		t.Fatalf("expected defaults, got role=%q country=%q", searcher.role, searcher.country)
	}

	if state.Phase != PhaseResults || state.SelectedRole != "Data Analyst" || len(state.Opportunities) != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}

	state, err = m.Search(ctx, "s-1", " Germany ", "BI Developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if searcher.country != "Germany" || state.Country != "Germany" || state.SelectedRole != "BI Developer" {
		t.Fatalf("expected explicit values, got %+v", state)
	}
}

func TestManagerNavigateAndOpportunity(t *testing.T) {
	searcher := &searcherStub{results: []opportunity.Opportunity{{ID: "job-0-1", Title: "Data Analyst"}}}
	m, _ := newTestManager(&analyzerStub{analysis: sampleAnalysis}, searcher)
	ctx := context.Background()
	_, _ = m.Start(ctx)

	if _, err := m.Navigate(ctx, "s-1", PhaseResults); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}

	_, _ = m.Analyze(ctx, "s-1", profile.TextInput("cv"))
	_, _ = m.Search(ctx, "s-1", "", "")

	state, err := m.Navigate(ctx, "s-1", PhaseReviewAnalysis)
	if err != nil || state.Phase != PhaseReviewAnalysis {
		t.Fatalf("expected review phase, got %+v, %v", state, err)
	}

	if _, err := m.Navigate(ctx, "s-1", PhaseSearching); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("transient phases must be rejected, got %v", err)
	}

	_, job, err := m.Opportunity(ctx, "s-1", "job-0-1")
	if err != nil || job.Title != "Data Analyst" {
		t.Fatalf("unexpected job lookup: %+v, %v", job, err)
	}

	if _, _, err := m.Opportunity(ctx, "s-1", "job-9-9"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestManagerReset(t *testing.T) {
	m, _ := newTestManager(&analyzerStub{}, &searcherStub{})
	ctx := context.Background()
	_, _ = m.Start(ctx)

	if err := m.Reset(ctx, "s-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.Get(ctx, "s-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cleared session, got %v", err)
	}
}

type resettingAnalyzer struct {
	m   *Manager
	err error
}

func (a *resettingAnalyzer) Analyze(ctx context.Context, _ profile.Input) (*profile.Analysis, error) {
	_ = a.m.Reset(ctx, "s-1")
	return sampleAnalysis, a.err
}

type resettingSearcher struct {
	m *Manager
}

func (s *resettingSearcher) Search(ctx context.Context, _ *profile.Analysis, _, _ string) []opportunity.Opportunity {
	_ = s.m.Reset(ctx, "s-1")
	return []opportunity.Opportunity{{ID: "job-0-1", Title: "Data Analyst"}}
}

func TestManagerResetDuringAnalyzeDropsResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "analysis succeeds", err: nil},
		{name: "analysis fails", err: profile.ErrAnalysisFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &resettingAnalyzer{err: tt.err}
			m, _ := newTestManager(analyzer, &searcherStub{})
			analyzer.m = m
			ctx := context.Background()
			_, _ = m.Start(ctx)

			state, err := m.Analyze(ctx, "s-1", profile.TextInput("cv"))
			if !errors.Is(err, ErrNotFound) || state != nil {
				t.Fatalf("expected ErrNotFound and no state, got %+v, %v", state, err)
			}

			if loaded, err := m.Get(ctx, "s-1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("session must stay cleared, got %+v, %v", loaded, err)
			}
		})
	}
}

func TestManagerResetDuringSearchDropsResult(t *testing.T) {
	searcher := &resettingSearcher{}
	m, _ := newTestManager(&analyzerStub{analysis: sampleAnalysis}, searcher)
	searcher.m = m
	ctx := context.Background()
	_, _ = m.Start(ctx)

	if _, err := m.Analyze(ctx, "s-1", profile.TextInput("cv")); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	state, err := m.Search(ctx, "s-1", "", "")
	if !errors.Is(err, ErrNotFound) || state != nil {
		t.Fatalf("expected ErrNotFound and no state, got %+v, %v", state, err)
	}

	if loaded, err := m.Get(ctx, "s-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("session must stay cleared, got %+v, %v", loaded, err)
	}
}
