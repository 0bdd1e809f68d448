package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/jobnado/internal/logger"
	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
	"go.uber.org/zap"
)

var (
	ErrNoAnalysis   = errors.New("session has no cv analysis")
	ErrInvalidPhase = errors.New("phase is not reachable from the current state")
	ErrJobNotFound  = errors.New("job not found in session results")
)

// Analyzer runs the CV analysis stage.
type Analyzer interface {
	Analyze(ctx context.Context, in profile.Input) (*profile.Analysis, error)
}

// Searcher runs the opportunity search stage. It never fails.
type Searcher interface {
	Search(ctx context.Context, analysis *profile.Analysis, country, role string) []opportunity.Opportunity
}

// Manager drives one session through the pipeline and persists every change.
type Manager struct {
	store    Store
	analyzer Analyzer
	searcher Searcher
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	// mu orders saves against Reset so a stage finishing after a reset cannot recreate the session.
	mu sync.Mutex
}

func NewManager(store Store, analyzer Analyzer, searcher Searcher, log *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		analyzer: analyzer,
		searcher: searcher,
		logger:   logger.ForStage(log, "session"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start creates an idle session.
func (m *Manager) Start(ctx context.Context) (*State, error) {
	state := newState(m.newID(), m.now())
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}

	m.logger.Debug("session started", zap.String(logger.FieldSession, state.ID))
	return state, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	return m.store.Load(ctx, id)
}

// Analyze runs the CV analysis. On failure the session returns to IDLE with a
// user facing message and the stage error is returned.
func (m *Manager) Analyze(ctx context.Context, id string, in profile.Input) (*State, error) {
	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	log := m.logger.With(zap.String(logger.FieldSession, id))

	if state.Country == "" {
		state.Country = DefaultCountry
	}
	state.CVText = in.Text
	state.Error = ""
	state.Analysis = nil
	state.Opportunities = []opportunity.Opportunity{}
	state.SelectedRole = ""
	if err := m.transition(ctx, state, PhaseAnalyzing); err != nil {
		return nil, err
	}

	analysis, err := m.analyzer.Analyze(ctx, in)
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		state.Error = analysisFailedMessage
		if saveErr := m.transition(ctx, state, PhaseIdle); saveErr != nil {
			if errors.Is(saveErr, ErrNotFound) {
				log.Info("session was reset during analysis")
				return nil, saveErr
			}
			log.Error("failed to save session", zap.Error(saveErr))
		}
		return state, err
	}

	state.Analysis = analysis
	if err := m.transition(ctx, state, PhaseReviewAnalysis); err != nil {
		return nil, err
	}

	log.Info("analysis ready", zap.Strings("roles", analysis.SuggestedRoles))
	return state, nil
}

// Search finds opportunities for role in country. Empty values fall back to
// the primary suggested role and the session country.
func (m *Manager) Search(ctx context.Context, id, country, role string) (*State, error) {
	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.Analysis == nil {
		return state, ErrNoAnalysis
	}

	if country = strings.TrimSpace(country); country != "" {
		state.Country = country
	}
	if state.Country == "" {
		state.Country = DefaultCountry
	}

	if role = strings.TrimSpace(role); role == "" {
		role = state.Analysis.PrimaryRole()
	}
	state.SelectedRole = role
	state.Error = ""

	if err := m.transition(ctx, state, PhaseSearching); err != nil {
		return nil, err
	}

	state.Opportunities = m.searcher.Search(ctx, state.Analysis, state.Country, role)
	if len(state.Opportunities) == 0 {
		state.Error = searchFailedMessage
		if err := m.transition(ctx, state, PhaseReviewAnalysis); err != nil {
			return nil, err
		}
		return state, nil
	}

	if err := m.transition(ctx, state, PhaseResults); err != nil {
		return nil, err
	}

	m.logger.Info("search finished",
		zap.String(logger.FieldSession, id),
		zap.Int("opportunities", len(state.Opportunities)),
	)
	return state, nil
}

// Navigate moves to a phase the stored data supports.
func (m *Manager) Navigate(ctx context.Context, id string, phase Phase) (*State, error) {
	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !state.CanEnter(phase) {
		return state, fmt.Errorf("%w: %s", ErrInvalidPhase, phase)
	}

	if err := m.transition(ctx, state, phase); err != nil {
		return nil, err
	}
	return state, nil
}

// Opportunity returns the session together with one of its results.
func (m *Manager) Opportunity(ctx context.Context, id, jobID string) (*State, opportunity.Opportunity, error) {
	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, opportunity.Opportunity{}, err
	}

	job, ok := state.Opportunity(jobID)
	if !ok {
		return state, opportunity.Opportunity{}, ErrJobNotFound
	}
	return state, job, nil
}

// Reset discards the session.
func (m *Manager) Reset(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx, id); err != nil {
		return err
	}

	m.logger.Debug("session cleared", zap.String(logger.FieldSession, id))
	return nil
}

// transition saves state in phase. It returns ErrNotFound when the session was
// reset since it was loaded, and the state is dropped.
func (m *Manager) transition(ctx context.Context, state *State, phase Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Load(ctx, state.ID); err != nil {
		return err
	}

	state.Phase = phase
	state.UpdatedAt = m.now()
	return m.store.Save(ctx, state)
}
