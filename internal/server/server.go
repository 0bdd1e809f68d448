// Package server exposes the pipeline as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/alerts"
	"github.com/spigell/jobnado/internal/artifacts"
	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
	"github.com/spigell/jobnado/internal/session"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultMaxUploadSize = 10 << 20
	shutdownTimeout      = 10 * time.Second
)

type Sessions interface {
	Start(ctx context.Context) (*session.State, error)
	Get(ctx context.Context, id string) (*session.State, error)
	Analyze(ctx context.Context, id string, in profile.Input) (*session.State, error)
	Search(ctx context.Context, id, country, role string) (*session.State, error)
	Navigate(ctx context.Context, id string, phase session.Phase) (*session.State, error)
	Opportunity(ctx context.Context, id, jobID string) (*session.State, opportunity.Opportunity, error)
	Reset(ctx context.Context, id string) error
}

type Artifacts interface {
	Outreach(ctx context.Context, job opportunity.Opportunity, analysis *profile.Analysis) string
	CoverLetter(ctx context.Context, job opportunity.Opportunity, analysis *profile.Analysis) string
	InterviewQuestions(ctx context.Context, job opportunity.Opportunity, analysis *profile.Analysis) []string
	EvaluateAnswer(ctx context.Context, question, answer string) artifacts.Evaluation
	Chat(ctx context.Context, history []ai.Message, message string) string
}

type Subscriptions interface {
	Subscribe(ctx context.Context, email, role, country, frequency string) (*alerts.Subscription, error)
	Unsubscribe(ctx context.Context, id string) error
}

type Sweeper interface {
	Run(ctx context.Context) (*alerts.Report, error)
}

// Deps are the collaborators behind the routes. Subscriptions and Sweeper
// may be nil, the alert routes then answer 503.
type Deps struct {
	Sessions      Sessions
	Artifacts     Artifacts
	Subscriptions Subscriptions
	Sweeper       Sweeper
}

type Options struct {
	// RateLimit is the allowed requests per second across all clients. Zero disables it.
	RateLimit     float64
	Burst         int
	MaxUploadSize int64
}

type Server struct {
	deps          Deps
	logger        *zap.Logger
	limiter       *rate.Limiter
	maxUploadSize int64
}

func New(deps Deps, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		deps:          deps,
		logger:        logger.Named("http"),
		maxUploadSize: opts.MaxUploadSize,
	}
	if s.maxUploadSize <= 0 {
		s.maxUploadSize = defaultMaxUploadSize
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return s
}

// Handler returns the routed API with logging and rate limiting applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)

	mux.HandleFunc("POST /api/sessions", s.createSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.getSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.resetSession)
	mux.HandleFunc("POST /api/sessions/{id}/analysis", s.analyze)
	mux.HandleFunc("POST /api/sessions/{id}/search", s.search)
	mux.HandleFunc("POST /api/sessions/{id}/phase", s.navigate)
	mux.HandleFunc("POST /api/sessions/{id}/jobs/{jobID}/outreach", s.outreach)
	mux.HandleFunc("POST /api/sessions/{id}/jobs/{jobID}/cover-letter", s.coverLetter)
	mux.HandleFunc("POST /api/sessions/{id}/jobs/{jobID}/interview-questions", s.interviewQuestions)

	mux.HandleFunc("POST /api/interview/evaluate", s.evaluate)
	mux.HandleFunc("POST /api/chat", s.chat)

	mux.HandleFunc("POST /api/alerts", s.subscribe)
	mux.HandleFunc("DELETE /api/alerts/{id}", s.unsubscribe)
	mux.HandleFunc("POST /api/alerts/sweep", s.sweep)

	return s.logRequests(s.rateLimit(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
