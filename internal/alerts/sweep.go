package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/logger"
	"github.com/spigell/jobnado/internal/mailer"
	"go.uber.org/zap"
)

const searchPromptTemplate = `Find 3 LIVE, active job listings for the role of "%s" in "%s".
Prioritize jobs posted in the last 24 hours.
Return ONLY a JSON array of objects with keys: title, company, url.
Example: [{"title": "Software Engineer", "company": "Google", "url": "..."}]`

// Mailer delivers one email and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, email mailer.Email) (string, error)
}

type Status string

const (
	StatusSent            Status = "sent"
	StatusFailed          Status = "failed"
	StatusSkipped         Status = "skipped"
	StatusSearchFailed    Status = "search_failed"
	StatusSkippedNoMailer Status = "skipped_no_mailer"
)

// Result is the outcome for a single alert.
type Result struct {
	AlertID   string `json:"alertId"`
	Email     string `json:"email"`
	Status    Status `json:"status"`
	JobsFound int    `json:"jobsFound"`
	Error     string `json:"error,omitempty"`
}

// Report summarizes one sweep.
type Report struct {
	StartedAt time.Time `json:"startedAt"`
	Results   []Result  `json:"results"`
}

// Count returns how many alerts ended with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

type Sweeper struct {
	store  Store
	search ai.GroundedSearcher
	mailer Mailer
	from   string
	logger *zap.Logger
	now    func() time.Time
}

// NewSweeper wires the sweep. A nil mailer leaves every alert unsent.
func NewSweeper(store Store, search ai.GroundedSearcher, m Mailer, from string, log *zap.Logger) *Sweeper {
	if from == "" {
		from = mailer.DefaultFrom
	}

	return &Sweeper{
		store:  store,
		search: search,
		mailer: m,
		from:   from,
		logger: logger.ForStage(log, "alert_sweep"),
		now:    time.Now,
	}
}

// SearchPrompt asks for a bare JSON array of fresh listings.
func SearchPrompt(role, country string) string {
	return fmt.Sprintf(searchPromptTemplate, role, country)
}

// Run processes every active alert in turn. Only a failure to list the
// alerts is returned; per alert failures end up in the report.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	alerts, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}

	report := &Report{StartedAt: s.now(), Results: make([]Result, 0, len(alerts))}
	s.logger.Info("processing alerts", zap.Int("count", len(alerts)))

	for _, alert := range alerts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, s.process(ctx, alert))
	}

	s.logger.Info("sweep finished",
		zap.Int("total", len(report.Results)),
		zap.Int("sent", report.Count(StatusSent)),
		zap.Int("skipped", report.Count(StatusSkipped)+report.Count(StatusSkippedNoMailer)),
		zap.Int("failed", report.Count(StatusFailed)+report.Count(StatusSearchFailed)),
	)

	return report, nil
}

func (s *Sweeper) process(ctx context.Context, alert Alert) Result {
	log := s.logger.With(zap.String(logger.FieldAlert, alert.ID), zap.String("role", alert.Role), zap.String("country", alert.Country))
	result := Result{AlertID: alert.ID, Email: alert.Email}

	log.Debug("checking jobs")
	found, err := s.search.SearchGrounded(ctx, SearchPrompt(alert.Role, alert.Country))
	if err != nil {
		log.Error("search failed", zap.Error(err))
		result.Status = StatusSearchFailed
		result.Error = err.Error()
		return result
	}

	var text string
	if found != nil {
		text = found.Text
	}

	listings := ParseListings(text, alert.Role, alert.Country)
	result.JobsFound = len(listings)

	if len(listings) == 0 {
		log.Info("no jobs found")
		result.Status = StatusSkipped
		return result
	}

	if s.mailer == nil {
		log.Warn("mailer is not configured")
		result.Status = StatusSkippedNoMailer
		return result
	}

	html, err := RenderDigest(alert, listings)
	if err != nil {
		log.Error("render digest", zap.Error(err))
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	if _, err := s.mailer.Send(ctx, mailer.Email{
		From:    s.from,
		To:      []string{alert.Email},
		Subject: digestSubject(alert, len(listings)),
		HTML:    html,
	}); err != nil {
		log.Error("send digest", zap.Error(err))
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	result.Status = StatusSent
	if err := s.store.MarkAlerted(ctx, alert.ID, s.now()); err != nil {
		log.Warn("failed to update last alerted time", zap.Error(err))
	}

	return result
}
