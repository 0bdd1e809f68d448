package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/spigell/jobnado/internal/logger"
	"github.com/spigell/jobnado/internal/mailer"
	"go.uber.org/zap"
)

// Confirmer writes the confirmation text for a new alert.
type Confirmer interface {
	AlertConfirmation(ctx context.Context, role, country, email string) string
}

// Subscription is the outcome of Subscribe. Persisted is false when the store
// rejected the alert but the confirmation still went out.
type Subscription struct {
	Alert     Alert  `json:"alert"`
	Persisted bool   `json:"persisted"`
	Message   string `json:"message"`
	EmailID   string `json:"emailId,omitempty"`
}

type Subscriptions struct {
	store   Store
	confirm Confirmer
	mailer  Mailer
	from    string
	logger  *zap.Logger
	now     func() time.Time
}

func NewSubscriptions(store Store, confirm Confirmer, m Mailer, from string, log *zap.Logger) *Subscriptions {
	if from == "" {
		from = mailer.DefaultFrom
	}

	return &Subscriptions{
		store:   store,
		confirm: confirm,
		mailer:  m,
		from:    from,
		logger:  logger.ForStage(log, "subscribe"),
		now:     time.Now,
	}
}

// Subscribe stores a new alert and emails the confirmation.
func (s *Subscriptions) Subscribe(ctx context.Context, email, role, country, frequency string) (*Subscription, error) {
	alert, err := NewAlert(email, role, country, frequency, s.now())
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String(logger.FieldAlert, alert.ID))
	sub := &Subscription{Alert: alert}

	if _, err := s.store.Insert(ctx, alert); err != nil {
		log.Error("failed to store alert", zap.Error(err))
	} else {
		sub.Persisted = true
	}

	if s.confirm != nil {
		sub.Message = s.confirm.AlertConfirmation(ctx, alert.Role, alert.Country, alert.Email)
	} else {
		sub.Message = fmt.Sprintf("Radar active. Scanning for %s in %s. Reports will be sent to %s.", alert.Role, alert.Country, alert.Email)
	}

	if s.mailer == nil {
		log.Warn("mailer is not configured, confirmation not sent")
		return sub, nil
	}

	html, err := RenderConfirmation(alert, sub.Message)
	if err != nil {
		return sub, err
	}

	id, err := s.mailer.Send(ctx, mailer.Email{
		From:    s.from,
		To:      []string{alert.Email},
		Subject: confirmationSubject(alert),
		HTML:    html,
	})
	if err != nil {
		return sub, fmt.Errorf("send confirmation: %w", err)
	}

	sub.EmailID = id
	log.Info("alert subscribed", zap.Bool("persisted", sub.Persisted))

	return sub, nil
}

// Unsubscribe deactivates the alert. Nothing is deleted.
func (s *Subscriptions) Unsubscribe(ctx context.Context, id string) error {
	if err := s.store.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", id, err)
	}

	s.logger.Info("alert deactivated", zap.String(logger.FieldAlert, id))
	return nil
}
