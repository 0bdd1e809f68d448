// Package alerts keeps job alert subscriptions and periodically emails fresh
// listings for every active one.
package alerts

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// ParseFrequency accepts daily or weekly in any case. Empty means daily.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case "", Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	default:
		return "", &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unsupported value %q", s)}
	}
}

type Alert struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Country       string     `json:"country"`
	Frequency     Frequency  `json:"frequency"`
	IsActive      bool       `json:"is_active"`
	LastAlertedAt *time.Time `json:"last_alerted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ValidationError reports unusable subscription input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewAlert validates the input and returns an active alert with a fresh id.
func NewAlert(email, role, country, frequency string, now time.Time) (Alert, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return Alert{}, &ValidationError{Field: "email", Reason: err.Error()}
	}

	role = strings.TrimSpace(role)
	if role == "" {
		return Alert{}, &ValidationError{Field: "role", Reason: "must not be empty"}
	}

	country = strings.TrimSpace(country)
	if country == "" {
		return Alert{}, &ValidationError{Field: "country", Reason: "must not be empty"}
	}

	freq, err := ParseFrequency(frequency)
	if err != nil {
		return Alert{}, err
	}

	return Alert{
		ID:        uuid.NewString(),
		Email:     addr.Address,
		Role:      role,
		Country:   country,
		Frequency: freq,
		IsActive:  true,
		CreatedAt: now.UTC(),
	}, nil
}
