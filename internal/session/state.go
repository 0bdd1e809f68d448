// Package session keeps the per-user pipeline state between requests.
package session

import (
	"time"

	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
)

type Phase string

const (
	PhaseIdle           Phase = "IDLE"
	PhaseAnalyzing      Phase = "ANALYZING"
	PhaseReviewAnalysis Phase = "REVIEW_ANALYSIS"
	PhaseSearching      Phase = "SEARCHING"
	PhaseResults        Phase = "RESULTS"
	PhaseError          Phase = "ERROR"
)

const DefaultCountry = "United States"

const (
	analysisFailedMessage = "Failed to decode CV. Please ensure the text is readable and try again."
	searchFailedMessage   = "Connection to job sector lost. Retrying orbital scan recommended."
)

type State struct {
	ID            string                    `json:"id"`
	Phase         Phase                     `json:"phase"`
	CVText        string                    `json:"cvText,omitempty"`
	Country       string                    `json:"country"`
	SelectedRole  string                    `json:"selectedRole,omitempty"`
	Analysis      *profile.Analysis         `json:"analysis,omitempty"`
	Opportunities []opportunity.Opportunity `json:"opportunities"`
	Error         string                    `json:"error,omitempty"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

func newState(id string, now time.Time) *State {
	return &State{
		ID:            id,
		Phase:         PhaseIdle,
		Country:       DefaultCountry,
		Opportunities: []opportunity.Opportunity{},
		UpdatedAt:     now,
	}
}

// Opportunity looks up a job from the latest results.
func (s *State) Opportunity(jobID string) (opportunity.Opportunity, bool) {
	for _, o := range s.Opportunities {
		if o.ID == jobID {
			return o, true
		}
	}
	return opportunity.Opportunity{}, false
}

// CanEnter reports whether the state holds what the phase needs to be shown.
func (s *State) CanEnter(phase Phase) bool {
	switch phase {
	case PhaseIdle:
		return true
	case PhaseReviewAnalysis:
		return s.Analysis != nil
	case PhaseResults:
		return len(s.Opportunities) > 0
	default:
		return false
	}
}
