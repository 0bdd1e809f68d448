package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spigell/jobnado/internal/alerts"
	"github.com/spigell/jobnado/internal/cvinput"
	"github.com/spigell/jobnado/internal/profile"
	"github.com/spigell/jobnado/internal/session"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Session *session.State `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		validation *alerts.ValidationError
		badInput   *requestError
		tooLarge   *http.MaxBytesError
	)

	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrJobNotFound),
		errors.Is(err, alerts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoAnalysis),
		errors.Is(err, session.ErrInvalidPhase):
		return http.StatusConflict
	case errors.Is(err, cvinput.ErrTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validation),
		errors.As(err, &badInput),
		errors.Is(err, profile.ErrEmptyInput),
		errors.Is(err, cvinput.ErrUnsupported),
		errors.Is(err, cvinput.ErrNoText):
		return http.StatusBadRequest
	case errors.Is(err, profile.ErrAnalysisFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}
