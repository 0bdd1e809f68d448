package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/spigell/jobnado/internal/ai"
	"github.com/spigell/jobnado/internal/cvinput"
	"github.com/spigell/jobnado/internal/profile"
	"github.com/spigell/jobnado/internal/session"
	"go.uber.org/zap"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.deps.Sessions.Start(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.deps.Sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Sessions.Reset(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type analysisRequest struct {
	Text     string `json:"text"`
	Image    []byte `json:"image"`
	MIMEType string `json:"mimeType"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	in, err := s.readCV(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}

	state, err := s.deps.Sessions.Analyze(r.Context(), r.PathValue("id"), in)
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if state != nil && state.Error != "" {
			msg = state.Error
		}
		if status >= http.StatusInternalServerError {
			s.logger.Warn("analysis failed", zap.Error(err))
		}
		writeJSON(w, status, errorResponse{Error: msg, Session: state})
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// readCV accepts a multipart upload in the cv field or a JSON body.
func (s *Server) readCV(w http.ResponseWriter, r *http.Request) (profile.Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("cv")
		if err != nil {
			return profile.Input{}, badRequest(fmt.Errorf("read cv upload: %w", err))
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return profile.Input{}, badRequest(err)
		}
		return cvinput.FromBytes(header.Filename, data)
	}

	var req analysisRequest
	if err := decodeJSON(r, &req); err != nil {
		return profile.Input{}, badRequest(err)
	}

	if len(req.Image) > 0 {
		return profile.ImageInput(req.MIMEType, req.Image), nil
	}
	return profile.TextInput(req.Text), nil
}

type searchRequest struct {
	Country string `json:"country"`
	Role    string `json:"role"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		s.fail(w, badRequest(err))
		return
	}

	state, err := s.deps.Sessions.Search(r.Context(), r.PathValue("id"), req.Country, req.Role)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type phaseRequest struct {
	Phase session.Phase `json:"phase"`
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	var req phaseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, badRequest(err))
		return
	}

	phase := session.Phase(strings.ToUpper(strings.TrimSpace(string(req.Phase))))
	state, err := s.deps.Sessions.Navigate(r.Context(), r.PathValue("id"), phase)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) outreach(w http.ResponseWriter, r *http.Request) {
	state, job, err := s.deps.Sessions.Opportunity(r.Context(), r.PathValue("id"), r.PathValue("jobID"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": s.deps.Artifacts.Outreach(r.Context(), job, state.Analysis)})
}

func (s *Server) coverLetter(w http.ResponseWriter, r *http.Request) {
	state, job, err := s.deps.Sessions.Opportunity(r.Context(), r.PathValue("id"), r.PathValue("jobID"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"coverLetter": s.deps.Artifacts.CoverLetter(r.Context(), job, state.Analysis)})
}

func (s *Server) interviewQuestions(w http.ResponseWriter, r *http.Request) {
	state, job, err := s.deps.Sessions.Opportunity(r.Context(), r.PathValue("id"), r.PathValue("jobID"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"questions": s.deps.Artifacts.InterviewQuestions(r.Context(), job, state.Analysis)})
}

type evaluateRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, badRequest(err))
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	writeJSON(w, http.StatusOK, s.deps.Artifacts.EvaluateAnswer(r.Context(), req.Question, req.Answer))
}

type chatRequest struct {
	History []ai.Message `json:"history"`
	Message string       `json:"message"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, badRequest(err))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": s.deps.Artifacts.Chat(r.Context(), req.History, req.Message)})
}

type subscribeRequest struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	Country   string `json:"country"`
	Frequency string `json:"frequency"`
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	if s.deps.Subscriptions == nil {
		writeError(w, http.StatusServiceUnavailable, "alerts are disabled")
		return
	}

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, badRequest(err))
		return
	}

	sub, err := s.deps.Subscriptions.Subscribe(r.Context(), req.Email, req.Role, req.Country, req.Frequency)
	if err != nil {
		if sub != nil {
			s.logger.Warn("confirmation email failed", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "subscription": sub})
			return
		}
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) {
	if s.deps.Subscriptions == nil {
		writeError(w, http.StatusServiceUnavailable, "alerts are disabled")
		return
	}

	if err := s.deps.Subscriptions.Unsubscribe(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	if s.deps.Sweeper == nil {
		writeError(w, http.StatusServiceUnavailable, "alerts are disabled")
		return
	}

	report, err := s.deps.Sweeper.Run(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

// decodeOptionalJSON treats an empty body as an empty request.
func decodeOptionalJSON(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
