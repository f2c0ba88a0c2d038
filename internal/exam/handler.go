package exam

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/unt-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, h.service.CreateSession(userID))
}

// GetSession handles GET /api/v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Snapshot(id, userID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Configure handles POST /api/v1/sessions/{id}/configure
func (h *Handler) Configure(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	var req models.ConfigureSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.respond(w, userID, id, func(s *Session) error {
		return s.Configure(req.Variant, req.Subjects, h.service.bank)
	})
}

// Start handles POST /api/v1/sessions/{id}/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	h.respond(w, userID, id, (*Session).Start)
}

// SetAnswer handles POST /api/v1/sessions/{id}/answer
func (h *Handler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	var req models.SetAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.respond(w, userID, id, func(s *Session) error {
		return s.SetAnswer(req.QuestionID, req.OptionIndex)
	})
}

// ToggleFlag handles POST /api/v1/sessions/{id}/flag
func (h *Handler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	var req models.ToggleFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.respond(w, userID, id, func(s *Session) error {
		return s.ToggleFlag(req.QuestionID)
	})
}

// Next handles POST /api/v1/sessions/{id}/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	h.respond(w, userID, id, (*Session).Next)
}

// Prev handles POST /api/v1/sessions/{id}/prev
func (h *Handler) Prev(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	h.respond(w, userID, id, (*Session).Prev)
}

// Navigate handles POST /api/v1/sessions/{id}/navigate
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	var req models.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.respond(w, userID, id, func(s *Session) error {
		return s.NavigateTo(req.BlockIndex, req.QuestionIndex)
	})
}

// Finish handles POST /api/v1/sessions/{id}/finish
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Finish(r.Context(), id, userID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Review handles POST /api/v1/sessions/{id}/review — it enters (or stays in)
// reviewing, moves the pointer, and returns the question with its answer key.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var resp models.ReviewResponse
	_, err := h.service.Do(id, userID, func(s *Session) error {
		if err := s.Review(req.BlockIndex, req.QuestionIndex); err != nil {
			return err
		}
		q, found := s.CurrentQuestion()
		if !found {
			return ErrQuestionNotInSession
		}
		record := s.Answers[q.ID]
		resp = models.ReviewResponse{
			Phase:         s.Phase,
			BlockIndex:    s.BlockIndex,
			QuestionIndex: s.QuestionIndex,
			Question:      q,
			Answer:        *record,
			Correct:       record.Selected != nil && *record.Selected == q.CorrectOption,
		}
		return nil
	})
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// EndReview handles POST /api/v1/sessions/{id}/review/end
func (h *Handler) EndReview(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	h.respond(w, userID, id, (*Session).EndReview)
}

// Reset handles POST /api/v1/sessions/{id}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := sessionScope(w, r)
	if !ok {
		return
	}
	h.respond(w, userID, id, func(s *Session) error {
		s.Reset()
		return nil
	})
}

// SubmitDiagnostic handles POST /api/v1/diagnostic
func (h *Handler) SubmitDiagnostic(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req models.DiagnosticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "No answers submitted")
		return
	}

	result, err := h.service.SubmitDiagnostic(r.Context(), userID, req)
	if err != nil {
		log.Printf("[exam] ERROR scoring diagnostic for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to score diagnostic")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) respond(w http.ResponseWriter, userID int64, id uuid.UUID, op func(*Session) error) {
	snap, err := h.service.Do(id, userID, op)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	return userID, true
}

func sessionScope(w http.ResponseWriter, r *http.Request) (int64, uuid.UUID, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return 0, uuid.Nil, false
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return 0, uuid.Nil, false
	}
	return userID, id, true
}

// writeOpError maps state-machine errors onto HTTP statuses: wrong-phase
// commands conflict with the session's current state, everything the client
// could fix is a bad request.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotConfigured):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidConfiguration),
		errors.Is(err, ErrQuestionNotInSession),
		errors.Is(err, ErrInvalidOption):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		log.Printf("[exam] ERROR: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[exam] ERROR encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
