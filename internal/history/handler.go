package history

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/unt-prep/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ListResults handles GET /api/v1/results
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	results, err := h.store.ListByUser(r.Context(), userID, 0)
	if err != nil {
		log.Printf("[history] ERROR listing results for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to list results")
		return
	}
	if results == nil {
		results = []models.Result{}
	}

	writeJSON(w, http.StatusOK, models.ResultListResponse{
		Results: results,
		Total:   len(results),
	})
}

// GetResult handles GET /api/v1/results/{id}
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid result id")
		return
	}

	result, err := h.store.Get(r.Context(), id, userID)
	if err != nil {
		log.Printf("[history] ERROR fetching result %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch result")
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "Result not found")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetTrend handles GET /api/v1/results/trend
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	results, err := h.store.LatestDiagnostics(r.Context(), userID, 2)
	if err != nil {
		log.Printf("[history] ERROR loading diagnostics for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to compute trend")
		return
	}
	if len(results) < 2 {
		writeError(w, http.StatusNotFound, "Need at least two diagnostic results for a trend")
		return
	}

	trend := ComputeTrend(results[0], results[1])
	writeJSON(w, http.StatusOK, trend)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[history] ERROR encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
