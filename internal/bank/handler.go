package bank

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/unt-prep/backend/internal/models"
)

type Handler struct {
	bank  *Bank
	store *Store
}

func NewHandler(bank *Bank, store *Store) *Handler {
	return &Handler{bank: bank, store: store}
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.SubjectListResponse{Subjects: h.bank.Subjects()})
}

// ExportQuestions dumps the full bank as a versioned envelope.
func (h *Handler) ExportQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.LoadAll(r.Context())
	if err != nil {
		log.Printf("[bank] export error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Export failed"})
		return
	}

	export := make([]models.ExportQuestion, 0, len(questions))
	for _, q := range questions {
		export = append(export, models.ExportQuestion{
			Subject:       q.Subject,
			Topic:         q.Topic,
			Prompt:        q.Prompt,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			BlockTag:      q.BlockTag,
		})
	}

	writeJSON(w, http.StatusOK, models.ExportEnvelope{
		Version:    1,
		ExportedAt: time.Now().UTC(),
		Questions:  export,
	})
}

// ImportQuestions validates the payload, skips duplicates by (subject, prompt),
// inserts the rest, and reloads the in-memory snapshot.
func (h *Handler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20) // 50MB limit

	var envelope models.ExportEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if envelope.Version != 1 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("unsupported export version: %d", envelope.Version)})
		return
	}
	if len(envelope.Questions) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No questions in payload"})
		return
	}

	for i, q := range envelope.Questions {
		if err := validateImportQuestion(q); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("question %d: %v", i+1, err)})
			return
		}
	}

	existing, err := h.store.ExistingPrompts(r.Context())
	if err != nil {
		log.Printf("[bank] import dedupe error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Import failed"})
		return
	}

	fresh := make([]models.ExportQuestion, 0, len(envelope.Questions))
	skipped := 0
	for _, q := range envelope.Questions {
		key := string(q.Subject) + "||" + q.Prompt
		if existing[key] {
			skipped++
			continue
		}
		existing[key] = true // dedupe within the payload too
		fresh = append(fresh, q)
	}

	imported := 0
	if len(fresh) > 0 {
		imported, err = h.store.InsertQuestions(r.Context(), fresh)
		if err != nil {
			log.Printf("[bank] import insert error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Import failed"})
			return
		}
		if err := h.bank.Load(r.Context()); err != nil {
			log.Printf("WARN: bank reload after import failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, models.ImportResult{
		TotalInPayload: len(envelope.Questions),
		Imported:       imported,
		Skipped:        skipped,
	})
}

func validateImportQuestion(q models.ExportQuestion) error {
	if !models.ValidSubject(q.Subject) {
		return fmt.Errorf("invalid subject %q", q.Subject)
	}
	if q.Topic == "" {
		return fmt.Errorf("empty topic")
	}
	if q.Prompt == "" {
		return fmt.Errorf("empty prompt")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("expected at least 2 options, got %d", len(q.Options))
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return fmt.Errorf("correct_option %d out of range for %d options", q.CorrectOption, len(q.Options))
	}
	if q.Explanation == "" {
		return fmt.Errorf("empty explanation")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
