package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizbank-service/internal/app"
	"quizbank-service/internal/domain"
)

// RESTHandler serves the catalog queries and attempt commands as JSON.
type RESTHandler struct {
	catalog  *app.CatalogService
	attempts *app.AttemptService
}

func NewRESTHandler(catalog *app.CatalogService, attempts *app.AttemptService) *RESTHandler {
	return &RESTHandler{catalog: catalog, attempts: attempts}
}

// Register mounts the REST routes on mux.
func (h *RESTHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/subjects", h.listSubjects)
	mux.HandleFunc("GET /api/subjects/{id}", h.getSubject)
	mux.HandleFunc("GET /api/question-banks", h.listQuestionBanks)
	mux.HandleFunc("GET /api/question-banks/{id}", h.getQuestionBank)
	mux.HandleFunc("GET /api/questions/{questionBankId}", h.listQuestions)
	mux.HandleFunc("POST /api/quiz-attempts", h.createAttempt)
	mux.HandleFunc("GET /api/users/{userId}/quiz-attempts", h.listAttempts)
}

func (h *RESTHandler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.catalog.ListSubjects(r.Context())
	if err != nil {
		writeError(w, err, "Failed to fetch subjects")
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *RESTHandler) getSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := h.catalog.GetSubject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Failed to fetch subject")
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *RESTHandler) listQuestionBanks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	banks, err := h.catalog.ListQuestionBanks(r.Context(), q.Get("subjectId"), q.Get("classLevel"))
	if err != nil {
		writeError(w, err, "Failed to fetch question banks")
		return
	}
	writeJSON(w, http.StatusOK, banks)
}

func (h *RESTHandler) getQuestionBank(w http.ResponseWriter, r *http.Request) {
	bank, err := h.catalog.GetQuestionBank(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Failed to fetch question bank")
		return
	}
	writeJSON(w, http.StatusOK, bank)
}

func (h *RESTHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.ListQuestions(r.Context(), r.PathValue("questionBankId"))
	if err != nil {
		writeError(w, err, "Failed to fetch questions")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *RESTHandler) createAttempt(w http.ResponseWriter, r *http.Request) {
	var req domain.AttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "Invalid quiz attempt data"})
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, err, "Failed to create quiz attempt")
		return
	}
	attempt, err := h.attempts.Record(r.Context(), in)
	if err != nil {
		writeError(w, err, "Failed to create quiz attempt")
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *RESTHandler) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attempts.ListByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err, "Failed to fetch quiz attempts")
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

// writeError maps domain errors to status codes. Unexpected errors are logged
// and reported with the generic message only.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMissingFilter):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
	default:
		log.Printf("%s: %v", fallback, err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: fallback})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
