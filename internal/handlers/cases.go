package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/services"
)

// CaseHandler handles case lifecycle HTTP endpoints.
type CaseHandler struct {
	cases  *services.CaseService
	logger *zap.SugaredLogger
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(cases *services.CaseService, logger *zap.SugaredLogger) *CaseHandler {
	return &CaseHandler{cases: cases, logger: logger}
}

// Create handles POST /api/v1/cases
// Persists the case at PENDING and, when an opposite-party email is
// supplied, sends the notification; delivery advances the case to
// AWAITING_RESPONSE, failure leaves it at PENDING. Either way the created
// case is returned.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.cases.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "Error creating case", err)
		return
	}
	respondSuccess(w, http.StatusCreated, c)
}

// List handles GET /api/v1/cases
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.cases.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "Error fetching cases", err)
		return
	}
	respondSuccess(w, http.StatusOK, cases)
}

// Get handles GET /api/v1/cases/{id}
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid case id", nil)
		return
	}
	c, err := h.cases.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "Error fetching case", err)
		return
	}
	respondSuccess(w, http.StatusOK, c)
}

// Update handles PUT /api/v1/cases/{id}
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid case id", nil)
		return
	}

	var req models.UpdateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.cases.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, "Error updating case", err)
		return
	}
	respondSuccess(w, http.StatusOK, c)
}

// Delete handles DELETE /api/v1/cases/{id}
func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid case id", nil)
		return
	}
	if err := h.cases.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, "Error deleting case", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"id": id.String()})
}
