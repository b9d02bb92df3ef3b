package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/services"
)

// PanelHandler handles mediation panel HTTP endpoints.
type PanelHandler struct {
	panels *services.PanelService
	logger *zap.SugaredLogger
}

// NewPanelHandler creates a new panel handler.
func NewPanelHandler(panels *services.PanelService, logger *zap.SugaredLogger) *PanelHandler {
	return &PanelHandler{panels: panels, logger: logger}
}

// Create handles POST /api/v1/panels
// Registering a panel does not move the case to PANEL_CREATED; callers
// advance the lifecycle explicitly through the case update endpoint.
func (h *PanelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePanelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	panel, err := h.panels.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "Error creating mediation panel", err)
		return
	}
	respondSuccess(w, http.StatusCreated, panel)
}

// List handles GET /api/v1/panels
func (h *PanelHandler) List(w http.ResponseWriter, r *http.Request) {
	panels, err := h.panels.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "Error fetching mediation panels", err)
		return
	}
	respondSuccess(w, http.StatusOK, panels)
}
