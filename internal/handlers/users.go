package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/services"
)

// UserHandler handles party directory HTTP endpoints.
type UserHandler struct {
	users  *services.UserService
	logger *zap.SugaredLogger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *services.UserService, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.users.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "Error creating user", err)
		return
	}
	respondSuccess(w, http.StatusCreated, user)
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, "Error fetching users", err)
		return
	}
	respondSuccess(w, http.StatusOK, users)
}

// Lookup handles GET /api/v1/users/lookup?email=
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		respondServiceError(w, h.logger, "Error fetching user", err)
		return
	}
	respondSuccess(w, http.StatusOK, user)
}

func parseIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user id", nil)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, "Error fetching user", err)
		return
	}
	respondSuccess(w, http.StatusOK, user)
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user id", nil)
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.users.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, "Error updating user", err)
		return
	}
	respondSuccess(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user id", nil)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, "Error deleting user", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"id": id.String()})
}
