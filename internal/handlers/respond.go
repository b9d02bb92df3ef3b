// Package handlers contains the HTTP request handlers for the Mediatiff API.
// Handlers parse requests, call services, and return the uniform
// success/error envelope the frontend expects.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/apperr"
)

// successEnvelope is the uniform success response body.
type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// errorEnvelope is the uniform failure response body.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, successEnvelope{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	env := errorEnvelope{Status: "error", Message: message}
	if err != nil {
		env.Error = err.Error()
	}
	respondJSON(w, status, env)
}

// respondServiceError maps the error taxonomy onto HTTP: validation 400,
// not-found 404, anything else 500 with a generic message and the cause
// logged rather than leaked.
func respondServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, message string, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, ve.Error(), nil)
		return
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		respondError(w, http.StatusNotFound, nf.Error(), nil)
		return
	}
	logger.Errorw(message, "error", err)
	respondError(w, http.StatusInternalServerError, message, err)
}
