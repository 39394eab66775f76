package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the JSON body of every API response. Empty marks a successful
// request whose view has nothing to show; Message then says why.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Empty   bool   `json:"empty,omitempty"`
	Success bool   `json:"success"`
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// success writes data with 200 OK.
func success(w http.ResponseWriter, data any, logger *slog.Logger) {
	writeEnvelope(w, http.StatusOK, Envelope{Success: true, Data: data}, logger)
}

// empty writes a 200 OK that carries a fallback message instead of data.
func empty(w http.ResponseWriter, message string, logger *slog.Logger) {
	writeEnvelope(w, http.StatusOK, Envelope{Success: true, Empty: true, Message: message}, logger)
}

// errorResponse writes an error with the given status code.
func errorResponse(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	writeEnvelope(w, status, Envelope{Error: message}, logger)
}

func badRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	errorResponse(w, http.StatusBadRequest, message, logger)
}

func notFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	errorResponse(w, http.StatusNotFound, message, logger)
}

func tooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	errorResponse(w, http.StatusTooManyRequests, message, logger)
}

func internalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	errorResponse(w, http.StatusInternalServerError, message, logger)
}
