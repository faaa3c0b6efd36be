package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/famdash/internal/card"
	"github.com/dukerupert/famdash/internal/gateway"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// formError is returned when a submission fails; form holds the modal
// state so the client can keep showing the user's input.
type formError struct {
	Error string `json:"error"`
	Form  any    `json:"form"`
}

// writeSubmitError maps a card submission error to a response. Validation
// failures are 422 and store failures 502, both with the form state.
func writeSubmitError(w http.ResponseWriter, logger *slog.Logger, err error, form any, what string) {
	switch {
	case errors.Is(err, gateway.ErrInvalid):
		writeJSON(w, http.StatusUnprocessableEntity, formError{Error: err.Error(), Form: form})
	case errors.Is(err, card.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "dashboard is shutting down")
	default:
		logger.Error("submit failed", "what", what, "error", err)
		writeJSON(w, http.StatusBadGateway, formError{Error: "failed to save " + what, Form: form})
	}
}

// writeWriteError maps a delete or toggle error to a response.
func writeWriteError(w http.ResponseWriter, logger *slog.Logger, err error, what string) {
	if errors.Is(err, card.ErrStopped) {
		writeError(w, http.StatusServiceUnavailable, "dashboard is shutting down")
		return
	}
	logger.Error("write failed", "what", what, "error", err)
	writeError(w, http.StatusBadGateway, "failed to "+what)
}
