package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/famdash/internal/card"
	"github.com/dukerupert/famdash/internal/gateway"
)

type EventHandler struct {
	card   *card.EventsCard
	logger *slog.Logger
}

func NewEventHandler(c *card.EventsCard, logger *slog.Logger) *EventHandler {
	return &EventHandler{card: c, logger: logger}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.card.View())
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f gateway.EventForm
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.card.Submit(r.Context(), f); err != nil {
		writeSubmitError(w, h.logger, err, h.card.Form(), "event")
		return
	}
	writeJSON(w, http.StatusCreated, h.card.View())
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.card.Delete(r.Context(), id); err != nil {
		writeWriteError(w, h.logger, err, "delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) Form(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.card.Form())
}

func (h *EventHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	h.card.OpenForm()
	writeJSON(w, http.StatusOK, h.card.Form())
}

func (h *EventHandler) CloseForm(w http.ResponseWriter, r *http.Request) {
	h.card.CloseForm()
	writeJSON(w, http.StatusOK, h.card.Form())
}
