package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/famdash/internal/card"
	"github.com/dukerupert/famdash/internal/gateway"
	"github.com/dukerupert/famdash/internal/model"
)

type TaskHandler struct {
	card      *card.TasksCard
	household model.Household
	logger    *slog.Logger
}

func NewTaskHandler(c *card.TasksCard, household model.Household, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{card: c, household: household, logger: logger}
}

type memberRequest struct {
	Member string `json:"member"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.card.View())
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f gateway.TaskForm
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.card.Submit(r.Context(), f); err != nil {
		writeSubmitError(w, h.logger, err, h.card.Form(), "task")
		return
	}
	writeJSON(w, http.StatusCreated, h.card.View())
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.card.Delete(r.Context(), id); err != nil {
		writeWriteError(w, h.logger, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle flips the checkbox for a task in a member's column.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Member = strings.TrimSpace(req.Member)
	if req.Member == "" {
		writeError(w, http.StatusBadRequest, "member is required")
		return
	}
	if !h.household.Has(req.Member) {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	completed, err := h.card.Toggle(id, req.Member)
	if err != nil {
		writeWriteError(w, h.logger, err, "toggle task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        id,
		"member":    req.Member,
		"completed": completed,
		"points":    h.card.Points(req.Member),
	})
}

// Detailed returns a member's detailed task list.
func (h *TaskHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	member := r.PathValue("member")
	rows, ok := h.card.Detailed(member)
	if !ok {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member": member,
		"points": h.card.Points(member),
		"tasks":  rows,
	})
}

// OpenForm opens the add-task form, preselecting the member in the body
// when one is given.
func (h *TaskHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	if req.Member != "" && !h.household.Has(req.Member) {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	h.card.OpenFormFor(req.Member)
	writeJSON(w, http.StatusOK, h.card.Form())
}

func (h *TaskHandler) CloseForm(w http.ResponseWriter, r *http.Request) {
	h.card.CloseForm()
	writeJSON(w, http.StatusOK, h.card.Form())
}
