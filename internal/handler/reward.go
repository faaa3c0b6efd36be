package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/famdash/internal/card"
	"github.com/dukerupert/famdash/internal/gateway"
)

type RewardHandler struct {
	card   *card.RewardsCard
	logger *slog.Logger
}

func NewRewardHandler(c *card.RewardsCard, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{card: c, logger: logger}
}

func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.card.View())
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f gateway.AwardForm
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.card.Submit(r.Context(), f); err != nil {
		writeSubmitError(w, h.logger, err, h.card.Form(), "award")
		return
	}
	writeJSON(w, http.StatusCreated, h.card.View())
}

// Delete removes the tier at the given star threshold. A threshold with
// no tier is a no-op and still succeeds.
func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	stars, err := strconv.Atoi(r.PathValue("stars"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid stars")
		return
	}
	if _, err := h.card.DeleteAward(r.Context(), stars); err != nil {
		writeWriteError(w, h.logger, err, "delete award")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RewardHandler) Form(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.card.Form())
}

func (h *RewardHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	h.card.OpenForm()
	writeJSON(w, http.StatusOK, h.card.Form())
}

func (h *RewardHandler) CloseForm(w http.ResponseWriter, r *http.Request) {
	h.card.CloseForm()
	writeJSON(w, http.StatusOK, h.card.Form())
}
