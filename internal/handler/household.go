package handler

import (
	"net/http"

	"github.com/dukerupert/famdash/internal/model"
)

type HouseholdHandler struct {
	household model.Household
}

func NewHouseholdHandler(household model.Household) *HouseholdHandler {
	return &HouseholdHandler{household: household}
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"members": h.household.Members()})
}
