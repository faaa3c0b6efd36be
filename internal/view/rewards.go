package view

import (
	"sort"

	"github.com/dukerupert/famdash/internal/model"
)

// SortAwards returns a copy of awards ordered ascending by star threshold.
func SortAwards(awards []model.Award) []model.Award {
	sorted := make([]model.Award, len(awards))
	copy(sorted, awards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Stars < sorted[j].Stars
	})
	return sorted
}

// ScoreRow is one member's star count on the rewards card.
type ScoreRow struct {
	Member string `json:"member"`
	Stars  int    `json:"stars"`
}

// Scoreboard lists every member in household order; members missing from
// the scores document show zero.
func Scoreboard(scores model.ScoreBoard, household model.Household) []ScoreRow {
	rows := make([]ScoreRow, 0, household.Len())
	for _, m := range household.Members() {
		rows = append(rows, ScoreRow{Member: m, Stars: scores[m]})
	}
	return rows
}
