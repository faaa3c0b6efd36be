package gateway

import (
	"sort"

	"github.com/dukerupert/famdash/internal/model"
)

// InsertAward returns a new list with a added, any tier at the same
// threshold replaced, sorted ascending by stars.
func InsertAward(current []model.Award, a model.Award) []model.Award {
	next := make([]model.Award, 0, len(current)+1)
	for _, existing := range current {
		if existing.Stars != a.Stars {
			next = append(next, existing)
		}
	}
	next = append(next, a)
	sort.SliceStable(next, func(i, j int) bool { return next[i].Stars < next[j].Stars })
	return next
}

// RemoveAward returns a new list without the tier at stars and whether one
// was removed. The input order is kept.
func RemoveAward(current []model.Award, stars int) ([]model.Award, bool) {
	next := make([]model.Award, 0, len(current))
	for _, existing := range current {
		if existing.Stars != stars {
			next = append(next, existing)
		}
	}
	return next, len(next) != len(current)
}
