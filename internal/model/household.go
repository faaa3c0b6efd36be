package model

import "strings"

// DefaultMembers is used when no household is configured.
var DefaultMembers = []string{"Mira", "Shea", "Daddy", "Mommy"}

// Household is the fixed, ordered set of member names shared by every card.
type Household struct {
	members []string
}

// NewHousehold builds a household from names, trimming whitespace and
// dropping blanks and duplicates while keeping the first-seen order.
func NewHousehold(names ...string) Household {
	seen := make(map[string]bool, len(names))
	members := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		members = append(members, n)
	}
	return Household{members: members}
}

// Members returns a copy of the member names in display order.
func (h Household) Members() []string {
	out := make([]string, len(h.members))
	copy(out, h.members)
	return out
}

func (h Household) Has(name string) bool {
	for _, m := range h.members {
		if m == name {
			return true
		}
	}
	return false
}

func (h Household) Len() int { return len(h.members) }
