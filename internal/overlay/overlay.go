// Package overlay holds task state that is deliberately never written to
// the store: completion checkboxes and the weekly point tally. It is keyed
// by task id and composed with the task snapshot only when views are built.
package overlay

import (
	"sync"

	"github.com/dukerupert/famdash/internal/model"
)

// Lookup finds a task in the current snapshot.
type Lookup func(taskID string) (model.Task, bool)

type Overlay struct {
	mu        sync.Mutex
	completed map[string]bool
	tally     map[string]int
}

func New() *Overlay {
	return &Overlay{
		completed: make(map[string]bool),
		tally:     make(map[string]int),
	}
}

// Toggle flips the completion flag for taskID and returns the new state.
// Checking credits owner with the task's difficulty (zero when unset);
// unchecking debits the same amount. When lookup cannot find the task the
// flag still flips but the tally is left alone.
func (o *Overlay) Toggle(taskID, owner string, lookup Lookup) bool {
	task, found := lookup(taskID)

	o.mu.Lock()
	defer o.mu.Unlock()

	checked := !o.completed[taskID]
	o.completed[taskID] = checked

	if found {
		if checked {
			o.tally[owner] += task.Points()
		} else {
			o.tally[owner] -= task.Points()
		}
	}
	return checked
}

func (o *Overlay) Completed(taskID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.completed[taskID]
}

func (o *Overlay) Points(member string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tally[member]
}

// Tally returns a copy of the point tally.
func (o *Overlay) Tally() map[string]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]int, len(o.tally))
	for k, v := range o.tally {
		out[k] = v
	}
	return out
}

// ResetPoints zeroes the tally. Completion flags are kept.
func (o *Overlay) ResetPoints() {
	o.mu.Lock()
	o.tally = make(map[string]int)
	o.mu.Unlock()
}

// Prune drops completion flags for tasks not in live and returns how many
// were removed. Cards do not call it on snapshot changes.
func (o *Overlay) Prune(live map[string]bool) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for id := range o.completed {
		if !live[id] {
			delete(o.completed, id)
			n++
		}
	}
	return n
}
