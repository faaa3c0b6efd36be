package model

import "time"

// TasksCollection is the store collection holding household tasks.
const TasksCollection = "tasks"

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Task is a persisted task. Completion is not stored here; it lives in the
// in-memory overlay only.
type Task struct {
	ID         string     `firestore:"-" json:"id,omitempty"`
	Title      string     `firestore:"title" json:"title"`
	DueDate    *time.Time `firestore:"dueDate" json:"dueDate"`
	Priority   *Priority  `firestore:"priority" json:"priority"`
	Category   *string    `firestore:"category" json:"category"`
	Difficulty *int       `firestore:"difficulty" json:"difficulty"`
	AssignedTo string     `firestore:"assignedTo" json:"assignedTo"`
	CreatedAt  time.Time  `firestore:"createdAt" json:"createdAt"`
}

func (t *Task) SetID(id string) { t.ID = id }

// Points is the difficulty credited when the task is checked off.
func (t Task) Points() int {
	if t.Difficulty == nil {
		return 0
	}
	return *t.Difficulty
}
