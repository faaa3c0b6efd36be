package view

import (
	"strconv"
	"time"

	"github.com/dukerupert/famdash/internal/model"
)

// GroupTasks partitions tasks by assignee. Every household member gets a
// key, with an empty (non-nil) slice when they have no tasks; snapshot
// order is preserved within each member. Tasks assigned outside the
// household are dropped.
func GroupTasks(tasks []model.Task, household model.Household) map[string][]model.Task {
	grouped := make(map[string][]model.Task, household.Len())
	for _, m := range household.Members() {
		grouped[m] = []model.Task{}
	}
	for _, t := range tasks {
		if list, ok := grouped[t.AssignedTo]; ok {
			grouped[t.AssignedTo] = append(list, t)
		}
	}
	return grouped
}

// Completion answers whether a task is checked off. It is how the overlay
// is composed into rows without merging it into the snapshot.
type Completion func(taskID string) bool

// TaskRow is a checklist line in a member column.
type TaskRow struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// MemberColumn is one member's column on the tasks card.
type MemberColumn struct {
	Member string    `json:"member"`
	Points int       `json:"points"`
	Tasks  []TaskRow `json:"tasks"`
}

// Columns builds one column per member in household order.
func Columns(tasks []model.Task, household model.Household, done Completion, points func(member string) int) []MemberColumn {
	grouped := GroupTasks(tasks, household)
	cols := make([]MemberColumn, 0, household.Len())
	for _, m := range household.Members() {
		rows := make([]TaskRow, 0, len(grouped[m]))
		for _, t := range grouped[m] {
			rows = append(rows, TaskRow{ID: t.ID, Title: t.Title, Completed: done(t.ID)})
		}
		cols = append(cols, MemberColumn{Member: m, Points: points(m), Tasks: rows})
	}
	return cols
}

// DetailRow is a line of a member's detailed task list.
type DetailRow struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Due        string `json:"due"`
	Priority   string `json:"priority"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Completed  bool   `json:"completed"`
}

func DetailRows(tasks []model.Task, done Completion, loc *time.Location) []DetailRow {
	rows := make([]DetailRow, 0, len(tasks))
	for _, t := range tasks {
		row := DetailRow{
			ID:         t.ID,
			Title:      t.Title,
			Due:        NotAvailable,
			Priority:   NotAvailable,
			Category:   NotAvailable,
			Difficulty: NotAvailable,
			Completed:  done(t.ID),
		}
		if t.DueDate != nil {
			row.Due = FormatDate(*t.DueDate, loc)
		}
		if t.Priority != nil && *t.Priority != "" {
			row.Priority = string(*t.Priority)
		}
		if t.Category != nil && *t.Category != "" {
			row.Category = *t.Category
		}
		if t.Difficulty != nil && *t.Difficulty != 0 {
			row.Difficulty = strconv.Itoa(*t.Difficulty)
		}
		rows = append(rows, row)
	}
	return rows
}
