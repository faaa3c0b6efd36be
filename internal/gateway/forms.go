package gateway

import "strings"

// EventForm is the add-event modal. Date is "2006-01-02"; Time is an
// optional 24-hour "15:04".
type EventForm struct {
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"omitempty,datetime=15:04"`
	Description string `json:"description"`
}

func (f EventForm) normalized() EventForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	return f
}

// TaskForm is the add-task modal. A zero Difficulty means unset.
type TaskForm struct {
	Title      string `json:"title" validate:"required"`
	DueDate    string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority   string `json:"priority" validate:"omitempty,oneof=High Medium Low"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty" validate:"omitempty,min=1,max=5"`
	AssignedTo string `json:"assignedTo" validate:"required,member"`
}

// DefaultTaskForm mirrors the modal's initial selections.
func DefaultTaskForm() TaskForm {
	return TaskForm{Priority: "Medium", Difficulty: 1}
}

func (f TaskForm) normalized() TaskForm {
	f.Title = strings.TrimSpace(f.Title)
	f.DueDate = strings.TrimSpace(f.DueDate)
	f.Category = strings.TrimSpace(f.Category)
	f.AssignedTo = strings.TrimSpace(f.AssignedTo)
	return f
}

// AwardForm is the add-award modal. Stars is the raw text of the star
// field and must be a non-negative whole number.
type AwardForm struct {
	Stars string `json:"stars" validate:"required,number"`
	Name  string `json:"name" validate:"required"`
}

func (f AwardForm) normalized() AwardForm {
	f.Stars = strings.TrimSpace(f.Stars)
	f.Name = strings.TrimSpace(f.Name)
	return f
}
