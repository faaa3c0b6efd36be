package card

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/famdash/internal/docstore"
	"github.com/dukerupert/famdash/internal/gateway"
	"github.com/dukerupert/famdash/internal/livesync"
	"github.com/dukerupert/famdash/internal/model"
	"github.com/dukerupert/famdash/internal/overlay"
	"github.com/dukerupert/famdash/internal/schedule"
	"github.com/dukerupert/famdash/internal/view"
)

// TasksView is the rendered tasks card: one column per member.
type TasksView struct {
	Columns   []view.MemberColumn                  `json:"columns"`
	NextReset time.Time                            `json:"nextReset"`
	Form      gateway.ModalState[gateway.TaskForm] `json:"form"`
}

type TasksCard struct {
	base
	store     docstore.Store
	gateway   *gateway.Gateway
	household model.Household
	loc       *time.Location
	form      *gateway.Modal[gateway.TaskForm]
	overlay   *overlay.Overlay
	timer     *schedule.Timer

	tasks []model.Task
}

func NewTasksCard(store docstore.Store, gw *gateway.Gateway, household model.Household, loc *time.Location, logger *slog.Logger) *TasksCard {
	if loc == nil {
		loc = time.Local
	}
	c := &TasksCard{
		base:      newBase(TasksName, logger),
		store:     store,
		gateway:   gw,
		household: household,
		loc:       loc,
		form:      gateway.NewModal(gateway.DefaultTaskForm()),
		overlay:   overlay.New(),
	}
	c.timer = schedule.NewTimer(schedule.WeeklyPointReset, loc, c.resetPoints, c.logger)
	return c
}

// Start subscribes to tasks ordered by due date and arms the weekly point
// reset.
func (c *TasksCard) Start(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}

	q := docstore.Query{Collection: model.TasksCollection, OrderBy: "dueDate"}
	sub, err := livesync.WatchCollection(ctx, c.store, q, c.onTasks, c.logger)
	if err != nil {
		c.Stop()
		return fmt.Errorf("start tasks card: %w", err)
	}
	c.track(sub)

	c.timer.Start()
	c.logger.Info("card started", "next_reset", c.timer.NextFire())
	return nil
}

func (c *TasksCard) Stop() {
	subs, ok := c.shutdown()
	if !ok {
		return
	}
	c.timer.Stop()
	c.release(subs)
}

func (c *TasksCard) onTasks(tasks []model.Task) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.tasks = tasks
	c.mu.Unlock()
	c.changed()
}

func (c *TasksCard) resetPoints(at time.Time) {
	if !c.live() {
		return
	}
	c.overlay.ResetPoints()
	c.logger.Info("weekly points reset", "at", at)
	c.changed()
}

func (c *TasksCard) lookup(taskID string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return model.Task{}, false
}

// Toggle flips a task's checkbox in member's column and returns the new
// state. The member's weekly points move by the task's difficulty.
func (c *TasksCard) Toggle(taskID, member string) (bool, error) {
	if !c.live() {
		return false, ErrStopped
	}
	checked := c.overlay.Toggle(taskID, member, c.lookup)
	c.changed()
	return checked, nil
}

func (c *TasksCard) Points(member string) int {
	return c.overlay.Points(member)
}

func (c *TasksCard) View() TasksView {
	c.mu.Lock()
	cols := view.Columns(c.tasks, c.household, c.overlay.Completed, c.overlay.Points)
	c.mu.Unlock()
	return TasksView{Columns: cols, NextReset: c.timer.NextFire(), Form: c.form.State()}
}

// Detailed returns member's detailed task list. ok is false when member is
// not in the household.
func (c *TasksCard) Detailed(member string) (rows []view.DetailRow, ok bool) {
	if !c.household.Has(member) {
		return nil, false
	}
	c.mu.Lock()
	tasks := view.GroupTasks(c.tasks, c.household)[member]
	c.mu.Unlock()
	return view.DetailRows(tasks, c.overlay.Completed, c.loc), true
}

func (c *TasksCard) Form() gateway.ModalState[gateway.TaskForm] {
	return c.form.State()
}

// OpenFormFor opens the add-task form with member preselected.
func (c *TasksCard) OpenFormFor(member string) {
	f := c.form.Defaults()
	f.AssignedTo = member
	c.form.Open(f)
	c.changed()
}

func (c *TasksCard) CloseForm() {
	c.form.Close()
	c.changed()
}

// Submit enters f into the add-task form and submits it.
func (c *TasksCard) Submit(ctx context.Context, f gateway.TaskForm) error {
	if !c.live() {
		return ErrStopped
	}
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.form.Open(f)
	err := gateway.Submit(ctx, c.form, func(ctx context.Context, f gateway.TaskForm) error {
		_, err := c.gateway.CreateTask(ctx, f)
		return err
	}, c.live)
	if c.live() {
		c.changed()
	}
	return err
}

func (c *TasksCard) Delete(ctx context.Context, id string) error {
	if !c.live() {
		return ErrStopped
	}
	return c.gateway.DeleteTask(ctx, id)
}
