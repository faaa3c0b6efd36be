// Package gateway turns submitted forms into store writes. Failures are
// logged and returned; nothing here retries.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/famdash/internal/docstore"
	"github.com/dukerupert/famdash/internal/model"
)

// ErrInvalid wraps every client-side validation failure.
var ErrInvalid = errors.New("invalid form")

type Gateway struct {
	store     docstore.Store
	household model.Household
	validate  *validator.Validate
	now       func() time.Time
	logger    *slog.Logger
}

func New(store docstore.Store, household model.Household, logger *slog.Logger) *Gateway {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("member", func(fl validator.FieldLevel) bool {
		return household.Has(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register member validation: %v", err))
	}
	return &Gateway{
		store:     store,
		household: household,
		validate:  v,
		now:       time.Now,
		logger:    logger,
	}
}

func (g *Gateway) check(form any) error {
	if err := g.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			g.logger.Debug("form rejected", "field", verrs[0].Field(), "rule", verrs[0].Tag())
			return fmt.Errorf("%w: %s failed %q", ErrInvalid, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// --- Events ---

// CreateEvent validates f and adds the event. A blank time is stored as
// null.
func (g *Gateway) CreateEvent(ctx context.Context, f EventForm) (string, error) {
	f = f.normalized()
	if err := g.check(f); err != nil {
		return "", err
	}

	date, err := time.Parse(time.DateOnly, f.Date)
	if err != nil {
		return "", fmt.Errorf("%w: date: %v", ErrInvalid, err)
	}

	event := model.Event{
		Title:       f.Title,
		Date:        date,
		Description: f.Description,
		CreatedAt:   g.now().UTC(),
	}
	if f.Time != "" {
		t := f.Time
		event.Time = &t
	}

	id, err := g.store.Add(ctx, model.EventsCollection, event)
	if err != nil {
		g.logger.Error("add event failed", "title", f.Title, "error", err)
		return "", fmt.Errorf("add event: %w", err)
	}
	return id, nil
}

func (g *Gateway) DeleteEvent(ctx context.Context, id string) error {
	if err := g.store.Delete(ctx, model.EventsCollection, id); err != nil {
		g.logger.Error("delete event failed", "id", id, "error", err)
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// --- Tasks ---

// CreateTask validates f and adds the task. Blank optional fields are
// stored as null.
func (g *Gateway) CreateTask(ctx context.Context, f TaskForm) (string, error) {
	f = f.normalized()
	if err := g.check(f); err != nil {
		return "", err
	}

	task := model.Task{
		Title:      f.Title,
		AssignedTo: f.AssignedTo,
		CreatedAt:  g.now().UTC(),
	}
	if f.DueDate != "" {
		due, err := time.Parse(time.DateOnly, f.DueDate)
		if err != nil {
			return "", fmt.Errorf("%w: dueDate: %v", ErrInvalid, err)
		}
		task.DueDate = &due
	}
	if f.Priority != "" {
		p := model.Priority(f.Priority)
		task.Priority = &p
	}
	if f.Category != "" {
		c := f.Category
		task.Category = &c
	}
	if f.Difficulty != 0 {
		d := f.Difficulty
		task.Difficulty = &d
	}

	id, err := g.store.Add(ctx, model.TasksCollection, task)
	if err != nil {
		g.logger.Error("add task failed", "title", f.Title, "assigned_to", f.AssignedTo, "error", err)
		return "", fmt.Errorf("add task: %w", err)
	}
	return id, nil
}

func (g *Gateway) DeleteTask(ctx context.Context, id string) error {
	if err := g.store.Delete(ctx, model.TasksCollection, id); err != nil {
		g.logger.Error("delete task failed", "id", id, "error", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// --- Awards ---

// AddAward rewrites the award list with f's tier inserted in star order.
// An existing tier with the same threshold is replaced. It returns the list
// that was written.
func (g *Gateway) AddAward(ctx context.Context, current []model.Award, f AwardForm) ([]model.Award, error) {
	f = f.normalized()
	if err := g.check(f); err != nil {
		return nil, err
	}

	stars, err := strconv.Atoi(f.Stars)
	if err != nil {
		return nil, fmt.Errorf("%w: stars: %v", ErrInvalid, err)
	}

	next := InsertAward(current, model.Award{Stars: stars, Reward: f.Name})
	if err := g.writeAwards(ctx, next); err != nil {
		g.logger.Error("add award failed", "stars", stars, "error", err)
		return nil, fmt.Errorf("add award: %w", err)
	}
	return next, nil
}

// DeleteAward rewrites the award list without the tier at stars. When no
// tier matches nothing is written and changed is false.
func (g *Gateway) DeleteAward(ctx context.Context, current []model.Award, stars int) (next []model.Award, changed bool, err error) {
	next, changed = RemoveAward(current, stars)
	if !changed {
		return current, false, nil
	}
	if err := g.writeAwards(ctx, next); err != nil {
		g.logger.Error("delete award failed", "stars", stars, "error", err)
		return nil, false, fmt.Errorf("delete award: %w", err)
	}
	return next, true, nil
}

// SeedAwards writes the whole award document. It backs the one-time
// initialization when the document is first found missing; concurrent
// seeders simply overwrite each other.
func (g *Gateway) SeedAwards(ctx context.Context, awards []model.Award) error {
	err := g.store.Set(ctx, model.AwardsCollection, model.AwardsDocument, model.AwardList{Rewards: awards})
	if err != nil {
		g.logger.Error("seed awards failed", "error", err)
		return fmt.Errorf("seed awards: %w", err)
	}
	return nil
}

// writeAwards overwrites the rewards field, creating the document if it
// has gone missing.
func (g *Gateway) writeAwards(ctx context.Context, awards []model.Award) error {
	err := g.store.Update(ctx, model.AwardsCollection, model.AwardsDocument, model.AwardsField, awards)
	if errors.Is(err, docstore.ErrNotFound) {
		return g.store.Set(ctx, model.AwardsCollection, model.AwardsDocument, model.AwardList{Rewards: awards})
	}
	return err
}
