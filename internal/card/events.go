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
	"github.com/dukerupert/famdash/internal/view"
)

// EventsView is the rendered events card.
type EventsView struct {
	Events []view.EventRow                       `json:"events"`
	Form   gateway.ModalState[gateway.EventForm] `json:"form"`
}

type EventsCard struct {
	base
	store   docstore.Store
	gateway *gateway.Gateway
	loc     *time.Location
	form    *gateway.Modal[gateway.EventForm]

	events []model.Event
}

func NewEventsCard(store docstore.Store, gw *gateway.Gateway, loc *time.Location, logger *slog.Logger) *EventsCard {
	if loc == nil {
		loc = time.Local
	}
	return &EventsCard{
		base:    newBase(EventsName, logger),
		store:   store,
		gateway: gw,
		loc:     loc,
		form:    gateway.NewModal(gateway.EventForm{}),
	}
}

// Start subscribes to events ordered by date.
func (c *EventsCard) Start(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}

	q := docstore.Query{Collection: model.EventsCollection, OrderBy: "date"}
	sub, err := livesync.WatchCollection(ctx, c.store, q, c.onEvents, c.logger)
	if err != nil {
		c.Stop()
		return fmt.Errorf("start events card: %w", err)
	}
	c.track(sub)
	c.logger.Info("card started")
	return nil
}

func (c *EventsCard) Stop() {
	if subs, ok := c.shutdown(); ok {
		c.release(subs)
	}
}

func (c *EventsCard) onEvents(events []model.Event) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.events = events
	c.mu.Unlock()
	c.changed()
}

func (c *EventsCard) View() EventsView {
	c.mu.Lock()
	rows := view.EventRows(c.events, c.loc)
	c.mu.Unlock()
	return EventsView{Events: rows, Form: c.form.State()}
}

func (c *EventsCard) Form() gateway.ModalState[gateway.EventForm] {
	return c.form.State()
}

func (c *EventsCard) OpenForm() {
	c.form.OpenDefault()
	c.changed()
}

func (c *EventsCard) CloseForm() {
	c.form.Close()
	c.changed()
}

// Submit enters f into the add-event form and submits it. On failure the
// form stays open with f in it.
func (c *EventsCard) Submit(ctx context.Context, f gateway.EventForm) error {
	if !c.live() {
		return ErrStopped
	}
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.form.Open(f)
	err := gateway.Submit(ctx, c.form, func(ctx context.Context, f gateway.EventForm) error {
		_, err := c.gateway.CreateEvent(ctx, f)
		return err
	}, c.live)
	if c.live() {
		c.changed()
	}
	return err
}

func (c *EventsCard) Delete(ctx context.Context, id string) error {
	if !c.live() {
		return ErrStopped
	}
	return c.gateway.DeleteEvent(ctx, id)
}
