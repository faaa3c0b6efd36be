package card

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/famdash/internal/docstore"
	"github.com/dukerupert/famdash/internal/gateway"
	"github.com/dukerupert/famdash/internal/model"
)

// Dashboard owns the three cards of one household.
type Dashboard struct {
	Events  *EventsCard
	Tasks   *TasksCard
	Rewards *RewardsCard

	logger *slog.Logger
}

func NewDashboard(store docstore.Store, household model.Household, loc *time.Location, logger *slog.Logger) *Dashboard {
	gw := gateway.New(store, household, logger.With("component", "gateway"))
	return &Dashboard{
		Events:  NewEventsCard(store, gw, loc, logger),
		Tasks:   NewTasksCard(store, gw, household, loc, logger),
		Rewards: NewRewardsCard(store, gw, household, logger),
		logger:  logger.With("component", "dashboard"),
	}
}

type lifecycle interface {
	Start(ctx context.Context) error
	Stop()
}

func (d *Dashboard) cards() []lifecycle {
	return []lifecycle{d.Events, d.Tasks, d.Rewards}
}

// Start starts every card concurrently. If any card fails the others are
// stopped and the first error is returned. ctx scopes the subscriptions
// and must outlive the dashboard.
func (d *Dashboard) Start(ctx context.Context) error {
	var g errgroup.Group
	for _, c := range d.cards() {
		g.Go(func() error { return c.Start(ctx) })
	}
	if err := g.Wait(); err != nil {
		d.Stop()
		return err
	}
	d.logger.Info("dashboard started")
	return nil
}

// Stop stops every card. It is safe to call more than once.
func (d *Dashboard) Stop() {
	for _, c := range d.cards() {
		c.Stop()
	}
}

// OnChange registers fn on every card.
func (d *Dashboard) OnChange(fn func(card string)) {
	d.Events.OnChange(fn)
	d.Tasks.OnChange(fn)
	d.Rewards.OnChange(fn)
}
