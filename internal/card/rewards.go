package card

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukerupert/famdash/internal/docstore"
	"github.com/dukerupert/famdash/internal/gateway"
	"github.com/dukerupert/famdash/internal/livesync"
	"github.com/dukerupert/famdash/internal/model"
	"github.com/dukerupert/famdash/internal/view"
)

// RewardsView is the rendered star rewards card.
type RewardsView struct {
	Scores []view.ScoreRow                       `json:"scores"`
	Awards []model.Award                         `json:"awards"`
	Form   gateway.ModalState[gateway.AwardForm] `json:"form"`
}

type RewardsCard struct {
	base
	store     docstore.Store
	gateway   *gateway.Gateway
	household model.Household
	form      *gateway.Modal[gateway.AwardForm]

	writeCtx context.Context
	scores   model.ScoreBoard
	awards   []model.Award
	seeded   bool
}

func NewRewardsCard(store docstore.Store, gw *gateway.Gateway, household model.Household, logger *slog.Logger) *RewardsCard {
	return &RewardsCard{
		base:      newBase(RewardsName, logger),
		store:     store,
		gateway:   gw,
		household: household,
		form:      gateway.NewModal(gateway.AwardForm{}),
		writeCtx:  context.Background(),
	}
}

// Start watches the scores document and the award list. An award list
// found missing is seeded with the default tiers.
func (c *RewardsCard) Start(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	c.mu.Lock()
	c.writeCtx = context.WithoutCancel(ctx)
	c.mu.Unlock()

	scores, err := livesync.WatchDocument(ctx, c.store, model.ScoresCollection, model.ScoresDocument, c.onScores, c.logger)
	if err != nil {
		c.Stop()
		return fmt.Errorf("start rewards card: %w", err)
	}
	c.track(scores)

	awards, err := livesync.WatchDocument(ctx, c.store, model.AwardsCollection, model.AwardsDocument, c.onAwards, c.logger)
	if err != nil {
		c.Stop()
		return fmt.Errorf("start rewards card: %w", err)
	}
	c.track(awards)

	c.logger.Info("card started")
	return nil
}

func (c *RewardsCard) Stop() {
	if subs, ok := c.shutdown(); ok {
		c.release(subs)
	}
}

// onScores keeps the last scores when the document is missing.
func (c *RewardsCard) onScores(scores model.ScoreBoard, exists bool) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if !exists {
		c.mu.Unlock()
		c.logger.Debug("scores document missing")
		return
	}
	c.scores = scores
	c.mu.Unlock()
	c.changed()
}

func (c *RewardsCard) onAwards(list model.AwardList, exists bool) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if exists {
		c.awards = view.SortAwards(list.Rewards)
		c.mu.Unlock()
		c.changed()
		return
	}

	if c.seeded {
		c.mu.Unlock()
		return
	}
	c.seeded = true
	ctx := c.writeCtx
	c.mu.Unlock()

	c.logger.Info("seeding default awards")
	if err := c.gateway.SeedAwards(ctx, model.DefaultAwards()); err != nil {
		c.logger.Warn("award list left unseeded", "error", err)
	}
}

func (c *RewardsCard) currentAwards() []model.Award {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Award, len(c.awards))
	copy(out, c.awards)
	return out
}

func (c *RewardsCard) View() RewardsView {
	c.mu.Lock()
	scores := view.Scoreboard(c.scores, c.household)
	awards := make([]model.Award, len(c.awards))
	copy(awards, c.awards)
	c.mu.Unlock()
	return RewardsView{Scores: scores, Awards: awards, Form: c.form.State()}
}

func (c *RewardsCard) Form() gateway.ModalState[gateway.AwardForm] {
	return c.form.State()
}

func (c *RewardsCard) OpenForm() {
	c.form.OpenDefault()
	c.changed()
}

func (c *RewardsCard) CloseForm() {
	c.form.Close()
	c.changed()
}

// setAwards adopts a list this card just wrote, so the next rewrite builds
// on it even before the watch delivers the change.
func (c *RewardsCard) setAwards(awards []model.Award) {
	c.mu.Lock()
	if !c.stopped {
		c.awards = awards
	}
	c.mu.Unlock()
}

// Submit enters f into the add-award form and rewrites the award list with
// the new tier.
func (c *RewardsCard) Submit(ctx context.Context, f gateway.AwardForm) error {
	if !c.live() {
		return ErrStopped
	}
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.form.Open(f)
	err := gateway.Submit(ctx, c.form, func(ctx context.Context, f gateway.AwardForm) error {
		next, err := c.gateway.AddAward(ctx, c.currentAwards(), f)
		if err != nil {
			return err
		}
		c.setAwards(next)
		return nil
	}, c.live)
	if c.live() {
		c.changed()
	}
	return err
}

// DeleteAward removes the tier at stars. It reports false without writing
// when no tier has that threshold.
func (c *RewardsCard) DeleteAward(ctx context.Context, stars int) (bool, error) {
	if !c.live() {
		return false, ErrStopped
	}
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	next, changed, err := c.gateway.DeleteAward(ctx, c.currentAwards(), stars)
	if err != nil || !changed {
		return changed, err
	}
	c.setAwards(next)
	c.changed()
	return true, nil
}
