// Package card composes live subscriptions, derived views, the task overlay
// and the mutation gateway into the three dashboard cards.
//
// A card is started once and stopped once. Store callbacks and write
// completions that arrive after Stop are dropped. OnChange hooks run after
// every view-affecting change, outside the card's lock; a hook must not
// call Stop or submit to the card.
package card

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dukerupert/famdash/internal/livesync"
)

// Card names, also used as websocket entity names.
const (
	EventsName  = "events"
	TasksName   = "tasks"
	RewardsName = "rewards"
)

var (
	ErrStarted = errors.New("card already started")
	ErrStopped = errors.New("card stopped")
)

// base carries the lifecycle shared by every card. mu also guards the
// embedding card's snapshot fields.
type base struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	subs    []*livesync.Subscription

	hookMu sync.Mutex
	hooks  []func(card string)

	// submitMu serializes submissions so the shared form holds one
	// caller's fields from Open until the write returns.
	submitMu sync.Mutex
}

func newBase(name string, logger *slog.Logger) base {
	return base{name: name, logger: logger.With("component", "card", "card", name)}
}

func (b *base) Name() string { return b.name }

// OnChange registers fn to run after each view change.
func (b *base) OnChange(fn func(card string)) {
	b.hookMu.Lock()
	b.hooks = append(b.hooks, fn)
	b.hookMu.Unlock()
}

func (b *base) changed() {
	b.hookMu.Lock()
	hooks := make([]func(string), len(b.hooks))
	copy(hooks, b.hooks)
	b.hookMu.Unlock()

	for _, fn := range hooks {
		fn(b.name)
	}
}

// begin marks the card started.
func (b *base) begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return ErrStopped
	}
	if b.started {
		return ErrStarted
	}
	b.started = true
	return nil
}

// track records sub for release on Stop. A subscription opened while Stop
// was running is released immediately.
func (b *base) track(sub *livesync.Subscription) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
}

// shutdown marks the card stopped and hands back the subscriptions to
// release. Only the first call returns anything.
func (b *base) shutdown() ([]*livesync.Subscription, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, false
	}
	b.stopped = true
	subs := b.subs
	b.subs = nil
	return subs, true
}

func (b *base) release(subs []*livesync.Subscription) {
	for _, s := range subs {
		s.Unsubscribe()
	}
	b.logger.Info("card stopped", "subscriptions", len(subs))
}

// live reports whether the card is started and not yet stopped.
func (b *base) live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started && !b.stopped
}
