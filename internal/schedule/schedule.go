// Package schedule computes weekly reset boundaries and runs a
// self-rescheduling timer against them.
package schedule

import (
	"log/slog"
	"sync"
	"time"
)

// Boundary is a weekly wall-clock instant, such as Monday 00:00.
type Boundary struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// WeeklyPointReset is when the tasks card zeroes the point tally.
var WeeklyPointReset = Boundary{Weekday: time.Monday}

// Next returns the first occurrence of b strictly after now, in now's
// location. Days ahead are (b.Weekday + 7 - now.Weekday) mod 7; when that
// lands on or before now (same weekday, boundary already passed) the
// following week is used.
func (b Boundary) Next(now time.Time) time.Time {
	days := (int(b.Weekday) + 7 - int(now.Weekday())) % 7
	y, m, d := now.Date()
	next := time.Date(y, m, d+days, b.Hour, b.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+days+7, b.Hour, b.Minute, 0, 0, now.Location())
	}
	return next
}

// Delay returns how long to wait from now until the next boundary.
func (b Boundary) Delay(now time.Time) time.Duration {
	return b.Next(now).Sub(now)
}

// NextWeeklyReset returns the next Monday 00:00 after now.
func NextWeeklyReset(now time.Time) time.Time {
	return WeeklyPointReset.Next(now)
}

// DelayUntilReset returns the wait from now until the next Monday 00:00.
func DelayUntilReset(now time.Time) time.Duration {
	return WeeklyPointReset.Delay(now)
}

type stopper interface {
	Stop() bool
}

// Timer fires fn at every occurrence of a boundary. Each firing recomputes
// the delay from the clock instead of repeating a fixed period, so clock
// changes and late wake-ups correct themselves at the next arm.
type Timer struct {
	boundary Boundary
	loc      *time.Location
	fn       func(at time.Time)
	logger   *slog.Logger

	now       func() time.Time
	afterFunc func(time.Duration, func()) stopper

	mu      sync.Mutex
	pending stopper
	gen     uint64
	armed   bool
	stopped bool
	nextAt  time.Time
}

// NewTimer returns an unarmed timer. loc sets the wall clock the boundary
// is evaluated in; nil means time.Local.
func NewTimer(b Boundary, loc *time.Location, fn func(at time.Time), logger *slog.Logger) *Timer {
	if loc == nil {
		loc = time.Local
	}
	return &Timer{
		boundary: b,
		loc:      loc,
		fn:       fn,
		logger:   logger,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Start arms the timer. Starting an armed or stopped timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.armed || t.stopped {
		return
	}
	t.armed = true
	t.arm()
}

// Stop cancels the pending firing. A firing already racing with Stop is
// dropped before fn runs if it has not yet started.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// NextFire returns the instant the timer is armed for, or the zero time
// when it is not armed.
func (t *Timer) NextFire() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed || t.stopped {
		return time.Time{}
	}
	return t.nextAt
}

// arm must be called with t.mu held.
func (t *Timer) arm() {
	now := t.now().In(t.loc)
	t.nextAt = t.boundary.Next(now)
	delay := t.nextAt.Sub(now)
	t.gen++
	gen := t.gen
	t.pending = t.afterFunc(delay, func() { t.fire(gen) })
	t.logger.Debug("reset timer armed", "next", t.nextAt, "delay", delay)
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	at := t.nextAt
	t.pending = nil
	t.mu.Unlock()

	t.fn(at)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || gen != t.gen {
		return
	}
	t.arm()
}
