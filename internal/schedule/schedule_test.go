package schedule

import (
	"log/slog"
	"sync"
	"testing"
	"time"
)

func TestDelayFromMondayMorning(t *testing.T) {
	// 2024-06-10 is a Monday.
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	got := DelayUntilReset(now)
	want := 7*24*time.Hour - 9*time.Hour
	if got != want {
		t.Errorf("delay = %v, want %v", got, want)
	}
}

func TestDelayFromWednesdayNoon(t *testing.T) {
	now := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)

	next := NextWeeklyReset(now)
	want := time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
	if got := DelayUntilReset(now); got != 4*24*time.Hour+12*time.Hour {
		t.Errorf("delay = %v, want 108h", got)
	}
}

func TestDelayAtExactBoundary(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	if got := DelayUntilReset(now); got != 7*24*time.Hour {
		t.Errorf("delay = %v, want 168h", got)
	}
}

func TestDelayFromSundayNight(t *testing.T) {
	now := time.Date(2024, 6, 16, 23, 30, 0, 0, time.UTC)

	if got := DelayUntilReset(now); got != 30*time.Minute {
		t.Errorf("delay = %v, want 30m", got)
	}
}

func TestNextAlwaysMondayMidnight(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24*21; h += 5 {
		now := start.Add(time.Duration(h) * time.Hour)
		next := NextWeeklyReset(now)
		if next.Weekday() != time.Monday || next.Hour() != 0 || next.Minute() != 0 {
			t.Fatalf("next(%v) = %v, not Monday 00:00", now, next)
		}
		if !next.After(now) || next.Sub(now) > 7*24*time.Hour {
			t.Fatalf("next(%v) = %v, out of range", now, next)
		}
	}
}

func TestNextAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Clocks spring forward on Sunday 2024-03-10.
	now := time.Date(2024, 3, 8, 12, 0, 0, 0, ny)

	next := NextWeeklyReset(now)
	if next.Day() != 11 || next.Hour() != 0 {
		t.Errorf("next = %v, want 2024-03-11 00:00 local", next)
	}
}

func TestCustomBoundary(t *testing.T) {
	b := Boundary{Weekday: time.Friday, Hour: 17, Minute: 30}
	now := time.Date(2024, 6, 14, 17, 0, 0, 0, time.UTC) // Friday

	if got := b.Delay(now); got != 30*time.Minute {
		t.Errorf("delay = %v, want 30m", got)
	}
}

// fakeClock drives a Timer without waiting.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
}

func (ft *fakeTimer) Stop() bool {
	ft.clock.mu.Lock()
	defer ft.clock.mu.Unlock()
	was := !ft.stopped
	ft.stopped = true
	return was
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.pending = append(c.pending, ft)
	return ft
}

// Advance moves the clock to t and runs every due, unstopped timer.
func (c *fakeClock) Advance(to time.Time) {
	c.mu.Lock()
	c.now = to
	var due []*fakeTimer
	var rest []*fakeTimer
	for _, ft := range c.pending {
		if !ft.stopped && !ft.at.After(to) {
			due = append(due, ft)
		} else if !ft.stopped {
			rest = append(rest, ft)
		}
	}
	c.pending = rest
	c.mu.Unlock()

	for _, ft := range due {
		ft.f()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ft := range c.pending {
		if !ft.stopped {
			n++
		}
	}
	return n
}

func newTestTimer(clock *fakeClock, fn func(time.Time)) *Timer {
	tm := NewTimer(WeeklyPointReset, time.UTC, fn, slog.Default())
	tm.now = clock.Now
	tm.afterFunc = clock.AfterFunc
	return tm
}

func TestTimerFiresAndRearms(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)}
	var fired []time.Time
	tm := newTestTimer(clock, func(at time.Time) { fired = append(fired, at) })

	tm.Start()
	first := time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)
	if got := tm.NextFire(); !got.Equal(first) {
		t.Fatalf("next fire = %v, want %v", got, first)
	}

	clock.Advance(time.Date(2024, 6, 16, 23, 59, 0, 0, time.UTC))
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}

	clock.Advance(first)
	if len(fired) != 1 || !fired[0].Equal(first) {
		t.Fatalf("fired = %v, want [%v]", fired, first)
	}
	second := time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC)
	if got := tm.NextFire(); !got.Equal(second) {
		t.Errorf("rearmed for %v, want %v", got, second)
	}
	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clock.Pending())
	}
}

func TestTimerSelfCorrectsAfterLateWake(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)}
	fired := 0
	tm := newTestTimer(clock, func(time.Time) { fired++ })
	tm.Start()

	// The process slept through the boundary and woke on Tuesday.
	clock.Advance(time.Date(2024, 6, 18, 8, 0, 0, 0, time.UTC))

	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	want := time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC)
	if got := tm.NextFire(); !got.Equal(want) {
		t.Errorf("next fire = %v, want %v", got, want)
	}
}

func TestTimerStopCancels(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)}
	fired := 0
	tm := newTestTimer(clock, func(time.Time) { fired++ })
	tm.Start()

	tm.Stop()
	tm.Stop()

	clock.Advance(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	if fired != 0 {
		t.Errorf("fired = %d after stop, want 0", fired)
	}
	if !tm.NextFire().IsZero() {
		t.Error("stopped timer should report no next fire")
	}

	tm.Start()
	if clock.Pending() != 0 {
		t.Error("a stopped timer must not re-arm")
	}
}

func TestTimerStopDuringFire(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)}
	var tm *Timer
	tm = newTestTimer(clock, func(time.Time) { tm.Stop() })
	tm.Start()

	clock.Advance(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC))

	if clock.Pending() != 0 {
		t.Errorf("pending = %d, want 0 after stop inside fn", clock.Pending())
	}
}

func TestTimerStartTwice(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)}
	tm := newTestTimer(clock, func(time.Time) {})

	tm.Start()
	tm.Start()

	if clock.Pending() != 1 {
		t.Errorf("pending = %d, want 1", clock.Pending())
	}
}
