// Package focus implements the Pomodoro-style countdown.
//
// A Timer is idle, running or paused. While running, a ticker goroutine calls
// back once per interval. Every countdown carries a generation number and any
// cancel (pause, reset, mode change, completion) bumps it, so a tick that was
// already in flight for an old countdown is discarded instead of decrementing
// the new one.
package focus

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
)

// Event says what produced a Status notification.
type Event string

const (
	EventMode     Event = "mode"
	EventStart    Event = "start"
	EventPause    Event = "pause"
	EventReset    Event = "reset"
	EventTick     Event = "tick"
	EventComplete Event = "complete"
)

const (
	DefaultMinutes = 25
	idleTitle      = "Gradary - Focus"
)

var ErrInvalidDuration = errors.New("focus duration must be at least one minute")

// Status is a snapshot of the timer as seen by the display.
type Status struct {
	State     State
	Event     Event
	Remaining int // seconds
	Minutes   int // selected mode length
	Clock     string
	Title     string
}

// Clock renders seconds as MM:SS.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

type Timer struct {
	mu         sync.Mutex
	state      State
	minutes    int
	remaining  int
	title      string
	interval   time.Duration
	generation uint64
	stop       chan struct{}
	listeners  []func(Status)
}

type Option func(*Timer)

// WithInterval sets the real time between ticks. Default one second.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) { t.interval = d }
}

// WithMinutes sets the initial mode length.
func WithMinutes(m int) Option {
	return func(t *Timer) {
		if m > 0 {
			t.minutes = m
		}
	}
}

func New(opts ...Option) *Timer {
	t := &Timer{
		state:    Idle,
		minutes:  DefaultMinutes,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.remaining = t.minutes * 60
	t.title = Clock(t.remaining) + " - Focus"
	return t
}

// Subscribe registers fn for every status change. fn may be called from the
// ticker goroutine and must not block.
func (t *Timer) Subscribe(fn func(Status)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Timer) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked("")
}

// SelectMode cancels any countdown and loads a new duration, idle.
func (t *Timer) SelectMode(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, minutes)
	}
	t.mu.Lock()
	t.cancelLocked()
	t.minutes = minutes
	t.remaining = minutes * 60
	t.state = Idle
	t.title = idleTitle
	st := t.statusLocked(EventMode)
	t.mu.Unlock()

	t.notify(st)
	return nil
}

// Start begins or resumes the countdown. While running it pauses instead,
// matching the single start/pause control.
func (t *Timer) Start() {
	t.mu.Lock()
	var st Status
	if t.state == Running {
		st = t.pauseLocked()
	} else {
		if t.remaining <= 0 {
			t.remaining = t.minutes * 60
		}
		t.state = Running
		t.generation++
		t.stop = make(chan struct{})
		go t.run(t.generation, t.stop)
		st = t.statusLocked(EventStart)
	}
	t.mu.Unlock()

	t.notify(st)
}

// Pause halts a running countdown and keeps the remaining time.
func (t *Timer) Pause() {
	t.mu.Lock()
	if t.state != Running {
		t.mu.Unlock()
		return
	}
	st := t.pauseLocked()
	t.mu.Unlock()

	t.notify(st)
}

// Reset returns to idle with the full length of the selected mode.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.cancelLocked()
	t.state = Idle
	t.remaining = t.minutes * 60
	t.title = idleTitle
	st := t.statusLocked(EventReset)
	t.mu.Unlock()

	t.notify(st)
}

// Tick advances a running countdown by one second. The ticker goroutine calls
// it; callers that drive the timer themselves may too. No-op unless running.
func (t *Timer) Tick() {
	t.mu.Lock()
	t.tickFrom(t.generation)
}

// tickFrom applies a tick issued by countdown gen and reports whether that
// countdown is still live. Caller holds mu; tickFrom releases it.
func (t *Timer) tickFrom(gen uint64) bool {
	if gen != t.generation || t.state != Running {
		t.mu.Unlock()
		return false
	}

	t.remaining--
	t.title = Clock(t.remaining) + " - Focus"
	out := []Status{t.statusLocked(EventTick)}
	live := true
	if t.remaining <= 0 {
		t.remaining = 0
		t.cancelLocked()
		t.state = Idle
		out = append(out, t.statusLocked(EventComplete))
		live = false
	}
	t.mu.Unlock()

	for _, st := range out {
		t.notify(st)
	}
	return live
}

func (t *Timer) run(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if !t.tickFrom(gen) {
				return
			}
		}
	}
}

// pauseLocked stops the countdown. Caller holds mu.
func (t *Timer) pauseLocked() Status {
	t.cancelLocked()
	t.state = Paused
	return t.statusLocked(EventPause)
}

// cancelLocked stops the ticker goroutine and invalidates its ticks. Caller holds mu.
func (t *Timer) cancelLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.generation++
}

func (t *Timer) statusLocked(ev Event) Status {
	return Status{
		State:     t.state,
		Event:     ev,
		Remaining: t.remaining,
		Minutes:   t.minutes,
		Clock:     Clock(t.remaining),
		Title:     t.title,
	}
}

func (t *Timer) notify(st Status) {
	t.mu.Lock()
	listeners := append([]func(Status){}, t.listeners...)
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}
