// Package rotation cycles a viewport through a fixed number of items on a
// timer and tracks how far the current interval has elapsed.
package rotation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const DefaultInterval = 20 * time.Second

type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

type Options struct {
	ItemCount int
	Interval  time.Duration
	Loop      bool
	AutoStart bool
	Clock     clockwork.Clock
}

type State struct {
	CurrentIndex int     `json:"currentIndex"`
	IsPlaying    bool    `json:"isPlaying"`
	Progress     float64 `json:"progress"`
	ItemCount    int     `json:"itemCount"`
	IntervalMS   int64   `json:"intervalMs"`
	Loop         bool    `json:"loop"`
}

// Rotator holds the rotation state. It is Running when playing with more
// than one item and Stopped otherwise.
type Rotator struct {
	mu sync.Mutex

	clock     clockwork.Clock
	interval  time.Duration
	loop      bool
	autoStart bool

	index     int
	count     int
	playing   bool
	progress  float64
	startedAt time.Time

	// resume is set while the rotator wants to play but has too few items.
	resume bool
}

func New(opts Options) *Rotator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ItemCount < 0 {
		opts.ItemCount = 0
	}

	r := &Rotator{
		clock:     opts.Clock,
		interval:  opts.Interval,
		loop:      opts.Loop,
		autoStart: opts.AutoStart,
		count:     opts.ItemCount,
		startedAt: opts.Clock.Now(),
	}
	r.applyAutoStart()
	return r
}

func (r *Rotator) applyAutoStart() {
	r.playing = r.autoStart && r.count > 1
	r.resume = r.autoStart && r.count <= 1
}

func (r *Rotator) restartClock() {
	r.progress = 0
	r.startedAt = r.clock.Now()
}

// Advance moves one step in dir. Looping wraps around the ends, otherwise the
// index stays at the bound. Progress restarts either way.
func (r *Rotator) Advance(dir Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance(dir)
}

func (r *Rotator) advance(dir Direction) {
	if r.count == 0 {
		return
	}

	step := 1
	if dir < 0 {
		step = -1
	}

	next := r.index + step
	switch {
	case r.loop:
		next = ((next % r.count) + r.count) % r.count
	case next < 0:
		next = 0
	case next >= r.count:
		next = r.count - 1
	}

	r.index = next
	r.restartClock()
}

func (r *Rotator) Next()     { r.Advance(Forward) }
func (r *Rotator) Previous() { r.Advance(Backward) }

// GoTo jumps to index when it is in range and reports whether it did.
func (r *Rotator) GoTo(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= r.count {
		return false
	}
	r.index = index
	r.restartClock()
	return true
}

// Play starts rotating. With one item or none there is nothing to rotate and
// Play reports false.
func (r *Rotator) Play() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count <= 1 {
		return false
	}
	if !r.playing {
		r.playing = true
		r.restartClock()
	}
	return true
}

func (r *Rotator) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playing = false
	r.resume = false
}

// Reset returns to the first item with the initial play state.
func (r *Rotator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index = 0
	r.applyAutoStart()
	r.restartClock()
}

// Tick recomputes progress from the elapsed time. It does nothing while
// stopped so the indicator freezes on pause.
func (r *Rotator) Tick() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running() {
		return r.progress
	}
	elapsed := r.clock.Since(r.startedAt)
	p := float64(elapsed) / float64(r.interval)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	r.progress = p
	return p
}

// AutoAdvance is the timer-driven step forward. It is ignored unless running,
// so a timer firing just after a pause changes nothing.
func (r *Rotator) AutoAdvance() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running() {
		return false
	}
	r.advance(Forward)
	return true
}

// SetItemCount resizes the list, clamping the index back into range and
// restarting progress. The same count again changes nothing.
func (r *Rotator) SetItemCount(n int) { r.resize(n) }

func (r *Rotator) resize(n int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n == r.count {
		return false
	}
	r.count = n
	switch {
	case n == 0:
		r.index = 0
	case r.index >= n:
		r.index = n - 1
	}

	if n <= 1 && r.playing {
		r.playing = false
		r.resume = true
	} else if n > 1 && r.resume {
		r.playing = true
		r.resume = false
	}
	r.restartClock()
	return true
}

// SetInterval changes the rotation interval. Non-positive values and the
// current interval are ignored.
func (r *Rotator) SetInterval(d time.Duration) { r.setInterval(d) }

func (r *Rotator) setInterval(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if d == r.interval {
		return false
	}
	r.interval = d
	r.restartClock()
	return true
}

func (r *Rotator) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

func (r *Rotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running()
}

func (r *Rotator) running() bool {
	return r.playing && r.count > 1
}

func (r *Rotator) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return State{
		CurrentIndex: r.index,
		IsPlaying:    r.playing,
		Progress:     r.progress,
		ItemCount:    r.count,
		IntervalMS:   r.interval.Milliseconds(),
		Loop:         r.loop,
	}
}
