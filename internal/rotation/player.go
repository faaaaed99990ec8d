package rotation

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const DefaultProgressInterval = 100 * time.Millisecond

// Player drives a Rotator with two gocron jobs: an advance job firing every
// rotation interval and a progress job firing on a much finer cadence. Both
// jobs exist exactly while the rotator is running.
type Player struct {
	rot           *Rotator
	sched         gocron.Scheduler
	progressEvery time.Duration
	log           *slog.Logger

	mu          sync.Mutex
	advanceJob  gocron.Job
	progressJob gocron.Job
	started     bool
	closed      atomic.Bool

	subsMu sync.Mutex
	subs   []chan State
}

type PlayerOption func(*Player)

func WithProgressInterval(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d > 0 {
			p.progressEvery = d
		}
	}
}

func WithLogger(log *slog.Logger) PlayerOption {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

func NewPlayer(rot *Rotator, opts ...PlayerOption) (*Player, error) {
	s, err := gocron.NewScheduler(gocron.WithClock(rot.clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create rotation scheduler: %w", err)
	}

	p := &Player{
		rot:           rot,
		sched:         s,
		progressEvery: DefaultProgressInterval,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start begins running timers for the current play state.
func (p *Player) Start() error {
	if p.closed.Load() {
		return fmt.Errorf("rotation player closed")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	p.sched.Start()
	p.started = true
	if err := p.syncLocked(false); err != nil {
		return err
	}
	p.publish()
	return nil
}

// Close stops both timers. Once it returns no job callback mutates state.
func (p *Player) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.mu.Lock()
	p.advanceJob = nil
	p.progressJob = nil
	p.mu.Unlock()

	err := p.sched.Shutdown()

	p.subsMu.Lock()
	for _, ch := range p.subs {
		close(ch)
	}
	p.subs = nil
	p.subsMu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to stop rotation scheduler: %w", err)
	}
	return nil
}

func (p *Player) Next() { p.navigate(func() { p.rot.Next() }) }

func (p *Player) Previous() { p.navigate(func() { p.rot.Previous() }) }

func (p *Player) GoTo(index int) bool {
	var moved bool
	p.navigate(func() { moved = p.rot.GoTo(index) })
	return moved
}

func (p *Player) Play() bool {
	var ok bool
	p.command(false, func() { ok = p.rot.Play() })
	return ok
}

func (p *Player) Pause() { p.command(false, p.rot.Pause) }

func (p *Player) Reset() { p.command(true, p.rot.Reset) }

func (p *Player) SetItemCount(n int) {
	p.update(func() bool { return p.rot.resize(n) })
}

func (p *Player) SetInterval(d time.Duration) {
	p.update(func() bool { return p.rot.setInterval(d) })
}

func (p *Player) State() State { return p.rot.State() }

// navigate runs a manual step and re-arms the advance job so the next
// automatic step comes a full interval later.
func (p *Player) navigate(fn func()) { p.command(true, fn) }

func (p *Player) command(restartAdvance bool, fn func()) {
	p.apply(func() (bool, bool) {
		fn()
		return true, restartAdvance
	})
}

// update runs a setting change that reports whether it changed anything.
// An unchanged setting leaves the timers and subscribers alone.
func (p *Player) update(fn func() bool) {
	p.apply(func() (bool, bool) {
		changed := fn()
		return changed, changed
	})
}

func (p *Player) apply(fn func() (changed, restartAdvance bool)) {
	if p.closed.Load() {
		return
	}
	p.mu.Lock()
	changed, restartAdvance := fn()
	if changed && p.started {
		if err := p.syncLocked(restartAdvance); err != nil {
			p.log.Error("Failed to sync rotation timers", "error", err)
		}
	}
	p.mu.Unlock()
	if changed {
		p.publish()
	}
}

func (p *Player) syncLocked(restartAdvance bool) error {
	running := p.rot.Running()

	switch {
	case running && p.advanceJob == nil:
		return p.startJobsLocked()
	case !running && p.advanceJob != nil:
		return p.stopJobsLocked()
	case running && restartAdvance:
		j, err := p.sched.Update(
			p.advanceJob.ID(),
			gocron.DurationJob(p.rot.Interval()),
			gocron.NewTask(p.onAdvance),
			gocron.WithName("rotation-advance"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to reschedule advance job: %w", err)
		}
		p.advanceJob = j
	}
	return nil
}

func (p *Player) startJobsLocked() error {
	advance, err := p.sched.NewJob(
		gocron.DurationJob(p.rot.Interval()),
		gocron.NewTask(p.onAdvance),
		gocron.WithName("rotation-advance"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create advance job: %w", err)
	}

	progress, err := p.sched.NewJob(
		gocron.DurationJob(p.progressEvery),
		gocron.NewTask(p.onProgress),
		gocron.WithName("rotation-progress"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = p.sched.RemoveJob(advance.ID())
		return fmt.Errorf("failed to create progress job: %w", err)
	}

	p.advanceJob = advance
	p.progressJob = progress
	return nil
}

func (p *Player) stopJobsLocked() error {
	var firstErr error
	for _, j := range []gocron.Job{p.advanceJob, p.progressJob} {
		if j == nil {
			continue
		}
		if err := p.sched.RemoveJob(j.ID()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to remove job %s: %w", j.Name(), err)
		}
	}
	p.advanceJob = nil
	p.progressJob = nil
	return firstErr
}

// Jobs reports how many rotation timers are scheduled.
func (p *Player) Jobs() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	if p.advanceJob != nil {
		n++
	}
	if p.progressJob != nil {
		n++
	}
	return n
}

func (p *Player) onAdvance() {
	if p.closed.Load() {
		return
	}
	if p.rot.AutoAdvance() {
		p.publish()
	}
}

func (p *Player) onProgress() {
	if p.closed.Load() {
		return
	}
	p.rot.Tick()
	p.publish()
}

// Subscribe returns a channel receiving state snapshots. A slow subscriber
// loses its oldest snapshot rather than blocking the timers.
func (p *Player) Subscribe(buffer int) <-chan State {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan State, buffer)

	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	// Close sets closed before draining subs under subsMu, so checking here
	// means every channel is either closed now or closed by Close.
	if p.closed.Load() {
		close(ch)
		return ch
	}
	p.subs = append(p.subs, ch)
	return ch
}

func (p *Player) Unsubscribe(ch <-chan State) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for i, s := range p.subs {
		if s == ch {
			last := len(p.subs) - 1
			p.subs[i] = p.subs[last]
			p.subs[last] = nil
			p.subs = p.subs[:last]
			close(s)
			return
		}
	}
}

func (p *Player) publish() {
	st := p.rot.State()

	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}
