// Package scheduler walks duration lists in time.
//
// Play issues the first phase call immediately and arms one timer per
// remaining entry; each timer fire advances a small state machine
// {cursor, active phase} and swaps the active phase, so an on/off train is a
// single walk over one flat list. Nothing blocks the caller and nothing
// recurses: the clock's timers drive every step.
//
// Independent playbacks run side by side. They never share their lists, but
// they do share whatever their phase functions touch (usually one actuator),
// where the last call wins.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-haptics/debug"
	"go-haptics/timeline"
)

// PhaseFunc is called with the duration of the entry being played. It may
// return a playback it started so cancellation reaches it; nil is fine.
type PhaseFunc func(d time.Duration) *Playback

// Scheduler creates and tracks playbacks.
type Scheduler struct {
	clock     Clock
	actuating bool

	mu     sync.Mutex
	active map[uuid.UUID]*Playback
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock drives playbacks from c instead of the real clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithActuating records whether phase calls reach a physical actuator; every
// Playback reports it through Actuating.
func WithActuating(v bool) Option {
	return func(s *Scheduler) { s.actuating = v }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  RealClock{},
		active: make(map[uuid.UUID]*Playback),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the clock driving this scheduler.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Play walks list, calling phaseA for entry 0, phaseB for entry 1, and so on,
// waiting exactly each entry's duration before the next call. A nil phaseB
// means phaseA plays every entry. An empty list finishes immediately without
// any call. list is copied and never modified.
func (s *Scheduler) Play(list timeline.List, phaseA, phaseB PhaseFunc) *Playback {
	if phaseB == nil {
		phaseB = phaseA
	}

	p := s.newPlayback()
	p.list = list.Clone()
	p.phases = [2]PhaseFunc{phaseA, phaseB}

	if len(p.list) == 0 {
		p.mu.Lock()
		p.exhausted = true
		p.mu.Unlock()
		p.finish()
		return p
	}

	s.track(p)
	debug.Log("sched", "%s play %d entries (%v)", p.short(), len(p.list), p.list.Sum())
	p.advance()
	return p
}

// Group returns a playback that finishes once it is sealed and every child
// started through Spawn or Attach has finished.
func (s *Scheduler) Group() *Playback {
	p := s.newPlayback()
	s.track(p)
	return p
}

// Defer runs fn after d.
func (s *Scheduler) Defer(d time.Duration, fn func()) Timer {
	return s.clock.AfterFunc(d, fn)
}

// Active returns the playbacks that have not finished, oldest first.
func (s *Scheduler) Active() []*Playback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Playback, 0, len(s.active))
	for _, p := range s.active {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].started.Before(out[j].started) })
	return out
}

// CancelAll cancels every active playback.
func (s *Scheduler) CancelAll() {
	for _, p := range s.Active() {
		p.Cancel()
	}
}

func (s *Scheduler) newPlayback() *Playback {
	return &Playback{
		id:      uuid.New(),
		sched:   s,
		started: s.clock.Now(),
		done:    make(chan struct{}),
	}
}

func (s *Scheduler) track(p *Playback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[p.id] = p
}

func (s *Scheduler) untrack(p *Playback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, p.id)
}
