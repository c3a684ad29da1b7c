package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-haptics/timeline"
)

// Playback is the handle of one scheduled walk (or of a group of them).
// Cancel stops pending phases and cascades to child playbacks.
type Playback struct {
	id      uuid.UUID
	sched   *Scheduler
	started time.Time

	mu          sync.Mutex
	list        timeline.List
	cursor      int
	phases      [2]PhaseFunc
	active      int
	timers      map[Timer]struct{}
	children    map[*Playback]struct{}
	outstanding int  // children and spawns not yet finished
	exhausted   bool // no more phases or spawns will be added
	finished    bool
	cancelled   bool
	onDone      []func()
	done        chan struct{}
}

func (p *Playback) ID() uuid.UUID { return p.id }

func (p *Playback) short() string { return p.id.String()[:8] }

// Started returns the clock time the playback was created.
func (p *Playback) Started() time.Time { return p.started }

// Actuating reports whether phase calls reach a physical actuator.
func (p *Playback) Actuating() bool { return p.sched.actuating }

// Done is closed once the playback finished or was cancelled.
func (p *Playback) Done() <-chan struct{} { return p.done }

func (p *Playback) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

func (p *Playback) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// Remaining returns how many list entries have not been played yet.
func (p *Playback) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.list) - p.cursor
}

// Wait blocks until the playback is done or ctx ends.
func (p *Playback) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnDone registers fn to run when the playback is done. If it already is,
// fn runs immediately.
func (p *Playback) OnDone(fn func()) {
	p.mu.Lock()
	if !p.finished {
		p.onDone = append(p.onDone, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	fn()
}

// Cancel stops pending phases and cancels children. Safe to call repeatedly.
func (p *Playback) Cancel() {
	p.mu.Lock()
	if p.finished || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	timers := p.timers
	children := p.children
	p.timers = nil
	p.children = nil
	p.mu.Unlock()

	for t := range timers {
		t.Stop()
	}
	for c := range children {
		c.Cancel()
	}
	p.finish()
}

// advance plays the entry under the cursor and arms the next step.
func (p *Playback) advance() {
	p.mu.Lock()
	if p.cancelled || p.finished || p.cursor >= len(p.list) {
		p.mu.Unlock()
		return
	}
	d := p.list[p.cursor]
	phase := p.phases[p.active]
	p.cursor++
	p.active ^= 1 // ping-pong
	last := p.cursor == len(p.list)
	p.mu.Unlock()

	var child *Playback
	if phase != nil {
		child = phase(d)
	}
	if child != nil {
		p.Attach(child)
	}

	if last {
		p.Seal()
		return
	}
	p.after(d, p.advance)
}

// after arms a timer owned by p, so Cancel can stop it.
func (p *Playback) after(d time.Duration, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelled || p.finished {
		return
	}
	if p.timers == nil {
		p.timers = make(map[Timer]struct{})
	}
	var t Timer
	t = p.sched.clock.AfterFunc(d, func() {
		p.mu.Lock()
		delete(p.timers, t)
		p.mu.Unlock()
		fn()
	})
	p.timers[t] = struct{}{}
}

// Spawn runs start after d and attaches the playback it returns. The group
// stays open until the spawned playback finishes.
func (p *Playback) Spawn(d time.Duration, start func() *Playback) {
	p.mu.Lock()
	if p.cancelled || p.finished {
		p.mu.Unlock()
		return
	}
	p.outstanding++
	p.mu.Unlock()

	p.after(d, func() {
		if child := start(); child != nil {
			p.Attach(child)
		}
		p.release()
	})
}

// Attach makes child part of p: p finishes only after child does, and
// cancelling p cancels child.
func (p *Playback) Attach(child *Playback) {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		child.Cancel()
		return
	}
	if p.children == nil {
		p.children = make(map[*Playback]struct{})
	}
	p.children[child] = struct{}{}
	p.outstanding++
	p.mu.Unlock()

	child.OnDone(func() {
		p.mu.Lock()
		delete(p.children, child)
		p.mu.Unlock()
		p.release()
	})
}

// Seal marks that nothing more will be added to p.
func (p *Playback) Seal() {
	p.mu.Lock()
	p.exhausted = true
	ready := p.outstanding == 0
	p.mu.Unlock()
	if ready {
		p.finish()
	}
}

func (p *Playback) release() {
	p.mu.Lock()
	p.outstanding--
	ready := p.exhausted && p.outstanding == 0
	p.mu.Unlock()
	if ready {
		p.finish()
	}
}

func (p *Playback) finish() {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.finished = true
	callbacks := p.onDone
	p.onDone = nil
	close(p.done)
	p.mu.Unlock()

	p.sched.untrack(p)
	for _, fn := range callbacks {
		fn()
	}
}
