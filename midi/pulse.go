package midi

import (
	"sync"
	"time"

	"go-haptics/scheduler"
)

// pulse switches something on and arms a timer that switches it off again.
// A new pulse replaces the previous one, so the last Buzz wins.
type pulse struct {
	clock scheduler.Clock
	on    func() error
	off   func() error

	mu    sync.Mutex
	timer scheduler.Timer
	gen   uint64
}

func (p *pulse) buzz(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.disarm()
	if d <= 0 {
		return p.off()
	}
	if err := p.on(); err != nil {
		return err
	}

	gen := p.gen
	p.timer = p.clock.AfterFunc(d, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen != gen {
			return // superseded
		}
		p.timer = nil
		p.off()
	})
	return nil
}

func (p *pulse) stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disarm()
	return p.off()
}

func (p *pulse) disarm() {
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
