package recorder

import (
	"sync"
	"time"
)

// Feed is a Source driven by hand: whatever is passed to Emit reaches every
// subscriber. Front ends use it for key taps.
type Feed struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(Event))}
}

func (f *Feed) Subscribe(fn func(Event)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Emit sends an event stamped at; a zero at is stamped by the recorder.
func (f *Feed) Emit(kind EventKind, at time.Time) {
	f.mu.Lock()
	subs := make([]func(Event), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Kind: kind, At: at})
	}
}

// Subscribers returns how many subscriptions are live.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
