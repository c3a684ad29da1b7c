package midi

import (
	"sync"

	"go-haptics/recorder"
)

// hub fans input events out to recorder subscribers.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func(recorder.Event)
}

func (h *hub) Subscribe(fn func(recorder.Event)) func() {
	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[int]func(recorder.Event))
	}
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *hub) emit(e recorder.Event) {
	h.mu.Lock()
	subs := make([]func(recorder.Event), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}
