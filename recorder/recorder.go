// Package recorder captures press/release timestamps and turns them into
// playable on durations.
package recorder

import (
	"sync"
	"time"

	"go-haptics/debug"
	"go-haptics/scheduler"
	"go-haptics/timeline"
)

// EventKind tells a press from a release.
type EventKind int

const (
	Press EventKind = iota
	Release
)

func (k EventKind) String() string {
	if k == Release {
		return "release"
	}
	return "press"
}

// Event is one input edge. A zero At is stamped with the recorder's clock.
type Event struct {
	Kind EventKind
	At   time.Time
}

// Source delivers input events until the returned unsubscribe is called.
type Source interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Status is the recorder state.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRecording Status = "RECORDING"
)

// Recorder collects timestamps between Record and Finish.
type Recorder struct {
	clock scheduler.Clock

	mu        sync.Mutex
	sources   []Source
	unsubs    []func()
	recording bool
	stamps    []time.Time
}

// New returns an idle recorder stamping events with clock. A nil clock uses
// the real one.
func New(clock scheduler.Clock, sources ...Source) *Recorder {
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	return &Recorder{clock: clock, sources: append([]Source(nil), sources...)}
}

// Attach adds src. While recording it is subscribed right away.
func (r *Recorder) Attach(src Source) {
	r.mu.Lock()
	r.sources = append(r.sources, src)
	recording := r.recording
	r.mu.Unlock()

	if recording {
		unsub := src.Subscribe(r.handle)
		r.mu.Lock()
		r.unsubs = append(r.unsubs, unsub)
		r.mu.Unlock()
	}
}

// Status reports whether a capture is in progress.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return StatusRecording
	}
	return StatusIdle
}

// Record starts a fresh capture, dropping whatever was collected before.
func (r *Recorder) Record() {
	r.mu.Lock()
	old := r.unsubs
	r.unsubs = nil
	r.stamps = nil
	r.recording = true
	sources := append([]Source(nil), r.sources...)
	r.mu.Unlock()

	for _, unsub := range old {
		unsub()
	}

	unsubs := make([]func(), 0, len(sources))
	for _, src := range sources {
		unsubs = append(unsubs, src.Subscribe(r.handle))
	}

	r.mu.Lock()
	r.unsubs = append(r.unsubs, unsubs...)
	r.mu.Unlock()
	debug.Log("recorder", "recording from %d sources", len(sources))
}

func (r *Recorder) handle(e Event) {
	r.add(e.At)
}

// Mark adds a timestamp taken now. Outside a capture it is ignored.
func (r *Recorder) Mark() {
	r.add(time.Time{})
}

// Press and Release are Mark under the names of the edges they record.
func (r *Recorder) Press()   { r.add(time.Time{}) }
func (r *Recorder) Release() { r.add(time.Time{}) }

func (r *Recorder) add(at time.Time) {
	if at.IsZero() {
		at = r.clock.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.stamps = append(r.stamps, at)
}

// Finish ends the capture and returns the on durations. An odd number of
// timestamps is padded with the finish time. Without a capture in progress
// the result is empty.
func (r *Recorder) Finish() timeline.List {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return timeline.List{}
	}
	r.recording = false
	unsubs := r.unsubs
	r.unsubs = nil
	r.stamps = timeline.Pad(r.stamps, r.clock.Now())
	stamps := r.stamps
	r.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}

	l := timeline.FromTimestamps(stamps)
	debug.Log("recorder", "finished: %d stamps -> %v", len(stamps), l)
	return l
}

// Recording returns the timestamps of the current or last capture.
func (r *Recorder) Recording() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.stamps...)
}
