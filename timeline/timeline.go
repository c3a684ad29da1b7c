// Package timeline holds the duration lists every haptic effect is built from.
//
// A List alternates between "actuator on" and "actuator off" entries and
// always starts with an on phase. An Effect is what callers hand to a
// pattern: either a single total duration that the pattern expands itself,
// or an explicit List that replays the pattern once per on entry.
package timeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNegativeDuration = errors.New("negative duration")
	ErrUnknownDuration  = errors.New("unknown duration")
	ErrDurationRange    = errors.New("duration out of range")
)

// List is an ordered on/off timeline. Index 0 is an on phase.
type List []time.Duration

// Sum returns the total length of the timeline.
func (l List) Sum() time.Duration {
	var total time.Duration
	for _, d := range l {
		total += d
	}
	return total
}

// Clone returns a copy that shares no memory with l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Reverse returns a reversed copy of l.
func (l List) Reverse() List {
	out := make(List, len(l))
	for i, d := range l {
		out[len(l)-1-i] = d
	}
	return out
}

// Scale returns a copy of l with every entry multiplied by f.
func (l List) Scale(f float64) List {
	out := make(List, len(l))
	for i, d := range l {
		out[i] = time.Duration(float64(d) * f)
	}
	return out
}

// On returns the on phases (even indexes).
func (l List) On() List {
	out := make(List, 0, (len(l)+1)/2)
	for i := 0; i < len(l); i += 2 {
		out = append(out, l[i])
	}
	return out
}

// Validate reports the first negative entry.
func (l List) Validate() error {
	for i, d := range l {
		if d < 0 {
			return fmt.Errorf("entry %d (%v): %w", i, d, ErrNegativeDuration)
		}
	}
	return nil
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, d := range l {
		parts[i] = FormatMillis(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Kind tags an Effect.
type Kind int

const (
	KindTotal Kind = iota
	KindTimeline
)

func (k Kind) String() string {
	switch k {
	case KindTotal:
		return "total"
	case KindTimeline:
		return "timeline"
	default:
		return "unknown"
	}
}

// Effect is either a total duration or an explicit timeline.
type Effect struct {
	kind  Kind
	total time.Duration
	list  List
}

// Total builds an Effect the pattern expands to fit d.
func Total(d time.Duration) Effect {
	return Effect{kind: KindTotal, total: d}
}

// Timeline builds an Effect that replays the pattern once per on entry.
// The list is copied.
func Timeline(l ...time.Duration) Effect {
	return Effect{kind: KindTimeline, list: List(l).Clone()}
}

func (e Effect) Kind() Kind { return e.kind }

// Total returns the total duration of a KindTotal effect.
func (e Effect) Total() time.Duration { return e.total }

// List returns a copy of the timeline of a KindTimeline effect.
func (e Effect) List() List { return e.list.Clone() }

// Validate rejects negative durations.
func (e Effect) Validate() error {
	switch e.kind {
	case KindTotal:
		if e.total < 0 {
			return fmt.Errorf("total %v: %w", e.total, ErrNegativeDuration)
		}
		return nil
	case KindTimeline:
		return e.list.Validate()
	default:
		return fmt.Errorf("invalid effect kind %d", e.kind)
	}
}

func (e Effect) String() string {
	if e.kind == KindTimeline {
		return e.list.String()
	}
	return FormatMillis(e.total)
}

// Millis converts a float millisecond value to a Duration.
func Millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// FormatMillis renders d as milliseconds, trimming trailing zeros.
func FormatMillis(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	s := fmt.Sprintf("%.3f", ms)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s + "ms"
}
