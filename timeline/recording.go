package timeline

import "time"

// FromTimestamps pairs press/release timestamps into on durations.
// An odd trailing timestamp is ignored here; callers pad before converting.
func FromTimestamps(ts []time.Time) List {
	out := List{}
	for i := 0; i+1 < len(ts); i += 2 {
		out = append(out, ts[i+1].Sub(ts[i]))
	}
	return out
}

// FromMillis is FromTimestamps for raw millisecond stamps.
func FromMillis(ms []float64) List {
	out := List{}
	for i := 0; i+1 < len(ms); i += 2 {
		out = append(out, Millis(ms[i+1]-ms[i]))
	}
	return out
}

// Pad appends end when ts has odd length so every press has a release.
func Pad(ts []time.Time, end time.Time) []time.Time {
	if len(ts)%2 == 0 {
		return ts
	}
	return append(ts[:len(ts):len(ts)], end)
}
