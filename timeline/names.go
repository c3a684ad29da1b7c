package timeline

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxMillis is the largest millisecond value a time.Duration can hold.
const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// Names maps human names to durations ("slow", "medium", "fast").
type Names map[string]time.Duration

// DefaultNames returns the built-in table.
func DefaultNames() Names {
	return Names{
		"slow":   1000 * time.Millisecond,
		"medium": 500 * time.Millisecond,
		"fast":   250 * time.Millisecond,
	}
}

// Resolve looks s up by name, then falls back to a literal value:
// a plain number is milliseconds, anything else is parsed as a Go duration.
func (n Names) Resolve(s string) (time.Duration, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if d, ok := n[key]; ok {
		return d, nil
	}
	if ms, err := strconv.ParseFloat(key, 64); err == nil {
		if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxMillis {
			return 0, fmt.Errorf("%q: %w", s, ErrDurationRange)
		}
		if ms < 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrNegativeDuration)
		}
		return Millis(ms), nil
	}
	if d, err := time.ParseDuration(key); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrNegativeDuration)
		}
		return d, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownDuration)
}

// Keys returns the names in sorted order.
func (n Names) Keys() []string {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseList parses comma or space separated entries through Resolve.
func (n Names) ParseList(s string) (List, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make(List, 0, len(fields))
	for i, f := range fields {
		d, err := n.Resolve(f)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseEffect returns a Total for a single entry and a Timeline otherwise.
func (n Names) ParseEffect(s string) (Effect, error) {
	l, err := n.ParseList(s)
	if err != nil {
		return Effect{}, err
	}
	switch len(l) {
	case 0:
		return Effect{}, fmt.Errorf("empty effect: %w", ErrUnknownDuration)
	case 1:
		return Total(l[0]), nil
	default:
		return Timeline(l...), nil
	}
}
