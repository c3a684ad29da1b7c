package pattern

import (
	"fmt"
	"time"

	"go-haptics/timeline"
)

// Part is one argument to Make: either an existing Pattern or raw ratios.
type Part struct {
	pattern Pattern
	ratios  timeline.List
}

// Of wraps an existing pattern.
func Of(p Pattern) Part { return Part{pattern: p} }

// Ratios wraps relative weights for ratio sequencing.
func Ratios(weights ...time.Duration) Part {
	return Part{ratios: timeline.List(weights).Clone()}
}

// Make builds a pattern from parts: a single ratio part becomes a ratio
// sequence, a single pattern is returned as is, and several parts are
// combined in parallel.
func (pl *Player) Make(parts ...Part) (Pattern, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}

	resolved := make([]Pattern, 0, len(parts))
	for i, part := range parts {
		p, err := pl.resolve(part)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		resolved = append(resolved, p)
	}

	if len(resolved) == 1 {
		return resolved[0], nil
	}
	return pl.Combine(resolved...), nil
}

func (pl *Player) resolve(part Part) (Pattern, error) {
	if part.pattern != nil {
		return part.pattern, nil
	}
	if len(part.ratios) == 0 {
		return nil, ErrNoParts
	}
	return pl.FromRatios(part.ratios)
}
