// Package waveform builds the on/off lists of the named effects.
//
// Every builder maps a requested total duration to a List whose entries
// alternate on and off, starting with on. Builders are pure: they never touch
// the actuator or the clock.
package waveform

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go-haptics/timeline"
)

var ErrInvalidDutyCycle = errors.New("invalid duty cycle")

// MaxPWMEntries bounds a single PWM list; every entry costs one timer.
const MaxPWMEntries = 10000

// Builder expands a total duration into an on/off list.
type Builder func(total time.Duration) timeline.List

// Options tunes the fades.
type Options struct {
	// Resolution is the number of fade steps.
	Resolution int
	// ShapeThreshold disables shaping for totals below it: the fade becomes
	// one plain pulse. Zero shapes every total.
	ShapeThreshold time.Duration
}

// DefaultOptions returns a 10 step resolution with a 100ms threshold.
func DefaultOptions() Options {
	return Options{Resolution: 10, ShapeThreshold: 100 * time.Millisecond}
}

func (o Options) resolution() int {
	if o.Resolution <= 0 {
		return 10
	}
	return o.Resolution
}

// part returns total*num/den without integer truncation of the ratio.
func part(total time.Duration, num, den float64) time.Duration {
	return time.Duration(float64(total) * num / den)
}

// FadeIn ramps perceived intensity up: on phases grow while off phases
// shrink, step by step.
func (o Options) FadeIn(total time.Duration) timeline.List {
	if o.ShapeThreshold > 0 && total < o.ShapeThreshold {
		return timeline.List{total}
	}

	r := o.resolution()
	unit := float64(r * r)
	out := make(timeline.List, 0, 2*r-1)
	for i := 1; i <= r; i++ {
		out = append(out, part(total, float64(i), unit))
		if i < r {
			out = append(out, part(total, float64(r-i), unit))
		}
	}
	return out
}

// FadeOut is FadeIn played backwards.
func (o Options) FadeOut(total time.Duration) timeline.List {
	return o.FadeIn(total).Reverse()
}

// Notification is three dots, two dashes, three dots in 27ths of total.
func Notification(total time.Duration) timeline.List {
	pause := part(total, 1, 27)
	dot := part(total, 2, 27)
	dash := part(total, 3, 27)
	gap := part(total, 2, 27)
	return timeline.List{
		dot, pause, dot, pause, dot, gap,
		dash, pause, dash, gap,
		dot, pause, dot, pause, dot,
	}
}

// Heartbeat is two long beats framed by short ticks, in 60ths of total.
func Heartbeat(total time.Duration) timeline.List {
	dot := part(total, 1, 60)
	pause := part(total, 2, 60)
	dash := part(total, 24, 60)
	long := part(total, 4, 60)
	return timeline.List{dot, pause, dash, long, dash, long, dot}
}

// Clunk is a sharp pulse, a pause and a longer pulse: 4/22, 8/22, 10/22.
func Clunk(total time.Duration) timeline.List {
	return timeline.List{
		part(total, 4, 22),
		part(total, 8, 22),
		part(total, 10, 22),
	}
}

// PWM fills total with a fixed on/off square wave starting with on. The last
// period may run past total by less than on+off. Lists longer than
// MaxPWMEntries are rejected.
func PWM(total, on, off time.Duration) (timeline.List, error) {
	if err := CheckDutyCycle(on, off); err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, fmt.Errorf("pwm total %v: %w", total, timeline.ErrNegativeDuration)
	}

	remaining := total - on
	var periods int64
	if remaining > 0 {
		period := on + off
		periods = int64((remaining + period - 1) / period)
	}
	if periods > (MaxPWMEntries-1)/2 {
		return nil, fmt.Errorf("pwm %v with on %v off %v needs %d entries, max %d: %w",
			total, on, off, 1+2*periods, MaxPWMEntries, ErrInvalidDutyCycle)
	}

	out := make(timeline.List, 1, 1+2*periods)
	out[0] = on
	for remaining > 0 {
		remaining -= off + on
		out = append(out, off, on)
	}
	return out, nil
}

// CheckDutyCycle rejects periods that could never fill a duration.
func CheckDutyCycle(on, off time.Duration) error {
	if on < 0 || off < 0 {
		return fmt.Errorf("on %v off %v: %w", on, off, ErrInvalidDutyCycle)
	}
	if on+off <= 0 {
		return fmt.Errorf("on+off must be positive: %w", ErrInvalidDutyCycle)
	}
	return nil
}

// DutyCycle binds on and off into a Builder. The builder returns an empty
// list for totals PWM rejects.
func DutyCycle(on, off time.Duration) (Builder, error) {
	if err := CheckDutyCycle(on, off); err != nil {
		return nil, err
	}
	return func(total time.Duration) timeline.List {
		l, _ := PWM(total, on, off)
		return l
	}, nil
}

// Named returns the built-in effects keyed by name.
func (o Options) Named() map[string]Builder {
	return map[string]Builder{
		"fadein":       o.FadeIn,
		"fadeout":      o.FadeOut,
		"notification": Notification,
		"heartbeat":    Heartbeat,
		"clunk":        Clunk,
	}
}

// Names lists the built-in effect names, sorted.
func Names() []string {
	names := make([]string, 0, 5)
	for name := range DefaultOptions().Named() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
