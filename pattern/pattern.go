// Package pattern composes playable haptic effects.
//
// A Pattern accepts an Effect. With a total duration it expands itself to fit
// and plays once; with a timeline it replays itself once per on entry and
// stays quiet during off entries. Patterns built here nest freely: a
// combination of ratio sequences is just another Pattern.
package pattern

import (
	"errors"
	"fmt"
	"time"

	"go-haptics/actuator"
	"go-haptics/debug"
	"go-haptics/scheduler"
	"go-haptics/timeline"
	"go-haptics/waveform"
)

var (
	ErrZeroRatio = errors.New("ratios sum to zero")
	ErrNoParts   = errors.New("pattern needs at least one part")
)

// Pattern is a duration-parameterised effect.
type Pattern interface {
	Play(e timeline.Effect) (*scheduler.Playback, error)
}

// Func plays an effect sized to one total duration.
type Func func(total time.Duration) (*scheduler.Playback, error)

// Player turns lists into scheduled gate calls and builds Patterns on top.
type Player struct {
	sched *scheduler.Scheduler
	gate  *actuator.Gate
}

func NewPlayer(sched *scheduler.Scheduler, gate *actuator.Gate) *Player {
	return &Player{sched: sched, gate: gate}
}

func (pl *Player) Scheduler() *scheduler.Scheduler { return pl.sched }

func (pl *Player) buzz(d time.Duration) *scheduler.Playback {
	pl.gate.Buzz(d)
	return nil
}

func (pl *Player) rest(d time.Duration) *scheduler.Playback {
	pl.gate.Rest(d)
	return nil
}

// Train plays l as alternating on (buzz) and off (rest) phases.
func (pl *Player) Train(l timeline.List) *scheduler.Playback {
	return pl.sched.Play(l, pl.buzz, pl.rest)
}

// Flat plays every entry of l as a buzz.
func (pl *Player) Flat(l timeline.List) *scheduler.Playback {
	return pl.sched.Play(l, pl.buzz, nil)
}

// Vibrate is the direct pass-through: one buzz for a total, an on/off train
// for a timeline. It reports whether a physical actuator was driven. A total
// needs no timer, so its playback is already finished; cancelling a train's
// playback stops the remaining phases.
func (pl *Player) Vibrate(e timeline.Effect) (*scheduler.Playback, bool, error) {
	if err := e.Validate(); err != nil {
		return nil, false, err
	}
	if e.Kind() == timeline.KindTotal {
		ok := pl.gate.Buzz(e.Total())
		return pl.sched.Play(nil, nil, nil), ok, nil
	}
	return pl.Train(e.List()), pl.gate.Enabled(), nil
}

// Pattern wraps fn so timelines replay it once per on entry.
func (pl *Player) Pattern(fn Func) Pattern {
	return &chained{pl: pl, fn: fn}
}

type chained struct {
	pl *Player
	fn Func
}

func (c *chained) Play(e timeline.Effect) (*scheduler.Playback, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Kind() == timeline.KindTotal {
		return c.fn(e.Total())
	}
	return c.pl.sched.Play(e.List(), c.phase, c.pl.rest), nil
}

func (c *chained) phase(d time.Duration) *scheduler.Playback {
	pb, err := c.fn(d)
	if err != nil {
		debug.Log("pattern", "chained phase %v: %v", d, err)
		return nil
	}
	return pb
}

// Waveform plays b's list as an on/off train.
func (pl *Player) Waveform(b waveform.Builder) Pattern {
	return pl.Pattern(func(total time.Duration) (*scheduler.Playback, error) {
		return pl.Train(b(total)), nil
	})
}

// FromRatios scales weights to the requested total and plays every entry as
// a buzz. The weight sum is computed once here.
func (pl *Player) FromRatios(weights timeline.List) (Pattern, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("ratios: %w", err)
	}
	sum := weights.Sum()
	if sum <= 0 {
		return nil, ErrZeroRatio
	}
	w := weights.Clone()

	return pl.Pattern(func(total time.Duration) (*scheduler.Playback, error) {
		return pl.Flat(w.Scale(float64(total) / float64(sum))), nil
	}), nil
}

// Combine starts every pattern with an equal share of the total. The starts
// are deferred back to back with no ordering between them; they all drive
// the same actuator, so overlap is approximated by whichever call lands last.
func (pl *Player) Combine(patterns ...Pattern) Pattern {
	ps := append([]Pattern(nil), patterns...)

	return pl.Pattern(func(total time.Duration) (*scheduler.Playback, error) {
		group := pl.sched.Group()
		if len(ps) == 0 {
			group.Seal()
			return group, nil
		}

		share := time.Duration(float64(total) / float64(len(ps)))
		for _, p := range ps {
			p := p
			group.Spawn(0, func() *scheduler.Playback {
				pb, err := p.Play(timeline.Total(share))
				if err != nil {
					debug.Log("pattern", "combined part %v: %v", share, err)
					return nil
				}
				return pb
			})
		}
		group.Seal()
		return group, nil
	})
}

// DutyCycle returns a reusable PWM pattern. Totals that would need more than
// waveform.MaxPWMEntries entries fail.
func (pl *Player) DutyCycle(on, off time.Duration) (Pattern, error) {
	if err := waveform.CheckDutyCycle(on, off); err != nil {
		return nil, err
	}
	return pl.Pattern(func(total time.Duration) (*scheduler.Playback, error) {
		l, err := waveform.PWM(total, on, off)
		if err != nil {
			return nil, err
		}
		return pl.Train(l), nil
	}), nil
}

// PWM plays a duty cycle once for a total, or once per on entry of a timeline.
func (pl *Player) PWM(e timeline.Effect, on, off time.Duration) (*scheduler.Playback, error) {
	p, err := pl.DutyCycle(on, off)
	if err != nil {
		return nil, err
	}
	return p.Play(e)
}
