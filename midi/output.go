package midi

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-haptics/config"
	"go-haptics/debug"
	"go-haptics/scheduler"
)

// OutputDriver drives a vibration motor behind a MIDI output port: note on
// starts it, note off stops it.
type OutputDriver struct {
	name     string
	send     func(msg gomidi.Message) error
	channel  uint8
	note     uint8
	velocity uint8
	pulse    *pulse
}

// NewOutputDriver wraps send. Tests pass a recording send func.
func NewOutputDriver(name string, send func(msg gomidi.Message) error, cfg config.ActuatorConfig, clock scheduler.Clock) *OutputDriver {
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	d := &OutputDriver{
		name:     name,
		send:     send,
		channel:  cfg.Channel,
		note:     cfg.Note,
		velocity: cfg.Velocity,
	}
	if d.velocity == 0 {
		d.velocity = 127
	}
	d.pulse = &pulse{
		clock: clock,
		on:    func() error { return d.send(gomidi.NoteOn(d.channel, d.note, d.velocity)) },
		off:   func() error { return d.send(gomidi.NoteOff(d.channel, d.note)) },
	}
	return d
}

// OpenOutput opens out and returns a driver for it.
func OpenOutput(out drivers.Out, cfg config.ActuatorConfig, clock scheduler.Clock) (*OutputDriver, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", out.String(), err)
	}
	debug.Log("midi", "actuator output %s ch=%d note=%d", out.String(), cfg.Channel, cfg.Note)
	return NewOutputDriver(out.String(), send, cfg, clock), nil
}

func (d *OutputDriver) Name() string { return d.name }

func (d *OutputDriver) Buzz(dur time.Duration) error {
	return d.pulse.buzz(dur)
}

func (d *OutputDriver) Stop() error {
	return d.pulse.stop()
}
