// Package haptics is the public surface of the engine: named effects, raw
// vibration, pattern construction and recording, all behind one Engine.
//
// Every effect call returns immediately. Playback continues on the clock's
// timers and is controlled through the returned *scheduler.Playback, whose
// Actuating method reports whether a physical actuator is being driven.
package haptics

import (
	"fmt"
	"sort"
	"time"

	"go-haptics/actuator"
	"go-haptics/config"
	"go-haptics/debug"
	"go-haptics/pattern"
	"go-haptics/recorder"
	"go-haptics/scheduler"
	"go-haptics/timeline"
	"go-haptics/waveform"
)

// Engine ties the gate, scheduler, patterns and recorder together.
type Engine struct {
	cfg   *config.Config
	names timeline.Names
	wave  waveform.Options

	gate    *actuator.Gate
	sched   *scheduler.Scheduler
	player  *pattern.Player
	rec     *recorder.Recorder
	presets map[string]pattern.Pattern
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	clock    scheduler.Clock
	probes   []actuator.Probe
	fallback actuator.Driver
	sources  []recorder.Source
}

// WithClock drives every playback and recording from c.
func WithClock(c scheduler.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithProbes sets the actuator candidates, highest priority first.
func WithProbes(probes ...actuator.Probe) Option {
	return func(o *options) { o.probes = append(o.probes, probes...) }
}

// WithDriver adds an opened driver as a probe.
func WithDriver(d actuator.Driver) Option {
	return WithProbes(actuator.Probe{Name: d.Name(), Open: func() (actuator.Driver, error) { return d, nil }})
}

// WithFallback sets the driver used by the attempt policy.
func WithFallback(d actuator.Driver) Option {
	return func(o *options) { o.fallback = d }
}

// WithSources attaches recorder input sources.
func WithSources(sources ...recorder.Source) Option {
	return func(o *options) { o.sources = append(o.sources, sources...) }
}

// New builds an engine. The actuator is resolved here, once. A nil cfg uses
// the defaults.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := options{clock: scheduler.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	names := timeline.DefaultNames()
	for k, v := range cfg.Durations {
		names[k] = v
	}

	gate := actuator.NewGate(
		actuator.WithProbes(o.probes...),
		actuator.WithPolicy(cfg.Actuator.Policy),
		actuator.WithFallback(o.fallback),
	)
	sched := scheduler.New(
		scheduler.WithClock(o.clock),
		scheduler.WithActuating(gate.Enabled()),
	)

	e := &Engine{
		cfg:   cfg,
		names: names,
		wave: waveform.Options{
			Resolution:     cfg.Waveform.Resolution,
			ShapeThreshold: cfg.Waveform.ShapeThreshold,
		},
		gate:   gate,
		sched:  sched,
		player: pattern.NewPlayer(sched, gate),
		rec:    recorder.New(o.clock, o.sources...),
	}

	e.presets = make(map[string]pattern.Pattern)
	for name, b := range e.wave.Named() {
		e.presets[name] = e.player.Waveform(b)
	}

	debug.Log("engine", "ready (actuator=%q enabled=%v)", gate.DriverName(), gate.Enabled())
	return e
}

// Enabled reports whether a physical actuator was found. It never changes.
func (e *Engine) Enabled() bool { return e.gate.Enabled() }

// DriverName is the resolved actuator's name, "" when disabled.
func (e *Engine) DriverName() string { return e.gate.DriverName() }

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config { return e.cfg }

// Player exposes the pattern builder for custom compositions.
func (e *Engine) Player() *pattern.Player { return e.player }

// Vibrate buzzes for a total or plays a timeline as an on/off train.
func (e *Engine) Vibrate(eff timeline.Effect) (*scheduler.Playback, bool, error) {
	return e.player.Vibrate(eff)
}

func (e *Engine) FadeIn(eff timeline.Effect) (*scheduler.Playback, error) {
	return e.Play("fadein", eff)
}

func (e *Engine) FadeOut(eff timeline.Effect) (*scheduler.Playback, error) {
	return e.Play("fadeout", eff)
}

func (e *Engine) Notification(eff timeline.Effect) (*scheduler.Playback, error) {
	return e.Play("notification", eff)
}

func (e *Engine) Heartbeat(eff timeline.Effect) (*scheduler.Playback, error) {
	return e.Play("heartbeat", eff)
}

func (e *Engine) Clunk(eff timeline.Effect) (*scheduler.Playback, error) {
	return e.Play("clunk", eff)
}

// PWM plays a fixed on/off square wave.
func (e *Engine) PWM(eff timeline.Effect, on, off time.Duration) (*scheduler.Playback, error) {
	return e.player.PWM(eff, on, off)
}

// MakeDutyCyclePattern returns a reusable PWM pattern.
func (e *Engine) MakeDutyCyclePattern(on, off time.Duration) (pattern.Pattern, error) {
	return e.player.DutyCycle(on, off)
}

// MakePattern builds a pattern from ratio lists and existing patterns.
func (e *Engine) MakePattern(parts ...pattern.Part) (pattern.Pattern, error) {
	return e.player.Make(parts...)
}

// Effect looks up a built-in effect by name.
func (e *Engine) Effect(name string) (pattern.Pattern, bool) {
	p, ok := e.presets[name]
	return p, ok
}

// Effects lists the built-in effect names, sorted.
func (e *Engine) Effects() []string {
	names := make([]string, 0, len(e.presets))
	for name := range e.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Play runs the named built-in effect.
func (e *Engine) Play(name string, eff timeline.Effect) (*scheduler.Playback, error) {
	p, ok := e.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown effect %q", name)
	}
	pb, err := p.Play(eff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	debug.Log("engine", "%s %v", name, eff)
	return pb, nil
}

// Duration resolves a named duration or a literal one.
func (e *Engine) Duration(name string) (time.Duration, error) {
	return e.names.Resolve(name)
}

// ParseEffect reads "500", "slow" or "100,50,100" into an Effect.
func (e *Engine) ParseEffect(s string) (timeline.Effect, error) {
	return e.names.ParseEffect(s)
}

// DurationNames lists the named durations, sorted.
func (e *Engine) DurationNames() []string { return e.names.Keys() }

// Record starts capturing taps and attached sources.
func (e *Engine) Record() { e.rec.Record() }

// Tap adds one timestamp to the capture in progress.
func (e *Engine) Tap() { e.rec.Mark() }

// Recording reports whether a capture is in progress.
func (e *Engine) Recording() bool { return e.rec.Status() == recorder.StatusRecording }

// Finish ends the capture and returns its on durations.
func (e *Engine) Finish() timeline.List { return e.rec.Finish() }

// AttachSource adds a recorder input source.
func (e *Engine) AttachSource(src recorder.Source) { e.rec.Attach(src) }

// Active returns the playbacks still running.
func (e *Engine) Active() []*scheduler.Playback { return e.sched.Active() }

// Stop cancels every playback and silences the actuator.
func (e *Engine) Stop() {
	e.sched.CancelAll()
	e.gate.Stop()
}
