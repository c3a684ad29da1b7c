// Package actuator wraps the binary "buzz for d, then stop" primitive.
//
// The Gate is resolved once from an ordered list of probes and never
// re-detects. When nothing resolves every call is a logged no-op that reports
// false, so the rest of the engine can run its full timing logic without
// hardware.
package actuator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go-haptics/config"
	"go-haptics/debug"
)

var ErrNoActuator = errors.New("no actuator available")

// Driver is a binary actuator. Buzz starts it and stops it after d; a new
// Buzz replaces whatever the previous one was doing.
type Driver interface {
	Name() string
	Buzz(d time.Duration) error
	Stop() error
}

// Probe opens one candidate driver, e.g. one vendor's port.
type Probe struct {
	Name string
	Open func() (Driver, error)
}

// Resolve tries probes in order and returns the first driver that opens.
func Resolve(probes ...Probe) (Driver, error) {
	var errs []error
	for _, p := range probes {
		if p.Open == nil {
			continue
		}
		d, err := p.Open()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		if d != nil {
			return d, nil
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoActuator, errors.Join(errs...))
	}
	return nil, ErrNoActuator
}

// Gate routes every actuation. Its capability is fixed at construction.
type Gate struct {
	mu       sync.Mutex
	driver   Driver
	fallback Driver
	policy   config.Policy
	enabled  bool
}

// Option configures a Gate.
type Option func(*gateOptions)

type gateOptions struct {
	probes   []Probe
	fallback Driver
	policy   config.Policy
}

// WithProbes sets the candidate drivers, highest priority first.
func WithProbes(probes ...Probe) Option {
	return func(o *gateOptions) { o.probes = append(o.probes, probes...) }
}

// WithDriver adds an already opened driver as a probe.
func WithDriver(d Driver) Option {
	return WithProbes(Probe{Name: d.Name(), Open: func() (Driver, error) { return d, nil }})
}

// WithPolicy sets what happens when no driver resolved.
func WithPolicy(p config.Policy) Option {
	return func(o *gateOptions) { o.policy = p }
}

// WithFallback sets the driver used under config.PolicyAttempt.
func WithFallback(d Driver) Option {
	return func(o *gateOptions) { o.fallback = d }
}

// NewGate resolves the driver exactly once.
func NewGate(opts ...Option) *Gate {
	o := gateOptions{policy: config.PolicySuppress}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Gate{policy: o.policy, fallback: o.fallback}

	d, err := Resolve(o.probes...)
	if err != nil {
		debug.Log("gate", "disabled: %v", err)
		return g
	}

	g.driver = d
	g.enabled = true
	debug.Log("gate", "using %s", d.Name())
	return g
}

// Enabled reports whether a physical actuator was resolved.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// DriverName returns the resolved driver's name, or "" when disabled.
func (g *Gate) DriverName() string {
	if !g.enabled {
		return ""
	}
	return g.driver.Name()
}

// Buzz actuates for d. It returns false when nothing was actuated.
func (g *Gate) Buzz(d time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.enabled {
		debug.LogEvery(10, "gate", "buzz %v suppressed (no actuator)", d)
		if g.policy == config.PolicyAttempt && g.fallback != nil {
			if err := g.fallback.Buzz(d); err != nil {
				debug.Log("gate", "fallback %s: %v", g.fallback.Name(), err)
			}
		}
		return false
	}

	if err := g.driver.Buzz(d); err != nil {
		debug.Log("gate", "buzz %v: %v", d, err)
		return false
	}
	return true
}

// Rest is the quiet phase of a pulse train; the actuator is left alone.
func (g *Gate) Rest(d time.Duration) {
	debug.LogEvery(10, "gate", "rest %v", d)
}

// Stop silences the actuator.
func (g *Gate) Stop() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.enabled {
		if g.policy == config.PolicyAttempt && g.fallback != nil {
			if err := g.fallback.Stop(); err != nil {
				debug.Log("gate", "fallback %s stop: %v", g.fallback.Name(), err)
			}
		}
		return false
	}
	if err := g.driver.Stop(); err != nil {
		debug.Log("gate", "stop: %v", err)
		return false
	}
	return true
}
