package midi

import (
	"fmt"
	"sync"

	"go-haptics/actuator"
	"go-haptics/config"
	"go-haptics/scheduler"
)

// Probes returns one actuator probe per configured port fragment, in
// priority order. The ports are scanned once, on the first probe that runs.
func Probes(cfg config.ActuatorConfig, clock scheduler.Clock) []actuator.Probe {
	var (
		once  sync.Once
		ports Ports
		err   error
	)
	scan := func() (Ports, error) {
		once.Do(func() { ports, err = Scan(ScanTimeout) })
		return ports, err
	}

	probes := make([]actuator.Probe, 0, len(cfg.Ports))
	for _, fragment := range cfg.Ports {
		fragment := fragment
		probes = append(probes, actuator.Probe{
			Name: "midi:" + fragment,
			Open: func() (actuator.Driver, error) {
				p, err := scan()
				if err != nil {
					return nil, err
				}
				out := p.FindOut(fragment)
				if out == nil {
					return nil, fmt.Errorf("no output port matching %q", fragment)
				}
				d, err := OpenOutput(out, cfg, clock)
				if err != nil {
					return nil, err
				}
				return d, nil
			},
		})
	}
	return probes
}

// OpenFallback opens the driver named by cfg.Fallback, or returns nil when
// none is configured or it cannot be opened.
func OpenFallback(cfg config.ActuatorConfig, clock scheduler.Clock) (actuator.Driver, error) {
	switch cfg.Fallback {
	case config.FallbackLaunchpadLED:
		p, err := Scan(ScanTimeout)
		if err != nil {
			return nil, err
		}
		for _, out := range p.Outs {
			if isLaunchpad(out.String()) {
				d, err := OpenLEDDriver(out, clock)
				if err != nil {
					return nil, err
				}
				return d, nil
			}
		}
		return nil, fmt.Errorf("no launchpad output for LED fallback")
	default:
		return nil, nil
	}
}
