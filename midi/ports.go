package midi

import (
	"errors"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrScanTimeout is returned when the MIDI system does not answer in time.
var ErrScanTimeout = errors.New("midi port scan timed out")

// ScanTimeout bounds a port scan (CoreMIDI can hang).
const ScanTimeout = 3 * time.Second

// Ports is one snapshot of the available ports.
type Ports struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// Scan lists the MIDI ports, giving up after timeout.
func Scan(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return Ports{}, ErrScanTimeout
	}
}

// Matches reports whether the port name contains fragment, ignoring case.
func Matches(name, fragment string) bool {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), fragment)
}

// FindOut returns the first output port matching fragment.
func (p Ports) FindOut(fragment string) drivers.Out {
	for _, out := range p.Outs {
		if Matches(out.String(), fragment) {
			return out
		}
	}
	return nil
}

// FindIn returns the first input port matching fragment.
func (p Ports) FindIn(fragment string) drivers.In {
	for _, in := range p.Ins {
		if Matches(in.String(), fragment) {
			return in
		}
	}
	return nil
}

// OutFor returns the output port with the same name as in.
func (p Ports) OutFor(in drivers.In) drivers.Out {
	name := strings.ToLower(in.String())
	for _, out := range p.Outs {
		if strings.ToLower(out.String()) == name {
			return out
		}
	}
	return nil
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
