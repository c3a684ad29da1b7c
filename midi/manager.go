package midi

import (
	"context"
	"sync"
	"time"

	"go-haptics/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI input controllers. It is
// itself a recorder source: edges from every connected controller reach its
// subscribers, so one subscription survives replugging.
type DeviceManager struct {
	hub

	fragments   []string
	controllers map[string]Controller
	unsubs      map[string]func()
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager watches input ports whose names contain one of fragments.
// Launchpads are recognised by name, anything else matching is a keyboard.
func NewDeviceManager(fragments []string) *DeviceManager {
	return &DeviceManager{
		fragments:   append([]string(nil), fragments...),
		controllers: make(map[string]Controller),
		unsubs:      make(map[string]func()),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) wanted(name string) bool {
	for _, f := range dm.fragments {
		if Matches(name, f) {
			return true
		}
	}
	return false
}

func (dm *DeviceManager) scan() {
	ports, err := Scan(ScanTimeout)
	if err != nil {
		// CoreMIDI is hung - skip this scan
		debug.LogEvery(10, "devices", "scan: %v", err)
		return
	}

	// Build map of what we see now
	seenIDs := make(map[string]bool)

	for _, inPort := range ports.Ins {
		id := inPort.String()
		if !dm.wanted(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var c Controller
		if isLaunchpad(id) {
			c, err = NewLaunchpadController(id, inPort, ports.OutFor(inPort))
		} else {
			c, err = NewKeyboardController(id, inPort)
		}
		if err != nil {
			debug.Log("devices", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.unsubs[id] = c.Subscribe(dm.emit)
		dm.mu.Unlock()
		debug.Log("devices", "connected %s (%s)", id, c.Type())

		dm.events <- DeviceEvent{
			Type:       DeviceConnected,
			Controller: c,
			ID:         id,
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.drop(id)
		debug.Log("devices", "disconnected %s", id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
	dm.mu.Unlock()
}

// drop closes and forgets one controller. Caller holds dm.mu.
func (dm *DeviceManager) drop(id string) {
	if unsub, ok := dm.unsubs[id]; ok {
		unsub()
		delete(dm.unsubs, id)
	}
	dm.controllers[id].Close()
	delete(dm.controllers, id)
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for id := range dm.controllers {
		dm.drop(id)
	}
}
