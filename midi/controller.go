package midi

import "go-haptics/recorder"

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerKeyboard
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// Controller is a MIDI input device. Its press/release edges feed the
// recorder through Subscribe.
type Controller interface {
	recorder.Source

	ID() string
	Type() ControllerType

	// Lifecycle
	Close() error
}

// Launchpad X color palette (velocity values 0-127)
// See Programmer's Reference Manual for full palette
const (
	ColorOff         uint8 = 0
	ColorWhite       uint8 = 3
	ColorRed         uint8 = 5
	ColorOrange      uint8 = 9
	ColorYellow      uint8 = 13
	ColorGreen       uint8 = 21
	ColorCyan        uint8 = 37
	ColorBlue        uint8 = 45
	ColorPurple      uint8 = 49
	ColorPink        uint8 = 53
	ColorBrightWhite uint8 = 119

	// Channel modes for LED messages
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)
