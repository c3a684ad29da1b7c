package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-haptics/recorder"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Edge turns an incoming message into a recorder event. Note on with a
// velocity is a press; note off, or note on with velocity 0, is a release.
// Control changes follow the same rule on their value. The event is left
// unstamped so the recorder's clock decides when it happened.
func Edge(msg gomidi.Message) (recorder.Event, bool) {
	var channel, key, velocity, cc, value uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity > 0 {
			return recorder.Event{Kind: recorder.Press}, true
		}
		return recorder.Event{Kind: recorder.Release}, true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return recorder.Event{Kind: recorder.Release}, true
	case msg.GetControlChange(&channel, &cc, &value):
		if value > 0 {
			return recorder.Event{Kind: recorder.Press}, true
		}
		return recorder.Event{Kind: recorder.Release}, true
	}
	return recorder.Event{}, false
}
