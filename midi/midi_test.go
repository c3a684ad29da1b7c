package midi

import (
	"errors"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-haptics/actuator"
	"go-haptics/config"
	"go-haptics/recorder"
	"go-haptics/scheduler"
)

const ms = time.Millisecond

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type sent struct {
	mu   sync.Mutex
	msgs []gomidi.Message
	err  error
}

func (s *sent) send(msg gomidi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *sent) all() []gomidi.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gomidi.Message(nil), s.msgs...)
}

func (s *sent) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
}

var _ actuator.Driver = (*OutputDriver)(nil)
var _ actuator.Driver = (*LEDDriver)(nil)
var _ Controller = (*LaunchpadController)(nil)
var _ Controller = (*KeyboardController)(nil)
var _ recorder.Source = (*DeviceManager)(nil)

func TestEdge(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want recorder.EventKind
		ok   bool
	}{
		{"note on", gomidi.NoteOn(0, 60, 100), recorder.Press, true},
		{"note on zero velocity", gomidi.NoteOn(0, 60, 0), recorder.Release, true},
		{"note off", gomidi.NoteOff(0, 60), recorder.Release, true},
		{"cc down", gomidi.ControlChange(0, 91, 127), recorder.Press, true},
		{"cc up", gomidi.ControlChange(0, 91, 0), recorder.Release, true},
		{"pitch bend", gomidi.Pitchbend(0, 100), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := Edge(tt.msg)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, e.Kind)
				assert.True(t, e.At.IsZero())
			}
		})
	}
}

func TestOutputDriverBuzz(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	s := &sent{}
	cfg := config.ActuatorConfig{Channel: 2, Note: 60, Velocity: 90}
	d := NewOutputDriver("vibe", s.send, cfg, clock)
	assert.Equal(t, "vibe", d.Name())

	require.NoError(t, d.Buzz(100*ms))
	assert.Equal(t, []gomidi.Message{gomidi.NoteOn(2, 60, 90)}, s.all())

	clock.Advance(99 * ms)
	assert.Len(t, s.all(), 1)
	clock.Advance(ms)
	assert.Equal(t, []gomidi.Message{gomidi.NoteOn(2, 60, 90), gomidi.NoteOff(2, 60)}, s.all())
	assert.Equal(t, 0, clock.Pending())
}

func TestOutputDriverLastBuzzWins(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	s := &sent{}
	d := NewOutputDriver("vibe", s.send, config.ActuatorConfig{Note: 60}, clock)

	require.NoError(t, d.Buzz(100*ms))
	clock.Advance(50 * ms)
	require.NoError(t, d.Buzz(100*ms))
	clock.Advance(60 * ms)

	on := gomidi.NoteOn(0, 60, 127)
	assert.Equal(t, []gomidi.Message{on, on}, s.all(), "first note off was superseded")

	clock.Advance(40 * ms)
	assert.Equal(t, []gomidi.Message{on, on, gomidi.NoteOff(0, 60)}, s.all())
}

func TestOutputDriverStop(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	s := &sent{}
	d := NewOutputDriver("vibe", s.send, config.ActuatorConfig{Note: 64, Velocity: 1}, clock)

	require.NoError(t, d.Buzz(time.Second))
	require.NoError(t, d.Stop())
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, []gomidi.Message{gomidi.NoteOn(0, 64, 1), gomidi.NoteOff(0, 64)}, s.all())

	s.reset()
	require.NoError(t, d.Buzz(0))
	assert.Equal(t, []gomidi.Message{gomidi.NoteOff(0, 64)}, s.all(), "zero buzz only stops")
}

func TestOutputDriverSendError(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	boom := errors.New("port gone")
	s := &sent{err: boom}
	d := NewOutputDriver("vibe", s.send, config.ActuatorConfig{Note: 60}, clock)

	assert.ErrorIs(t, d.Buzz(10*ms), boom)
	assert.Equal(t, 0, clock.Pending())
}

func TestLEDDriver(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	s := &sent{}
	d := NewLEDDriver("lp", s.send, clock)

	require.NoError(t, d.Buzz(30*ms))
	msgs := s.all()
	require.Len(t, msgs, 64)
	assert.Equal(t, gomidi.NoteOn(ChannelStatic, 11, ColorOrange), msgs[0])
	assert.Equal(t, gomidi.NoteOn(ChannelStatic, 88, ColorOrange), msgs[63])

	clock.Advance(30 * ms)
	msgs = s.all()
	require.Len(t, msgs, 128)
	assert.Equal(t, gomidi.NoteOn(ChannelStatic, 88, ColorOff), msgs[127])
}

func TestGateWithOutputDriver(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	s := &sent{}
	d := NewOutputDriver("vibe", s.send, config.ActuatorConfig{Note: 60}, clock)

	gate := actuator.NewGate(actuator.WithDriver(d))
	assert.True(t, gate.Buzz(20*ms))
	clock.Advance(20 * ms)
	assert.Len(t, s.all(), 2)
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("Haptic Motor MIDI 1", "haptic"))
	assert.True(t, Matches("LPX MIDI", " lpx "))
	assert.False(t, Matches("Launchpad X", "vibe"))
	assert.False(t, Matches("anything", ""))
	assert.True(t, isLaunchpad("Launchpad X LPX MIDI In"))
	assert.False(t, isLaunchpad("Launchpad X DAW In"))
}

func TestNoteMapping(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 9; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			assert.Equal(t, row, r)
			assert.Equal(t, col, c)
		}
	}

	r, c := noteToRowCol(95)
	assert.Equal(t, 8, r)
	assert.Equal(t, 4, c)

	r, _ = noteToRowCol(5)
	assert.Equal(t, -1, r)

	r, c = ccToRowCol(98)
	assert.Equal(t, 8, r)
	assert.Equal(t, 7, c)
	r, _ = ccToRowCol(10)
	assert.Equal(t, -1, r)
}

func TestLaunchpadPadsFeedRecorder(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	s := &sent{}
	lp := &LaunchpadController{id: "lp", send: s.send}

	rec := recorder.New(clock, lp)
	rec.Record()

	lp.handle(gomidi.NoteOn(0, 11, 100), 0)
	clock.Advance(80 * ms)
	lp.handle(gomidi.NoteOff(0, 11), 0)
	clock.Advance(20 * ms)
	lp.handle(gomidi.NoteOn(0, 5, 100), 0) // not a pad
	lp.handle(gomidi.ControlChange(0, 91, 127), 0)
	clock.Advance(40 * ms)
	lp.handle(gomidi.ControlChange(0, 91, 0), 0)

	l := rec.Finish()
	assert.Equal(t, []time.Duration{80 * ms, 40 * ms}, []time.Duration(l))

	msgs := s.all()
	require.Len(t, msgs, 2, "grid pads light while held")
	assert.Equal(t, gomidi.NoteOn(ChannelStatic, 11, ColorGreen), msgs[0])
	assert.Equal(t, gomidi.NoteOn(ChannelStatic, 11, ColorOff), msgs[1])
}

func TestKeyboardFeedsRecorder(t *testing.T) {
	clock := scheduler.NewFakeClock(epoch)
	kb := &KeyboardController{id: "kb"}

	rec := recorder.New(clock, kb)
	rec.Record()

	kb.handle(gomidi.NoteOn(0, 60, 64), 0)
	clock.Advance(70 * ms)
	kb.handle(gomidi.NoteOn(0, 60, 0), 0)
	kb.handle(gomidi.ControlChange(0, 1, 10), 0) // mod wheel is ignored

	assert.Equal(t, []time.Duration{70 * ms}, []time.Duration(rec.Finish()))
}

func TestDeviceManagerForwards(t *testing.T) {
	dm := NewDeviceManager([]string{"keys"})
	kb := &KeyboardController{id: "keys"}
	dm.unsubs["keys"] = kb.Subscribe(dm.emit)
	dm.controllers["keys"] = kb

	var got []recorder.Event
	unsub := dm.Subscribe(func(e recorder.Event) { got = append(got, e) })

	kb.handle(gomidi.NoteOn(0, 60, 64), 0)
	dm.closeAll()
	kb.handle(gomidi.NoteOn(0, 61, 64), 0)
	unsub()

	require.Len(t, got, 1)
	assert.Equal(t, recorder.Press, got[0].Kind)
	assert.Empty(t, dm.Controllers())
}
