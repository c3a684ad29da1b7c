package midi

import (
	"fmt"
	"sync/atomic"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-haptics/debug"
	"go-haptics/recorder"
	"go-haptics/scheduler"
)

var ledSendCount uint64

// Programmer mode, full brightness and external LED feedback
var launchpadSetup = [][]byte{
	{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}, // F0 00 20 29 02 0C 00 7F F7
	{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}, // F0 00 20 29 02 0C 08 <brightness> F7
	{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01},
}

// LaunchpadController handles a Novation Launchpad X. Every pad is a tap
// key for the recorder: press on pad down, release on pad up.
type LaunchpadController struct {
	hub

	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
}

// NewLaunchpadController creates and configures a Launchpad
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
	}

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		for _, msg := range launchpadSetup {
			lp.send(gomidi.SysEx(msg))
		}
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.handle)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) handle(msg gomidi.Message, timestampms int32) {
	var channel, note, velocity, cc uint8
	row, col := -1, -1
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity), msg.GetNoteOff(&channel, &note, &velocity):
		row, col = noteToRowCol(note)
	case msg.GetControlChange(&channel, &cc, &velocity):
		row, col = ccToRowCol(cc)
	}
	if row < 0 {
		return
	}

	e, ok := Edge(msg)
	if !ok {
		return
	}
	debug.LogEvery(20, "lp-input", "%s pad %d,%d %s", lp.id, row, col, e.Kind)
	lp.emit(e)

	// Light the pad while it is held
	if lp.send != nil && row < 8 {
		color := ColorOff
		if e.Kind == recorder.Press {
			color = ColorGreen
		}
		lp.send(gomidi.NoteOn(ChannelStatic, rowColToNote(row, col), color))
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		clearGrid(lp.send)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	return nil
}

// LEDDriver shows buzzes on the Launchpad grid instead of a motor. It is the
// fallback driver when no actuator port exists.
type LEDDriver struct {
	name  string
	send  func(msg gomidi.Message) error
	color uint8
	pulse *pulse
}

// NewLEDDriver wraps send. Tests pass a recording send func.
func NewLEDDriver(name string, send func(msg gomidi.Message) error, clock scheduler.Clock) *LEDDriver {
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	d := &LEDDriver{name: name, send: send, color: ColorOrange}
	d.pulse = &pulse{
		clock: clock,
		on:    func() error { return fillGrid(d.send, d.color) },
		off:   func() error { return fillGrid(d.send, ColorOff) },
	}
	return d
}

// OpenLEDDriver opens out in programmer mode.
func OpenLEDDriver(out drivers.Out, clock scheduler.Clock) (*LEDDriver, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", out.String(), err)
	}
	for _, msg := range launchpadSetup {
		send(gomidi.SysEx(msg))
	}
	debug.Log("midi", "LED fallback on %s", out.String())
	return NewLEDDriver(out.String()+" (led)", send, clock), nil
}

func (d *LEDDriver) Name() string { return d.name }

func (d *LEDDriver) Buzz(dur time.Duration) error { return d.pulse.buzz(dur) }

func (d *LEDDriver) Stop() error { return d.pulse.stop() }

// fillGrid sets the 8x8 grid to one color using individual NoteOn messages
func fillGrid(send func(msg gomidi.Message) error, color uint8) error {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if err := send(gomidi.NoteOn(ChannelStatic, rowColToNote(row, col), color)); err != nil {
				return err
			}
		}
	}

	count := atomic.AddUint64(&ledSendCount, 64)
	if count%1000 < 64 {
		debug.Log("lp-send", "count=%d", count)
	}
	return nil
}

func clearGrid(send func(msg gomidi.Message) error) {
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if row == 8 && col == 8 {
				continue // no LED at 8,8
			}
			send(gomidi.NoteOn(ChannelStatic, rowColToNote(row, col), ColorOff))
		}
	}
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, 39, 49, 59, 69, 79, 89
// Top row:   Row 8 (top control row) = CC 91-98 (handled via CC messages)

func rowColToNote(row, col int) uint8 {
	// Top row uses CC, but for LED control we use notes 91-98
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	// Top row notes (91-98)
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	// Accept 8x8 grid (rows 0-7, cols 0-7) plus side column (col 8)
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

// ccToRowCol converts CC messages to row/col (for top row buttons)
func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
