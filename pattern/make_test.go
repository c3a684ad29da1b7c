package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-haptics/timeline"
	"go-haptics/waveform"
)

func TestMakeSingleRatios(t *testing.T) {
	r := newRig(t, true)

	p, err := r.player.Make(Ratios(1, 3))
	require.NoError(t, err)
	_, err = p.Play(timeline.Total(400 * ms))
	require.NoError(t, err)
	r.clock.Advance(time.Second)

	assert.Equal(t, []time.Duration{100 * ms, 300 * ms}, r.driver.Buzzes())
}

func TestMakeSinglePattern(t *testing.T) {
	r := newRig(t, true)
	s := &spy{}

	p, err := r.player.Make(Of(s))
	require.NoError(t, err)
	assert.Same(t, s, p)
}

func TestMakeCombinesSeveralParts(t *testing.T) {
	r := newRig(t, true)
	s := &spy{}

	p, err := r.player.Make(Of(s), Ratios(1, 1), Of(r.player.Waveform(waveform.Clunk)))
	require.NoError(t, err)

	_, err = p.Play(timeline.Total(660 * ms))
	require.NoError(t, err)
	r.clock.Advance(time.Second)

	assert.Equal(t, []timeline.Effect{timeline.Total(220 * ms)}, s.effects())
	assert.ElementsMatch(t,
		[]time.Duration{110 * ms, 110 * ms, 40 * ms, 100 * ms},
		r.driver.Buzzes())
}

func TestMakeNested(t *testing.T) {
	r := newRig(t, true)

	inner, err := r.player.Make(Ratios(1, 1), Ratios(1))
	require.NoError(t, err)
	outer, err := r.player.Make(Of(inner), Ratios(2, 2))
	require.NoError(t, err)

	_, err = outer.Play(timeline.Total(800 * ms))
	require.NoError(t, err)
	r.clock.Advance(time.Second)

	// outer share 400: inner splits it into 200 (1:1) and 200 (1)
	assert.ElementsMatch(t,
		[]time.Duration{100 * ms, 100 * ms, 200 * ms, 200 * ms, 200 * ms},
		r.driver.Buzzes())
}

func TestMakeErrors(t *testing.T) {
	r := newRig(t, true)

	_, err := r.player.Make()
	assert.ErrorIs(t, err, ErrNoParts)

	_, err = r.player.Make(Ratios())
	assert.ErrorIs(t, err, ErrNoParts)

	_, err = r.player.Make(Of(&spy{}), Ratios(0, 0))
	require.ErrorIs(t, err, ErrZeroRatio)
	assert.Contains(t, err.Error(), "part 1")
}
