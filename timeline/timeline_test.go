package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(n float64) time.Duration { return Millis(n) }

func TestListHelpers(t *testing.T) {
	l := List{ms(10), ms(20), ms(30)}

	assert.Equal(t, ms(60), l.Sum())
	assert.Equal(t, List{ms(30), ms(20), ms(10)}, l.Reverse())
	assert.Equal(t, List{ms(20), ms(40), ms(60)}, l.Scale(2))
	assert.Equal(t, List{ms(10), ms(30)}, l.On())
	assert.Equal(t, "[10ms 20ms 30ms]", l.String())

	// helpers never touch the receiver
	assert.Equal(t, List{ms(10), ms(20), ms(30)}, l)
}

func TestCloneIsIndependent(t *testing.T) {
	l := List{ms(1), ms(2)}
	c := l.Clone()
	c[0] = ms(99)
	assert.Equal(t, ms(1), l[0])
	assert.Nil(t, List(nil).Clone())
}

func TestValidate(t *testing.T) {
	require.NoError(t, List{0, ms(5)}.Validate())

	err := List{ms(5), -ms(1)}.Validate()
	require.ErrorIs(t, err, ErrNegativeDuration)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestEffect(t *testing.T) {
	e := Total(ms(500))
	assert.Equal(t, KindTotal, e.Kind())
	assert.Equal(t, ms(500), e.Total())
	assert.NoError(t, e.Validate())
	assert.Equal(t, "500ms", e.String())

	src := []time.Duration{ms(100), ms(50)}
	tl := Timeline(src...)
	src[0] = ms(1)
	assert.Equal(t, KindTimeline, tl.Kind())
	assert.Equal(t, List{ms(100), ms(50)}, tl.List())

	// List returns a copy
	got := tl.List()
	got[1] = 0
	assert.Equal(t, ms(50), tl.List()[1])

	assert.ErrorIs(t, Total(-ms(1)).Validate(), ErrNegativeDuration)
	assert.ErrorIs(t, Timeline(ms(1), -ms(1)).Validate(), ErrNegativeDuration)
	assert.Error(t, Effect{kind: Kind(7)}.Validate())
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "0ms", FormatMillis(0))
	assert.Equal(t, "16.667ms", FormatMillis(time.Duration(16666667)))
	assert.Equal(t, "1500ms", FormatMillis(1500*time.Millisecond))
}

func TestFromMillis(t *testing.T) {
	assert.Equal(t, List{ms(100), ms(150)}, FromMillis([]float64{0, 100, 250, 400}))
	assert.Equal(t, List{}, FromMillis([]float64{5}))
	assert.Equal(t, List{}, FromMillis(nil))
}

func TestFromTimestampsWithPadding(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{base, base.Add(ms(100)), base.Add(ms(250))}

	padded := Pad(ts, base.Add(ms(400)))
	require.Len(t, padded, 4)
	assert.Len(t, ts, 3, "caller slice untouched")

	assert.Equal(t, List{ms(100), ms(150)}, FromTimestamps(padded))

	even := ts[:2]
	assert.Equal(t, even, Pad(even, base))
}

func TestResolve(t *testing.T) {
	names := DefaultNames()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr error
	}{
		{"slow", ms(1000), nil},
		{"MEDIUM", ms(500), nil},
		{" fast ", ms(250), nil},
		{"120", ms(120), nil},
		{"12.5", ms(12.5), nil},
		{"1.5s", 1500 * time.Millisecond, nil},
		{"-3", 0, ErrNegativeDuration},
		{"-1s", 0, ErrNegativeDuration},
		{"glacial", 0, ErrUnknownDuration},
		{"NaN", 0, ErrDurationRange},
		{"Inf", 0, ErrDurationRange},
		{"-inf", 0, ErrDurationRange},
		{"1e300", 0, ErrDurationRange},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := names.Resolve(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEffect(t *testing.T) {
	names := DefaultNames()

	e, err := names.ParseEffect("fast")
	require.NoError(t, err)
	assert.Equal(t, Total(ms(250)), e)

	e, err = names.ParseEffect("100, 50 slow")
	require.NoError(t, err)
	assert.Equal(t, KindTimeline, e.Kind())
	assert.Equal(t, List{ms(100), ms(50), ms(1000)}, e.List())

	_, err = names.ParseEffect("")
	assert.ErrorIs(t, err, ErrUnknownDuration)

	_, err = names.ParseList("10,nope")
	assert.ErrorIs(t, err, ErrUnknownDuration)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"fast", "medium", "slow"}, DefaultNames().Keys())
}
