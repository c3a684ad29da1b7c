package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-haptics/timeline"
)

const ms = time.Millisecond

type call struct {
	phase string
	d     time.Duration
	at    time.Duration
}

type probe struct {
	clock *FakeClock
	calls []call
}

func (p *probe) phase(name string) PhaseFunc {
	return func(d time.Duration) *Playback {
		p.calls = append(p.calls, call{phase: name, d: d, at: p.clock.Since(epoch)})
		return nil
	}
}

func newTestScheduler() (*Scheduler, *probe) {
	clock := NewFakeClock(epoch)
	return New(WithClock(clock)), &probe{clock: clock}
}

func TestPlay_PingPong(t *testing.T) {
	s, pr := newTestScheduler()

	pb := s.Play(timeline.List{10 * ms, 20 * ms, 30 * ms, 40 * ms}, pr.phase("A"), pr.phase("B"))

	// first phase is issued before Play returns
	require.Len(t, pr.calls, 1)
	assert.False(t, pb.Finished())
	assert.Equal(t, 3, pb.Remaining())

	pr.clock.Advance(time.Second)

	assert.Equal(t, []call{
		{"A", 10 * ms, 0},
		{"B", 20 * ms, 10 * ms},
		{"A", 30 * ms, 30 * ms},
		{"B", 40 * ms, 60 * ms},
	}, pr.calls)
	assert.True(t, pb.Finished())
	assert.Empty(t, s.Active())
}

func TestPlay_SinglePhaseFillsBothSlots(t *testing.T) {
	s, pr := newTestScheduler()

	s.Play(timeline.List{5 * ms, 5 * ms, 5 * ms}, pr.phase("A"), nil)
	pr.clock.Advance(time.Second)

	require.Len(t, pr.calls, 3)
	for _, c := range pr.calls {
		assert.Equal(t, "A", c.phase)
	}
}

func TestPlay_NoEarlyWake(t *testing.T) {
	s, pr := newTestScheduler()

	s.Play(timeline.List{100 * ms, 50 * ms}, pr.phase("A"), pr.phase("B"))

	pr.clock.Advance(99 * ms)
	assert.Len(t, pr.calls, 1)
	pr.clock.Advance(1 * ms)
	assert.Len(t, pr.calls, 2)
}

func TestPlay_EmptyList(t *testing.T) {
	s, pr := newTestScheduler()

	pb := s.Play(timeline.List{}, pr.phase("A"), pr.phase("B"))

	assert.Empty(t, pr.calls)
	assert.True(t, pb.Finished())
	assert.Equal(t, 0, pr.clock.Pending())
	select {
	case <-pb.Done():
	default:
		t.Fatal("Done not closed for empty list")
	}
}

func TestPlay_SingleEntryArmsNoTimer(t *testing.T) {
	s, pr := newTestScheduler()

	pb := s.Play(timeline.List{500 * ms}, pr.phase("A"), nil)

	assert.Len(t, pr.calls, 1)
	assert.True(t, pb.Finished())
	assert.Equal(t, 0, pr.clock.Pending())
}

func TestPlay_DoesNotMutateCallerList(t *testing.T) {
	s, pr := newTestScheduler()
	list := timeline.List{10 * ms, 20 * ms, 30 * ms}

	s.Play(list, pr.phase("A"), pr.phase("B"))
	assert.Equal(t, timeline.List{10 * ms, 20 * ms, 30 * ms}, list)

	// later edits by the caller do not leak into the running playback
	list[1] = 999 * ms
	pr.clock.Advance(time.Second)

	require.Len(t, pr.calls, 3)
	assert.Equal(t, 20*ms, pr.calls[1].d)
}

func TestPlay_Cancel(t *testing.T) {
	s, pr := newTestScheduler()

	pb := s.Play(timeline.List{10 * ms, 10 * ms, 10 * ms, 10 * ms}, pr.phase("A"), pr.phase("B"))
	pr.clock.Advance(10 * ms)
	require.Len(t, pr.calls, 2)

	pb.Cancel()
	pb.Cancel() // idempotent

	pr.clock.Advance(time.Second)
	assert.Len(t, pr.calls, 2)
	assert.True(t, pb.Cancelled())
	assert.True(t, pb.Finished())
	assert.Equal(t, 0, pr.clock.Pending())
	assert.Empty(t, s.Active())
}

func TestPlay_CancelCascadesToChildren(t *testing.T) {
	s, pr := newTestScheduler()
	var child *Playback

	outer := func(d time.Duration) *Playback {
		child = s.Play(timeline.List{d / 2, d / 2}, pr.phase("inner"), nil)
		return child
	}

	pb := s.Play(timeline.List{100 * ms, 100 * ms, 100 * ms}, outer, nil)
	require.NotNil(t, child)
	require.Len(t, pr.calls, 1)

	pb.Cancel()
	pr.clock.Advance(time.Second)

	assert.Len(t, pr.calls, 1)
	assert.True(t, child.Cancelled())
}

func TestPlay_WaitsForChildren(t *testing.T) {
	s, pr := newTestScheduler()

	// the last phase starts a child that outlives the list
	outer := func(d time.Duration) *Playback {
		return s.Play(timeline.List{d, d, d}, pr.phase("inner"), nil)
	}

	pb := s.Play(timeline.List{10 * ms}, outer, nil)
	assert.False(t, pb.Finished())

	pr.clock.Advance(20 * ms)
	assert.True(t, pb.Finished())
	assert.Len(t, pr.calls, 3)
}

func TestGroup_SpawnAndSeal(t *testing.T) {
	s, pr := newTestScheduler()

	g := s.Group()
	g.Spawn(0, func() *Playback {
		return s.Play(timeline.List{10 * ms, 10 * ms}, pr.phase("one"), nil)
	})
	g.Spawn(0, func() *Playback {
		return s.Play(timeline.List{30 * ms}, pr.phase("two"), nil)
	})
	g.Spawn(0, func() *Playback { return nil })
	g.Seal()

	assert.Empty(t, pr.calls, "spawns are deferred")
	assert.Len(t, s.Active(), 1)

	pr.clock.Advance(0)
	assert.Len(t, pr.calls, 2)
	assert.False(t, g.Finished())

	pr.clock.Advance(10 * ms)
	assert.True(t, g.Finished())
	assert.Len(t, pr.calls, 3)
}

func TestGroup_EmptyFinishesOnSeal(t *testing.T) {
	s, _ := newTestScheduler()
	g := s.Group()
	assert.False(t, g.Finished())
	g.Seal()
	assert.True(t, g.Finished())
}

func TestGroup_CancelStopsPendingSpawns(t *testing.T) {
	s, pr := newTestScheduler()

	g := s.Group()
	g.Spawn(0, func() *Playback {
		return s.Play(timeline.List{10 * ms}, pr.phase("late"), nil)
	})
	g.Seal()
	g.Cancel()

	pr.clock.Advance(time.Second)
	assert.Empty(t, pr.calls)
	assert.True(t, g.Finished())
}

func TestOnDoneAndWait(t *testing.T) {
	s, pr := newTestScheduler()

	pb := s.Play(timeline.List{10 * ms, 10 * ms}, pr.phase("A"), nil)
	calls := 0
	pb.OnDone(func() { calls++ })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pb.Wait(ctx), context.Canceled)

	pr.clock.Advance(10 * ms)
	assert.Equal(t, 1, calls)
	assert.NoError(t, pb.Wait(context.Background()))

	pb.OnDone(func() { calls++ })
	assert.Equal(t, 2, calls, "OnDone after finish runs immediately")
}

func TestCancelAll(t *testing.T) {
	s, pr := newTestScheduler()

	a := s.Play(timeline.List{10 * ms, 10 * ms}, pr.phase("A"), nil)
	b := s.Play(timeline.List{10 * ms, 10 * ms}, pr.phase("B"), nil)
	assert.Len(t, s.Active(), 2)

	s.CancelAll()
	assert.True(t, a.Cancelled())
	assert.True(t, b.Cancelled())
	assert.Empty(t, s.Active())
}

func TestActuatingFlag(t *testing.T) {
	on := New(WithClock(NewFakeClock(epoch)), WithActuating(true))
	off := New(WithClock(NewFakeClock(epoch)))

	assert.True(t, on.Play(timeline.List{ms}, nil, nil).Actuating())
	assert.False(t, off.Play(timeline.List{ms}, nil, nil).Actuating())
}

func TestPlay_RealClock(t *testing.T) {
	s := New()
	done := make(chan time.Duration, 4)
	start := time.Now()

	pb := s.Play(timeline.List{5 * ms, 5 * ms, 5 * ms}, func(d time.Duration) *Playback {
		done <- time.Since(start)
		return nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pb.Wait(ctx))

	require.Len(t, done, 3)
	<-done
	<-done
	assert.GreaterOrEqual(t, <-done, 10*ms)
}
