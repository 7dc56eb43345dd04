package loop

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAsync(l *RenderLoop, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("render loop did not stop")
		return nil
	}
}

func TestRunStepsOncePerTick(t *testing.T) {
	var steps atomic.Int32
	d := NewManualDriver()
	l := New(func() { steps.Add(1) }, d)

	done := runAsync(l, context.Background())
	for i := 0; i < 5; i++ {
		require.True(t, d.Tick())
	}
	l.Stop()

	require.NoError(t, waitDone(t, done))
	assert.Equal(t, int32(5), steps.Load())
	assert.Equal(t, uint64(5), l.Frames())

	// the driver is released with the loop
	assert.False(t, d.Tick())
}

func TestStepsDoNotOverlap(t *testing.T) {
	var inStep, overlaps atomic.Int32
	d := NewManualDriver()
	l := New(func() {
		if inStep.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(time.Millisecond)
		inStep.Add(-1)
	}, d)

	done := runAsync(l, context.Background())
	for i := 0; i < 20; i++ {
		d.Tick()
	}
	l.Stop()
	require.NoError(t, waitDone(t, done))
	assert.Zero(t, overlaps.Load())
}

func TestStopFromInsideStep(t *testing.T) {
	d := NewManualDriver()
	var l *RenderLoop
	l = New(func() { l.Stop() }, d)

	done := runAsync(l, context.Background())
	d.Tick()
	require.NoError(t, waitDone(t, done))
	assert.Equal(t, uint64(1), l.Frames())
}

func TestStopBeforeRun(t *testing.T) {
	l := New(func() { t.Fatal("step called") }, NewManualDriver())
	l.Stop()
	l.Stop()
	assert.NoError(t, l.Run(context.Background()))
	assert.Zero(t, l.Frames())
}

func TestRunTwice(t *testing.T) {
	l := New(func() {}, NewManualDriver())
	l.Stop()
	require.NoError(t, l.Run(context.Background()))
	assert.True(t, errors.Is(l.Run(context.Background()), ErrRunning))
}

func TestContextCancelEndsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(func() {}, NewManualDriver())

	done := runAsync(l, ctx)
	cancel()
	assert.True(t, errors.Is(waitDone(t, done), context.Canceled))
}

func TestFrameObserver(t *testing.T) {
	var observed atomic.Int32
	d := NewManualDriver()
	l := New(func() {}, d, WithFrameObserver(func(dur time.Duration) {
		assert.GreaterOrEqual(t, dur, time.Duration(0))
		observed.Add(1)
	}))

	done := runAsync(l, context.Background())
	d.Tick()
	d.Tick()
	l.Stop()
	require.NoError(t, waitDone(t, done))
	assert.Equal(t, int32(2), observed.Load())
}

func TestTickerDriver(t *testing.T) {
	var steps atomic.Int32
	l := New(func() { steps.Add(1) }, NewTickerDriver(200))

	done := runAsync(l, context.Background())
	require.Eventually(t, func() bool { return steps.Load() >= 3 }, 5*time.Second, time.Millisecond)
	l.Stop()
	require.NoError(t, waitDone(t, done))
	assert.GreaterOrEqual(t, l.Frames(), uint64(3))
}

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}
