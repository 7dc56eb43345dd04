package term

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/quantum-field/internal/config"
	"github.com/iburimskiy/quantum-field/internal/field"
	"github.com/iburimskiy/quantum-field/internal/loop"
	"github.com/iburimskiy/quantum-field/internal/manifest"
	"github.com/iburimskiy/quantum-field/internal/metrics"
)

func rowText(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		b.WriteRune(runeAt(screen, x, y))
	}
	return b.String()
}

func newTestRunner(t *testing.T, screen tcell.Screen, opts Options) (*Runner, *field.Field, *loop.ManualDriver) {
	t.Helper()
	f := field.New(field.DefaultOptions(0, 0), field.NewRandom(1))
	d := loop.NewManualDriver()
	opts.Screen = screen
	opts.Field = f
	opts.Driver = d
	r, err := New(opts)
	require.NoError(t, err)
	return r, f, d
}

func TestNewRequiresScreenAndField(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestRunDrawsFramesAndStatus(t *testing.T) {
	screen := newSimScreen(t, 60, 12)
	clock := loop.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m, err := manifest.NewManager(manifest.Options{Rand: field.NewRandom(2), Clock: clock})
	require.NoError(t, err)
	collector := metrics.NewCollector()

	r, f, d := newTestRunner(t, screen, Options{Manager: m, Clock: clock, Metrics: collector})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	require.True(t, d.Tick())
	require.True(t, d.Tick())
	r.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}

	assert.Equal(t, field.Size{Width: 60 * config.CellWidth, Height: 11 * config.CellHeight}, f.Size())
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.Frames))
	assert.Equal(t, 150.0, testutil.ToFloat64(collector.Particles))

	status := rowText(screen, 11, 60)
	assert.True(t, strings.HasPrefix(status, " QUANTUM FIELD · 150 particles"), status)

	dots := 0
	for y := 0; y < 11; y++ {
		for x := 0; x < 60; x++ {
			if ch := runeAt(screen, x, y); ch == dotRune || ch == bigRune {
				dots++
			}
		}
	}
	assert.Positive(t, dots)
}

func TestStatusLineWithManager(t *testing.T) {
	screen := newSimScreen(t, 120, 5)
	clock := loop.NewManualClock(time.Now())
	store := manifest.NewMemoryStore(manifest.Manifestation{ID: "a", Status: manifest.Fulfilled})
	m, err := manifest.NewManager(manifest.Options{Store: store, Rand: field.NewRandom(3), Clock: clock})
	require.NoError(t, err)

	r, _, _ := newTestRunner(t, screen, Options{Manager: m})
	line := r.statusLine()
	assert.Contains(t, line, "Connection: "+m.ConnectionStrength())
	assert.Contains(t, line, "0 Active")
	assert.Contains(t, line, "1 ✓ Fulfilled")
	assert.True(t, strings.HasSuffix(line, "q quit"))
}

func TestMouseMovesCursor(t *testing.T) {
	screen := newSimScreen(t, 40, 10)
	r, f, _ := newTestRunner(t, screen, Options{})

	assert.False(t, f.Cursor().Active)
	r.handleEvent(tcell.NewEventMouse(5, 3, tcell.ButtonNone, tcell.ModNone))

	c := f.Cursor()
	assert.True(t, c.Active)
	assert.Equal(t, 5.5*config.CellWidth, c.X)
	assert.Equal(t, 3.5*config.CellHeight, c.Y)
}

func TestResizeEventResizesField(t *testing.T) {
	screen := newSimScreen(t, 40, 10)
	r, f, _ := newTestRunner(t, screen, Options{})

	screen.SetSize(20, 5)
	r.handleEvent(tcell.NewEventResize(20, 5))
	assert.Equal(t, field.Size{Width: 20 * config.CellWidth, Height: 4 * config.CellHeight}, f.Size())
}

func TestQuitKeysStopRunner(t *testing.T) {
	keys := map[string]*tcell.EventKey{
		"q":      tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		"escape": tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		"ctrl-c": tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
	}
	for name, ev := range keys {
		t.Run(name, func(t *testing.T) {
			screen := newSimScreen(t, 40, 10)
			r, _, _ := newTestRunner(t, screen, Options{})

			r.handleEvent(ev)
			assert.NoError(t, r.Run(context.Background()))
			assert.Zero(t, r.loop.Frames())
		})
	}
}

func TestOtherKeysDoNotStop(t *testing.T) {
	screen := newSimScreen(t, 40, 10)
	r, _, d := newTestRunner(t, screen, Options{})
	r.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	require.True(t, d.Tick())
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, uint64(1), r.loop.Frames())
}
