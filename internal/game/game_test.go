package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/quantum-field/internal/field"
	"github.com/iburimskiy/quantum-field/internal/loop"
	"github.com/iburimskiy/quantum-field/internal/manifest"
)

var start = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	game    *Game
	field   *field.Field
	manager *manifest.Manager
	store   *manifest.MemoryStore
	clock   *loop.ManualClock
}

func newFixture(t *testing.T, prompter Prompter) *fixture {
	t.Helper()
	clock := loop.NewManualClock(start)
	store := manifest.NewMemoryStore()
	m, err := manifest.NewManager(manifest.Options{
		Store: store,
		Rand:  field.NewRandom(1),
		Clock: clock,
	})
	require.NoError(t, err)

	f := field.New(field.DefaultOptions(800, 600), field.NewRandom(1))
	g, err := New(Options{
		Field:    f,
		Manager:  m,
		Prompter: prompter,
		Clock:    clock,
	})
	require.NoError(t, err)
	return &fixture{game: g, field: f, manager: m, store: store, clock: clock}
}

func (fx *fixture) awaitDialog(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return len(fx.game.dialogs) == 1 }, 5*time.Second, time.Millisecond)
	fx.game.tick(fx.clock.Now())
}

func TestNewRequiresFieldAndManager(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestCursorActivatesOnFirstMove(t *testing.T) {
	fx := newFixture(t, nil)

	fx.game.trackCursor(10, 10)
	assert.False(t, fx.field.Cursor().Active)
	fx.game.trackCursor(10, 10)
	assert.False(t, fx.field.Cursor().Active)

	fx.game.trackCursor(40, 25)
	c := fx.field.Cursor()
	assert.True(t, c.Active)
	assert.Equal(t, 40.0, c.X)
	assert.Equal(t, 25.0, c.Y)
}

func TestNewManifestationFlow(t *testing.T) {
	fx := newFixture(t, PrompterFunc(func() (manifest.Input, error) {
		return manifest.Input{Title: "Garden", Category: manifest.Health, Intensity: 7}, nil
	}))

	fx.game.openDialog()
	fx.game.openDialog() // ignored while the first is up
	fx.awaitDialog(t)

	require.NotNil(t, fx.game.pending)
	assert.Empty(t, fx.manager.All(), "added only after encoding")

	fx.clock.Advance(2 * time.Second)
	fx.game.tick(fx.clock.Now())
	assert.Empty(t, fx.manager.All())

	fx.clock.Advance(500 * time.Millisecond)
	fx.game.tick(fx.clock.Now())
	assert.Nil(t, fx.game.pending)

	all := fx.manager.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Garden", all[0].Title)
	assert.True(t, fx.game.panelOpen)
	assert.Contains(t, fx.game.status, "Garden")
	assert.Equal(t, 1, fx.store.Saves())
}

func TestCanceledDialogDoesNothing(t *testing.T) {
	fx := newFixture(t, PrompterFunc(func() (manifest.Input, error) {
		return manifest.Input{}, ErrCanceled
	}))

	fx.game.openDialog()
	fx.awaitDialog(t)

	assert.False(t, fx.game.dialogOpen)
	assert.Nil(t, fx.game.pending)
	assert.Empty(t, fx.game.status)
}

func TestDialogErrorSetsStatus(t *testing.T) {
	fx := newFixture(t, PrompterFunc(func() (manifest.Input, error) {
		return manifest.Input{}, errors.New("no display")
	}))

	fx.game.openDialog()
	fx.awaitDialog(t)
	assert.Contains(t, fx.game.status, "no display")
	assert.Nil(t, fx.game.pending)
}

func TestInvalidInputIsRejectedBeforeEncoding(t *testing.T) {
	fx := newFixture(t, PrompterFunc(func() (manifest.Input, error) {
		return manifest.Input{Category: manifest.Love, Intensity: 5}, nil
	}))

	fx.game.openDialog()
	fx.awaitDialog(t)
	assert.Nil(t, fx.game.pending)
	assert.Contains(t, fx.game.status, "Could not encode")
}

func TestArchiveAndRemoveSelected(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.manager.Add(manifest.Input{Title: "one", Category: manifest.Love, Intensity: 3})
	require.NoError(t, err)
	_, err = fx.manager.Add(manifest.Input{Title: "two", Category: manifest.Love, Intensity: 3})
	require.NoError(t, err)

	fx.game.selected = 1
	fx.game.archiveSelected()
	require.Len(t, fx.manager.History(), 1)
	assert.Equal(t, "one", fx.manager.History()[0].Title)

	fx.game.tick(fx.clock.Now())
	assert.Zero(t, fx.game.selected)

	fx.game.removeSelected()
	assert.Empty(t, fx.manager.Active())
	assert.Len(t, fx.manager.All(), 1)

	// nothing left to act on
	fx.game.archiveSelected()
	fx.game.removeSelected()
}

func TestTickWithoutSurfaceSkipsStep(t *testing.T) {
	fx := newFixture(t, nil)
	before := fx.field.Particles()
	fx.game.tick(fx.clock.Now())
	assert.Equal(t, before, fx.field.Particles())
}

type constLevel float64

func (l constLevel) Level() float64 { return float64(l) }

func TestTickPollsLevel(t *testing.T) {
	fx := newFixture(t, nil)
	fx.game.levelSource = constLevel(0.7)
	fx.game.tick(fx.clock.Now())
	assert.Equal(t, 0.7, fx.game.level)
}
