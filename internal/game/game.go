// Package game runs the particle field in an ebiten window with the
// manifestation panel drawn over it.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/quantum-field/internal/config"
	"github.com/iburimskiy/quantum-field/internal/field"
	"github.com/iburimskiy/quantum-field/internal/loop"
	"github.com/iburimskiy/quantum-field/internal/manifest"
	"github.com/iburimskiy/quantum-field/internal/metrics"
)

const statusDuration = 4 * time.Second

// LevelSource reports a loudness in [0, 1] for the HUD pulse.
type LevelSource interface {
	Level() float64
}

type Options struct {
	Field    *field.Field
	Manager  *manifest.Manager
	Prompter Prompter
	Clock    loop.Clock
	Metrics  *metrics.Collector
	Level    LevelSource
	Logger   *zap.Logger

	// Done ends the game when closed.
	Done <-chan struct{}

	// EncodingDelay is how long the encoding overlay stays up before a new
	// manifestation is added.
	EncodingDelay time.Duration
}

type dialogResult struct {
	input manifest.Input
	err   error
}

// Game implements ebiten.Game. Update steps the field once per tick onto an
// offscreen canvas; Draw presents it.
type Game struct {
	field         *field.Field
	manager       *manifest.Manager
	prompter      Prompter
	clock         loop.Clock
	metrics       *metrics.Collector
	levelSource   LevelSource
	logger        *zap.Logger
	encodingDelay time.Duration
	done          <-chan struct{}

	surface       *canvasSurface
	width, height int
	stats         field.FrameStats
	faces         *faces
	started       time.Time
	level         float64

	// input edge detection
	prevKey     map[ebiten.Key]bool
	cursorX     int
	cursorY     int
	cursorKnown bool

	// panel state
	panelOpen bool
	selected  int

	// new manifestation flow
	dialogs    chan dialogResult
	dialogOpen bool
	pending    *manifest.Input
	encodeAt   time.Time

	status      string
	statusUntil time.Time
}

func New(opts Options) (*Game, error) {
	if opts.Field == nil || opts.Manager == nil {
		return nil, errors.New("game: Field and Manager are required")
	}
	if opts.Prompter == nil {
		opts.Prompter = ZenityPrompter{}
	}
	if opts.Clock == nil {
		opts.Clock = loop.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.EncodingDelay <= 0 {
		opts.EncodingDelay = config.EncodingDelayMillis * time.Millisecond
	}

	f, err := loadFaces()
	if err != nil {
		return nil, err
	}

	return &Game{
		field:         opts.Field,
		manager:       opts.Manager,
		prompter:      opts.Prompter,
		clock:         opts.Clock,
		metrics:       opts.Metrics,
		levelSource:   opts.Level,
		logger:        opts.Logger,
		encodingDelay: opts.EncodingDelay,
		done:          opts.Done,
		faces:         f,
		started:       opts.Clock.Now(),
		prevKey:       map[ebiten.Key]bool{},
		dialogs:       make(chan dialogResult, 1),
	}, nil
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	quit := justPressed(ebiten.KeyEscape)
	quit = justPressed(ebiten.KeyQ) || quit
	newPressed := justPressed(ebiten.KeyN)
	tabPressed := justPressed(ebiten.KeyTab)
	archivePressed := justPressed(ebiten.KeyA)
	removePressed := justPressed(ebiten.KeyDelete)
	removePressed = justPressed(ebiten.KeyBackspace) || removePressed

	select {
	case <-g.done:
		quit = true
	default:
	}
	if quit {
		return ebiten.Termination
	}

	g.trackCursor(ebiten.CursorPosition())

	if newPressed {
		g.openDialog()
	}
	if tabPressed {
		g.panelOpen = !g.panelOpen
	}
	if g.panelOpen {
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
			g.selected--
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
			g.selected++
		}
		if archivePressed {
			g.archiveSelected()
		}
		if removePressed {
			g.removeSelected()
		}
	}

	g.tick(g.clock.Now())
	return nil
}

// tick runs everything Update does that is not input polling.
func (g *Game) tick(now time.Time) {
	g.pollDialog(now)
	g.finishEncoding(now)

	if err := g.manager.Tick(now); err != nil {
		g.logger.Warn("Manifestation update failed", zap.Error(err))
	}
	g.selected = clampSelection(g.selected, len(g.manager.Active()))

	if g.levelSource != nil {
		g.level = g.levelSource.Level()
	}

	if g.surface == nil {
		return
	}
	start := time.Now()
	g.stats = g.field.Step(g.surface)
	g.metrics.ObserveFrame(time.Since(start), g.stats)
	g.metrics.SetManifestations(g.manager.Counts())
}

// trackCursor feeds pointer moves to the field. The first reading only
// records the position, so the cursor stays inactive until the pointer
// actually moves.
func (g *Game) trackCursor(x, y int) {
	if !g.cursorKnown {
		g.cursorX, g.cursorY, g.cursorKnown = x, y, true
		return
	}
	if x == g.cursorX && y == g.cursorY {
		return
	}
	g.cursorX, g.cursorY = x, y
	g.field.SetCursor(float64(x), float64(y))
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.surface != nil {
		screen.DrawImage(g.surface.img, nil)
	}
	g.drawHUD(screen)
	if g.panelOpen {
		g.drawPanel(screen)
	}
	if g.pending != nil {
		g.drawEncoding(screen)
	}
}

// Layout follows the window size; the field is resized to match.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.surface == nil || outsideWidth != g.width || outsideHeight != g.height {
		g.resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (g *Game) resize(width, height int) {
	if g.surface != nil {
		g.surface.dispose()
	}
	g.surface = newCanvasSurface(width, height, config.BackgroundColor)
	g.width, g.height = width, height
	g.field.Resize(float64(width), float64(height))
	g.logger.Debug("Surface resized", zap.Int("width", width), zap.Int("height", height))
}

func (g *Game) openDialog() {
	if g.dialogOpen || g.pending != nil {
		return
	}
	g.dialogOpen = true
	go func() {
		in, err := g.prompter.Prompt()
		g.dialogs <- dialogResult{input: in, err: err}
	}()
}

func (g *Game) pollDialog(now time.Time) {
	var res dialogResult
	select {
	case res = <-g.dialogs:
	default:
		return
	}
	g.dialogOpen = false

	switch {
	case errors.Is(res.err, ErrCanceled):
		return
	case res.err != nil:
		g.logger.Warn("New manifestation dialog failed", zap.Error(res.err))
		g.setStatus(now, "Error: "+res.err.Error())
		return
	}

	if err := g.manager.Validate(res.input); err != nil {
		g.setStatus(now, "Could not encode: "+err.Error())
		return
	}
	in := res.input
	g.pending = &in
	g.encodeAt = now.Add(g.encodingDelay)
}

func (g *Game) finishEncoding(now time.Time) {
	if g.pending == nil || now.Before(g.encodeAt) {
		return
	}
	in := *g.pending
	g.pending = nil

	item, err := g.manager.Add(in)
	switch {
	case errors.Is(err, manifest.ErrInvalid):
		g.setStatus(now, "Could not encode: "+err.Error())
		return
	case err != nil:
		g.setStatus(now, "Encoded, but not saved: "+err.Error())
	default:
		g.setStatus(now, fmt.Sprintf("%q encoded into the field", item.Title))
	}
	g.panelOpen = true
	g.selected = 0
}

func (g *Game) archiveSelected() {
	active := g.manager.Active()
	if len(active) == 0 {
		return
	}
	item := active[clampSelection(g.selected, len(active))]
	if err := g.manager.Archive(item.ID); err != nil {
		g.setStatus(g.clock.Now(), "Archive failed: "+err.Error())
		return
	}
	g.setStatus(g.clock.Now(), fmt.Sprintf("%q archived", item.Title))
}

func (g *Game) removeSelected() {
	active := g.manager.Active()
	if len(active) == 0 {
		return
	}
	item := active[clampSelection(g.selected, len(active))]
	if err := g.manager.Remove(item.ID); err != nil {
		g.setStatus(g.clock.Now(), "Remove failed: "+err.Error())
		return
	}
	g.setStatus(g.clock.Now(), fmt.Sprintf("%q removed", item.Title))
}

func (g *Game) setStatus(now time.Time, msg string) {
	g.status = msg
	g.statusUntil = now.Add(statusDuration)
}
