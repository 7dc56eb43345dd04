// Package term runs the particle field in a terminal.
package term

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/quantum-field/internal/config"
	"github.com/iburimskiy/quantum-field/internal/field"
	"github.com/iburimskiy/quantum-field/internal/loop"
	"github.com/iburimskiy/quantum-field/internal/manifest"
	"github.com/iburimskiy/quantum-field/internal/metrics"
)

type Options struct {
	// Screen must already be initialised. The runner does not finalise it.
	Screen  tcell.Screen
	Field   *field.Field
	Manager *manifest.Manager
	Clock   loop.Clock
	Metrics *metrics.Collector
	Logger  *zap.Logger

	// Driver paces frames; a ticker at FPS is used when nil.
	Driver loop.Driver
	FPS    int
}

// Runner steps the field on a RenderLoop and feeds terminal events back to
// it. The bottom row is a status line.
type Runner struct {
	screen  tcell.Screen
	field   *field.Field
	manager *manifest.Manager
	clock   loop.Clock
	metrics *metrics.Collector
	logger  *zap.Logger

	loop    *loop.RenderLoop
	surface *Surface
	stats   field.FrameStats

	// guards width and height, written by the event goroutine
	mu     sync.Mutex
	width  int
	height int
}

func New(opts Options) (*Runner, error) {
	if opts.Screen == nil || opts.Field == nil {
		return nil, errors.New("term: Screen and Field are required")
	}
	if opts.Clock == nil {
		opts.Clock = loop.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Driver == nil {
		opts.Driver = loop.NewTickerDriver(opts.FPS)
	}

	r := &Runner{
		screen:  opts.Screen,
		field:   opts.Field,
		manager: opts.Manager,
		clock:   opts.Clock,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		surface: NewSurface(opts.Screen, config.CellWidth, config.CellHeight, 0, config.BackgroundColor),
	}
	r.loop = loop.New(r.step, opts.Driver, loop.WithFrameObserver(func(d time.Duration) {
		r.metrics.ObserveFrame(d, r.stats)
	}))
	return r, nil
}

// Run blocks until the user quits, Stop is called or ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.screen.EnableMouse(tcell.MouseMotionEvents)
	r.resize()

	go r.pollEvents()

	r.logger.Info("Terminal renderer started")
	err := r.loop.Run(ctx)
	r.logger.Info("Terminal renderer stopped", zap.Uint64("frames", r.loop.Frames()))
	return err
}

func (r *Runner) Stop() { r.loop.Stop() }

// pollEvents returns when the screen is finalised.
func (r *Runner) pollEvents() {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}
		r.handleEvent(ev)
	}
}

func (r *Runner) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
			r.Stop()
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		r.field.SetCursor((float64(x)+0.5)*config.CellWidth, (float64(y)+0.5)*config.CellHeight)

	case *tcell.EventResize:
		r.screen.Sync()
		r.resize()
	}
}

// resize fits the field to every row but the status line.
func (r *Runner) resize() {
	w, h := r.screen.Size()
	rows := max(h-1, 0)

	r.mu.Lock()
	r.width, r.height = w, h
	r.mu.Unlock()

	r.field.Resize(float64(w)*config.CellWidth, float64(rows)*config.CellHeight)
	r.logger.Debug("Terminal resized", zap.Int("cols", w), zap.Int("rows", h))
}

func (r *Runner) step() {
	r.mu.Lock()
	w, h := r.width, r.height
	r.mu.Unlock()

	r.surface.setRows(max(h-1, 0))
	r.stats = r.field.Step(r.surface)

	if r.manager != nil {
		if err := r.manager.Tick(r.clock.Now()); err != nil {
			r.logger.Warn("Manifestation update failed", zap.Error(err))
		}
		r.metrics.SetManifestations(r.manager.Counts())
	}

	if h > 0 {
		drawText(r.screen, 0, h-1, w, r.statusLine(), tcell.StyleDefault.
			Foreground(rgb(config.MutedTextColor)).
			Background(rgb(config.PanelColor)))
	}
	r.screen.Show()
}

func (r *Runner) statusLine() string {
	parts := []string{
		"QUANTUM FIELD",
		fmt.Sprintf("%d particles", r.stats.Particles),
		fmt.Sprintf("%d links", r.stats.Connections),
	}
	if r.manager != nil {
		counts := r.manager.Counts()
		parts = append(parts,
			"Connection: "+r.manager.ConnectionStrength(),
			fmt.Sprintf("%d %s", counts[manifest.Active], manifest.Active.Label()),
			fmt.Sprintf("%d %s", counts[manifest.Fulfilled], manifest.Fulfilled.Label()),
		)
	}
	parts = append(parts, "q quit")
	return " " + strings.Join(parts, " · ")
}

// drawText writes s from column x, padding the row to width.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	col := x
	for _, ch := range s {
		if col >= width {
			return
		}
		screen.SetContent(col, y, ch, nil, style)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}
