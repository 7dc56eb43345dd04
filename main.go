package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/quantum-field/internal/chime"
	"github.com/iburimskiy/quantum-field/internal/config"
	"github.com/iburimskiy/quantum-field/internal/field"
	"github.com/iburimskiy/quantum-field/internal/game"
	"github.com/iburimskiy/quantum-field/internal/loop"
	"github.com/iburimskiy/quantum-field/internal/manifest"
	"github.com/iburimskiy/quantum-field/internal/metrics"
	"github.com/iburimskiy/quantum-field/internal/term"
)

type flags struct {
	configPath string
	backend    string
	seed       int64
	particles  int
	debugAddr  string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("quantum-field", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file, reloaded on change")
	fs.StringVar(&f.backend, "backend", "", "renderer: window or term")
	fs.Int64Var(&f.seed, "seed", 0, "random seed, 0 picks one from the clock")
	fs.IntVar(&f.particles, "particles", -1, "number of particles")
	fs.StringVar(&f.debugAddr, "debug-addr", "", "serve /metrics and /debug/pprof on this address")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

// apply overlays flags that were set on top of cfg.
func (f flags) apply(cfg *config.Config) error {
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.seed != 0 {
		cfg.Seed = f.seed
	}
	if f.particles >= 0 {
		cfg.Field.Particles = f.particles
	}
	if f.debugAddr != "" {
		cfg.DebugAddr = f.debugAddr
	}
	return cfg.Validate()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "quantum-field:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fl, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(fl.configPath)
	if err != nil {
		return err
	}
	if err := fl.apply(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, cfg.Backend == config.BackendTerm)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rnd := field.NewRandom(cfg.Seed)
	opts := field.DefaultOptions(float64(cfg.Window.Width), float64(cfg.Window.Height))
	opts.Count = cfg.Field.Particles
	opts.CursorRadius = cfg.Field.CursorRadius
	opts.ConnectionThreshold = cfg.Field.ConnectionThreshold
	opts.UseGrid = cfg.Field.SpatialGrid
	f := field.New(opts, rnd)
	logger.Info("Field created",
		zap.Int("particles", f.Len()),
		zap.Int64("seed", cfg.Seed),
		zap.Bool("spatial_grid", opts.UseGrid),
	)

	var player *chime.Player
	if cfg.Notify.Chime {
		player = chime.New(cfg.Notify.ChimePath, logger)
	}
	manager, err := newManager(cfg, rnd, player, logger)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	if cfg.DebugAddr != "" {
		go func() {
			if err := collector.Serve(ctx, cfg.DebugAddr, logger); err != nil {
				logger.Error("Debug server failed", zap.Error(err))
			}
		}()
	}

	if fl.configPath != "" {
		w, err := config.NewWatcher(fl.configPath, cfg, logger)
		if err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		} else {
			defer w.Stop()
			w.OnChange(func(c *config.Config) {
				f.SetCursorRadius(c.Field.CursorRadius)
				f.SetConnectionThreshold(c.Field.ConnectionThreshold)
			})
		}
	}

	switch cfg.Backend {
	case config.BackendTerm:
		return runTerm(ctx, cfg, f, manager, collector, logger)
	default:
		return runWindow(ctx, cfg, f, manager, player, collector, logger)
	}
}

func newManager(cfg *config.Config, rnd field.Random, player *chime.Player, logger *zap.Logger) (*manifest.Manager, error) {
	var store manifest.Store = manifest.NewMemoryStore()
	if cfg.Store.Path != "" {
		store = manifest.NewFileStore(cfg.Store.Path)
	}

	notifiers := manifest.Notifiers{manifest.LogNotifier{Logger: logger}}
	if cfg.Notify.Desktop {
		notifiers = append(notifiers, manifest.DesktopNotifier{})
	}
	if player != nil {
		notifiers = append(notifiers, player)
	}

	return manifest.NewManager(manifest.Options{
		Store:    store,
		Notifier: notifiers,
		Rand:     rnd,
		Clock:    loop.SystemClock{},
		Logger:   logger,
	})
}

func runWindow(ctx context.Context, cfg *config.Config, f *field.Field, manager *manifest.Manager, player *chime.Player, collector *metrics.Collector, logger *zap.Logger) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FPS)

	opts := game.Options{
		Field:   f,
		Manager: manager,
		Metrics: collector,
		Logger:  logger,
		Done:    ctx.Done(),
	}
	if player != nil {
		opts.Level = player
	}
	g, err := game.New(opts)
	if err != nil {
		return err
	}

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("window renderer failed: %w", err)
	}
	return nil
}

func runTerm(ctx context.Context, cfg *config.Config, f *field.Field, manager *manifest.Manager, collector *metrics.Collector, logger *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer screen.Fini()

	r, err := term.New(term.Options{
		Screen:  screen,
		Field:   f,
		Manager: manager,
		Metrics: collector,
		Logger:  logger,
		FPS:     cfg.FPS,
	})
	if err != nil {
		return err
	}
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
