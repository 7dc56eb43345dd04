package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

const (
	BackendWindow = "window"
	BackendTerm   = "term"
)

// Config is the runtime configuration. Zero values are never used directly;
// Load starts from Default and overlays the file and the environment.
type Config struct {
	Backend   string       `yaml:"backend" validate:"oneof=window term"`
	Seed      int64        `yaml:"seed"`
	FPS       int          `yaml:"fps" validate:"gte=1,lte=240"`
	DebugAddr string       `yaml:"debug_addr"`
	Window    WindowConfig `yaml:"window"`
	Field     FieldConfig  `yaml:"field"`
	Store     StoreConfig  `yaml:"store"`
	Notify    NotifyConfig `yaml:"notify"`
	Log       LogConfig    `yaml:"log"`
}

type WindowConfig struct {
	Width  int    `yaml:"width" validate:"gt=0"`
	Height int    `yaml:"height" validate:"gt=0"`
	Title  string `yaml:"title"`
}

// FieldConfig holds the particle field parameters. CursorRadius and
// ConnectionThreshold can change while running; Particles cannot.
type FieldConfig struct {
	Particles           int     `yaml:"particles" validate:"gte=0,lte=5000"`
	CursorRadius        float64 `yaml:"cursor_radius" validate:"gte=0"`
	ConnectionThreshold float64 `yaml:"connection_threshold" validate:"gte=0"`
	SpatialGrid         bool    `yaml:"spatial_grid"`
}

type StoreConfig struct {
	// Path of the JSON file holding manifestations. Empty keeps them in memory.
	Path string `yaml:"path"`
}

type NotifyConfig struct {
	Desktop   bool   `yaml:"desktop"`
	Chime     bool   `yaml:"chime"`
	ChimePath string `yaml:"chime_path"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendWindow,
		FPS:     FramesPerSecond,
		Window: WindowConfig{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  WindowTitle,
		},
		Field: FieldConfig{
			Particles:           ParticleCount,
			CursorRadius:        CursorRadius,
			ConnectionThreshold: ConnectionThreshold,
		},
		Store: StoreConfig{Path: defaultStorePath()},
		Notify: NotifyConfig{
			Desktop: true,
			Chime:   true,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "quantum-field", "manifestations.json")
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists) and QF_* environment variables, in that order, then validates it.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := cfg.loadEnvironment(lookup); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

func (c *Config) loadEnvironment(lookup func(string) (string, bool)) error {
	if v, ok := lookup("QF_BACKEND"); ok {
		c.Backend = strings.ToLower(v)
	}
	if v, ok := lookup("QF_STORE"); ok {
		c.Store.Path = v
	}
	if v, ok := lookup("QF_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("QF_DEBUG_ADDR"); ok {
		c.DebugAddr = v
	}
	if v, ok := lookup("QF_PARTICLES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QF_PARTICLES: %w", err)
		}
		c.Field.Particles = n
	}
	if v, ok := lookup("QF_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("QF_SEED: %w", err)
		}
		c.Seed = n
	}
	return nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
