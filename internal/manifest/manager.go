package manifest

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("manifestation not found")
	ErrInvalid  = errors.New("invalid manifestation")
)

// Strengths are the values ConnectionStrength cycles through.
var Strengths = []string{"Strong", "Very Strong", "Optimal", "Peak"}

const (
	DefaultStrengthInterval = 5 * time.Second
	DefaultProgressInterval = 10 * time.Second
)

// Random is the randomness the manager draws progress, energy and strength
// from. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

type Clock interface {
	Now() time.Time
}

type Options struct {
	Store    Store
	Notifier Notifier
	Rand     Random
	Clock    Clock
	Logger   *zap.Logger

	StrengthInterval time.Duration
	ProgressInterval time.Duration
}

// Manager owns the manifestation list, newest first, and simulates progress
// on active entries. It is not safe for concurrent use; the frame loop that
// calls Tick is expected to make every other call too.
type Manager struct {
	store    Store
	notifier Notifier
	rnd      Random
	clock    Clock
	logger   *zap.Logger
	validate *validator.Validate

	strengthEvery time.Duration
	progressEvery time.Duration
	nextStrength  time.Time
	nextProgress  time.Time

	items    []Manifestation
	strength string
}

// NewManager loads the stored list and picks an initial connection strength.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Notifier == nil {
		opts.Notifier = Notifiers{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.StrengthInterval <= 0 {
		opts.StrengthInterval = DefaultStrengthInterval
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.Rand == nil || opts.Clock == nil {
		return nil, errors.New("manifest: Rand and Clock are required")
	}

	items, err := opts.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load manifestations: %w", err)
	}

	now := opts.Clock.Now()
	m := &Manager{
		store:         opts.Store,
		notifier:      opts.Notifier,
		rnd:           opts.Rand,
		clock:         opts.Clock,
		logger:        opts.Logger,
		validate:      validator.New(),
		strengthEvery: opts.StrengthInterval,
		progressEvery: opts.ProgressInterval,
		nextStrength:  now.Add(opts.StrengthInterval),
		nextProgress:  now.Add(opts.ProgressInterval),
		items:         items,
	}
	m.RefreshStrength()

	m.logger.Info("Loaded manifestations", zap.Int("count", len(items)))
	return m, nil
}

// Add validates in and stores a new active manifestation at the front of
// the list.
func (m *Manager) Add(in Input) (Manifestation, error) {
	if err := m.Validate(in); err != nil {
		return Manifestation{}, err
	}

	item := Manifestation{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Intensity:   in.Intensity,
		EnergyLevel: m.rnd.Intn(3) + 3,
		CreatedAt:   m.clock.Now(),
		Status:      Active,
	}
	m.items = append([]Manifestation{item}, m.items...)

	m.logger.Info("Manifestation added",
		zap.String("id", item.ID),
		zap.String("category", string(item.Category)),
		zap.Int("intensity", item.Intensity),
	)
	return item, m.save()
}

// Validate reports whether in would be accepted by Add.
func (m *Manager) Validate(in Input) error {
	if err := m.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// AdvanceProgress moves every unfinished active manifestation forward by a
// random amount scaled by its intensity and nudges its energy level. Entries
// reaching 100 become fulfilled and are announced. It returns the entries
// fulfilled by this call.
func (m *Manager) AdvanceProgress() ([]Manifestation, error) {
	var fulfilled []Manifestation
	updated := false

	for i := range m.items {
		item := &m.items[i]
		if item.Status != Active || item.Progress >= MaxProgress {
			continue
		}

		increase := m.rnd.Float64() * (float64(item.Intensity) / 10) * 2
		item.Progress = min(MaxProgress, item.Progress+increase)

		step := -1
		if m.rnd.Float64() > 0.5 {
			step = 1
		}
		item.EnergyLevel = max(MinEnergy, min(MaxEnergy, item.EnergyLevel+step))

		if item.Progress >= MaxProgress {
			item.Status = Fulfilled
			fulfilled = append(fulfilled, *item)
		}
		updated = true
	}

	if !updated {
		return nil, nil
	}

	for _, item := range fulfilled {
		title := "✨ Manifestation Complete!"
		message := fmt.Sprintf("%q has been fulfilled!", item.Title)
		if err := m.notifier.Notify(title, message); err != nil {
			m.logger.Warn("Notification failed", zap.String("id", item.ID), zap.Error(err))
		}
	}
	return fulfilled, m.save()
}

// Remove deletes the manifestation with the given id.
func (m *Manager) Remove(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	m.logger.Info("Manifestation removed", zap.String("id", id))
	return m.save()
}

// Archive moves the manifestation with the given id to the history.
func (m *Manager) Archive(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.items[i].Status = Archived
	m.logger.Info("Manifestation archived", zap.String("id", id))
	return m.save()
}

// Tick runs the periodic work that is due at now: a new connection strength
// every StrengthInterval and a progress round every ProgressInterval.
func (m *Manager) Tick(now time.Time) error {
	if !now.Before(m.nextStrength) {
		m.RefreshStrength()
		m.nextStrength = now.Add(m.strengthEvery)
	}
	if !now.Before(m.nextProgress) {
		m.nextProgress = now.Add(m.progressEvery)
		if _, err := m.AdvanceProgress(); err != nil {
			return err
		}
	}
	return nil
}

// RefreshStrength picks a new connection strength.
func (m *Manager) RefreshStrength() string {
	m.strength = Strengths[m.rnd.Intn(len(Strengths))]
	return m.strength
}

func (m *Manager) ConnectionStrength() string { return m.strength }

// All returns every manifestation, newest first.
func (m *Manager) All() []Manifestation {
	return append([]Manifestation(nil), m.items...)
}

// Active returns the manifestations still in progress.
func (m *Manager) Active() []Manifestation {
	return m.filter(func(s Status) bool { return s == Active })
}

// History returns fulfilled and archived manifestations.
func (m *Manager) History() []Manifestation {
	return m.filter(func(s Status) bool { return s != Active })
}

// Get returns the manifestation with the given id.
func (m *Manager) Get(id string) (Manifestation, error) {
	i := m.index(id)
	if i < 0 {
		return Manifestation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.items[i], nil
}

// Counts returns how many manifestations are in each status.
func (m *Manager) Counts() map[Status]int {
	counts := map[Status]int{Active: 0, Fulfilled: 0, Archived: 0}
	for _, item := range m.items {
		counts[item.Status]++
	}
	return counts
}

func (m *Manager) filter(keep func(Status) bool) []Manifestation {
	var out []Manifestation
	for _, item := range m.items {
		if keep(item.Status) {
			out = append(out, item)
		}
	}
	return out
}

func (m *Manager) index(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) save() error {
	if err := m.store.Save(m.items); err != nil {
		m.logger.Error("Failed to save manifestations", zap.Error(err))
		return fmt.Errorf("failed to save manifestations: %w", err)
	}
	return nil
}
