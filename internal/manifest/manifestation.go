package manifest

import (
	"time"
)

type Category string

const (
	Wealth    Category = "wealth"
	Health    Category = "health"
	Love      Category = "love"
	Career    Category = "career"
	Personal  Category = "personal"
	Spiritual Category = "spiritual"
	Other     Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{Wealth, Health, Love, Career, Personal, Spiritual, Other}

var categoryIcons = map[Category]string{
	Wealth:    "💰",
	Health:    "🌿",
	Love:      "💖",
	Career:    "🚀",
	Personal:  "🌟",
	Spiritual: "🧘",
	Other:     "✨",
}

// Icon returns the emoji shown next to the category.
func (c Category) Icon() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return categoryIcons[Other]
}

type Status string

const (
	Active    Status = "active"
	Fulfilled Status = "fulfilled"
	Archived  Status = "archived"
)

// Label is the history badge text.
func (s Status) Label() string {
	switch s {
	case Fulfilled:
		return "✓ Fulfilled"
	case Archived:
		return "Archived"
	default:
		return "Active"
	}
}

const (
	MaxProgress = 100.0
	MinEnergy   = 1
	MaxEnergy   = 5
)

// Manifestation is one tracked wish.
type Manifestation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
	Intensity   int       `json:"intensity"`
	Progress    float64   `json:"progress"`
	EnergyLevel int       `json:"energyLevel"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      Status    `json:"status"`
}

// Input is the user-supplied part of a new manifestation.
type Input struct {
	Title       string   `validate:"required,max=200"`
	Description string   `validate:"max=1000"`
	Category    Category `validate:"required,oneof=wealth health love career personal spiritual other"`
	Intensity   int      `validate:"min=1,max=10"`
}
