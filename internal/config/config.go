package config

import "image/color"

const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "Quantum Field - N: new manifestation, Tab: panel, Esc/Q: quit"

	// Field parameters
	ParticleCount       = 150
	CursorRadius        = 150.0
	ConnectionThreshold = 120.0
	ConnectionOpacity   = 0.2
	ConnectionWidth     = 0.5
	RepulsionStrength   = 3.0
	GlowRadius          = 10.0
	MaxSpeed            = 0.25 // velocity components are uniform in [-MaxSpeed, MaxSpeed)
	MinParticleSize     = 1.0
	ParticleSizeRange   = 3.0

	// Frame driver for backends that do not bring their own vsync
	FramesPerSecond = 60

	// Manifestation timers
	StrengthIntervalSeconds = 5
	ProgressIntervalSeconds = 10
	EncodingDelayMillis     = 2500

	// Terminal backend: world units per cell
	CellWidth  = 8
	CellHeight = 16
)

var (
	BackgroundColor = color.NRGBA{R: 10, G: 10, B: 26, A: 255}
	ConnectionColor = color.NRGBA{R: 0, G: 217, B: 255, A: 255}
	TextColor       = color.NRGBA{R: 230, G: 236, B: 255, A: 255}
	MutedTextColor  = color.NRGBA{R: 140, G: 150, B: 180, A: 255}
	PanelColor      = color.NRGBA{R: 18, G: 20, B: 40, A: 210}
	PanelBorder     = color.NRGBA{R: 60, G: 70, B: 110, A: 255}
	SelectedBorder  = color.NRGBA{R: 0, G: 217, B: 255, A: 255}

	// Particle palette, alpha 0.8
	Palette = []color.NRGBA{
		{R: 0, G: 217, B: 255, A: 204},   // cyan
		{R: 255, G: 0, B: 110, A: 204},   // magenta
		{R: 255, G: 215, B: 0, A: 204},   // gold
		{R: 0, G: 255, B: 163, A: 204},   // mint
		{R: 102, G: 126, B: 234, A: 204}, // indigo
	}
)
