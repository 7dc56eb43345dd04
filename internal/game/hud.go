package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/iburimskiy/quantum-field/internal/config"
	"github.com/iburimskiy/quantum-field/internal/manifest"
)

// Panel dimensions
const (
	panelWidth   = 360
	panelMargin  = 16
	cardHeight   = 100
	cardGap      = 10
	historyRow   = 36
	historyLimit = 5
)

var (
	cardColor      = color.NRGBA{R: 30, G: 34, B: 64, A: 230}
	barColor       = color.NRGBA{R: 40, G: 46, B: 80, A: 255}
	fulfilledColor = color.NRGBA{R: 0, G: 255, B: 163, A: 255}
	overlayColor   = color.NRGBA{R: 0, G: 0, B: 0, A: 160}
)

type faces struct {
	regular font.Face
	bold    font.Face
}

func loadFaces() (*faces, error) {
	regular, err := newFace(goregular.TTF, 13)
	if err != nil {
		return nil, err
	}
	bold, err := newFace(gobold.TTF, 16)
	if err != nil {
		return nil, err
	}
	return &faces{regular: regular, bold: bold}, nil
}

func newFace(data []byte, size float64) (font.Face, error) {
	tt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

func textWidth(face font.Face, s string) int {
	return text.BoundString(face, s).Dx()
}

// statusBadge is the history label without the check glyph, which the
// bundled font lacks.
func statusBadge(s manifest.Status) string {
	if s == manifest.Fulfilled {
		return "Fulfilled"
	}
	return s.Label()
}

// visibleRange picks the window of n list entries, at most capacity long,
// that keeps selected on screen.
func visibleRange(selected, n, capacity int) (start, end int) {
	if capacity <= 0 || n == 0 {
		return 0, 0
	}
	if n <= capacity {
		return 0, n
	}
	start = max(0, selected-capacity+1)
	return start, start + capacity
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	const title = "QUANTUM FIELD"
	text.Draw(screen, title, g.faces.bold, 16, 28, config.TextColor)

	// Pulses with the chime.
	px := float32(16 + textWidth(g.faces.bold, title) + 14)
	vector.DrawFilledCircle(screen, px, 23, float32(3+g.level*8), withOpacity(config.ConnectionColor, 0.4+0.6*g.level), true)

	now := g.clock.Now()
	line := fmt.Sprintf("Connection: %s    %.0f FPS    %d links    %s",
		g.manager.ConnectionStrength(),
		ebiten.ActualFPS(),
		g.stats.Connections,
		formatDuration(now.Sub(g.started)),
	)
	text.Draw(screen, line, g.faces.regular, 16, 48, config.MutedTextColor)

	if g.status != "" && now.Before(g.statusUntil) {
		text.Draw(screen, g.status, g.faces.regular, 16, g.height-34, config.TextColor)
	}
	help := "N new manifestation    Tab panel    Up/Down select    A archive    Del remove    Esc quit"
	text.Draw(screen, help, g.faces.regular, 16, g.height-14, config.MutedTextColor)
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	x := float32(g.width - panelWidth - panelMargin)
	y := float32(panelMargin)
	h := float32(g.height - 2*panelMargin)
	vector.DrawFilledRect(screen, x, y, panelWidth, h, config.PanelColor, false)
	vector.StrokeRect(screen, x, y, panelWidth, h, 1, config.PanelBorder, false)

	tx := int(x) + 14
	cy := int(y) + 28
	bottom := int(y + h)
	now := g.clock.Now()

	active := g.manager.Active()
	text.Draw(screen, fmt.Sprintf("Active Manifestations (%d)", len(active)), g.faces.bold, tx, cy, config.TextColor)
	cy += 16

	if len(active) == 0 {
		text.Draw(screen, "No active manifestations yet.", g.faces.regular, tx, cy+18, config.MutedTextColor)
		text.Draw(screen, "Press N to set your first intention.", g.faces.regular, tx, cy+36, config.MutedTextColor)
		cy += 52
	} else {
		historyReserve := 48 + historyLimit*historyRow
		capacity := (bottom - cy - historyReserve) / (cardHeight + cardGap)
		start, end := visibleRange(g.selected, len(active), max(capacity, 1))
		for i := start; i < end; i++ {
			g.drawCard(screen, active[i], i == g.selected, float32(x+10), float32(cy), panelWidth-20, now)
			cy += cardHeight + cardGap
		}
		if end < len(active) {
			text.Draw(screen, fmt.Sprintf("+%d more", len(active)-end), g.faces.regular, tx, cy+4, config.MutedTextColor)
			cy += 16
		}
	}

	cy += 24
	text.Draw(screen, "History", g.faces.bold, tx, cy, config.TextColor)
	cy += 8

	history := g.manager.History()
	if len(history) == 0 {
		text.Draw(screen, "Nothing fulfilled or archived yet.", g.faces.regular, tx, cy+18, config.MutedTextColor)
		return
	}
	for i, m := range history {
		if i >= historyLimit || cy+historyRow > bottom {
			break
		}
		g.drawHistoryRow(screen, m, tx, cy, int(x)+panelWidth-14, now)
		cy += historyRow
	}
}

func (g *Game) drawCard(screen *ebiten.Image, m manifest.Manifestation, selected bool, x, y, w float32, now time.Time) {
	border, borderWidth := config.PanelBorder, float32(1)
	if selected {
		border, borderWidth = config.SelectedBorder, 2
	}
	vector.DrawFilledRect(screen, x, y, w, cardHeight, cardColor, false)
	vector.StrokeRect(screen, x, y, w, cardHeight, borderWidth, border, false)

	tx := int(x) + 12
	right := int(x+w) - 12
	top := int(y)

	text.Draw(screen, truncate(m.Title, 36), g.faces.bold, tx, top+22, config.TextColor)
	meta := fmt.Sprintf("%s  ·  Intensity: %d/10  ·  %s", m.Category, m.Intensity, manifest.FormatAge(m.CreatedAt, now))
	text.Draw(screen, meta, g.faces.regular, tx, top+40, config.MutedTextColor)

	pct := fmt.Sprintf("%d%%", int(math.Round(m.Progress)))
	text.Draw(screen, "Quantum Alignment", g.faces.regular, tx, top+60, config.MutedTextColor)
	text.Draw(screen, pct, g.faces.regular, right-textWidth(g.faces.regular, pct), top+60, config.TextColor)

	barW := float32(right - tx)
	vector.DrawFilledRect(screen, float32(tx), float32(top+66), barW, 6, barColor, false)
	fill := barW * float32(clamp01(m.Progress/manifest.MaxProgress))
	if fill > 0 {
		vector.DrawFilledRect(screen, float32(tx), float32(top+66), fill, 6, progressColor(m.Progress, 255), false)
	}

	text.Draw(screen, "Energy Level", g.faces.regular, tx, top+90, config.MutedTextColor)
	dotX := float32(tx + textWidth(g.faces.regular, "Energy Level") + 14)
	for i := 0; i < manifest.MaxEnergy; i++ {
		c := config.PanelBorder
		if i < m.EnergyLevel {
			c = config.ConnectionColor
		}
		vector.DrawFilledCircle(screen, dotX+float32(i*12), float32(top+86), 4, c, true)
	}
}

func (g *Game) drawHistoryRow(screen *ebiten.Image, m manifest.Manifestation, x, y, right int, now time.Time) {
	text.Draw(screen, truncate(m.Title, 30), g.faces.regular, x, y+16, config.TextColor)
	text.Draw(screen, manifest.FormatAge(m.CreatedAt, now), g.faces.regular, x, y+30, config.MutedTextColor)

	badge := statusBadge(m.Status)
	c := config.MutedTextColor
	if m.Status == manifest.Fulfilled {
		c = fulfilledColor
	}
	text.Draw(screen, badge, g.faces.regular, right-textWidth(g.faces.regular, badge), y+22, c)
}

func (g *Game) drawEncoding(screen *ebiten.Image) {
	w, h := float32(g.width), float32(g.height)
	vector.DrawFilledRect(screen, 0, 0, w, h, overlayColor, false)

	bw, bh := float32(420), float32(150)
	bx, by := (w-bw)/2, (h-bh)/2
	vector.DrawFilledRect(screen, bx, by, bw, bh, config.PanelColor, false)
	vector.StrokeRect(screen, bx, by, bw, bh, 1, config.SelectedBorder, false)

	elapsed := g.clock.Now().Sub(g.encodeAt.Add(-g.encodingDelay))
	t := clamp01(float64(elapsed) / float64(g.encodingDelay))

	// Orbiting dots
	cx, cy := bx+bw/2, by+50
	spin := t * 4 * math.Pi
	for i := 0; i < 12; i++ {
		a := spin + float64(i)*math.Pi/6
		alpha := 0.2 + 0.8*float64(i)/11
		vector.DrawFilledCircle(screen,
			cx+float32(math.Cos(a)*22), cy+float32(math.Sin(a)*22), 3,
			withOpacity(config.ConnectionColor, alpha), true)
	}

	msg := "Encoding your intention into the quantum field..."
	text.Draw(screen, msg, g.faces.regular, int(bx+(bw-float32(textWidth(g.faces.regular, msg)))/2), int(by+100), config.TextColor)

	vector.DrawFilledRect(screen, bx+30, by+118, bw-60, 4, barColor, false)
	vector.DrawFilledRect(screen, bx+30, by+118, (bw-60)*float32(t), 4, progressColor(t*100, 255), false)
}
