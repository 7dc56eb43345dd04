package chime

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

const (
	meterRingSize   = 4096
	meterWindow     = 1024
	smoothingFactor = 0.6
)

// meter wraps a beep.Streamer and records the most recent samples into a
// ring buffer so the renderer can follow what the speaker is playing.
type meter struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	written   int
	mu        sync.RWMutex
}

func newMeter(src beep.Streamer, ringSize int) *meter {
	return &meter{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (m *meter) Stream(samples [][2]float64) (int, bool) {
	n, ok := m.Source.Stream(samples)
	m.mu.Lock()
	for i := 0; i < n; i++ {
		m.buffer[m.nextIndex] = samples[i]
		m.nextIndex++
		if m.nextIndex >= len(m.buffer) {
			m.nextIndex = 0
		}
	}
	m.written += n
	m.mu.Unlock()
	return n, ok
}

func (m *meter) Err() error { return m.Source.Err() }

// fade overwrites the ring with silence once the source has finished so the
// level decays to zero.
func (m *meter) fade() {
	m.mu.Lock()
	for i := range m.buffer {
		m.buffer[i] = [2]float64{}
	}
	m.mu.Unlock()
}

// snapshot returns up to the last n samples, most recent last.
func (m *meter) snapshot(n int) [][2]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n = min(n, len(m.buffer), m.written)
	out := make([][2]float64, n)
	idx := m.nextIndex - n
	if idx < 0 {
		idx += len(m.buffer)
	}
	for i := 0; i < n; i++ {
		out[i] = m.buffer[idx]
		idx++
		if idx >= len(m.buffer) {
			idx = 0
		}
	}
	return out
}

// rms is the compressed loudness of samples in [0, 1].
func rms(samples [][2]float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		mono := (s[0] + s[1]) * 0.5
		sumSquares += mono * mono
	}
	return math.Min(1, math.Pow(math.Sqrt(sumSquares/float64(len(samples))), 0.3))
}
