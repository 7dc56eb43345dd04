package chime

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestSineLengthAndRange(t *testing.T) {
	samples := drain(sine(SampleRate, 440, 1000))
	require.Len(t, samples, 1000)
	for _, s := range samples {
		assert.LessOrEqual(t, math.Abs(s[0]), 1.0)
		assert.Equal(t, s[0], s[1])
	}
	assert.Zero(t, samples[0][0])
}

func TestToneIsTwoNotes(t *testing.T) {
	samples := drain(Tone(SampleRate))
	assert.Len(t, samples, 2*SampleRate.N(toneLength))

	peak := 0.0
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s[0]))
	}
	assert.Greater(t, peak, 0.0)
	assert.Less(t, peak, 1.0, "volume is attenuated")
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	_, _, err := decodeFile("bell.ogg")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestDecodeMissingFile(t *testing.T) {
	_, _, err := decodeFile(filepath.Join(t.TempDir(), "bell.wav"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecodeCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bell.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wave file"), 0o644))

	_, _, err := decodeFile(path)
	require.Error(t, err)
}

func TestMeterSnapshotKeepsMostRecent(t *testing.T) {
	i := 0
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			samples[j] = [2]float64{float64(i), float64(i)}
			i++
		}
		return len(samples), true
	})
	m := newMeter(src, 8)
	assert.Empty(t, m.snapshot(4))

	buf := make([][2]float64, 5)
	m.Stream(buf)
	m.Stream(buf)

	snap := m.snapshot(4)
	require.Len(t, snap, 4)
	assert.Equal(t, [2]float64{6, 6}, snap[0])
	assert.Equal(t, [2]float64{9, 9}, snap[3])

	assert.Len(t, m.snapshot(100), 8)
}

func TestMeterFadeSilences(t *testing.T) {
	m := newMeter(Tone(SampleRate), meterRingSize)
	buf := make([][2]float64, 2048)
	m.Stream(buf)
	assert.Greater(t, rms(m.snapshot(meterWindow)), 0.0)

	m.fade()
	assert.Zero(t, rms(m.snapshot(meterWindow)))
}

func TestRMS(t *testing.T) {
	assert.Zero(t, rms(nil))
	assert.InDelta(t, 1.0, rms([][2]float64{{1, 1}, {-1, -1}}), 1e-12)
	assert.Less(t, rms([][2]float64{{0.1, 0.1}}), 1.0)
}

func TestLevelWithoutPlayback(t *testing.T) {
	var nilPlayer *Player
	assert.Zero(t, nilPlayer.Level())
	assert.Zero(t, New("", nil).Level())
}
