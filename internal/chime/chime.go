// Package chime plays the short audio cue that accompanies notifications.
package chime

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"
)

const (
	SampleRate = beep.SampleRate(44100)

	toneLength = 180 * time.Millisecond
	toneVolume = -1.5
)

// Two rising notes, C6 then E6.
var toneFrequencies = []float64{1046.5, 1318.5}

var ErrUnsupported = errors.New("unsupported audio file type")

// Player plays either a decoded audio file or a synthesized two-note tone
// through the shared speaker. The speaker is initialised on first use.
type Player struct {
	path   string
	logger *zap.Logger

	mu       sync.Mutex
	initDone bool
	meter    *meter
	level    float64
}

// New returns a player for the file at path; an empty path selects the
// synthesized tone.
func New(path string, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{path: path, logger: logger}
}

// Notify plays the cue. It lets a Player stand in as a notifier.
func (p *Player) Notify(title, _ string) error {
	p.logger.Debug("Playing chime", zap.String("for", title))
	return p.Play()
}

// Play starts the cue and returns without waiting for it to finish.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initDone {
		if err := speaker.Init(SampleRate, SampleRate.N(time.Second/20)); err != nil {
			return fmt.Errorf("failed to init speaker: %w", err)
		}
		p.initDone = true
	}

	if p.path == "" {
		p.play(Tone(SampleRate), nil)
		return nil
	}

	streamer, format, err := decodeFile(p.path)
	if err != nil {
		p.logger.Warn("Chime file unusable, falling back to tone", zap.String("path", p.path), zap.Error(err))
		p.play(Tone(SampleRate), nil)
		return nil
	}

	var s beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, streamer)
	}
	p.play(s, streamer.Close)
	return nil
}

// play starts s through a fresh meter. Callers hold p.mu.
func (p *Player) play(s beep.Streamer, done func() error) {
	m := newMeter(s, meterRingSize)
	p.meter = m
	speaker.Play(beep.Seq(m, beep.Callback(func() {
		m.fade()
		if done != nil {
			_ = done()
		}
	})))
}

// Level is the smoothed loudness of the cue currently playing, in [0, 1].
// It is meant to be polled once per frame.
func (p *Player) Level() float64 {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	mag := 0.0
	if p.meter != nil {
		mag = rms(p.meter.snapshot(meterWindow))
	}
	p.level = smoothingFactor*p.level + (1-smoothingFactor)*mag
	return p.level
}

// decodeFile opens path and picks the decoder from its extension. The
// returned streamer closes the file.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var decode func(*os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch ext {
	case ".wav":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	case ".mp3":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".flac":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	streamer, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return streamer, format, nil
}

// Tone returns the synthesized cue at the given sample rate.
func Tone(sr beep.SampleRate) beep.Streamer {
	notes := make([]beep.Streamer, 0, len(toneFrequencies))
	for _, freq := range toneFrequencies {
		notes = append(notes, sine(sr, freq, sr.N(toneLength)))
	}
	return &effects.Volume{
		Streamer: beep.Seq(notes...),
		Base:     2,
		Volume:   toneVolume,
	}
}

// sine produces n samples of a sine wave with a linear fade out so the note
// ends without a click.
func sine(sr beep.SampleRate, freq float64, n int) beep.Streamer {
	pos := 0
	step := 2 * math.Pi * freq / float64(sr)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= n {
			return 0, false
		}
		i := 0
		for ; i < len(samples) && pos < n; i++ {
			fade := 1 - float64(pos)/float64(n)
			v := math.Sin(step*float64(pos)) * fade
			samples[i][0] = v
			samples[i][1] = v
			pos++
		}
		return i, true
	})
}
