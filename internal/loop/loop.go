package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrRunning is returned by Run when the loop is already running or has run.
var ErrRunning = errors.New("render loop already started")

// RenderLoop calls a step function once per driver tick until stopped. Each
// step runs to completion before the next tick is taken.
type RenderLoop struct {
	step    func()
	driver  Driver
	onFrame func(time.Duration)

	started  atomic.Bool
	frames   atomic.Uint64
	stopCh   chan struct{}
	stopOnce sync.Once
}

type Option func(*RenderLoop)

// WithFrameObserver reports the duration of every step.
func WithFrameObserver(fn func(time.Duration)) Option {
	return func(l *RenderLoop) { l.onFrame = fn }
}

func New(step func(), driver Driver, opts ...Option) *RenderLoop {
	l := &RenderLoop{
		step:   step,
		driver: driver,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks, stepping once per tick, until Stop is called, ctx is done or
// the driver's tick channel is closed. The driver is stopped on return.
// Run returns ctx.Err() when the context ends the loop and nil otherwise.
func (l *RenderLoop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.driver.Stop()

	ticks := l.driver.Ticks()
	for {
		select {
		case <-l.stopCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			l.frame()
		}
	}
}

func (l *RenderLoop) frame() {
	start := time.Now()
	l.step()
	l.frames.Add(1)
	if l.onFrame != nil {
		l.onFrame(time.Since(start))
	}
}

// Stop ends Run after the current step. It is safe to call more than once
// and before Run.
func (l *RenderLoop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// Frames returns the number of completed steps.
func (l *RenderLoop) Frames() uint64 {
	return l.frames.Load()
}
