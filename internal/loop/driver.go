package loop

import (
	"sync"
	"time"
)

// Driver paces a RenderLoop. Each value received from Ticks is one frame.
type Driver interface {
	Ticks() <-chan time.Time
	Stop()
}

// TickerDriver emits frames at a fixed rate.
type TickerDriver struct {
	ticker *time.Ticker
}

// NewTickerDriver returns a driver firing fps times per second. Non-positive
// rates fall back to 60.
func NewTickerDriver(fps int) *TickerDriver {
	if fps <= 0 {
		fps = 60
	}
	return &TickerDriver{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (d *TickerDriver) Ticks() <-chan time.Time { return d.ticker.C }
func (d *TickerDriver) Stop()                   { d.ticker.Stop() }

// ManualDriver emits a frame whenever Tick is called.
type ManualDriver struct {
	ch       chan time.Time
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewManualDriver() *ManualDriver {
	return &ManualDriver{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

// Tick hands one frame to the loop and returns once the loop has taken it.
// It reports false if the driver was stopped first.
func (d *ManualDriver) Tick() bool {
	select {
	case d.ch <- time.Now():
		return true
	case <-d.stopped:
		return false
	}
}

func (d *ManualDriver) Ticks() <-chan time.Time { return d.ch }

func (d *ManualDriver) Stop() {
	d.stopOnce.Do(func() { close(d.stopped) })
}
