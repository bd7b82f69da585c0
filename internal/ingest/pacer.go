package ingest

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Pacer spaces consecutive requests by a fixed delay. The first call to Wait
// returns immediately.
type Pacer struct {
	clock   clockwork.Clock
	delay   time.Duration
	started bool
}

// NewPacer creates a Pacer. A nil clock uses real time.
func NewPacer(clock clockwork.Clock, delay time.Duration) *Pacer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pacer{clock: clock, delay: delay}
}

// Wait blocks until the next request may be sent or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.started || p.delay <= 0 {
		p.started = true
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(p.delay):
		return nil
	}
}
