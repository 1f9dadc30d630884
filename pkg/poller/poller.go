// Package poller runs a function on a fixed interval until its context ends.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultInterval = 15 * time.Second

// Poller calls fn once immediately and then on every tick.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context) error
	log      zerolog.Logger
}

// New returns a Poller. A non-positive interval falls back to 15 seconds.
func New(interval time.Duration, fn func(ctx context.Context) error, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{interval: interval, fn: fn, log: log}
}

// Run blocks until ctx is cancelled. Errors from fn are logged and do not
// stop the loop. Ticks that fire while fn is still running are dropped.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug().Msg("poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.fn(ctx); err != nil && ctx.Err() == nil {
		p.log.Warn().Err(err).Msg("poll failed")
	}
}
