package notifications

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// maxBackoffFactor caps the poll delay at interval * 2^5.
const maxBackoffFactor = 5

// Fetcher is one poll of the notification feed.
type Fetcher interface {
	CountRecent(ctx context.Context) (int, error)
}

// Poller probes the notification feed at a fixed interval. Consecutive
// failures stretch the delay exponentially so a down service is not
// hammered; a single success snaps the cadence back. Polls never overlap
// because the loop is a single goroutine that waits out each run.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   zerolog.Logger

	failures int
}

// NewPoller creates a Poller. A zero interval defaults to 30 seconds.
func NewPoller(fetcher Fetcher, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{fetcher: fetcher, interval: interval, logger: logger}
}

// Run polls until ctx is cancelled. It blocks; callers start it on its own
// goroutine.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info().Dur("interval", p.interval).Msg("notification poller started")
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("notification poller stopped")
			return
		case <-timer.C:
		}

		p.poll(ctx)
		timer.Reset(p.nextDelay())
	}
}

func (p *Poller) poll(ctx context.Context) {
	count, err := p.fetcher.CountRecent(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.failures++
		p.logger.Warn().
			Err(err).
			Int("consecutive_failures", p.failures).
			Dur("next_poll_in", p.nextDelay()).
			Msg("notification poll failed")
		return
	}
	if p.failures > 0 {
		p.logger.Info().Int("after_failures", p.failures).Msg("notification poll recovered")
	}
	p.failures = 0
	p.logger.Debug().Int("count", count).Msg("notification poll")
}

// nextDelay doubles the base interval per consecutive failure, capped.
func (p *Poller) nextDelay() time.Duration {
	factor := p.failures
	if factor > maxBackoffFactor {
		factor = maxBackoffFactor
	}
	return p.interval << factor
}
