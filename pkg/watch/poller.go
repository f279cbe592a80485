package watch

import (
	"context"
	"time"
)

const (
	defaultInitialDelay = 3 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 30
)

// Poller resolves by reading the payment record at a fixed interval. Ticks
// are sequential: the next read is scheduled only after the previous one
// returns. Read errors and missing records count as attempts and polling
// continues, since the record may not be visible yet.
type Poller struct {
	Reader       StatusReader
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
}

func NewPoller(reader StatusReader) *Poller {
	return &Poller{
		Reader:       reader,
		InitialDelay: defaultInitialDelay,
		Interval:     defaultPollInterval,
		MaxAttempts:  defaultMaxAttempts,
	}
}

func (p *Poller) Wait(ctx context.Context, externalReference string) (Outcome, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	timer := time.NewTimer(p.InitialDelay)
	defer timer.Stop()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}

		status, err := p.Reader.PaymentStatus(ctx, externalReference)
		if err == nil {
			if outcome, ok := terminalOutcome(status); ok {
				return outcome, nil
			}
		} else if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		timer.Reset(interval)
	}

	return OutcomeTimeout, nil
}
