package watch

import (
	"context"
	"time"
)

const defaultSubscribeTimeout = 60 * time.Second

// Subscriber resolves on the first terminal update delivered for the
// reference. A hard timeout runs concurrently with the subscription as a
// fallback for dropped streams; whichever fires first wins. The subscription
// is released on every exit path.
type Subscriber struct {
	Stream  StatusStream
	Timeout time.Duration
}

func NewSubscriber(stream StatusStream) *Subscriber {
	return &Subscriber{
		Stream:  stream,
		Timeout: defaultSubscribeTimeout,
	}
}

func (s *Subscriber) Wait(ctx context.Context, externalReference string) (Outcome, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultSubscribeTimeout
	}

	updates, cancel := s.Stream.Subscribe(externalReference)
	defer cancel()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
			return OutcomeTimeout, nil
		case status, ok := <-updates:
			if !ok {
				// Stream dropped; the timeout timer is the only way out
				// besides cancellation.
				updates = nil
				continue
			}
			if outcome, ok := terminalOutcome(status); ok {
				return outcome, nil
			}
		}
	}
}
