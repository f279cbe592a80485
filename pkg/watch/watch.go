// Package watch implements the client side of the payment handshake:
// observe a keyed payment record until it reaches a terminal status or a
// deadline elapses. Two interchangeable backends satisfy the same contract,
// a fixed-interval Poller and an event-driven Subscriber.
package watch

import "context"

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Outcome is the resolution of a wait. Terminal payment results are explicit
// values, never errors: a failed payment is a normal outcome for a waiter.
type Outcome int

const (
	// OutcomeSuccess means the payment reached completed status.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeFailed means the payment reached failed status.
	OutcomeFailed
	// OutcomeTimeout means no terminal status was observed inside the
	// waiting window. Not a definitive failure: the payer may still be
	// entering their PIN.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// StatusReader reads the current status of a payment by external reference.
// Used by the polling backend.
type StatusReader interface {
	PaymentStatus(ctx context.Context, externalReference string) (string, error)
}

// StatusStream delivers a payment's status updates as they happen. The
// cancel func releases the subscription and must tolerate repeated calls.
// Used by the subscribing backend.
type StatusStream interface {
	Subscribe(externalReference string) (updates <-chan string, cancel func())
}

// Watcher resolves a payment reference to an outcome. Implementations stop
// watching as soon as they resolve: no further reads or events are consumed,
// and all timers and subscriptions are released on every exit path.
type Watcher interface {
	Wait(ctx context.Context, externalReference string) (Outcome, error)
}

func terminalOutcome(status string) (Outcome, bool) {
	switch status {
	case statusCompleted:
		return OutcomeSuccess, true
	case statusFailed:
		return OutcomeFailed, true
	default:
		return 0, false
	}
}
