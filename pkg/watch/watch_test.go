package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type scriptedReader struct {
	mu       sync.Mutex
	statuses []string
	errs     []error
	calls    int
}

func (r *scriptedReader) PaymentStatus(context.Context, string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	r.calls++
	if i < len(r.errs) && r.errs[i] != nil {
		return "", r.errs[i]
	}
	if i < len(r.statuses) {
		return r.statuses[i], nil
	}
	return "pending", nil
}

func (r *scriptedReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeStream struct {
	updates   chan string
	cancelled bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{updates: make(chan string, 4)}
}

func (s *fakeStream) Subscribe(string) (<-chan string, func()) {
	return s.updates, func() { s.cancelled = true }
}

func testPoller(reader StatusReader) *Poller {
	return &Poller{
		Reader:       reader,
		InitialDelay: time.Millisecond,
		Interval:     time.Millisecond,
		MaxAttempts:  5,
	}
}

func TestPollerResolvesOnTerminalStatus(t *testing.T) {
	reader := &scriptedReader{statuses: []string{"pending", "pending", "completed"}}
	poller := testPoller(reader)

	outcome, err := poller.Wait(context.Background(), "NYOTA-1-abc")
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %v", outcome)
	}
	if reader.callCount() != 3 {
		t.Fatalf("expected no reads after resolution, got %d calls", reader.callCount())
	}
}

func TestPollerMapsFailedStatus(t *testing.T) {
	reader := &scriptedReader{statuses: []string{"failed"}}

	outcome, err := testPoller(reader).Wait(context.Background(), "NYOTA-1-abc")
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %v", outcome)
	}
}

func TestPollerTimesOutAfterMaxAttempts(t *testing.T) {
	reader := &scriptedReader{}
	poller := testPoller(reader)

	outcome, err := poller.Wait(context.Background(), "NYOTA-1-abc")
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if outcome != OutcomeTimeout {
		t.Fatalf("expected timeout, got %v", outcome)
	}
	if reader.callCount() != poller.MaxAttempts {
		t.Fatalf("expected exactly %d attempts, got %d", poller.MaxAttempts, reader.callCount())
	}
}

func TestPollerKeepsPollingThroughReadErrors(t *testing.T) {
	reader := &scriptedReader{
		errs:     []error{errors.New("record not visible yet"), errors.New("transient")},
		statuses: []string{"", "", "completed"},
	}

	outcome, err := testPoller(reader).Wait(context.Background(), "NYOTA-1-abc")
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success after transient errors, got %v", outcome)
	}
}

func TestPollerStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &scriptedReader{}
	_, err := testPoller(reader).Wait(ctx, "NYOTA-1-abc")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if reader.callCount() != 0 {
		t.Fatal("expected no reads after cancellation")
	}
}

func TestSubscriberResolvesOnFirstTerminalUpdate(t *testing.T) {
	stream := newFakeStream()
	stream.updates <- "pending"
	stream.updates <- "completed"
	stream.updates <- "failed"

	sub := &Subscriber{Stream: stream, Timeout: time.Second}
	outcome, err := sub.Wait(context.Background(), "NYOTA-1-abc")
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if outcome != OutcomeSuccess {
		t.Fatalf("expected the first terminal update to win, got %v", outcome)
	}
	if !stream.cancelled {
		t.Fatal("expected subscription released after resolution")
	}
}

func TestSubscriberTimesOutWithoutUpdates(t *testing.T) {
	stream := newFakeStream()

	sub := &Subscriber{Stream: stream, Timeout: 5 * time.Millisecond}
	outcome, err := sub.Wait(context.Background(), "NYOTA-1-abc")
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if outcome != OutcomeTimeout {
		t.Fatalf("expected timeout, got %v", outcome)
	}
	if !stream.cancelled {
		t.Fatal("expected subscription released on timeout")
	}
}

func TestSubscriberSurvivesDroppedStream(t *testing.T) {
	stream := newFakeStream()
	close(stream.updates)

	sub := &Subscriber{Stream: stream, Timeout: 5 * time.Millisecond}
	outcome, err := sub.Wait(context.Background(), "NYOTA-1-abc")
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if outcome != OutcomeTimeout {
		t.Fatalf("expected timeout after dropped stream, got %v", outcome)
	}
}

func TestSubscriberStopsOnContextCancellation(t *testing.T) {
	stream := newFakeStream()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub := &Subscriber{Stream: stream, Timeout: time.Second}
	_, err := sub.Wait(ctx, "NYOTA-1-abc")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !stream.cancelled {
		t.Fatal("expected subscription released on cancellation")
	}
}
