package stream

import "testing"

func TestHubDeliversToMatchingSubscribers(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("NYOTA-1-abc")
	defer cancel()
	other, cancelOther := hub.Subscribe("NYOTA-2-def")
	defer cancelOther()

	hub.Publish(StatusUpdate{ExternalReference: "NYOTA-1-abc", Status: "completed"})

	select {
	case update := <-ch:
		if update.Status != "completed" {
			t.Fatalf("expected completed, got %q", update.Status)
		}
	default:
		t.Fatal("expected a buffered update for the matching subscriber")
	}

	select {
	case update := <-other:
		t.Fatalf("unexpected update for other reference: %+v", update)
	default:
	}
}

func TestHubCancelRemovesSubscription(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("NYOTA-1-abc")
	if hub.SubscriberCount("NYOTA-1-abc") != 1 {
		t.Fatal("expected one subscriber")
	}

	cancel()
	cancel() // safe to call twice

	if hub.SubscriberCount("NYOTA-1-abc") != 0 {
		t.Fatal("expected subscription removed")
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}

	// Publishing after cancel must not panic or resurrect the subscription.
	hub.Publish(StatusUpdate{ExternalReference: "NYOTA-1-abc", Status: "failed"})
}

func TestHubSkipsSlowSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("NYOTA-1-abc")
	defer cancel()

	for i := 0; i < 10; i++ {
		hub.Publish(StatusUpdate{ExternalReference: "NYOTA-1-abc", Status: "pending"})
	}

	// Buffer holds a handful of updates; the rest are dropped, not blocked on.
	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
			continue
		default:
		}
		break
	}
	if delivered == 0 || delivered >= 10 {
		t.Fatalf("expected partial delivery to a slow subscriber, got %d", delivered)
	}
}
