package feed

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/domain"
)

func testEvent(id string) Event {
	return Event{
		Type:   EventStatusChanged,
		Kind:   domain.KindIncubation,
		ID:     id,
		Status: domain.StatusApproved,
		At:     time.Now(),
	}
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(4, zerolog.Nop())
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer a.Close()
	defer b.Close()

	hub.Publish(testEvent("abc"))

	for name, sub := range map[string]*Subscription{"a": a, "b": b} {
		select {
		case ev := <-sub.Events():
			if ev.ID != "abc" {
				t.Fatalf("subscriber %s got event %q", name, ev.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s never received the event", name)
		}
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub(1, zerolog.Nop())
	sub := hub.Subscribe()
	defer sub.Close()

	hub.Publish(testEvent("first"))
	hub.Publish(testEvent("second")) // buffer full, must not block

	if got := hub.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped event, got %d", got)
	}
	ev := <-sub.Events()
	if ev.ID != "first" {
		t.Fatalf("expected the buffered event, got %q", ev.ID)
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	hub := NewHub(1, zerolog.Nop())
	sub := hub.Subscribe()

	sub.Close()
	sub.Close() // second close must not panic

	if n := hub.SubscriberCount(); n != 0 {
		t.Fatalf("expected 0 subscribers after close, got %d", n)
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatal("events channel should be closed")
	}

	// Publishing after close must not panic or deliver.
	hub.Publish(testEvent("late"))
}
