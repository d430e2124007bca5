package queue

import (
	"testing"
)

func TestNotifierSubscribeUnsubscribe(t *testing.T) {
	n := NewNotifier()

	var got []Event
	id := n.Subscribe(func(e Event) { got = append(got, e) })

	n.Publish(Event{Type: EventRequestQueued, Count: 1})
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}

	n.Unsubscribe(id)
	n.Publish(Event{Type: EventRequestQueued, Count: 2})
	if len(got) != 1 {
		t.Error("Unsubscribed callback still received events")
	}
}

func TestNotifierFanout(t *testing.T) {
	n := NewNotifier()

	counts := make([]int, 3)
	for i := range counts {
		i := i
		n.Subscribe(func(Event) { counts[i]++ })
	}

	n.Publish(Event{Type: EventQueueProcessed})

	for i, c := range counts {
		if c != 1 {
			t.Errorf("Subscriber %d received %d events, want 1", i, c)
		}
	}
}

func TestNotifierIsolatesPanickingSubscriber(t *testing.T) {
	n := NewNotifier()

	n.Subscribe(func(Event) { panic("subscriber bug") })

	delivered := false
	n.Subscribe(func(Event) { delivered = true })

	n.Publish(Event{Type: EventRequestFailed})

	if !delivered {
		t.Error("A panicking subscriber must not block delivery to others")
	}
}
