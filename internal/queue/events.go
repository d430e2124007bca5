package queue

import (
	"sync"

	"github.com/clinikore/offlinesync/internal/logging"
	"github.com/clinikore/offlinesync/internal/models"
)

// EventType names a queue notification.
type EventType string

const (
	// EventRequestQueued fires when a request is added to the queue.
	EventRequestQueued EventType = "request-queued"
	// EventRequestProcessed fires after each replay attempt that settles
	// a request, successfully or terminally.
	EventRequestProcessed EventType = "request-processed"
	// EventRequestFailed fires when a request is dropped permanently.
	EventRequestFailed EventType = "request-failed"
	// EventQueueProcessed fires once per replay pass with a summary.
	EventQueueProcessed EventType = "queue-processed"
)

// Event is a queue notification. Fields are populated per event type;
// unrelated fields are zero.
type Event struct {
	Type    EventType          `json:"type"`
	Count   int                `json:"count,omitempty"`
	Request *models.RequestRef `json:"request,omitempty"`
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`

	SuccessCount   int `json:"success_count,omitempty"`
	FailCount      int `json:"fail_count,omitempty"`
	RemainingCount int `json:"remaining_count,omitempty"`
}

// Notifier broadcasts queue events to registered subscribers. Events are
// fire-and-forget: they carry no control-flow significance and a misbehaving
// subscriber must not affect queue logic.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(Event))}
}

// Subscribe registers a callback and returns its subscription id.
func (n *Notifier) Subscribe(fn func(Event)) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.subs[n.nextID] = fn
	return n.nextID
}

// Unsubscribe removes a subscription. Unknown ids are a no-op.
func (n *Notifier) Unsubscribe(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

// Publish delivers the event to every subscriber registered at call time.
// Subscriber panics are recovered and logged.
func (n *Notifier) Publish(event Event) {
	n.mu.RLock()
	callbacks := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		callbacks = append(callbacks, fn)
	}
	n.mu.RUnlock()

	for _, fn := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Warn("Queue event subscriber panicked",
						map[string]interface{}{"event": string(event.Type), "panic": r})
				}
			}()
			fn(event)
		}()
	}
}
