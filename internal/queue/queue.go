// Package queue provides the offline mutation queue: durable storage and
// ordered replay of write requests that could not be delivered while the
// network was down.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/clinikore/offlinesync/internal/errors"
	"github.com/clinikore/offlinesync/internal/logging"
	"github.com/clinikore/offlinesync/internal/models"
	"github.com/clinikore/offlinesync/internal/storage"
	"github.com/clinikore/offlinesync/internal/uuid"
)

// DefaultMaxRetries is the retry ceiling for retryable failures while online.
const DefaultMaxRetries = 3

// DispatchFunc performs one delivery attempt for a queued request. A nil
// return means the request was accepted; errors are classified with
// IsRetryable to decide between requeue and drop.
type DispatchFunc func(ctx context.Context, req *models.QueuedRequest) error

// OnlineFunc reports whether the network is currently reachable.
type OnlineFunc func() bool

// RequestDescriptor carries the fields of a mutation to defer.
type RequestDescriptor struct {
	URL     string
	Method  string
	Data    json.RawMessage
	Headers map[string]string
}

// OfflineQueue holds mutating HTTP requests that could not be delivered and
// replays them in enqueue order once connectivity is confirmed restored.
// All dependencies are constructor-injected; there is no package-level state.
type OfflineQueue struct {
	mu         sync.Mutex
	items      []models.QueuedRequest
	processing bool

	store      storage.Store
	dispatch   DispatchFunc
	online     OnlineFunc
	notifier   *Notifier
	maxRetries int
}

// New creates an OfflineQueue. notifier may be shared with other components;
// maxRetries <= 0 selects DefaultMaxRetries.
func New(store storage.Store, dispatch DispatchFunc, online OnlineFunc, notifier *Notifier, maxRetries int) *OfflineQueue {
	if notifier == nil {
		notifier = NewNotifier()
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &OfflineQueue{
		store:      store,
		dispatch:   dispatch,
		online:     online,
		notifier:   notifier,
		maxRetries: maxRetries,
	}
}

// Notifier returns the queue's event notifier.
func (q *OfflineQueue) Notifier() *Notifier {
	return q.notifier
}

// Load restores the persisted queue. Unreadable or corrupted state resets
// the queue to empty; durability is best-effort and load never fails.
func (q *OfflineQueue) Load(ctx context.Context) {
	items, err := q.store.Load(ctx)
	if err != nil {
		logging.ErrorWithCode("Failed to load persisted queue, starting empty",
			string(errors.ErrQueueCorrupted), err, nil)
		items = nil
	}

	q.mu.Lock()
	q.items = items
	q.mu.Unlock()

	if len(items) > 0 {
		logging.Info("Restored persisted offline queue",
			map[string]interface{}{"pending": len(items)})
	}
}

// Start restores persisted state and, when the client is already online
// with pending items, kicks off a replay pass. Covers the reload-while-
// pending case.
func (q *OfflineQueue) Start(ctx context.Context) {
	q.Load(ctx)
	if q.Size() > 0 && q.online() {
		go q.ProcessQueue(ctx)
	}
}

// Enqueue defers a mutation for later replay. It validates the descriptor,
// assigns a fresh id and timestamp, persists the full queue, and emits a
// request-queued event. Enqueue never fails: storage errors are logged and
// swallowed, and an invalid descriptor is dropped with a warning.
func (q *OfflineQueue) Enqueue(desc RequestDescriptor) *models.QueuedRequest {
	if desc.URL == "" || !models.IsMutating(desc.Method) {
		logging.Warn("Refusing to queue invalid request descriptor",
			map[string]interface{}{"url": desc.URL, "method": desc.Method})
		return nil
	}

	now := time.Now().UnixMilli()
	req := (&models.QueuedRequest{
		ID:         fmt.Sprintf("%d-%s", now, uuid.Short()),
		URL:        desc.URL,
		Method:     desc.Method,
		Data:       desc.Data,
		Headers:    desc.Headers,
		Timestamp:  now,
		RetryCount: 0,
	}).Clone() // headers and body are frozen at enqueue time

	q.mu.Lock()
	q.items = append(q.items, req)
	count := len(q.items)
	q.persistLocked()
	q.mu.Unlock()

	logging.Info("Queued request for later delivery",
		map[string]interface{}{"id": req.ID, "method": req.Method, "url": req.URL, "pending": count})

	ref := req.Ref()
	q.notifier.Publish(Event{Type: EventRequestQueued, Count: count, Request: &ref})

	out := req.Clone()
	return &out
}

// ProcessQueue replays pending requests sequentially in enqueue order.
// Preconditions, each a silent no-op: no pass already running, queue
// non-empty, network reachable. The queue is snapshotted and cleared up
// front so requests enqueued during the pass are not conflated with the
// in-flight batch; failed requests are requeued at the current tail.
func (q *OfflineQueue) ProcessQueue(ctx context.Context) {
	q.mu.Lock()
	if q.processing || len(q.items) == 0 || !q.online() {
		q.mu.Unlock()
		return
	}
	q.processing = true
	snapshot := q.items
	q.items = nil
	q.persistLocked()
	q.mu.Unlock()

	logging.Info("Processing offline queue",
		map[string]interface{}{"count": len(snapshot)})

	var successCount, failCount int

	for i := range snapshot {
		req := &snapshot[i]
		ref := req.Ref()

		err := q.dispatch(ctx, req)
		if err == nil {
			successCount++
			q.notifier.Publish(Event{Type: EventRequestProcessed, Success: true, Request: &ref})
			continue
		}

		// While offline every failure is requeued; the ceiling only
		// applies to retryable failures while online.
		if !q.online() || (IsRetryable(err) && req.RetryCount < q.maxRetries) {
			req.RetryCount++
			q.mu.Lock()
			q.items = append(q.items, *req)
			q.mu.Unlock()

			logging.Warn("Replay attempt failed, requeued",
				map[string]interface{}{"id": req.ID, "retry_count": req.RetryCount, "error": err.Error()})
			continue
		}

		failCount++
		logging.ErrorWithCode("Dropping request permanently",
			string(errors.ErrRequestFailed), err,
			map[string]interface{}{"id": req.ID, "method": req.Method, "url": req.URL})

		q.notifier.Publish(Event{Type: EventRequestProcessed, Success: false, Request: &ref, Error: err.Error()})
		q.notifier.Publish(Event{Type: EventRequestFailed, Request: &ref, Error: err.Error()})
	}

	q.mu.Lock()
	q.persistLocked()
	q.processing = false
	remaining := len(q.items)
	q.mu.Unlock()

	logging.Info("Offline queue pass finished",
		map[string]interface{}{"succeeded": successCount, "failed": failCount, "remaining": remaining})

	q.notifier.Publish(Event{
		Type:           EventQueueProcessed,
		SuccessCount:   successCount,
		FailCount:      failCount,
		RemainingCount: remaining,
	})
}

// Size returns the current count of pending requests.
func (q *OfflineQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending returns a defensive copy of the pending requests in order.
func (q *OfflineQueue) Pending() []models.QueuedRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.QueuedRequest, 0, len(q.items))
	for i := range q.items {
		out = append(out, q.items[i].Clone())
	}
	return out
}

// Clear empties the queue and persists the empty state.
func (q *OfflineQueue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.persistLocked()
	q.mu.Unlock()

	logging.Info("Offline queue cleared", nil)
}

// Remove deletes a single request by id. Unknown ids are a no-op.
func (q *OfflineQueue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.items {
		if q.items[i].ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.persistLocked()
			return
		}
	}
}

// persistLocked mirrors the in-memory queue to storage. Callers hold q.mu.
// Storage failures are absorbed: durability is best-effort.
func (q *OfflineQueue) persistLocked() {
	snapshot := make([]models.QueuedRequest, len(q.items))
	copy(snapshot, q.items)

	if err := q.store.Save(context.Background(), snapshot); err != nil {
		logging.ErrorWithCode("Failed to persist offline queue",
			string(errors.ErrQueueStorage), err,
			map[string]interface{}{"pending": len(snapshot)})
	}
}
