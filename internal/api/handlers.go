// Package api provides the REST surface of the offline sync daemon: queue
// inspection endpoints for pending-count badges and a relay endpoint that
// forwards application API calls with offline queueing on the write side.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/clinikore/offlinesync/internal/client"
	"github.com/clinikore/offlinesync/internal/connectivity"
	apperrors "github.com/clinikore/offlinesync/internal/errors"
	"github.com/clinikore/offlinesync/internal/queue"
)

// Handler holds the daemon's wired components.
type Handler struct {
	queue   *queue.OfflineQueue
	monitor *connectivity.Monitor
	client  *client.Client
}

// NewHandler creates a Handler.
func NewHandler(q *queue.OfflineQueue, monitor *connectivity.Monitor, c *client.Client) *Handler {
	return &Handler{queue: q, monitor: monitor, client: c}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"online":  h.monitor.IsOnline(),
		"pending": h.queue.Size(),
	})
}

// ListQueue handles GET /queue.
func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	pending := h.queue.Pending()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(pending),
		"requests": pending,
	})
}

// QueueSize handles GET /queue/size.
func (h *Handler) QueueSize(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"size": h.queue.Size()})
}

// ClearQueue handles DELETE /queue: explicit user-initiated discard.
func (h *Handler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	h.queue.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// RemoveRequest handles DELETE /queue/{id}. Removing an unknown id is a
// no-op and still returns 204.
func (h *Handler) RemoveRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.queue.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// TriggerProcess handles POST /queue/process: kicks off a replay pass in
// the background. The pass itself silently no-ops when one is already
// running, the queue is empty, or the network is down.
func (h *Handler) TriggerProcess(w http.ResponseWriter, r *http.Request) {
	go h.queue.ProcessQueue(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "processing"})
}

// Relay forwards an application API call upstream. Mutations that cannot
// be delivered are queued and answered with 202 so the UI can show "saved
// for later".
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/relay")
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	var body json.RawMessage
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
			return
		}
		if len(data) > 0 {
			body = data
		}
	}

	headers := make(map[string]string)
	for _, k := range []string{"Authorization", "Content-Type", "X-Tenant-ID", client.IdempotencyHeader} {
		if v := r.Header.Get(k); v != "" {
			headers[k] = v
		}
	}

	resp, err := h.client.Do(r.Context(), r.Method, path, body, headers)

	if apperrors.Is(err, apperrors.ErrQueuedForLater) {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"queued":  true,
			"pending": h.queue.Size(),
		})
		return
	}

	if resp != nil {
		// Upstream responded; pass its status and body through,
		// including error statuses.
		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		w.Write(resp.Body)
		return
	}

	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}
