// Package models provides data model definitions for the offline sync layer.
package models

import (
	"encoding/json"
	"net/http"
)

// QueuedRequest represents one deferred mutation: a write request that could
// not be delivered while the network was down, held for later replay.
type QueuedRequest struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Data       json.RawMessage   `json:"data,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Timestamp  int64             `json:"timestamp"` // milliseconds since epoch
	RetryCount int               `json:"retry_count"`
}

// StorageKey is the fixed key under which the entire queue is persisted
// as a serialized JSON array.
const StorageKey = "offline_queue:pending"

// Clone returns a deep copy of the request. Callers receiving copies must
// not be able to mutate queue-internal state through them.
func (r *QueuedRequest) Clone() QueuedRequest {
	c := *r
	if r.Headers != nil {
		c.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			c.Headers[k] = v
		}
	}
	if r.Data != nil {
		c.Data = make(json.RawMessage, len(r.Data))
		copy(c.Data, r.Data)
	}
	return c
}

// Ref returns the identifying subset of the request carried in event
// payloads (id, method, url).
func (r *QueuedRequest) Ref() RequestRef {
	return RequestRef{ID: r.ID, Method: r.Method, URL: r.URL}
}

// RequestRef identifies a queued request in notifications without
// exposing its body or headers.
type RequestRef struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

// IsMutating reports whether an HTTP method is write-side and therefore
// eligible for queueing. GET, HEAD and OPTIONS are never queued.
func IsMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
