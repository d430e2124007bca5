// Package storage provides persistence backends for the offline queue.
// The entire queue is serialized as one JSON array under a fixed key
// after every mutating queue operation, so the persisted and in-memory
// representations never diverge for long.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clinikore/offlinesync/internal/models"
)

// Store persists the full queue snapshot.
type Store interface {
	// Load reads the persisted queue. A missing key yields an empty
	// queue, not an error.
	Load(ctx context.Context) ([]models.QueuedRequest, error)

	// Save replaces the persisted queue with the given snapshot.
	Save(ctx context.Context, requests []models.QueuedRequest) error

	// Close releases backend resources.
	Close() error
}

// encode serializes a queue snapshot. An empty queue serializes to "[]"
// rather than "null" so older readers see a valid array.
func encode(requests []models.QueuedRequest) ([]byte, error) {
	if requests == nil {
		requests = []models.QueuedRequest{}
	}
	return json.Marshal(requests)
}

// decode deserializes a persisted queue snapshot.
func decode(data []byte) ([]models.QueuedRequest, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var requests []models.QueuedRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("corrupted queue data: %w", err)
	}
	return requests, nil
}
