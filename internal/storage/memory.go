package storage

import (
	"context"
	"sync"

	"github.com/clinikore/offlinesync/internal/models"
)

// MemoryStore keeps the serialized queue in memory. Used in tests and for
// deployments that explicitly opt out of durability.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	codec Codec
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(codec Codec) *MemoryStore {
	if codec == nil {
		codec = PlainCodec()
	}
	return &MemoryStore{codec: codec}
}

// Load reads the stored queue snapshot.
func (s *MemoryStore) Load(ctx context.Context) ([]models.QueuedRequest, error) {
	s.mu.Lock()
	stored := s.data
	s.mu.Unlock()

	if len(stored) == 0 {
		return nil, nil
	}

	plaintext, err := s.codec.Decode(stored)
	if err != nil {
		return nil, err
	}
	return decode(plaintext)
}

// Save replaces the stored queue snapshot.
func (s *MemoryStore) Save(ctx context.Context, requests []models.QueuedRequest) error {
	plaintext, err := encode(requests)
	if err != nil {
		return err
	}

	stored, err := s.codec.Encode(plaintext)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = stored
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
