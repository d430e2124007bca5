package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinikore/offlinesync/internal/db"
	"github.com/clinikore/offlinesync/internal/models"
)

func sampleQueue() []models.QueuedRequest {
	return []models.QueuedRequest{
		{
			ID:        "1712000000000-aaaaaaaa",
			URL:       "/api/patients",
			Method:    "POST",
			Data:      json.RawMessage(`{"name":"first"}`),
			Headers:   map[string]string{"Content-Type": "application/json"},
			Timestamp: 1712000000000,
		},
		{
			ID:         "1712000000500-bbbbbbbb",
			URL:        "/api/devices/42",
			Method:     "PUT",
			Timestamp:  1712000000500,
			RetryCount: 2,
		},
	}
}

// roundTrip exercises the Store contract shared by all backends.
func roundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Empty store loads as empty queue
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)

	// Save and reload reconstructs an equivalent queue
	queue := sampleQueue()
	require.NoError(t, store.Save(ctx, queue))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, queue, loaded)

	// Saving an empty queue clears the persisted state
	require.NoError(t, store.Save(ctx, nil))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	roundTrip(t, NewMemoryStore(nil))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	store, err := NewSQLiteStore(database.DB, nil)
	require.NoError(t, err)

	roundTrip(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	queue := sampleQueue()

	database, err := db.Open(dir)
	require.NoError(t, err)

	store, err := NewSQLiteStore(database.DB, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, queue))
	require.NoError(t, database.Close())

	// Simulates a process restart
	database, err = db.Open(dir)
	require.NoError(t, err)
	defer database.Close()

	store, err = NewSQLiteStore(database.DB, nil)
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, queue, loaded)
}

func TestEncryptedCodecRoundTrip(t *testing.T) {
	codec, err := NewEncryptedCodec([]byte("installation-secret"))
	require.NoError(t, err)

	roundTrip(t, NewMemoryStore(codec))
}

func TestEncryptedCodecHidesPlaintext(t *testing.T) {
	codec, err := NewEncryptedCodec([]byte("installation-secret"))
	require.NoError(t, err)

	store := NewMemoryStore(codec)
	require.NoError(t, store.Save(context.Background(), sampleQueue()))

	require.NotContains(t, string(store.data), "/api/patients")
}

func TestDecodeCorruptedData(t *testing.T) {
	store := NewMemoryStore(nil)
	store.data = []byte("{not json")

	_, err := store.Load(context.Background())
	require.Error(t, err)
}
