package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/clinikore/offlinesync/internal/models"
	"github.com/clinikore/offlinesync/internal/queue"
)

func dialTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Wait for registration to land
	deadline := time.After(time.Second)
	for hub.ClientCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("Client never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	return hub, conn
}

func TestHubBroadcastsQueueEvents(t *testing.T) {
	hub, conn := dialTestHub(t)

	hub.BroadcastEvent(queue.Event{
		Type:    queue.EventRequestQueued,
		Count:   1,
		Request: &models.RequestRef{ID: "id-1", Method: "POST", URL: "/api/patients"},
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}

	if envelope.Type != "queue.request-queued" {
		t.Errorf("Unexpected envelope type %q", envelope.Type)
	}
	if envelope.Data.Request == nil || envelope.Data.Request.ID != "id-1" {
		t.Errorf("Unexpected event payload: %+v", envelope.Data)
	}
}

func TestHubAttachNotifier(t *testing.T) {
	hub, conn := dialTestHub(t)

	notifier := queue.NewNotifier()
	hub.AttachNotifier(notifier)

	notifier.Publish(queue.Event{Type: queue.EventQueueProcessed, SuccessCount: 2})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if envelope.Data.SuccessCount != 2 {
		t.Errorf("Unexpected summary payload: %+v", envelope.Data)
	}
}
