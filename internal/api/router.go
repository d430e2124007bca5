package api

import (
	"github.com/gorilla/mux"
)

// NewRouter builds the daemon's HTTP surface: queue inspection for UI
// layers plus the relay endpoint application code sends its API calls
// through.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/status", h.Status).Methods("GET")

	r.HandleFunc("/queue", h.ListQueue).Methods("GET")
	r.HandleFunc("/queue/size", h.QueueSize).Methods("GET")
	r.HandleFunc("/queue", h.ClearQueue).Methods("DELETE")
	r.HandleFunc("/queue/{id}", h.RemoveRequest).Methods("DELETE")
	r.HandleFunc("/queue/process", h.TriggerProcess).Methods("POST")

	r.PathPrefix("/relay/").HandlerFunc(h.Relay)

	return r
}
