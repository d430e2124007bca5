// Package connectivity provides network reachability detection for the
// offline sync layer. A Monitor periodically probes a well-known endpoint
// and notifies subscribers when connectivity transitions from offline to
// online, which is what triggers queue replay.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/clinikore/offlinesync/internal/logging"
)

// ProbeFunc reports whether the network is currently reachable.
type ProbeFunc func(ctx context.Context) bool

// NewHTTPProbe returns a probe that issues a HEAD request against url.
// Any response, including an HTTP error status, counts as reachable;
// only transport-level failures count as offline.
func NewHTTPProbe(url string, timeout time.Duration) ProbeFunc {
	client := &http.Client{Timeout: timeout}

	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}
}

// Monitor tracks online state and fires callbacks on the offline-to-online
// transition.
type Monitor struct {
	probe     ProbeFunc
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	isOnline  bool
	onOnline  []func()
}

// NewMonitor creates a Monitor. The initial state is online; the first
// probe corrects it if the network is actually down.
func NewMonitor(probe ProbeFunc, interval time.Duration) *Monitor {
	return &Monitor{
		probe:    probe,
		interval: interval,
		stopCh:   make(chan struct{}),
		isOnline: true,
	}
}

// Start begins periodic probing.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.probeLoop(ctx)

	logging.Info("Connectivity monitor started",
		map[string]interface{}{"interval": m.interval.String()})
}

// Stop stops probing and waits for the probe loop to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = false
	m.mu.Unlock()

	close(m.stopCh)
	m.wg.Wait()

	logging.Info("Connectivity monitor stopped", nil)
}

func (m *Monitor) probeLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.SetOnline(m.probe(ctx))
		}
	}
}

// IsOnline returns the current reachability reading.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isOnline
}

// SetOnline records a reachability reading. Callbacks registered with
// OnOnline fire once per offline-to-online transition.
func (m *Monitor) SetOnline(isOnline bool) {
	m.mu.Lock()
	wasOnline := m.isOnline
	m.isOnline = isOnline
	callbacks := m.onOnline
	m.mu.Unlock()

	if wasOnline == isOnline {
		return
	}

	logging.Info("Online status changed",
		map[string]interface{}{
			"was_online": wasOnline,
			"is_online":  isOnline,
		})

	if isOnline {
		for _, fn := range callbacks {
			fn()
		}
	}
}

// OnOnline registers a callback fired on each offline-to-online transition.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}
