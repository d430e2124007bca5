// Package main provides offlinesyncd, the offline sync daemon of the
// CliniKore management application. It relays API calls upstream, queues
// undeliverable mutations durably, replays them when connectivity returns,
// and pushes queue events to the UI over WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinikore/offlinesync/internal/api"
	"github.com/clinikore/offlinesync/internal/client"
	"github.com/clinikore/offlinesync/internal/config"
	"github.com/clinikore/offlinesync/internal/connectivity"
	"github.com/clinikore/offlinesync/internal/db"
	"github.com/clinikore/offlinesync/internal/logging"
	"github.com/clinikore/offlinesync/internal/queue"
	"github.com/clinikore/offlinesync/internal/storage"
	"github.com/clinikore/offlinesync/internal/ws"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "offlinesyncd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logging.Init(os.Stdout, cfg.LogLevel)
	logging.Info("Starting offlinesyncd", map[string]interface{}{
		"version":  Version,
		"backend":  cfg.Storage.Backend,
		"upstream": cfg.UpstreamURL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	probe := connectivity.NewHTTPProbe(cfg.Probe.URL, 5*time.Second)
	monitor := connectivity.NewMonitor(probe, cfg.Probe.Interval())

	notifier := queue.NewNotifier()
	relay := client.New(nil, cfg.UpstreamURL, monitor.IsOnline)
	q := queue.New(store, relay.Dispatch, monitor.IsOnline, notifier, cfg.Queue.MaxRetries)
	relay.AttachQueue(q)

	// Replay on every offline-to-online transition.
	monitor.OnOnline(func() {
		go q.ProcessQueue(ctx)
	})

	hub := ws.NewHub()
	hub.AttachNotifier(notifier)

	// Restore persisted state; replays immediately if items are pending
	// and the network is already up.
	q.Start(ctx)
	monitor.Start(ctx)
	defer monitor.Stop()

	router := api.NewRouter(api.NewHandler(q, monitor, relay))
	router.HandleFunc("/ws", hub.ServeWS)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Listening", map[string]interface{}{"addr": cfg.ListenAddr})
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logging.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// openStore builds the configured storage backend, wrapped in the
// encrypting codec when an installation secret is set.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	var codec storage.Codec = storage.PlainCodec()
	if cfg.Storage.EncryptionSecret != "" {
		var err error
		codec, err = storage.NewEncryptedCodec([]byte(cfg.Storage.EncryptionSecret))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize encryption: %w", err)
		}
	}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		database, err := db.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSQLiteStore(database.DB, codec)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return store, func() { database.Close() }, nil

	case config.BackendRedis:
		store, err := storage.NewRedisStore(ctx, cfg.Storage.RedisAddr, codec)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case config.BackendMemory:
		logging.Warn("Using in-memory storage, queued requests will not survive restarts", nil)
		return storage.NewMemoryStore(codec), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
