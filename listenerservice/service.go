// --- File: listenerservice/service.go ---
package listenerservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/tinywideclouds/go-microservice-base/pkg/microservice"

	fsStore "github.com/tinywideclouds/go-notification-trigger/internal/storage/firestore"
	"github.com/tinywideclouds/go-notification-trigger/internal/pipeline"
	"github.com/tinywideclouds/go-notification-trigger/listenerservice/config"
	"github.com/tinywideclouds/go-notification-trigger/pkg/dispatch"
)

// Watcher is the long-running source of created documents.
type Watcher interface {
	Watch(ctx context.Context) error
}

type Wrapper struct {
	*microservice.BaseServer
	watcher Watcher
	logger  *slog.Logger

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan error
}

// New assembles the listener service around a Firestore client and a
// delivery dispatcher.
func New(
	cfg *config.Config,
	fsClient *firestore.Client,
	dispatcher dispatch.Dispatcher,
	logger *slog.Logger,
) (*Wrapper, error) {
	if fsClient == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	processor := pipeline.NewProcessor(dispatcher, logger)
	watcher := fsStore.NewWatcher(fsClient, cfg.Collection, processor, cfg.NumWorkers, logger)
	return NewWithWatcher(cfg, watcher, logger), nil
}

// NewWithWatcher assembles the service around an existing watcher.
func NewWithWatcher(cfg *config.Config, watcher Watcher, logger *slog.Logger) *Wrapper {
	return &Wrapper{
		BaseServer: microservice.NewBaseServer(logger, cfg.ListenAddr),
		watcher:    watcher,
		logger:     logger,
	}
}

// Start runs the watcher in the background and then serves HTTP until the
// server is shut down.
func (w *Wrapper) Start(ctx context.Context) error {
	if err := w.StartWatcher(ctx); err != nil {
		return err
	}
	w.SetReady(true)
	w.logger.Info("Service is now ready.")
	return w.BaseServer.Start()
}

// StartWatcher launches the snapshot listener. A watcher failure marks the
// service as not ready.
func (w *Wrapper) StartWatcher(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelFunc != nil {
		return fmt.Errorf("watcher already started")
	}

	w.logger.Info("Snapshot listener starting...")
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.done = make(chan error, 1)

	go func() {
		err := w.watcher.Watch(watchCtx)
		if err != nil {
			w.logger.Error("Snapshot listener failed", "err", err)
			w.SetReady(false)
		}
		w.done <- err
	}()
	return nil
}

// StopWatcher cancels the listener and waits for in-flight documents.
func (w *Wrapper) StopWatcher(ctx context.Context) error {
	w.mu.Lock()
	cancel, done := w.cancelFunc, w.done
	w.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for snapshot listener: %w", ctx.Err())
	}
}

func (w *Wrapper) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down service components...")
	var finalErr error
	if err := w.StopWatcher(ctx); err != nil {
		w.logger.Error("Snapshot listener shutdown failed.", "err", err)
		finalErr = err
	}
	if err := w.BaseServer.Shutdown(ctx); err != nil {
		w.logger.Error("HTTP server shutdown failed.", "err", err)
		finalErr = err
	}
	w.logger.Info("Service shutdown complete.")
	return finalErr
}
