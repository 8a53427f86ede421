package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// SyncWorker owns the recurring timer that drives the resolver. One worker
// instance runs per process; batches never overlap because a single goroutine
// runs them sequentially, so a tick that fires mid-batch is coalesced into
// the next loop iteration.
type SyncWorker struct {
	syncService *SyncService
	interval    time.Duration
	batchSize   int

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func NewSyncWorker(syncService *SyncService, interval time.Duration, batchSize int) *SyncWorker {
	return &SyncWorker{
		syncService: syncService,
		interval:    interval,
		batchSize:   batchSize,
	}
}

// Start launches the scheduling loop. Calling it while running is a no-op.
func (w *SyncWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	log.Printf("[Sync] worker started (interval %s, batch %d)", w.interval, w.batchSize)
	go w.loop(w.stop, w.done)
}

// Stop cancels future ticks and waits for any in-flight batch to run to
// completion. Calling it when not running is a no-op.
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stop, done := w.stop, w.done
	w.mu.Unlock()

	close(stop)
	<-done
	log.Printf("[Sync] worker stopped")
}

func (w *SyncWorker) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := w.RunOnce(context.Background()); err != nil {
				log.Printf("[Sync] worker cycle error: %v", err)
			}
		}
	}
}

// RunOnce drains a single batch. Exposed so tests and operators can step the
// worker without the timer.
func (w *SyncWorker) RunOnce(ctx context.Context) error {
	return w.syncService.PushBatch(ctx, w.batchSize)
}
