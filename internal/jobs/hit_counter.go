package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"redirector/internal/metrics"
)

// HitStore is the store capability the hit counter needs.
type HitStore interface {
	IncrementHits(ctx context.Context, id int64) error
}

// HitCounter performs hit increments in the background on a bounded queue
// drained by a fixed set of workers.
type HitCounter struct {
	store   HitStore
	queue   chan int64
	workers int
	timeout time.Duration
	logger  *zap.Logger
}

// NewHitCounter creates a new hit counter.
func NewHitCounter(store HitStore, workers, queueSize int, timeout time.Duration, logger *zap.Logger) *HitCounter {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HitCounter{
		store:   store,
		queue:   make(chan int64, queueSize),
		workers: workers,
		timeout: timeout,
		logger:  logger,
	}
}

// Submit queues an increment for the mapping without blocking. It reports
// false when the queue is full and the increment was dropped.
func (h *HitCounter) Submit(id int64) bool {
	select {
	case h.queue <- id:
		return true
	default:
		metrics.ObserveHit(metrics.HitDropped)
		h.logger.Warn("hit queue full, dropping increment", zap.Int64("mapping_id", id))
		return false
	}
}

// Start runs the workers and blocks until ctx is done. Increments still
// queued at that point are dropped.
func (h *HitCounter) Start(ctx context.Context) {
	h.logger.Info("hit counter started",
		zap.Int("workers", h.workers),
		zap.Int("queue_size", cap(h.queue)),
	)

	var wg sync.WaitGroup
	for i := 0; i < h.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.work(ctx)
		}()
	}
	wg.Wait()

	h.logger.Info("hit counter stopped", zap.Int("dropped", len(h.queue)))
}

func (h *HitCounter) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-h.queue:
			h.increment(ctx, id)
		}
	}
}

func (h *HitCounter) increment(ctx context.Context, id int64) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := h.store.IncrementHits(ctx, id); err != nil {
		metrics.ObserveHit(metrics.HitError)
		h.logger.Warn("failed to increment hits", zap.Int64("mapping_id", id), zap.Error(err))
		return
	}
	metrics.ObserveHit(metrics.HitOK)
}
