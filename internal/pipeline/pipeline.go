// Package pipeline batches selection events and hands them to a loader,
// retrying failed batches with exponential backoff.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/observability"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	shutdownFlushTimeout  = 5 * time.Second
)

// BatchLoader writes multiple selection events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.SelectionEvent) error
}

// Feed buffers selection events and publishes them in batches. Publish never
// blocks: when the buffer is full the event is dropped and counted.
type Feed struct {
	events        chan domain.SelectionEvent
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a Feed. bufferSize bounds how many events may wait for Run.
func New(loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration, bufferSize int) *Feed {
	return &Feed{
		events:         make(chan domain.SelectionEvent, bufferSize),
		loader:         loader,
		logger:         logger,
		metrics:        metrics,
		batchSize:      batchSize,
		flushInterval:  flushInterval,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
}

// Publish queues an event for the next batch.
func (f *Feed) Publish(event domain.SelectionEvent) {
	select {
	case f.events <- event:
	default:
		f.logger.Warn("selection event dropped, feed buffer full", "event_id", event.ID)
		f.metrics.EventsDropped.Inc()
	}
}

// CheckReadiness returns nil while Run is active.
func (f *Feed) CheckReadiness(_ context.Context) error {
	if !f.running.Load() {
		return errors.New("selection feed is not running")
	}
	return nil
}

// Run publishes batches until the context is cancelled, then makes one
// bounded attempt to flush what is still queued.
func (f *Feed) Run(ctx context.Context) error {
	f.logger.Info("selection feed started", "batch_size", f.batchSize, "flush_interval", f.flushInterval)
	f.running.Store(true)
	f.metrics.FeedRunning.Set(1)
	defer func() {
		f.running.Store(false)
		f.metrics.FeedRunning.Set(0)
	}()

	for {
		batch, ok := f.collect(ctx)
		if !ok {
			f.flushOnShutdown(ctx, batch)
			f.logger.Info("selection feed stopping", "reason", ctx.Err())
			return nil
		}
		if !f.publish(ctx, batch) {
			f.flushOnShutdown(ctx, batch)
			return nil
		}
	}
}

// collect waits for the first event, then gathers more until the batch is
// full or the flush interval elapses. It returns false once ctx is done,
// along with whatever was gathered.
func (f *Feed) collect(ctx context.Context) ([]domain.SelectionEvent, bool) {
	var batch []domain.SelectionEvent
	select {
	case <-ctx.Done():
		return nil, false
	case e := <-f.events:
		batch = append(batch, e)
	}

	timer := time.NewTimer(f.flushInterval)
	defer timer.Stop()

	for len(batch) < f.batchSize {
		select {
		case <-ctx.Done():
			return batch, false
		case e := <-f.events:
			batch = append(batch, e)
		case <-timer.C:
			return batch, true
		}
	}
	return batch, true
}

// publish loads the batch, retrying with backoff. Returns false if ctx was
// cancelled before the batch was loaded.
func (f *Feed) publish(ctx context.Context, batch []domain.SelectionEvent) bool {
	backoff := f.initialBackoff
	for {
		if f.load(ctx, batch) {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if !sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff, f.maxBackoff)
	}
}

func (f *Feed) load(ctx context.Context, batch []domain.SelectionEvent) bool {
	start := time.Now()
	if err := f.loader.LoadBatch(ctx, batch); err != nil {
		f.logger.Error("publish batch failed", "error", err, "batch_size", len(batch))
		f.metrics.PublishErrors.Inc()
		return false
	}
	f.metrics.BatchSize.Observe(float64(len(batch)))
	f.metrics.BatchPublishDuration.Observe(time.Since(start).Seconds())
	f.metrics.EventsPublished.Add(float64(len(batch)))
	return true
}

// flushOnShutdown makes a single attempt to publish pending plus any events
// still buffered, using a fresh deadline since ctx is already done.
func (f *Feed) flushOnShutdown(ctx context.Context, pending []domain.SelectionEvent) {
drain:
	for {
		select {
		case e := <-f.events:
			pending = append(pending, e)
		default:
			break drain
		}
	}
	if len(pending) == 0 {
		return
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
	defer cancel()
	if !f.load(flushCtx, pending) {
		f.logger.Warn("selection events lost on shutdown", "count", len(pending))
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
