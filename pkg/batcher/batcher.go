// Package batcher provides a generic buffered batch writer with rate limiting.
package batcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ErrStopped is returned by Add once the batcher has been stopped.
var ErrStopped = errors.New("batcher stopped")

// Config controls batching behavior. Zero fields fall back to defaults.
type Config struct {
	// FlushSize is the number of buffered items that triggers a flush.
	FlushSize int
	// FlushInterval flushes a partial batch after this much idle time.
	FlushInterval time.Duration
	// RatePerSecond caps how many flushes may run per second.
	RatePerSecond int
}

func (c Config) withDefaults() Config {
	if c.FlushSize <= 0 {
		c.FlushSize = 1000
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = 100
	}
	return c
}

// Batcher buffers items and flushes them either by size or interval.
// Queued items are drained and flushed on Stop.
type Batcher[T any] struct {
	flush   func(context.Context, []T) error
	itemsCh chan T
	cfg     Config
	rl      ratelimit.Limiter
	logger  *zap.Logger

	wg   sync.WaitGroup
	stop chan struct{}

	mu      sync.Mutex
	failed  int
	lastErr error
}

// New constructs a Batcher that writes batches through flush.
func New[T any](logger *zap.Logger, cfg Config, flush func(context.Context, []T) error) *Batcher[T] {
	cfg = cfg.withDefaults()
	return &Batcher[T]{
		logger:  logger,
		flush:   flush,
		itemsCh: make(chan T, cfg.FlushSize*2),
		cfg:     cfg,
		rl:      ratelimit.New(cfg.RatePerSecond),
		stop:    make(chan struct{}),
	}
}

// Start begins the background flushing loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop drains queued items, flushes the remainder, and waits for the loop
// to exit. It reports an error if any flush failed during the run.
func (b *Batcher[T]) Stop() error {
	close(b.stop)
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed > 0 {
		return fmt.Errorf("%d batch flushes failed, last: %w", b.failed, b.lastErr)
	}
	return nil
}

// Add queues an item for batching, respecting context cancellation.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.itemsCh <- item:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	buf := make([]T, 0, b.cfg.FlushSize)

	flush := func(ctx context.Context) {
		if len(buf) == 0 {
			return
		}

		b.rl.Take()
		if err := b.flush(ctx, buf); err != nil {
			b.mu.Lock()
			b.failed++
			b.lastErr = err
			b.mu.Unlock()
			b.logger.Error("batch not flushed", zap.Int("size", len(buf)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(buf)))
		}
		buf = buf[:0]
	}

	// drain empties the queue before the terminal flush so stopping
	// does not discard accepted items.
	drain := func() {
		for {
			select {
			case item := <-b.itemsCh:
				buf = append(buf, item)
				if len(buf) >= b.cfg.FlushSize {
					flush(context.WithoutCancel(ctx))
				}
			default:
				flush(context.WithoutCancel(ctx))
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return

		case <-b.stop:
			drain()
			return

		case item := <-b.itemsCh:
			buf = append(buf, item)
			if len(buf) >= b.cfg.FlushSize {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}
