// Package workerpool fans work items out across a bounded set of goroutines.
package workerpool

import (
	"context"
	"sync"
)

// Each processes every item with up to workers goroutines. The first error
// cancels the remaining work and is returned after all workers exit.
func Each[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	_, err := Map(ctx, workers, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}

// Map processes every item with up to workers goroutines and returns the
// results in input order. The first error cancels the remaining work.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]R, len(items))
	indexes := make(chan int)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				r, err := fn(ctx, items[idx])
				if err != nil {
					fail(err)
					return
				}
				results[idx] = r
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range items {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
