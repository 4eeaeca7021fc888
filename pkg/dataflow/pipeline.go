package dataflow

import (
	"context"
	"sync"
)

// Stream is a read-only channel of messages.
type Stream[T any] <-chan T

// From creates a stream from a slice of data.
func From[T any](ctx context.Context, items ...T) Stream[T] {
	out := make(chan T, len(items))
	go func() {
		defer close(out)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
	}()
	return out
}

// ForEach executes an action for every item in the stream with the
// configured number of workers. It blocks until the stream is exhausted or
// the context is cancelled, and returns the first error.
func ForEach[T any](ctx context.Context, input Stream[T], fn func(T) error, opts ...Option) error {
	cfg := newConfig(opts)

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	worker := func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-input:
				if !ok {
					return
				}
				if err := fn(msg); err != nil {
					errOnce.Do(func() {
						firstErr = err
					})
				}
			}
		}
	}

	wg.Add(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		go worker()
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

type indexed[T any] struct {
	i   int
	val T
}

// MapSlice applies fn to every item with the configured number of workers and
// returns the results in input order. The first error cancels the remaining
// work and is returned.
func MapSlice[In, Out any](ctx context.Context, items []In, fn func(In) (Out, error), opts ...Option) ([]Out, error) {
	results := make([]Out, len(items))
	if len(items) == 0 {
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tagged := make([]indexed[In], len(items))
	for i, item := range items {
		tagged[i] = indexed[In]{i: i, val: item}
	}

	err := ForEach(ctx, From(ctx, tagged...), func(it indexed[In]) error {
		res, err := fn(it.val)
		if err != nil {
			cancel()
			return err
		}
		results[it.i] = res
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return results, nil
}
