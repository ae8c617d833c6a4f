package aggregator

import (
	"context"
	"fmt"

	apperrors "github.com/amaumene/gostremiomux/internal/errors"
)

type outcome[T any] struct {
	value T
	err   error
}

// invoke runs fn in its own goroutine and waits for it at most until ctx is
// done. An fn that ignores ctx is abandoned; its late result is dropped.
// Panics are returned as errors.
func invoke[T any](ctx context.Context, label string, fn func(context.Context) (T, error)) (T, error) {
	ch := make(chan outcome[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- outcome[T]{value: zero, err: fmt.Errorf("%s panicked: %v", label, r)}
			}
		}()
		v, err := fn(ctx)
		ch <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-ch:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		if ctx.Err() == context.DeadlineExceeded {
			return zero, apperrors.NewTimeoutError(label)
		}
		return zero, ctx.Err()
	}
}
