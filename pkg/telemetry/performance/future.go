package performance

import (
	"context"
)

// Future is the pending result of work started with Go.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
	panic  any
}

// Go starts fn on its own goroutine under a guard span and returns
// immediately. The span is a child of the span current in ctx and stays
// current for fn however long it runs.
//
//	f := performance.Go(ctx, guard, "items.Service", "Warm", warm)
//	// ...
//	n, err := f.Await(ctx)
func Go[T any](ctx context.Context, g *Guard, qualifier, operation string, fn func(context.Context) (T, error), opts ...Option) *Future[T] {
	o := g.options(opts)
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.panic = r
			}
		}()
		f.result, f.err = run(ctx, g, qualifier, operation, "slow async function", fn, o)
	}()

	return f
}

// Await blocks until the work finishes or ctx is done. A panic in the work
// is re-raised in the awaiting goroutine. When ctx ends first, Await returns
// ctx.Err() and the work keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		if f.panic != nil {
			panic(f.panic)
		}
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed when the work has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
