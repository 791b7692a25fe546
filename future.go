package blocks

import (
	"context"
	"sync"
)

// Future is the pending result of an asynchronous transform
type Future struct {
	done   chan struct{}
	block  Block
	err    error
	cancel context.CancelFunc
	once   sync.Once
}

// Go runs fn in its own goroutine. fn gets a context that is cancelled by
// Cancel or by the parent.
func Go(ctx context.Context, fn func(ctx context.Context) (Block, error)) *Future {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go func() {
		defer close(f.done)
		f.block, f.err = fn(ctx)
		f.once.Do(f.cancel)
	}()
	return f
}

// Done is closed once the result is available
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait for the result. A cancelled ctx stops waiting, it does not cancel the
// transform.
func (f *Future) Wait(ctx context.Context) (Block, error) {
	select {
	case <-f.done:
		return f.block, f.err
	case <-ctx.Done():
		return Block{}, ctx.Err()
	}
}

// Cancel the transform. Calling it more than once or after completion has no
// effect, resources that were already created stay.
func (f *Future) Cancel() {
	f.once.Do(f.cancel)
}
