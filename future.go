package tinydi

import (
	"context"
	"fmt"
)

var _ Eventual = new(Future)

// Eventual is a value that may not be available yet.
// Values implementing it are awaited before they are handed out by a Context.
type Eventual interface {
	Await(ctx context.Context) (any, error)
}

// Future holds the outcome of a computation that settles exactly once.
// It can be awaited any number of times from any number of goroutines.
type Future struct {
	done  chan struct{}
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Runs fn in a new goroutine. A panic in fn rejects the Future.
func Async(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := newFuture()

	go func() {
		var (
			value any
			err   error
		)

		defer func() {
			if rp := recover(); rp != nil {
				value, err = nil, fmt.Errorf(recoveredPanicError, rp)
			}

			f.settle(value, err)
		}()

		value, err = fn(ctx)
	}()

	return f
}

func Resolved(value any) *Future {
	f := newFuture()
	f.settle(value, nil)

	return f
}

func Rejected(err error) *Future {
	f := newFuture()
	f.settle(nil, err)

	return f
}

func (f *Future) settle(value any, err error) {
	f.value, f.err = value, err
	close(f.done)
}

// Done is closed once the Future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx is done.
// Cancelling ctx stops waiting but does not stop the computation.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	if ctx == nil {
		return nil, ErrNilContext
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// unwrap awaits value until it is no longer Eventual.
func unwrap(ctx context.Context, value any) (any, error) {
	for {
		eventual, ok := value.(Eventual)
		if !ok {
			return value, nil
		}

		var err error
		if value, err = eventual.Await(ctx); err != nil {
			return nil, err
		}
	}
}
