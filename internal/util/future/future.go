package future

import (
	"context"
	"sync"
	"time"
)

type result[T any] struct {
	v   T
	err error
}

// Future holds the outcome of one evaluation run. It completes exactly once.
type Future[T any] struct {
	doneChannel chan struct{}
	res         result[T]
	once        sync.Once
}

// New starts fn on its own goroutine.
func New[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{doneChannel: make(chan struct{})}
	go func() {
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// FromValue returns a Future that is already complete.
func FromValue[T any](v T) *Future[T] {
	f := &Future[T]{doneChannel: make(chan struct{})}
	f.complete(v, nil)
	return f
}

func FromError[T any](err error) *Future[T] {
	f := &Future[T]{doneChannel: make(chan struct{})}
	var zero T
	f.complete(zero, err)
	return f
}

func (f *Future[T]) Await() (T, error) {
	<-f.doneChannel
	return f.res.v, f.res.err
}

// AwaitTimeout waits up to d. ok is false when the deadline passed first;
// the goroutine behind the Future keeps running in that case.
func (f *Future[T]) AwaitTimeout(d time.Duration) (v T, err error, ok bool) {
	if d <= 0 {
		v, err = f.Await()
		return v, err, true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.doneChannel:
		return f.res.v, f.res.err, true
	case <-timer.C:
		return v, nil, false
	}
}

// AwaitContext waits for completion or for ctx to be done.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.doneChannel:
		return f.res.v, f.res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) Done() <-chan struct{} { return f.doneChannel }

// All waits for every future and keeps their order. Unlike a fail-fast join
// it never drops a result: errs[i] is the error of futures[i].
func All[T any](futures ...*Future[T]) ([]T, []error) {
	values := make([]T, len(futures))
	errs := make([]error, len(futures))
	for i, fut := range futures {
		values[i], errs[i] = fut.Await()
	}
	return values, errs
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.res = result[T]{v: v, err: err}
		close(f.doneChannel)
	})
}
