// Package task models asynchronous work as single-assignment futures that the
// game loop polls once per tick. Producers may run on any goroutine; every
// continuation runs on the loop goroutine through Scheduler.
package task

import (
	"context"
	"sync"
)

// Future holds a value that becomes available later. Poll never blocks.
type Future[T any] struct {
	ch    chan T
	value T
	done  bool
}

// Promise returns a pending future and its resolver. The resolver is safe to
// call from any goroutine; only the first call has an effect.
func Promise[T any]() (*Future[T], func(T)) {
	f := &Future[T]{ch: make(chan T, 1)}
	var once sync.Once
	return f, func(v T) {
		once.Do(func() { f.ch <- v })
	}
}

// Resolved returns a future that is already complete.
func Resolved[T any](v T) *Future[T] {
	return &Future[T]{value: v, done: true}
}

// Go runs fn on a new goroutine. A panic inside fn resolves the future to the
// zero value instead of taking the process down.
func Go[T any](fn func() T) *Future[T] {
	f, resolve := Promise[T]()
	go func() {
		defer func() {
			if recover() != nil {
				var zero T
				resolve(zero)
			}
		}()
		resolve(fn())
	}()
	return f
}

// Poll reports the value and whether it is ready. Loop goroutine only.
func (f *Future[T]) Poll() (T, bool) {
	if !f.done {
		select {
		case v := <-f.ch:
			f.value = v
			f.done = true
		default:
		}
	}
	return f.value, f.done
}

// Await blocks until the future resolves or ctx ends. Only use it for futures
// resolved off the loop goroutine; a future fed by a Scheduler continuation
// needs the scheduler pumped instead (see Scheduler.RunUntilIdle).
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	if v, ok := f.Poll(); ok {
		return v, nil
	}
	select {
	case v := <-f.ch:
		f.value = v
		f.done = true
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
