package task

import (
	"context"
	"time"

	"github.com/l1jgo/horde/internal/core/system"
)

// Task is one cooperative unit of work. Step advances it by at most one
// suspension point and reports whether it has finished.
type Task interface {
	Step() bool
}

// Func adapts a plain function to Task.
type Func func() bool

func (f Func) Step() bool { return f() }

// Scheduler steps every pending task once per tick. Tasks spawned while a
// tick is running are first stepped on the following tick. Phase 1 (PreUpdate).
type Scheduler struct {
	tasks    []Task
	incoming []Task
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks:    make([]Task, 0, 64),
		incoming: make([]Task, 0, 16),
	}
}

func (s *Scheduler) Phase() system.Phase { return system.PhasePreUpdate }

func (s *Scheduler) Update(_ time.Duration) { s.Step() }

// Spawn queues t for its first step on the next Step call.
func (s *Scheduler) Spawn(t Task) {
	s.incoming = append(s.incoming, t)
}

// Pending returns the number of unfinished tasks.
func (s *Scheduler) Pending() int {
	return len(s.tasks) + len(s.incoming)
}

// Step advances every task once and drops the finished ones.
func (s *Scheduler) Step() {
	s.tasks = append(s.tasks, s.incoming...)
	for i := range s.incoming {
		s.incoming[i] = nil
	}
	s.incoming = s.incoming[:0]

	n := len(s.tasks)
	kept := s.tasks[:0]
	for i := 0; i < n; i++ {
		t := s.tasks[i]
		if !t.Step() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < n; i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
}

// RunUntilIdle pumps the scheduler every interval until no task is pending or
// ctx ends. Used before the game loop starts (pool warm-up).
func (s *Scheduler) RunUntilIdle(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.Step()
		if s.Pending() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Then runs fn on the loop goroutine once f resolves.
func Then[T any](s *Scheduler, f *Future[T], fn func(T)) {
	s.Spawn(Func(func() bool {
		v, ok := f.Poll()
		if !ok {
			return false
		}
		fn(v)
		return true
	}))
}

// Map derives a future whose value is fn applied to f's value on the loop goroutine.
func Map[T, U any](s *Scheduler, f *Future[T], fn func(T) U) *Future[U] {
	out, resolve := Promise[U]()
	Then(s, f, func(v T) { resolve(fn(v)) })
	return out
}
