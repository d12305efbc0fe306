package task

import (
	"context"
	"testing"
	"time"
)

func TestPromiseResolvesOnce(t *testing.T) {
	f, resolve := Promise[int]()
	if _, ok := f.Poll(); ok {
		t.Fatalf("fresh promise reported ready")
	}
	resolve(3)
	resolve(9)
	v, ok := f.Poll()
	if !ok || v != 3 {
		t.Fatalf("got (%d, %v), want (3, true)", v, ok)
	}
	// Polling again keeps the cached value.
	if v, _ := f.Poll(); v != 3 {
		t.Fatalf("cached value lost: %d", v)
	}
}

func TestGoRecoversPanic(t *testing.T) {
	f := Go(func() *int { panic("boom") })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if v != nil {
		t.Fatalf("expected zero value after panic")
	}
}

func TestAwaitHonoursContext(t *testing.T) {
	f, _ := Promise[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Await(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestSchedulerDefersSpawnedTasks(t *testing.T) {
	s := NewScheduler()
	steps := 0
	s.Spawn(Func(func() bool {
		steps++
		return steps == 3
	}))
	for i := 0; i < 5; i++ {
		s.Step()
	}
	if steps != 3 {
		t.Fatalf("steps = %d, want 3", steps)
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d", s.Pending())
	}
}

func TestThenAndMapRunOnStep(t *testing.T) {
	s := NewScheduler()
	src := Resolved(20)
	doubled := Map(s, src, func(v int) int { return v * 2 })

	var seen int
	Then(s, doubled, func(v int) { seen = v })

	if _, ok := doubled.Poll(); ok {
		t.Fatalf("map resolved before the scheduler stepped")
	}
	s.Step()
	s.Step()
	if seen != 40 {
		t.Fatalf("seen = %d, want 40", seen)
	}
	if s.Pending() != 0 {
		t.Fatalf("pending = %d", s.Pending())
	}
}

func TestRunUntilIdle(t *testing.T) {
	s := NewScheduler()
	f := Go(func() int { return 1 })
	got := 0
	Then(s, f, func(v int) { got = v })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.RunUntilIdle(ctx, time.Millisecond); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != 1 {
		t.Fatalf("continuation did not run")
	}
}
