package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(
		recorder{"cleanup", PhaseCleanup, &log},
		recorder{"spawn", PhaseUpdate, &log},
		recorder{"tasks", PhasePreUpdate, &log},
		recorder{"attrition", PhaseUpdate, &log},
	)
	r.Tick(200 * time.Millisecond)

	want := []string{"tasks", "spawn", "attrition", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("got %v, want %v", log, want)
		}
	}
	if r.Ticks() != 1 {
		t.Fatalf("ticks = %d", r.Ticks())
	}
}
