package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain feed sessions, file watcher
	PhasePreUpdate               // 1: dispatch last tick's events, poll async tasks
	PhaseUpdate                  // 2: spawn scheduling
	PhasePostUpdate              // 3: player driver, attrition
	PhaseOutput                  // 4: flush feed sessions
	PhasePersist                 // 5: telemetry flush
	PhaseCleanup                 // 6: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every per-tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
