package spawn

import (
	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/event"
	"github.com/l1jgo/horde/internal/data"
)

// PlanSummary describes a wave as it starts.
type PlanSummary struct {
	EnemyCount  int
	Budget      float64
	SpentBudget float64
	Duration    float64
	TierCounts  [data.TierCount]int
	OverBudget  int
	Multiplier  float64
}

// Outcome describes a wave as it closes.
type Outcome struct {
	Wave           int
	DurationSec    float64
	PlayerSurvived bool
	Spawned        int
	Leftover       int
	Budget         float64
	SpentBudget    float64
	MultiplierOld  float64
	MultiplierNew  float64
}

// Notifier receives wave lifecycle callbacks. Implementations must not call
// back into the Scheduler.
type Notifier interface {
	OnWaveStarted(wave int, s PlanSummary)
	OnEnemySpawned(wave int, id ecs.EntityID, archetypeID string, pos component.Vec2)
	OnWaveCompleted(o Outcome)
}

// BusNotifier forwards callbacks to the event bus; subscribers see them on
// the next tick.
type BusNotifier struct {
	Bus *event.Bus
}

func (n BusNotifier) OnWaveStarted(wave int, s PlanSummary) {
	event.Emit(n.Bus, event.WaveStarted{
		Wave:       wave,
		EnemyCount: s.EnemyCount,
		Budget:     s.Budget,
		Duration:   s.Duration,
		TierCounts: s.TierCounts,
		OverBudget: s.OverBudget,
		Multiplier: s.Multiplier,
	})
}

func (n BusNotifier) OnEnemySpawned(wave int, id ecs.EntityID, archetypeID string, pos component.Vec2) {
	event.Emit(n.Bus, event.EnemySpawned{
		Wave:        wave,
		EntityID:    id,
		ArchetypeID: archetypeID,
		X:           pos.X,
		Y:           pos.Y,
	})
}

func (n BusNotifier) OnWaveCompleted(o Outcome) {
	event.Emit(n.Bus, event.WaveCompleted{
		Wave:           o.Wave,
		DurationSec:    o.DurationSec,
		PlayerSurvived: o.PlayerSurvived,
		Spawned:        o.Spawned,
		Leftover:       o.Leftover,
		Budget:         o.Budget,
		SpentBudget:    o.SpentBudget,
		MultiplierOld:  o.MultiplierOld,
		MultiplierNew:  o.MultiplierNew,
	})
}

type nopNotifier struct{}

func (nopNotifier) OnWaveStarted(int, PlanSummary)                           {}
func (nopNotifier) OnEnemySpawned(int, ecs.EntityID, string, component.Vec2) {}
func (nopNotifier) OnWaveCompleted(Outcome)                                  {}
