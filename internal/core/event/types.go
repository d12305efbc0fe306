package event

import "github.com/l1jgo/horde/internal/core/ecs"

// WaveStarted fires when a wave plan becomes active.
type WaveStarted struct {
	Wave       int
	EnemyCount int
	Budget     float64
	Duration   float64 // seconds
	TierCounts [5]int
	OverBudget int // entries selected through the affordability fallback
	Multiplier float64
}

// EnemySpawned fires when a creation request completes and the enemy is tracked.
type EnemySpawned struct {
	Wave        int
	EntityID    ecs.EntityID
	ArchetypeID string
	X, Y        float64
}

// WaveCompleted fires after the outcome is reported to the difficulty controller.
type WaveCompleted struct {
	Wave           int
	DurationSec    float64
	PlayerSurvived bool
	Spawned        int
	Leftover       int // enemies still alive when the wave closed
	Budget         float64
	SpentBudget    float64
	MultiplierOld  float64
	MultiplierNew  float64
}

// EnemyReleased fires when a live enemy leaves play and goes back to its pool.
type EnemyReleased struct {
	EntityID    ecs.EntityID
	ArchetypeID string
	Pooled      bool
}
