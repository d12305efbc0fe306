// Package wave turns a wave number into a concrete spawn plan.
package wave

import "github.com/l1jgo/horde/internal/data"

// Entry is one enemy to spawn. Offset is the fraction of the wave duration
// at which it becomes due, in [0, 1).
type Entry struct {
	ArchetypeID string
	Tier        int
	Cost        float64
	Offset      float64
	// OverBudget is set when no archetype of the slot's tier fit the remaining
	// budget and the entry was picked anyway.
	OverBudget bool
}

// Plan is the composed content of one wave. Entries are sorted by Offset.
type Plan struct {
	WaveNumber          int
	TotalEnemyCount     int
	DifficultyBudget    float64
	SpentBudget         float64
	SpawnInterval       float64
	WaveDurationSeconds float64
	TierCounts          [data.TierCount]int
	Entries             []Entry
}

// OverBudgetCount returns how many entries overran the budget.
func (p *Plan) OverBudgetCount() int {
	n := 0
	for i := range p.Entries {
		if p.Entries[i].OverBudget {
			n++
		}
	}
	return n
}
