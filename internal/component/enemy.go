package component

// Enemy is the per-instance state of a spawned (or pooled) enemy.
// Archetype data is copied in at spawn time so instances never share mutable state.
type Enemy struct {
	ArchetypeID string
	Tier        int
	HP          float64
	MaxHP       float64
	Speed       float64
	Damage      float64
	XP          float64

	// Active is false while the entity sits in a pool queue.
	Active bool
	// Synthetic marks entities built from catalog stats because no prefab loaded.
	Synthetic bool
	// Spawns counts how many times this instance has been handed out.
	Spawns int
}

// Body is the collision/render footprint resolved from the prefab.
type Body struct {
	Radius float64
	Sprite string
}
