package component

import "github.com/l1jgo/horde/internal/core/ecs"

// Stores groups the component stores used by the horde simulation.
type Stores struct {
	Transforms *ecs.PtrComponentStore[Transform]
	Enemies    *ecs.PtrComponentStore[Enemy]
	Bodies     *ecs.PtrComponentStore[Body]
}

// NewStores creates the stores and registers them with w so destroyed
// entities lose all of their components.
func NewStores(w *ecs.World) *Stores {
	s := &Stores{
		Transforms: ecs.NewPtrComponentStore[Transform](),
		Enemies:    ecs.NewPtrComponentStore[Enemy](),
		Bodies:     ecs.NewPtrComponentStore[Body](),
	}
	w.Registry().Register(s.Transforms, s.Enemies, s.Bodies)
	return s
}
