package ecs

// World is the top-level ECS container. It owns the ID allocator, the component
// registry, and a deferred destruction queue flushed by CleanupSystem each tick.
//
// An entity marked for destruction stops being Alive immediately; its
// components are only dropped when the queue is flushed.
type World struct {
	ids          *IDAllocator
	registry     *Registry
	destroyQueue []EntityID
	doomed       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		ids:          NewIDAllocator(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		doomed:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.ids.Create()
}

func (w *World) Alive(id EntityID) bool {
	if _, ok := w.doomed[id]; ok {
		return false
	}
	return w.ids.Alive(id)
}

// Count returns the number of entities that are alive and not queued for destruction.
func (w *World) Count() int {
	return w.ids.Live() - len(w.doomed)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
// Marking a dead or already queued entity is a no-op.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.Alive(id) {
		return
	}
	w.doomed[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestruction returns how many entities wait for the next flush.
func (w *World) PendingDestruction() int {
	return len(w.destroyQueue)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		w.ids.Destroy(id)
		delete(w.doomed, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}
