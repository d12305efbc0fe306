// Package pool recycles enemy entities per archetype key so steady-state
// spawning does not allocate.
package pool

import (
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/task"
)

// Producer builds inert entities for warm-up. Implemented by factory.Factory.
type Producer interface {
	CreateForPool(key string) *task.Future[ecs.EntityID]
}

// Pool owns a bounded FIFO queue of inactive entities per key.
// Game loop only.
type Pool struct {
	world   *ecs.World
	stores  *component.Stores
	tasks   *task.Scheduler
	queues  map[string][]ecs.EntityID
	maxSize int
	park    component.Vec2
	log     *zap.Logger
}

// New creates a pool. park is where inert entities are moved, outside the arena.
func New(world *ecs.World, stores *component.Stores, tasks *task.Scheduler, maxSize int, park component.Vec2, log *zap.Logger) *Pool {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Pool{
		world:   world,
		stores:  stores,
		tasks:   tasks,
		queues:  make(map[string][]ecs.EntityID),
		maxSize: maxSize,
		park:    park,
		log:     log,
	}
}

// Get dequeues the oldest pooled entity for key. Entries destroyed while
// queued are dropped.
func (p *Pool) Get(key string) (ecs.EntityID, bool) {
	q := p.queues[key]
	for len(q) > 0 {
		id := q[0]
		q[0] = 0
		q = q[1:]
		if p.world.Alive(id) {
			p.queues[key] = q
			return id, true
		}
	}
	delete(p.queues, key)
	return 0, false
}

// Return resets id to its inert state and queues it under key. When the
// queue is full the entity is destroyed instead and Return reports false.
func (p *Pool) Return(id ecs.EntityID, key string) bool {
	if !p.world.Alive(id) {
		return false
	}
	if len(p.queues[key]) >= p.maxSize {
		p.world.MarkForDestruction(id)
		p.log.Debug("pool full, destroying", zap.String("key", key))
		return false
	}
	p.reset(id)
	p.queues[key] = append(p.queues[key], id)
	return true
}

func (p *Pool) reset(id ecs.EntityID) {
	if e, ok := p.stores.Enemies.Get(id); ok {
		e.Active = false
		e.HP = e.MaxHP
	}
	if tr, ok := p.stores.Transforms.Get(id); ok {
		tr.Pos = p.park
		tr.Velocity = component.Vec2{}
	}
}

// Warmup fills key's queue with up to count entities from producer, one
// creation at a time with at least one tick between them. Failed creations
// are skipped. The future resolves to the number of entities queued.
func (p *Pool) Warmup(key string, count int, producer Producer) *task.Future[int] {
	done, resolve := task.Promise[int]()
	added, started := 0, 0
	var pending *task.Future[ecs.EntityID]

	p.tasks.Spawn(task.Func(func() bool {
		if pending != nil {
			id, ok := pending.Poll()
			if !ok {
				return false
			}
			pending = nil
			switch {
			case id.IsZero() || !p.world.Alive(id):
				p.log.Warn("warmup creation failed, skipping slot", zap.String("key", key))
			case p.Return(id, key):
				added++
			}
		}
		if started >= count || p.Len(key) >= p.maxSize {
			p.log.Debug("pool warmed",
				zap.String("key", key), zap.Int("requested", count), zap.Int("added", added))
			resolve(added)
			return true
		}
		started++
		pending = producer.CreateForPool(key)
		return false
	}))
	return done
}

// Len returns the number of queued entities for key.
func (p *Pool) Len(key string) int {
	return len(p.queues[key])
}

// Total returns the number of queued entities across all keys.
func (p *Pool) Total() int {
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}

// Keys returns the keys with at least one queued entity, sorted.
func (p *Pool) Keys() []string {
	keys := make([]string, 0, len(p.queues))
	for k, q := range p.queues {
		if len(q) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clear destroys every queued entity.
func (p *Pool) Clear() {
	n := 0
	for k, q := range p.queues {
		for _, id := range q {
			p.world.MarkForDestruction(id)
			n++
		}
		delete(p.queues, k)
	}
	if n > 0 {
		p.log.Debug("pool cleared", zap.Int("destroyed", n))
	}
}
