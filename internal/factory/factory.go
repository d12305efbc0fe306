// Package factory creates enemy entities: pooled instances first, then
// prefab instantiation, then a synthetic entity built from catalog stats.
package factory

import (
	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/asset"
	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/event"
	"github.com/l1jgo/horde/internal/core/task"
	"github.com/l1jgo/horde/internal/data"
	"github.com/l1jgo/horde/internal/pool"
)

// PrefabKey is the asset key of an archetype's prefab.
func PrefabKey(archetypeID string) string {
	return "enemies/" + archetypeID
}

// Deps wires a Factory. Assets and Bus may be nil.
type Deps struct {
	World   *ecs.World
	Stores  *component.Stores
	Pool    *pool.Pool
	Assets  asset.Service
	Catalog *data.EnemyCatalog
	Tasks   *task.Scheduler
	Bus     *event.Bus
	Park    component.Vec2
	Log     *zap.Logger
}

// Factory builds and recycles enemies. Game loop only.
type Factory struct {
	world   *ecs.World
	stores  *component.Stores
	pool    *pool.Pool
	assets  asset.Service
	catalog *data.EnemyCatalog
	tasks   *task.Scheduler
	bus     *event.Bus
	park    component.Vec2
	log     *zap.Logger
}

func New(d Deps) *Factory {
	f := &Factory{
		world:  d.World,
		stores: d.Stores,
		pool:   d.Pool,
		assets: d.Assets,
		tasks:  d.Tasks,
		bus:    d.Bus,
		park:   d.Park,
		log:    d.Log,
	}
	f.SetCatalog(d.Catalog)
	return f
}

// SetCatalog swaps the archetype source. Nil selects the fallback catalog.
func (f *Factory) SetCatalog(c *data.EnemyCatalog) {
	if c == nil || c.Count() == 0 {
		c = data.FallbackCatalog()
	}
	f.catalog = c
}

// Create returns a live enemy of the archetype at pos. Pooled instances
// resolve immediately.
func (f *Factory) Create(archetypeID string, pos component.Vec2) *task.Future[ecs.EntityID] {
	arch := f.archetype(archetypeID)
	if id, ok := f.pool.Get(arch.ID); ok {
		f.activate(id, arch, pos)
		f.log.Debug("enemy reused", zap.String("archetype", arch.ID), zap.Uint64("id", uint64(id)))
		return task.Resolved(id)
	}
	return f.build(arch, pos, true)
}

// CreateForPool builds an inactive, parked enemy for pool warm-up.
func (f *Factory) CreateForPool(archetypeID string) *task.Future[ecs.EntityID] {
	return f.build(f.archetype(archetypeID), f.park, false)
}

// Release takes a live enemy out of play and hands it to the pool. It
// reports false when id is not a tracked enemy.
func (f *Factory) Release(id ecs.EntityID) bool {
	e, ok := f.stores.Enemies.Get(id)
	if !ok || !f.world.Alive(id) || !e.Active {
		return false
	}
	key := e.ArchetypeID
	pooled := f.pool.Return(id, key)
	if f.bus != nil {
		event.Emit(f.bus, event.EnemyReleased{EntityID: id, ArchetypeID: key, Pooled: pooled})
	}
	return true
}

// Destroy removes an enemy permanently.
func (f *Factory) Destroy(id ecs.EntityID) {
	f.world.MarkForDestruction(id)
}

// IsLive reports whether id is an enemy currently in play.
func (f *Factory) IsLive(id ecs.EntityID) bool {
	if !f.world.Alive(id) {
		return false
	}
	e, ok := f.stores.Enemies.Get(id)
	return ok && e.Active
}

func (f *Factory) archetype(id string) *data.EnemyArchetype {
	if a := f.catalog.Get(id); a != nil {
		return a
	}
	a := f.catalog.Default()
	f.log.Warn("unknown archetype, using fallback",
		zap.String("archetype", id), zap.String("fallback", a.ID))
	return a
}

func (f *Factory) build(arch *data.EnemyArchetype, pos component.Vec2, active bool) *task.Future[ecs.EntityID] {
	finish := func(id ecs.EntityID) ecs.EntityID {
		synthetic := false
		if id.IsZero() || !f.world.Alive(id) {
			id = f.synthesize(arch, pos)
			synthetic = true
		}
		f.init(id, arch, synthetic)
		if active {
			f.activate(id, arch, pos)
		} else {
			f.deactivate(id)
		}
		return id
	}

	if f.assets == nil {
		return task.Resolved(finish(0))
	}
	loaded := f.assets.InstantiateAsync(PrefabKey(arch.ID), pos)
	if id, ok := loaded.Poll(); ok {
		return task.Resolved(finish(id))
	}
	return task.Map(f.tasks, loaded, finish)
}

// synthesize builds a bare entity from catalog stats when no prefab exists.
func (f *Factory) synthesize(arch *data.EnemyArchetype, pos component.Vec2) ecs.EntityID {
	id := f.world.CreateEntity()
	f.stores.Transforms.Set(id, &component.Transform{Pos: pos})
	f.stores.Bodies.Set(id, &component.Body{Radius: arch.Stats.Radius})
	f.log.Debug("enemy synthesized", zap.String("archetype", arch.ID))
	return id
}

func (f *Factory) init(id ecs.EntityID, arch *data.EnemyArchetype, synthetic bool) {
	e := &component.Enemy{Synthetic: synthetic}
	applyStats(e, arch)
	f.stores.Enemies.Set(id, e)
	if _, ok := f.stores.Transforms.Get(id); !ok {
		f.stores.Transforms.Set(id, &component.Transform{})
	}
	if b, ok := f.stores.Bodies.Get(id); !ok {
		f.stores.Bodies.Set(id, &component.Body{Radius: arch.Stats.Radius})
	} else if b.Radius <= 0 {
		b.Radius = arch.Stats.Radius
	}
}

// activate reinitialises per-instance state from the archetype and puts the
// enemy in play at pos.
func (f *Factory) activate(id ecs.EntityID, arch *data.EnemyArchetype, pos component.Vec2) {
	e, ok := f.stores.Enemies.Get(id)
	if !ok {
		return
	}
	applyStats(e, arch)
	e.Active = true
	e.Spawns++
	if tr, ok := f.stores.Transforms.Get(id); ok {
		tr.Pos = pos
		tr.Velocity = component.Vec2{}
	}
}

func applyStats(e *component.Enemy, arch *data.EnemyArchetype) {
	e.ArchetypeID = arch.ID
	e.Tier = arch.Tier
	e.MaxHP = arch.Stats.MaxHP
	e.HP = arch.Stats.MaxHP
	e.Speed = arch.Stats.Speed
	e.Damage = arch.Stats.Damage
	e.XP = arch.Stats.XP
}

func (f *Factory) deactivate(id ecs.EntityID) {
	if e, ok := f.stores.Enemies.Get(id); ok {
		e.Active = false
	}
	if tr, ok := f.stores.Transforms.Get(id); ok {
		tr.Pos = f.park
		tr.Velocity = component.Vec2{}
	}
}
