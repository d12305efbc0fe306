package factory

import (
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/event"
	"github.com/l1jgo/horde/internal/core/task"
	"github.com/l1jgo/horde/internal/data"
	"github.com/l1jgo/horde/internal/pool"
)

var park = component.Vec2{X: -500, Y: -500}

// fakeAssets serves prefabs for the keys in sprites; other keys resolve to zero.
// When deferred is set, results are held until release is called.
type fakeAssets struct {
	world    *ecs.World
	stores   *component.Stores
	sprites  map[string]string
	deferred bool
	held     []func()
	calls    []string
}

func (a *fakeAssets) InstantiateAsync(key string, pos component.Vec2) *task.Future[ecs.EntityID] {
	a.calls = append(a.calls, key)
	sprite, ok := a.sprites[key]
	build := func() ecs.EntityID {
		if !ok {
			return 0
		}
		id := a.world.CreateEntity()
		a.stores.Transforms.Set(id, &component.Transform{Pos: pos})
		a.stores.Bodies.Set(id, &component.Body{Sprite: sprite})
		return id
	}
	if !a.deferred {
		return task.Resolved(build())
	}
	f, resolve := task.Promise[ecs.EntityID]()
	a.held = append(a.held, func() { resolve(build()) })
	return f
}

func (a *fakeAssets) release() {
	for _, fn := range a.held {
		fn()
	}
	a.held = nil
}

type fixture struct {
	world   *ecs.World
	stores  *component.Stores
	tasks   *task.Scheduler
	pool    *pool.Pool
	assets  *fakeAssets
	bus     *event.Bus
	factory *Factory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := data.NewEnemyCatalog([]data.EnemyArchetype{
		{ID: "bat", Tier: 1, DifficultyCost: 1, Stats: data.Stats{MaxHP: 8, Speed: 90, Radius: 5}},
		{ID: "ogre", Tier: 3, DifficultyCost: 6, Stats: data.Stats{MaxHP: 80, Speed: 30, Radius: 14}},
	})
	if err != nil {
		t.Fatal(err)
	}
	w := ecs.NewWorld()
	s := component.NewStores(w)
	ts := task.NewScheduler()
	p := pool.New(w, s, ts, 8, park, zap.NewNop())
	a := &fakeAssets{world: w, stores: s, sprites: map[string]string{"enemies/ogre": "ogre.png"}}
	bus := event.NewBus()
	f := New(Deps{World: w, Stores: s, Pool: p, Assets: a, Catalog: cat, Tasks: ts, Bus: bus, Park: park, Log: zap.NewNop()})
	return &fixture{world: w, stores: s, tasks: ts, pool: p, assets: a, bus: bus, factory: f}
}

func mustResolve(t *testing.T, fx *fixture, fut *task.Future[ecs.EntityID]) ecs.EntityID {
	t.Helper()
	for i := 0; i < 10; i++ {
		if id, ok := fut.Poll(); ok {
			return id
		}
		fx.tasks.Step()
	}
	t.Fatal("future did not resolve")
	return 0
}

func TestCreateSynthesizesWithoutPrefab(t *testing.T) {
	fx := newFixture(t)
	pos := component.Vec2{X: 10, Y: 20}
	id := mustResolve(t, fx, fx.factory.Create("bat", pos))

	e, ok := fx.stores.Enemies.Get(id)
	if !ok || !e.Synthetic || !e.Active || e.HP != 8 || e.ArchetypeID != "bat" {
		t.Fatalf("enemy = %+v", e)
	}
	if tr, _ := fx.stores.Transforms.Get(id); tr.Pos != pos {
		t.Fatalf("pos = %+v", tr.Pos)
	}
	if b, _ := fx.stores.Bodies.Get(id); b.Radius != 5 {
		t.Fatalf("radius = %v", b.Radius)
	}
	if !fx.factory.IsLive(id) {
		t.Fatal("not live")
	}
	if len(fx.assets.calls) != 1 || fx.assets.calls[0] != "enemies/bat" {
		t.Fatalf("asset calls = %v", fx.assets.calls)
	}
}

func TestCreateFromPrefabAsync(t *testing.T) {
	fx := newFixture(t)
	fx.assets.deferred = true
	fut := fx.factory.Create("ogre", component.Vec2{X: 1})

	fx.tasks.Step()
	if _, ok := fut.Poll(); ok {
		t.Fatal("resolved before the asset loaded")
	}
	fx.assets.release()
	id := mustResolve(t, fx, fut)

	e, _ := fx.stores.Enemies.Get(id)
	if e.Synthetic || !e.Active || e.MaxHP != 80 {
		t.Fatalf("enemy = %+v", e)
	}
	b, _ := fx.stores.Bodies.Get(id)
	if b.Sprite != "ogre.png" || b.Radius != 14 {
		t.Fatalf("body = %+v", b)
	}
}

func TestReleaseThenCreateReusesPooled(t *testing.T) {
	fx := newFixture(t)
	var released []event.EnemyReleased
	event.Subscribe(fx.bus, func(e event.EnemyReleased) { released = append(released, e) })

	id := mustResolve(t, fx, fx.factory.Create("bat", component.Vec2{}))
	e, _ := fx.stores.Enemies.Get(id)
	e.HP = 1

	if !fx.factory.Release(id) {
		t.Fatal("release failed")
	}
	if fx.factory.IsLive(id) {
		t.Fatal("released enemy still live")
	}
	if fx.factory.Release(id) {
		t.Fatal("double release accepted")
	}
	fx.bus.SwapBuffers()
	fx.bus.DispatchAll()
	if len(released) != 1 || !released[0].Pooled || released[0].ArchetypeID != "bat" {
		t.Fatalf("released events = %+v", released)
	}

	calls := len(fx.assets.calls)
	pos := component.Vec2{X: 7, Y: 7}
	fut := fx.factory.Create("bat", pos)
	again, ok := fut.Poll()
	if !ok || again != id {
		t.Fatalf("reuse = %v %v, want %v", again, ok, id)
	}
	if len(fx.assets.calls) != calls {
		t.Fatal("asset service hit on pool reuse")
	}
	if e.HP != e.MaxHP || !e.Active || e.Spawns != 2 {
		t.Fatalf("reused enemy = %+v", e)
	}
	if tr, _ := fx.stores.Transforms.Get(id); tr.Pos != pos {
		t.Fatalf("reused pos = %+v", tr.Pos)
	}
}

func TestUnknownArchetypeUsesDefault(t *testing.T) {
	fx := newFixture(t)
	id := mustResolve(t, fx, fx.factory.Create("lich", component.Vec2{}))
	if e, _ := fx.stores.Enemies.Get(id); e.ArchetypeID != "bat" {
		t.Fatalf("archetype = %s, want bat", e.ArchetypeID)
	}
}

func TestCreateForPoolIsInert(t *testing.T) {
	fx := newFixture(t)
	id := mustResolve(t, fx, fx.factory.CreateForPool("ogre"))
	e, _ := fx.stores.Enemies.Get(id)
	if e.Active || e.HP != e.MaxHP || e.MaxHP != 80 {
		t.Fatalf("enemy = %+v", e)
	}
	if tr, _ := fx.stores.Transforms.Get(id); tr.Pos != park {
		t.Fatalf("not parked: %+v", tr.Pos)
	}
	if fx.factory.IsLive(id) {
		t.Fatal("pool entity reported live")
	}
}

func TestWarmupThroughFactory(t *testing.T) {
	fx := newFixture(t)
	done := fx.pool.Warmup("bat", 3, fx.factory)
	for i := 0; i < 20; i++ {
		fx.tasks.Step()
	}
	if n, ok := done.Poll(); !ok || n != 3 {
		t.Fatalf("warmup = %d %v", n, ok)
	}
	if fx.pool.Len("bat") != 3 {
		t.Fatalf("pool len = %d", fx.pool.Len("bat"))
	}
}
