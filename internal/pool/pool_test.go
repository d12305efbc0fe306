package pool

import (
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/task"
)

var park = component.Vec2{X: -1000, Y: -1000}

type fixture struct {
	world  *ecs.World
	stores *component.Stores
	tasks  *task.Scheduler
	pool   *Pool
}

func newFixture(maxSize int) *fixture {
	w := ecs.NewWorld()
	s := component.NewStores(w)
	ts := task.NewScheduler()
	return &fixture{world: w, stores: s, tasks: ts, pool: New(w, s, ts, maxSize, park, zap.NewNop())}
}

func (f *fixture) spawnEnemy(key string) ecs.EntityID {
	id := f.world.CreateEntity()
	f.stores.Enemies.Set(id, &component.Enemy{ArchetypeID: key, HP: 3, MaxHP: 10, Active: true})
	f.stores.Transforms.Set(id, &component.Transform{Pos: component.Vec2{X: 5, Y: 6}, Velocity: component.Vec2{X: 1}})
	return id
}

func TestReturnThenGetRoundTrip(t *testing.T) {
	f := newFixture(4)
	id := f.spawnEnemy("bat")
	if !f.pool.Return(id, "bat") {
		t.Fatal("return rejected")
	}
	got, ok := f.pool.Get("bat")
	if !ok || got != id {
		t.Fatalf("get = %v %v, want %v", got, ok, id)
	}
	e, _ := f.stores.Enemies.Get(id)
	if e.Active || e.HP != e.MaxHP {
		t.Fatalf("not reset: %+v", e)
	}
	tr, _ := f.stores.Transforms.Get(id)
	if tr.Pos != park || tr.Velocity != (component.Vec2{}) {
		t.Fatalf("not parked: %+v", tr)
	}
	if _, ok := f.pool.Get("bat"); ok {
		t.Fatal("pool should be empty")
	}
}

func TestGetIsFIFO(t *testing.T) {
	f := newFixture(4)
	a, b := f.spawnEnemy("bat"), f.spawnEnemy("bat")
	f.pool.Return(a, "bat")
	f.pool.Return(b, "bat")
	if got, _ := f.pool.Get("bat"); got != a {
		t.Fatalf("first get = %v, want %v", got, a)
	}
	if got, _ := f.pool.Get("bat"); got != b {
		t.Fatalf("second get = %v, want %v", got, b)
	}
}

func TestReturnBeyondCapacityDestroys(t *testing.T) {
	f := newFixture(2)
	ids := []ecs.EntityID{f.spawnEnemy("bat"), f.spawnEnemy("bat"), f.spawnEnemy("bat")}
	for i, id := range ids {
		kept := f.pool.Return(id, "bat")
		if kept != (i < 2) {
			t.Fatalf("return %d kept=%v", i, kept)
		}
	}
	if f.pool.Len("bat") != 2 {
		t.Fatalf("len = %d", f.pool.Len("bat"))
	}
	if f.world.Alive(ids[2]) {
		t.Fatal("overflow entity still alive")
	}
	f.world.FlushDestroyQueue()
	if f.stores.Enemies.Has(ids[2]) {
		t.Fatal("overflow entity kept components")
	}
}

func TestGetSkipsDestroyedEntries(t *testing.T) {
	f := newFixture(4)
	a, b := f.spawnEnemy("bat"), f.spawnEnemy("bat")
	f.pool.Return(a, "bat")
	f.pool.Return(b, "bat")
	f.world.MarkForDestruction(a)
	if got, ok := f.pool.Get("bat"); !ok || got != b {
		t.Fatalf("get = %v %v, want %v", got, ok, b)
	}
}

// scriptedProducer fails every slot listed in fail and otherwise builds an entity.
type scriptedProducer struct {
	f     *fixture
	fail  map[int]bool
	calls int
}

func (p *scriptedProducer) CreateForPool(key string) *task.Future[ecs.EntityID] {
	p.calls++
	if p.fail[p.calls] {
		return task.Resolved(ecs.EntityID(0))
	}
	id := p.f.spawnEnemy(key)
	return task.Resolved(id)
}

func TestWarmupSkipsFailures(t *testing.T) {
	f := newFixture(10)
	prod := &scriptedProducer{f: f, fail: map[int]bool{2: true, 4: true}}
	done := f.pool.Warmup("bat", 5, prod)

	ticks := 0
	for {
		f.tasks.Step()
		ticks++
		if _, ok := done.Poll(); ok || ticks > 50 {
			break
		}
	}
	added, ok := done.Poll()
	if !ok {
		t.Fatal("warmup never finished")
	}
	if added != 3 || f.pool.Len("bat") != 3 || prod.calls != 5 {
		t.Fatalf("added=%d len=%d calls=%d", added, f.pool.Len("bat"), prod.calls)
	}
	// One creation per tick: five creations need at least five ticks.
	if ticks < 5 {
		t.Fatalf("warmup finished in %d ticks", ticks)
	}
}

func TestWarmupRespectsCapacity(t *testing.T) {
	f := newFixture(2)
	prod := &scriptedProducer{f: f}
	done := f.pool.Warmup("bat", 6, prod)
	for i := 0; i < 20; i++ {
		f.tasks.Step()
	}
	added, ok := done.Poll()
	if !ok || added != 2 || prod.calls != 2 {
		t.Fatalf("added=%d ok=%v calls=%d", added, ok, prod.calls)
	}
}

func TestClearDestroysQueued(t *testing.T) {
	f := newFixture(4)
	a, b := f.spawnEnemy("bat"), f.spawnEnemy("ogre")
	f.pool.Return(a, "bat")
	f.pool.Return(b, "ogre")
	if got := f.pool.Keys(); len(got) != 2 || got[0] != "bat" || got[1] != "ogre" {
		t.Fatalf("keys = %v", got)
	}
	f.pool.Clear()
	if f.pool.Total() != 0 || f.world.Alive(a) || f.world.Alive(b) {
		t.Fatal("clear left entities")
	}
}
