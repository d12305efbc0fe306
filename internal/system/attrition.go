package system

import (
	"cmp"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/event"
	coresys "github.com/l1jgo/horde/internal/core/system"
	"github.com/l1jgo/horde/internal/world"
)

// EnemyReleaser takes enemies out of play.
type EnemyReleaser interface {
	Release(id ecs.EntityID) bool
	IsLive(id ecs.EntityID) bool
}

// AttritionSystem stands in for a real player: it kills enemies at a fixed
// rate and takes damage from every enemy still in play. The player is
// revived whenever a wave completes. Phase 3 (PostUpdate).
type AttritionSystem struct {
	player         *world.Player
	stores         *component.Stores
	enemies        EnemyReleaser
	killsPerSecond float64
	damageScale    float64
	log            *zap.Logger

	killAcc float64
	live    []ecs.EntityID
	// Kills counts enemies released by this system.
	Kills int
}

func NewAttritionSystem(player *world.Player, stores *component.Stores, enemies EnemyReleaser, bus *event.Bus, killsPerSecond, damageScale float64, log *zap.Logger) *AttritionSystem {
	s := &AttritionSystem{
		player:         player,
		stores:         stores,
		enemies:        enemies,
		killsPerSecond: killsPerSecond,
		damageScale:    damageScale,
		log:            log,
	}
	event.Subscribe(bus, func(e event.WaveCompleted) {
		if !s.player.Alive() {
			s.log.Info("player revived", zap.Int("after_wave", e.Wave))
		}
		s.player.Revive()
	})
	return s
}

func (s *AttritionSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *AttritionSystem) Update(dt time.Duration) {
	s.collect()
	if len(s.live) == 0 {
		s.killAcc = 0
		return
	}
	sec := dt.Seconds()

	var dps float64
	for _, id := range s.live {
		if e, ok := s.stores.Enemies.Get(id); ok {
			dps += e.Damage
		}
	}
	if s.player.Damage(dps * s.damageScale * sec) {
		s.log.Info("player died", zap.Int("enemies", len(s.live)), zap.Int("deaths", s.player.Deaths))
	}

	s.killAcc += s.killsPerSecond * sec
	for i := 0; s.killAcc >= 1 && i < len(s.live); i++ {
		s.killAcc--
		if s.enemies.Release(s.live[i]) {
			s.Kills++
		}
	}
	if s.killAcc > 1 {
		s.killAcc = 1
	}
}

// collect gathers live enemies ordered by entity slot.
func (s *AttritionSystem) collect() {
	s.live = s.live[:0]
	s.stores.Enemies.Each(func(id ecs.EntityID, e *component.Enemy) {
		if e.Active && s.enemies.IsLive(id) {
			s.live = append(s.live, id)
		}
	})
	slices.SortFunc(s.live, func(a, b ecs.EntityID) int {
		return cmp.Compare(a.Index(), b.Index())
	})
}
