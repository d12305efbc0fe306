// Package spawn drives waves: it asks the composer for a plan, releases its
// entries over the wave duration, tracks the enemies that make it into play,
// and reports each wave's outcome to the difficulty controller.
package spawn

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/component"
	"github.com/l1jgo/horde/internal/core/ecs"
	"github.com/l1jgo/horde/internal/core/system"
	"github.com/l1jgo/horde/internal/core/task"
	"github.com/l1jgo/horde/internal/data"
	"github.com/l1jgo/horde/internal/pool"
	"github.com/l1jgo/horde/internal/wave"
)

// State of the scheduler's wave state machine.
type State uint8

const (
	StateIdle State = iota
	StateWaveActive
)

func (s State) String() string {
	if s == StateWaveActive {
		return "wave_active"
	}
	return "idle"
}

// Planner composes wave plans.
type Planner interface {
	Generate(waveNumber int) *wave.Plan
	Catalog() *data.EnemyCatalog
}

// EntityFactory creates and retires enemies.
type EntityFactory interface {
	Create(archetypeID string, pos component.Vec2) *task.Future[ecs.EntityID]
	Release(id ecs.EntityID) bool
	Destroy(id ecs.EntityID)
}

// LivenessQuery reports whether a tracked enemy is still in play.
type LivenessQuery interface {
	IsLive(id ecs.EntityID) bool
}

// PlayerStatus reports whether the player is alive at wave end.
type PlayerStatus interface {
	Alive() bool
}

// Difficulty receives wave outcomes.
type Difficulty interface {
	RecordOutcome(waveTime float64, survived bool)
	Reset()
	Multiplier() float64
}

// Pools is the warm-up and teardown surface of the entity pool.
type Pools interface {
	Warmup(key string, count int, producer pool.Producer) *task.Future[int]
	Clear()
}

// Deps wires a Scheduler. Player and Notifier may be nil.
type Deps struct {
	Planner            Planner
	Factory            EntityFactory
	Liveness           LivenessQuery
	Pools              Pools
	Producer           pool.Producer
	Difficulty         Difficulty
	Tasks              *task.Scheduler
	Player             PlayerStatus
	Notifier           Notifier
	Arena              Arena
	WarmupPerArchetype int
	Rand               *rand.Rand
	Log                *zap.Logger
}

// Scheduler is the wave state machine. It runs in the Update phase.
// All methods are game loop only.
type Scheduler struct {
	d   Deps
	rng *rand.Rand
	log *zap.Logger

	state   State
	enabled bool

	waveNumber int
	plan       *wave.Plan
	next       int     // index of the next plan entry to request
	timer      float64 // seconds into the current wave
	spawned    int     // creations confirmed this wave

	active   map[ecs.EntityID]struct{}
	inFlight int
	// generation is bumped by StopSpawning and Cleanup; completions carrying
	// an older value are discarded.
	generation uint64
}

func NewScheduler(d Deps) *Scheduler {
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(1))
	}
	return &Scheduler{
		d:          d,
		rng:        d.Rand,
		log:        d.Log,
		waveNumber: 1,
		active:     make(map[ecs.EntityID]struct{}, 128),
	}
}

func (s *Scheduler) Phase() system.Phase { return system.PhaseUpdate }

// Initialize warms the pool for every catalog archetype and pumps the task
// scheduler until warm-up finishes or ctx ends. A warm-up timeout is
// returned but leaves the scheduler usable.
func (s *Scheduler) Initialize(ctx context.Context) error {
	cat := s.d.Planner.Catalog()
	if cat.IsFallback() {
		s.log.Warn("enemy catalog missing, running with fallback archetype")
	}
	if s.d.WarmupPerArchetype <= 0 || s.d.Pools == nil || s.d.Producer == nil {
		return nil
	}

	futures := make([]*task.Future[int], 0, cat.Count())
	for _, a := range cat.All() {
		futures = append(futures, s.d.Pools.Warmup(a.ID, s.d.WarmupPerArchetype, s.d.Producer))
	}
	err := s.d.Tasks.RunUntilIdle(ctx, time.Millisecond)

	total := 0
	for _, f := range futures {
		if n, ok := f.Poll(); ok {
			total += n
		}
	}
	s.log.Info("pools warmed", zap.Int("archetypes", len(futures)), zap.Int("entities", total))
	if err != nil {
		return fmt.Errorf("pool warmup: %w", err)
	}
	return nil
}

// StartSpawning enables spawning. From Idle it resumes the unfinished plan,
// or composes the current wave if there is none.
func (s *Scheduler) StartSpawning() {
	if s.enabled {
		return
	}
	s.enabled = true
	if s.state == StateIdle {
		if s.plan == nil {
			s.beginWave()
		}
		s.state = StateWaveActive
	}
	s.log.Info("spawning started", zap.Int("wave", s.waveNumber))
}

// StopSpawning halts dequeue and wave advancement. Tracked enemies stay
// tracked; outstanding creation requests are discarded when they complete.
func (s *Scheduler) StopSpawning() {
	s.enabled = false
	s.state = StateIdle
	s.generation++
	s.inFlight = 0
	s.log.Info("spawning stopped", zap.Int("wave", s.waveNumber), zap.Int("active", len(s.active)))
}

// Cleanup stops spawning, destroys tracked enemies, empties the pools and
// resets difficulty. The next StartSpawning begins at wave 1.
func (s *Scheduler) Cleanup() {
	s.StopSpawning()
	for id := range s.active {
		s.d.Factory.Destroy(id)
	}
	n := len(s.active)
	clear(s.active)
	if s.d.Pools != nil {
		s.d.Pools.Clear()
	}
	s.d.Difficulty.Reset()
	s.waveNumber = 1
	s.plan = nil
	s.next = 0
	s.timer = 0
	s.spawned = 0
	s.log.Info("spawner cleaned up", zap.Int("destroyed", n))
}

func (s *Scheduler) Update(dt time.Duration) {
	if !s.enabled || s.state != StateWaveActive || s.plan == nil {
		return
	}

	for id := range s.active {
		if !s.d.Liveness.IsLive(id) {
			delete(s.active, id)
		}
	}

	s.timer += dt.Seconds()
	duration := s.plan.WaveDurationSeconds
	progress := 1.0
	if duration > 0 {
		progress = s.timer / duration
	}

	entries := s.plan.Entries
	for s.next < len(entries) && entries[s.next].Offset <= progress {
		s.request(entries[s.next])
		s.next++
	}

	if s.next >= len(entries) &&
		((len(s.active) == 0 && s.inFlight == 0) || s.timer >= duration) {
		s.completeWave()
	}
}

func (s *Scheduler) request(e wave.Entry) {
	pos := s.d.Arena.EdgePoint(s.rng)
	gen, waveNumber := s.generation, s.waveNumber
	s.inFlight++

	f := s.d.Factory.Create(e.ArchetypeID, pos)
	if id, ok := f.Poll(); ok {
		s.onCreated(gen, waveNumber, id, e.ArchetypeID, pos)
		return
	}
	task.Then(s.d.Tasks, f, func(id ecs.EntityID) {
		s.onCreated(gen, waveNumber, id, e.ArchetypeID, pos)
	})
}

func (s *Scheduler) onCreated(gen uint64, waveNumber int, id ecs.EntityID, archetypeID string, pos component.Vec2) {
	if gen != s.generation {
		if !id.IsZero() {
			s.d.Factory.Release(id)
		}
		s.log.Debug("stale spawn discarded", zap.String("archetype", archetypeID))
		return
	}
	s.inFlight--
	if id.IsZero() {
		s.log.Warn("enemy creation failed", zap.String("archetype", archetypeID))
		return
	}
	s.active[id] = struct{}{}
	s.spawned++
	s.d.Notifier.OnEnemySpawned(waveNumber, id, archetypeID, pos)
}

func (s *Scheduler) beginWave() {
	p := s.d.Planner.Generate(s.waveNumber)
	s.plan = p
	s.next = 0
	s.timer = 0
	s.spawned = 0

	s.d.Notifier.OnWaveStarted(p.WaveNumber, PlanSummary{
		EnemyCount:  p.TotalEnemyCount,
		Budget:      p.DifficultyBudget,
		SpentBudget: p.SpentBudget,
		Duration:    p.WaveDurationSeconds,
		TierCounts:  p.TierCounts,
		OverBudget:  p.OverBudgetCount(),
		Multiplier:  s.d.Difficulty.Multiplier(),
	})
	s.log.Info("wave started",
		zap.Int("wave", p.WaveNumber),
		zap.Int("enemies", p.TotalEnemyCount),
		zap.Float64("budget", p.DifficultyBudget),
		zap.Float64("duration", p.WaveDurationSeconds),
	)
}

func (s *Scheduler) completeWave() {
	survived := s.d.Player == nil || s.d.Player.Alive()
	old := s.d.Difficulty.Multiplier()
	s.d.Difficulty.RecordOutcome(s.timer, survived)

	o := Outcome{
		Wave:           s.waveNumber,
		DurationSec:    s.timer,
		PlayerSurvived: survived,
		Spawned:        s.spawned,
		Leftover:       len(s.active),
		Budget:         s.plan.DifficultyBudget,
		SpentBudget:    s.plan.SpentBudget,
		MultiplierOld:  old,
		MultiplierNew:  s.d.Difficulty.Multiplier(),
	}
	s.d.Notifier.OnWaveCompleted(o)
	s.log.Info("wave completed",
		zap.Int("wave", o.Wave),
		zap.Float64("seconds", o.DurationSec),
		zap.Bool("survived", survived),
		zap.Int("leftover", o.Leftover),
		zap.Float64("multiplier", o.MultiplierNew),
	)

	s.waveNumber++
	s.beginWave()
}

// Status is a read-only snapshot for the control feed.
type Status struct {
	State      State
	Enabled    bool
	Wave       int
	Timer      float64
	Duration   float64
	Progress   float64
	Pending    int
	Active     int
	InFlight   int
	Multiplier float64
}

func (s *Scheduler) Status() Status {
	st := Status{
		State:      s.state,
		Enabled:    s.enabled,
		Wave:       s.waveNumber,
		Timer:      s.timer,
		Active:     len(s.active),
		InFlight:   s.inFlight,
		Multiplier: s.d.Difficulty.Multiplier(),
	}
	if s.plan != nil {
		st.Duration = s.plan.WaveDurationSeconds
		st.Pending = len(s.plan.Entries) - s.next
		if st.Duration > 0 {
			st.Progress = s.timer / st.Duration
		}
	}
	return st
}

func (s *Scheduler) State() State            { return s.state }
func (s *Scheduler) WaveNumber() int         { return s.waveNumber }
func (s *Scheduler) ActiveCount() int        { return len(s.active) }
func (s *Scheduler) CurrentPlan() *wave.Plan { return s.plan }

// Tracked reports whether id is in the active enemy set.
func (s *Scheduler) Tracked(id ecs.EntityID) bool {
	_, ok := s.active[id]
	return ok
}
