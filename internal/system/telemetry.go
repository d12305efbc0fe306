package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/core/event"
	coresys "github.com/l1jgo/horde/internal/core/system"
	"github.com/l1jgo/horde/internal/persist"
)

// maxBufferedRows bounds the telemetry backlog while the database is down.
const maxBufferedRows = 1024

// WaveLogSink stores completed-wave rows.
type WaveLogSink interface {
	InsertBatch(ctx context.Context, rows []persist.WaveLogRow) error
}

// TelemetrySystem buffers completed waves and writes them to the wave log
// every interval ticks. Phase 5 (Persist).
type TelemetrySystem struct {
	sink      WaveLogSink
	runID     int64
	interval  int
	tickCount int
	rows      []persist.WaveLogRow
	log       *zap.Logger
}

func NewTelemetrySystem(sink WaveLogSink, bus *event.Bus, runID int64, intervalTicks int, log *zap.Logger) *TelemetrySystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &TelemetrySystem{
		sink:     sink,
		runID:    runID,
		interval: intervalTicks,
		log:      log,
	}
	event.Subscribe(bus, s.record)
	return s
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TelemetrySystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Buffered returns the number of rows waiting to be written.
func (s *TelemetrySystem) Buffered() int { return len(s.rows) }

func (s *TelemetrySystem) record(e event.WaveCompleted) {
	if len(s.rows) >= maxBufferedRows {
		s.rows = s.rows[1:]
	}
	s.rows = append(s.rows, persist.WaveLogRow{
		RunID:         s.runID,
		Wave:          e.Wave,
		DurationSec:   e.DurationSec,
		Survived:      e.PlayerSurvived,
		Spawned:       e.Spawned,
		Leftover:      e.Leftover,
		Budget:        e.Budget,
		SpentBudget:   e.SpentBudget,
		MultiplierOld: e.MultiplierOld,
		MultiplierNew: e.MultiplierNew,
		RecordedAt:    time.Now(),
	})
}

// Flush writes buffered rows now. Rows are kept for the next attempt when
// the insert fails. Also called on shutdown.
func (s *TelemetrySystem) Flush() {
	if len(s.rows) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.sink.InsertBatch(ctx, s.rows); err != nil {
		s.log.Error("wave log flush failed", zap.Int("rows", len(s.rows)), zap.Error(err))
		return
	}
	s.log.Debug("wave log flushed", zap.Int("rows", len(s.rows)))
	s.rows = s.rows[:0]
}
