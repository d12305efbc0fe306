package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// WaveLogRow is one completed wave. Rows are written for offline analysis
// and never read back by the server.
type WaveLogRow struct {
	RunID         int64
	Wave          int
	DurationSec   float64
	Survived      bool
	Spawned       int
	Leftover      int
	Budget        float64
	SpentBudget   float64
	MultiplierOld float64
	MultiplierNew float64
	RecordedAt    time.Time
}

type WaveLogRepo struct {
	db *DB
}

func NewWaveLogRepo(db *DB) *WaveLogRepo {
	return &WaveLogRepo{db: db}
}

// InsertBatch writes rows in a single transaction.
func (r *WaveLogRepo) InsertBatch(ctx context.Context, rows []WaveLogRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("wave_log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO wave_log (run_id, wave, duration_sec, survived, spawned, leftover,
			                       budget, spent_budget, multiplier_old, multiplier_new, recorded_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			row.RunID, row.Wave, row.DurationSec, row.Survived, row.Spawned, row.Leftover,
			row.Budget, row.SpentBudget, row.MultiplierOld, row.MultiplierNew, row.RecordedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("wave_log insert: %w", err)
	}
	return tx.Commit(ctx)
}
