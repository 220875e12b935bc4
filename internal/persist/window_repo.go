package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/blocklink/worldindex/internal/telemetry"
)

// WindowRepo stores telemetry windows under a run row.
type WindowRepo struct {
	db *DB
}

func NewWindowRepo(db *DB) *WindowRepo {
	return &WindowRepo{db: db}
}

// StartRun inserts a run row and returns its id.
func (r *WindowRepo) StartRun(ctx context.Context, level string, seed int64, startedAt time.Time) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO index_runs (level, seed, started_at) VALUES ($1, $2, $3) RETURNING id`,
		level, seed, startedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's end time.
func (r *WindowRepo) FinishRun(ctx context.Context, runID int64, at time.Time) error {
	if _, err := r.db.Pool.Exec(ctx,
		`UPDATE index_runs SET finished_at = $2 WHERE id = $1`, runID, at,
	); err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	return nil
}

const insertWindowSQL = `INSERT INTO index_windows (
	run_id, window_start, window_end, linked, live_nodes, free_nodes, touch_nodes,
	occupied_cells, nodes_per_actor_mean, nodes_per_actor_std, traces,
	intercepts_per_trace, intercepts_per_trace_p90, targets_acquired, sight_blocked, removed
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (run_id, window_end) DO NOTHING`

func windowArgs(runID int64, ws telemetry.WindowStats) []any {
	return []any{
		runID, int64(ws.WindowStartTick), int64(ws.WindowEndTick),
		ws.LinkedActors, ws.LiveNodes, ws.FreeNodes, ws.TouchNodes, ws.OccupiedCells,
		ws.NodesPerActorMean, ws.NodesPerActorStd, ws.Traces,
		ws.InterceptsPerTrace, ws.InterceptsPerTraceP90,
		ws.TargetsAcquired, ws.SightBlocked, ws.Removed,
	}
}

// SaveWindows writes a batch of windows in one transaction. Windows already
// stored for the run are skipped.
func (r *WindowRepo) SaveWindows(ctx context.Context, runID int64, windows []telemetry.WindowStats) error {
	if len(windows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("windows begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ws := range windows {
		if _, err := tx.Exec(ctx, insertWindowSQL, windowArgs(runID, ws)...); err != nil {
			return fmt.Errorf("windows insert: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("windows commit: %w", err)
	}
	r.db.log.Debug("telemetry windows saved")
	return nil
}
