package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/localops/copilot/types"
)

// CreateRunWithSteps inserts run and its flattened step sequence inside a
// single transaction, matching the control API's create_run route: the
// run and every RunStep it owns become visible atomically.
func (s *Store) CreateRunWithSteps(ctx context.Context, run *types.Run, steps []types.RunStep) (*types.Run, error) {
	sandboxJSON, err := json.Marshal(run.Sandbox)
	if err != nil {
		return nil, fmt.Errorf("store: marshaling sandbox meta: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: beginning run transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx,
		`INSERT INTO runs (project_id, plan_id, status, sandbox_meta, risk_level)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		run.ProjectID, run.PlanID, string(run.Status), sandboxJSON, string(run.RiskLevel),
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: creating run: %w", err)
	}

	for i := range steps {
		steps[i].RunID = run.ID
		if err := tx.QueryRow(ctx,
			`INSERT INTO run_steps (run_id, step_no, type, command, status)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			run.ID, steps[i].StepNo, steps[i].Type, steps[i].Command, string(steps[i].Status),
		).Scan(&steps[i].ID); err != nil {
			return nil, fmt.Errorf("store: creating run step %d: %w", steps[i].StepNo, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("store: committing run: %w", err)
	}
	return run, nil
}

// GetRun fetches a run by id.
func (s *Store) GetRun(ctx context.Context, id int64) (*types.Run, error) {
	r := &types.Run{}
	var sandboxJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, project_id, plan_id, status, started_at, finished_at, sandbox_meta, risk_level, created_at
		 FROM runs WHERE id = $1`, id,
	).Scan(&r.ID, &r.ProjectID, &r.PlanID, &r.Status, &r.StartedAt, &r.FinishedAt, &sandboxJSON, &r.RiskLevel, &r.CreatedAt)
	if err != nil {
		return nil, notFoundOrErr(err, "run")
	}
	if err := json.Unmarshal(sandboxJSON, &r.Sandbox); err != nil {
		return nil, fmt.Errorf("store: decoding sandbox meta: %w", err)
	}
	return r, nil
}

// UpdateRunStatus moves a run to status, stamping startedAt/finishedAt
// when given (nil leaves the existing column value untouched).
func (s *Store) UpdateRunStatus(ctx context.Context, id int64, status types.RunStatus, startedAt, finishedAt *time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1,
		   started_at = COALESCE($2, started_at),
		   finished_at = COALESCE($3, finished_at)
		 WHERE id = $4`,
		string(status), startedAt, finishedAt, id,
	)
	if err != nil {
		return fmt.Errorf("store: updating run %d status: %w", id, err)
	}
	return nil
}
