package store

import (
	"context"
	"fmt"

	"github.com/localops/copilot/types"
)

// ListRunSteps returns a run's steps ordered by step_no.
func (s *Store) ListRunSteps(ctx context.Context, runID int64) ([]types.RunStep, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, step_no, type, command, status, exit_code, started_at, finished_at, stdout_path, stderr_path
		 FROM run_steps WHERE run_id = $1 ORDER BY step_no`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing run steps: %w", err)
	}
	defer rows.Close()

	var steps []types.RunStep
	for rows.Next() {
		var step types.RunStep
		if err := rows.Scan(&step.ID, &step.RunID, &step.StepNo, &step.Type, &step.Command, &step.Status,
			&step.ExitCode, &step.StartedAt, &step.FinishedAt, &step.StdoutPath, &step.StderrPath); err != nil {
			return nil, fmt.Errorf("store: scanning run step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// UpdateStep persists a step's full mutable state in one call: status,
// exit code, timestamps, and log paths. The orchestrator calls this once
// per step transition rather than issuing separate column updates.
func (s *Store) UpdateStep(ctx context.Context, step *types.RunStep) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE run_steps SET status = $1, exit_code = $2, started_at = $3, finished_at = $4,
		   stdout_path = $5, stderr_path = $6
		 WHERE id = $7`,
		string(step.Status), step.ExitCode, step.StartedAt, step.FinishedAt,
		step.StdoutPath, step.StderrPath, step.ID,
	)
	if err != nil {
		return fmt.Errorf("store: updating run step %d: %w", step.ID, err)
	}
	return nil
}
