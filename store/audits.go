package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localops/copilot/types"
)

// CreateAudit appends an audit row for runID, matching the worker's
// append-only audit trail: one row per state transition or policy decision.
func (s *Store) CreateAudit(ctx context.Context, runID int64, actor, action string, payload map[string]any) (*types.Audit, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("store: marshaling audit payload: %w", err)
	}

	a := &types.Audit{RunID: runID, Actor: actor, Action: action, Payload: payload}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO audits (run_id, actor, action, payload_json) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		runID, actor, action, body,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: creating audit: %w", err)
	}
	return a, nil
}

// ListAudits returns a run's audit trail in the order it was recorded.
func (s *Store) ListAudits(ctx context.Context, runID int64) ([]types.Audit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, actor, action, payload_json, created_at FROM audits WHERE run_id = $1 ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing audits: %w", err)
	}
	defer rows.Close()

	var audits []types.Audit
	for rows.Next() {
		var a types.Audit
		var body []byte
		if err := rows.Scan(&a.ID, &a.RunID, &a.Actor, &a.Action, &body, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning audit: %w", err)
		}
		if err := json.Unmarshal(body, &a.Payload); err != nil {
			return nil, fmt.Errorf("store: decoding audit payload: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
