package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localops/copilot/types"
)

// CreatePlan inserts a plan document for projectID, returning the stored
// row with ID/CreatedAt populated.
func (s *Store) CreatePlan(ctx context.Context, projectID int64, intent string, doc types.PlanDocument) (*types.Plan, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: marshaling plan document: %w", err)
	}

	p := &types.Plan{ProjectID: projectID, IntentText: intent, Document: doc}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO plans (project_id, intent_text, plan_json) VALUES ($1, $2, $3) RETURNING id, created_at`,
		projectID, intent, body,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: creating plan: %w", err)
	}
	return p, nil
}

// GetPlan fetches a plan scoped to projectID, matching the control API's
// "plan must belong to this project" lookup.
func (s *Store) GetPlan(ctx context.Context, projectID, planID int64) (*types.Plan, error) {
	p := &types.Plan{}
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, project_id, intent_text, plan_json, created_at FROM plans WHERE id = $1 AND project_id = $2`,
		planID, projectID,
	).Scan(&p.ID, &p.ProjectID, &p.IntentText, &body, &p.CreatedAt)
	if err != nil {
		return nil, notFoundOrErr(err, "plan")
	}
	if err := json.Unmarshal(body, &p.Document); err != nil {
		return nil, fmt.Errorf("store: decoding plan document: %w", err)
	}
	return p, nil
}
