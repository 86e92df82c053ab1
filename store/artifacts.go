package store

import (
	"context"
	"fmt"

	"github.com/localops/copilot/types"
)

// CreateArtifact records an artifact produced by runID. The filesystem
// write itself happens through the artifact package; this persists the
// pointer and content hash for the control API to serve.
func (s *Store) CreateArtifact(ctx context.Context, a *types.Artifact) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO artifacts (run_id, kind, path, sha256, size) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		a.RunID, a.Kind, a.Path, a.SHA256, a.Size,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: creating artifact: %w", err)
	}
	return nil
}

// ListArtifacts returns a run's artifacts in creation order.
func (s *Store) ListArtifacts(ctx context.Context, runID int64) ([]types.Artifact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, kind, path, sha256, size, created_at FROM artifacts WHERE run_id = $1 ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []types.Artifact
	for rows.Next() {
		var a types.Artifact
		if err := rows.Scan(&a.ID, &a.RunID, &a.Kind, &a.Path, &a.SHA256, &a.Size, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}
