package store

import (
	"context"
	"fmt"

	"github.com/localops/copilot/types"
)

// CreateProject inserts project and returns it with ID/CreatedAt populated.
func (s *Store) CreateProject(ctx context.Context, name, rootPath string) (*types.Project, error) {
	p := &types.Project{Name: name, RootPath: rootPath}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO projects (name, root_path) VALUES ($1, $2) RETURNING id, created_at`,
		name, rootPath,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: creating project: %w", err)
	}
	return p, nil
}

// GetProject fetches a project by id, returning an error wrapping
// ErrNotFound if no row matches.
func (s *Store) GetProject(ctx context.Context, id int64) (*types.Project, error) {
	p := &types.Project{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, root_path, created_at FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.RootPath, &p.CreatedAt)
	if err != nil {
		return nil, notFoundOrErr(err, "project")
	}
	return p, nil
}

// ListProjects returns every project, ordered by id.
func (s *Store) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, root_path, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: listing projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		var p types.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.RootPath, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
