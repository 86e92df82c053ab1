// Package types defines the core domain model for the local operations
// copilot: projects, plans, runs, steps, audits, artifacts, and the wire
// events the worker emits while a run executes.
package types

import "fmt"

// RunMeta carries the identity fields attached to every structured log line
// produced while handling a given run.
type RunMeta struct {
	// RunID is the run this log line concerns.
	RunID string
	// ProjectID is the owning project, when known.
	ProjectID *string
}

// Validate reports whether the metadata is well-formed enough to log with.
func (m *RunMeta) Validate() error {
	if m.RunID == "" {
		return fmt.Errorf("run_id must be non-empty")
	}
	return nil
}
