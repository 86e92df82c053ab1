package artifact

import (
	"encoding/json"
	"os"

	"github.com/localops/copilot/types"
)

// auditTimelineEntry is the per-step shape inside audit.json, matching the
// worker's own audit_records list comprehension field-for-field.
type auditTimelineEntry struct {
	StepNo     int     `json:"step_no"`
	Command    string  `json:"command"`
	Status     string  `json:"status"`
	ExitCode   *int    `json:"exit_code"`
	StdoutPath *string `json:"stdout_path"`
	StderrPath *string `json:"stderr_path"`
}

type auditDocument struct {
	RunID    int64                 `json:"run_id"`
	Status   string                `json:"status"`
	Timeline []auditTimelineEntry  `json:"timeline"`
	Sandbox  types.SandboxMeta     `json:"sandbox"`
}

// WriteAuditJSON writes the run's full step timeline and sandbox envelope
// as indented JSON, matching the worker's audit.json contents.
func WriteAuditJSON(path string, run *types.Run, steps []types.RunStep) error {
	doc := auditDocument{
		RunID:   run.ID,
		Status:  string(run.Status),
		Sandbox: run.Sandbox,
	}
	for _, step := range steps {
		doc.Timeline = append(doc.Timeline, auditTimelineEntry{
			StepNo:     step.StepNo,
			Command:    step.Command,
			Status:     string(step.Status),
			ExitCode:   step.ExitCode,
			StdoutPath: step.StdoutPath,
			StderrPath: step.StderrPath,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
