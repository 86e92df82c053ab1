// Package orchestrator drives a single approved run (already RunRunning,
// as written by the control API's approve route) to a terminal status:
// it enforces the step state machine, executes each step in
// the sandbox, fans events out to live subscribers, and finalizes the
// run's report/audit/diff artifacts. It is the Go-native equivalent of
// the worker's execute_run task.
package orchestrator

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/localops/copilot/artifact"
	"github.com/localops/copilot/log"
	"github.com/localops/copilot/policy"
	"github.com/localops/copilot/sandbox"
	"github.com/localops/copilot/statemachine"
	"github.com/localops/copilot/store"
	"github.com/localops/copilot/types"
)

// reasonMissingPlanOrProject is the audit reason recorded when a run's
// plan or project row is gone by the time the worker picks it up,
// matching the worker's own execute_run precondition check.
const reasonMissingPlanOrProject = "missing plan or project"

// RunStore is the subset of *store.Store that Execute needs. It exists so
// tests can exercise Execute against an in-memory fake instead of a live
// Postgres connection; *store.Store satisfies it with no changes.
type RunStore interface {
	GetRun(ctx context.Context, id int64) (*types.Run, error)
	UpdateRunStatus(ctx context.Context, id int64, status types.RunStatus, startedAt, finishedAt *time.Time) error
	GetPlan(ctx context.Context, projectID, planID int64) (*types.Plan, error)
	GetProject(ctx context.Context, id int64) (*types.Project, error)
	ListRunSteps(ctx context.Context, runID int64) ([]types.RunStep, error)
	UpdateStep(ctx context.Context, step *types.RunStep) error
	CreateAudit(ctx context.Context, runID int64, actor, action string, payload map[string]any) (*types.Audit, error)
	CreateArtifact(ctx context.Context, a *types.Artifact) error
}

// sandboxRunner is the subset of *sandbox.Manager's method set Execute
// needs, letting tests substitute a fake that skips the real docker run.
type sandboxRunner interface {
	Start(ctx context.Context, workspace, command string, networkRequired bool) error
	Stdout() io.Reader
	Wait() (*sandbox.Result, error)
}

// Emitter fans a run's event payload out to live subscribers. *eventbus.Bus
// satisfies this directly when the orchestrator runs in the same process as
// the control API; HTTPEmitter satisfies it when the worker runs as a
// separate process and has to forward events over the wire instead.
type Emitter interface {
	Publish(runID int64, payload []byte)
}

// Orchestrator owns the dependencies a run execution needs: the durable
// store, the live event emitter, the artifact filesystem, and the sandbox
// image to run steps under.
type Orchestrator struct {
	Store     RunStore
	Bus       Emitter
	Artifacts *artifact.Store
	SandboxImage string
	// Mirror, when set, copies each finalization artifact to an
	// S3-compatible bucket after it is recorded locally. Nil disables
	// mirroring entirely.
	Mirror *artifact.S3Mirror
	// newSandbox constructs the per-step sandbox runner. Defaults to
	// sandbox.NewManager; tests override it to avoid shelling out to
	// docker.
	newSandbox func(sandbox.Config) sandboxRunner
}

// New returns an Orchestrator wired to its dependencies.
func New(st RunStore, bus Emitter, artifacts *artifact.Store, sandboxImage string) *Orchestrator {
	return &Orchestrator{
		Store:        st,
		Bus:          bus,
		Artifacts:    artifacts,
		SandboxImage: sandboxImage,
		newSandbox:   func(cfg sandbox.Config) sandboxRunner { return sandbox.NewManager(cfg) },
	}
}

// Execute runs runID to completion. approveRun already writes RunRunning
// to the store before enqueueing, so RunRunning is the expected status on
// entry, not a no-op condition. Execute only bails out when the run has
// already reached a terminal status (a duplicate at-least-once delivery
// arriving after a prior Execute finished) or hasn't been approved yet.
func (o *Orchestrator) Execute(ctx context.Context, runID int64) error {
	run, err := o.Store.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("orchestrator: loading run %d: %w", runID, err)
	}
	switch run.Status {
	case types.RunRunning:
		// expected: this is the first delivery after approval.
	case types.RunSucceeded, types.RunFailed, types.RunCancelled:
		return nil
	default:
		return nil
	}

	runMeta := &types.RunMeta{RunID: fmt.Sprintf("%d", runID)}
	logger := log.NewLogger(runMeta)

	if run.PlanID == nil {
		return o.finalizeFailed(ctx, run, nil, reasonMissingPlanOrProject)
	}
	if _, err := o.Store.GetPlan(ctx, run.ProjectID, *run.PlanID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return o.finalizeFailed(ctx, run, nil, reasonMissingPlanOrProject)
		}
		return fmt.Errorf("orchestrator: loading plan %d: %w", *run.PlanID, err)
	}

	now := time.Now().UTC()
	if err := o.Store.UpdateRunStatus(ctx, runID, types.RunRunning, &now, nil); err != nil {
		return fmt.Errorf("orchestrator: marking run %d running: %w", runID, err)
	}
	run.Status = types.RunRunning
	run.StartedAt = &now
	o.publish(runID, types.RunStatusEvent{Event: types.EventRunStatus, RunID: runID, Status: string(run.Status)})

	workspace, cleanup, err := o.prepareWorkspace(ctx, run.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Error("project missing at execute time", map[string]any{"error": err.Error()})
			return o.finalizeFailed(ctx, run, nil, reasonMissingPlanOrProject)
		}
		logger.Error("failed to prepare workspace", map[string]any{"error": err.Error()})
		return o.finalizeFailed(ctx, run, nil, fmt.Sprintf("workspace setup failed: %v", err))
	}
	defer cleanup()

	if err := o.Artifacts.EnsureDirs(runID); err != nil {
		return fmt.Errorf("orchestrator: preparing artifact dirs for run %d: %w", runID, err)
	}

	steps, err := o.Store.ListRunSteps(ctx, runID)
	if err != nil {
		return fmt.Errorf("orchestrator: loading steps for run %d: %w", runID, err)
	}

	runFailed := false
	runCancelled := false
	for i := range steps {
		step := &steps[i]
		if !statemachine.CanTransitionStep(step.Status, types.StepRunning) {
			continue
		}

		// Cancellation is advisory and checked only between steps: a
		// running sandbox container is never killed out from under an
		// in-flight command. approve/cancel are separate API calls
		// writing to the same store this loop reads from, so re-fetching
		// here is the only way to observe a cancel_run that happened
		// mid-run.
		if current, err := o.Store.GetRun(ctx, runID); err == nil && current.Status == types.RunCancelled {
			runCancelled = true
			break
		}

		if ok, reason := policy.Validate(step.Command); !ok {
			o.blockStep(ctx, runID, step, reason)
			runFailed = true
			break
		}

		if err := o.runStep(ctx, runID, workspace, step, logger); err != nil {
			logger.Error("step execution failed", map[string]any{"step_no": step.StepNo, "error": err.Error()})
			runFailed = true
			break
		}
		if step.ExitCode != nil && *step.ExitCode != 0 {
			runFailed = true
			break
		}
	}

	finishedAt := time.Now().UTC()
	finalStatus := types.RunSucceeded
	switch {
	case runCancelled:
		finalStatus = types.RunCancelled
	case runFailed:
		finalStatus = types.RunFailed
	}
	if runCancelled {
		// cancel_run already wrote RunCancelled and stamped finished_at;
		// the orchestrator only needs to stop, not re-write the status.
		run.Status = finalStatus
	} else {
		if err := o.Store.UpdateRunStatus(ctx, runID, finalStatus, nil, &finishedAt); err != nil {
			return fmt.Errorf("orchestrator: finalizing run %d status: %w", runID, err)
		}
		run.Status = finalStatus
		run.FinishedAt = &finishedAt
	}

	if err := o.finalize(ctx, run, workspace); err != nil {
		logger.Warn("finalization incomplete", map[string]any{"error": err.Error()})
	}

	o.publish(runID, types.RunCompletedEvent{Event: types.EventRunCompleted, RunID: runID, Status: string(run.Status)})
	return nil
}

// prepareWorkspace makes a scratch copy of the project's source tree, the
// same isolation the worker gets from its tempfile.mkdtemp + copytree pair:
// a step's command never touches the canonical checkout directly.
func (o *Orchestrator) prepareWorkspace(ctx context.Context, projectID int64) (workspace string, cleanup func(), err error) {
	project, err := o.Store.GetProject(ctx, projectID)
	if err != nil {
		return "", func() {}, fmt.Errorf("loading project %d: %w", projectID, err)
	}

	workspace, err = os.MkdirTemp("", fmt.Sprintf("run-%d-", projectID))
	if err != nil {
		return "", func() {}, fmt.Errorf("creating scratch workspace: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(workspace) }

	if _, statErr := os.Stat(project.RootPath); statErr == nil {
		if err := copyTree(project.RootPath, workspace); err != nil {
			cleanup()
			return "", func() {}, fmt.Errorf("copying project tree: %w", err)
		}
	}
	return workspace, cleanup, nil
}

// blockStep records a policy denial as a terminal, failed step without
// ever invoking the sandbox.
func (o *Orchestrator) blockStep(ctx context.Context, runID int64, step *types.RunStep, reason string) {
	finishedAt := time.Now().UTC()
	exitCode := 126
	step.Status = types.StepFailed
	step.ExitCode = &exitCode
	step.FinishedAt = &finishedAt

	_ = o.Store.UpdateStep(ctx, step)
	_, _ = o.Store.CreateAudit(ctx, runID, types.ActorWorker, types.ActionCommandBlocked, map[string]any{
		"step_no": step.StepNo,
		"command": step.Command,
		"reason":  reason,
	})
	o.publish(runID, types.StepFinishedEvent{
		Event: types.EventStepFinished, RunID: runID, StepNo: step.StepNo, Status: string(step.Status), ExitCode: exitCode,
	})
}

// runStep executes one approved step inside the sandbox, streaming its
// combined output into the event bus line by line and recording the
// per-step log file and audit entry the same way the worker does.
func (o *Orchestrator) runStep(ctx context.Context, runID int64, workspace string, step *types.RunStep, logger *log.Logger) error {
	startedAt := time.Now().UTC()
	step.Status = types.StepRunning
	step.StartedAt = &startedAt
	if err := o.Store.UpdateStep(ctx, step); err != nil {
		return fmt.Errorf("recording step %d start: %w", step.StepNo, err)
	}
	o.publish(runID, types.StepStartedEvent{
		Event: types.EventStepStarted, RunID: runID, StepNo: step.StepNo, Command: step.Command,
	})

	mgr := o.newSandbox(sandbox.Config{Image: o.SandboxImage})
	if err := mgr.Start(ctx, workspace, step.Command, false); err != nil {
		return fmt.Errorf("starting sandbox for step %d: %w", step.StepNo, err)
	}

	var lines []string
	scanner := bufio.NewScanner(mgr.Stdout())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		o.publish(runID, types.StepLogEvent{
			Event: types.EventStepLog, RunID: runID, StepNo: step.StepNo, Stream: "stdout", Line: line,
		})
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("error reading step output", map[string]any{"step_no": step.StepNo, "error": err.Error()})
	}

	result, err := mgr.Wait()
	if err != nil {
		return fmt.Errorf("waiting for step %d: %w", step.StepNo, err)
	}

	stdoutPath := filepath.Join(o.Artifacts.LogsDir(runID), fmt.Sprintf("%d.out", step.StepNo))
	stderrPath := filepath.Join(o.Artifacts.LogsDir(runID), fmt.Sprintf("%d.err", step.StepNo))
	content := ""
	for i, line := range lines {
		if i > 0 {
			content += "\n"
		}
		content += line
	}
	if err := os.WriteFile(stdoutPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing step %d stdout log: %w", step.StepNo, err)
	}
	if err := os.WriteFile(stderrPath, nil, 0o644); err != nil {
		return fmt.Errorf("writing step %d stderr log: %w", step.StepNo, err)
	}

	finishedAt := time.Now().UTC()
	exitCode := result.ExitCode
	step.ExitCode = &exitCode
	step.FinishedAt = &finishedAt
	step.StdoutPath = &stdoutPath
	step.StderrPath = &stderrPath
	if exitCode == 0 {
		step.Status = types.StepSucceeded
	} else {
		step.Status = types.StepFailed
	}
	if err := o.Store.UpdateStep(ctx, step); err != nil {
		return fmt.Errorf("recording step %d result: %w", step.StepNo, err)
	}

	_, _ = o.Store.CreateAudit(ctx, runID, types.ActorWorker, types.ActionStepExecuted, map[string]any{
		"step_no":       step.StepNo,
		"command":       step.Command,
		"cwd":           "/workspace",
		"env_allowlist": []string{"PATH", "HOME"},
		"exit_code":     exitCode,
		"risk":          policy.Risk(step.Command, false),
		"sandbox": map[string]string{
			"network": "none", "cpus": "1.0", "memory": "512m", "pids_limit": "128",
		},
	})
	o.publish(runID, types.StepFinishedEvent{
		Event: types.EventStepFinished, RunID: runID, StepNo: step.StepNo, Status: string(step.Status), ExitCode: exitCode,
	})
	return nil
}

// finalize renders the report/audit/diff bundle, records each as an
// Artifact row, and announces each over the event bus in that order
// (report, audit, diff), mirroring the
// worker's post-loop finalization block.
func (o *Orchestrator) finalize(ctx context.Context, run *types.Run, workspace string) error {
	steps, err := o.Store.ListRunSteps(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("reloading steps for finalization: %w", err)
	}

	reportPath := filepath.Join(o.Artifacts.ReportsDir(run.ID), "report.md")
	auditPath := filepath.Join(o.Artifacts.ArtifactsDir(run.ID), "audit.json")
	diffPath := filepath.Join(o.Artifacts.ArtifactsDir(run.ID), "diff.patch")

	if err := artifact.WriteReport(reportPath, run, steps); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := artifact.WriteAuditJSON(auditPath, run, steps); err != nil {
		return fmt.Errorf("writing audit.json: %w", err)
	}
	if err := artifact.WriteDiffPatch(ctx, workspace, diffPath); err != nil {
		return fmt.Errorf("writing diff.patch: %w", err)
	}

	for _, entry := range []struct{ kind, path string }{
		{types.ArtifactKindReport, reportPath},
		{types.ArtifactKindAudit, auditPath},
		{types.ArtifactKindDiff, diffPath},
	} {
		kind, path := entry.kind, entry.path
		rec, err := o.Artifacts.Record(run.ID, kind, path)
		if err != nil {
			return fmt.Errorf("hashing %s artifact: %w", kind, err)
		}
		if rec == nil {
			continue
		}
		if err := o.Store.CreateArtifact(ctx, rec); err != nil {
			return fmt.Errorf("recording %s artifact: %w", kind, err)
		}
		o.publish(run.ID, types.ArtifactCreatedEvent{
			Event: types.EventArtifactCreated, RunID: run.ID, Kind: kind, Path: path,
		})
		if o.Mirror != nil {
			if err := o.Mirror.Put(ctx, rec); err != nil {
				log.NewLogger(&types.RunMeta{RunID: fmt.Sprintf("%d", run.ID)}).Warn(
					"s3 mirror upload failed", map[string]any{"kind": kind, "error": err.Error()})
			}
		}
	}

	_, err = o.Store.CreateAudit(ctx, run.ID, types.ActorWorker, types.ActionRunCompleted, map[string]any{"status": string(run.Status)})
	return err
}

// finalizeFailed marks a run FAILED when it could not even reach the step
// loop (e.g. workspace setup failed), recording an audit entry the same
// way the worker's "missing plan or project" branch does.
func (o *Orchestrator) finalizeFailed(ctx context.Context, run *types.Run, cause error, reason string) error {
	finishedAt := time.Now().UTC()
	if err := o.Store.UpdateRunStatus(ctx, run.ID, types.RunFailed, nil, &finishedAt); err != nil {
		return fmt.Errorf("marking run %d failed: %w", run.ID, err)
	}
	_, _ = o.Store.CreateAudit(ctx, run.ID, types.ActorWorker, types.ActionRunFailed, map[string]any{"reason": reason})
	o.publish(run.ID, types.RunCompletedEvent{Event: types.EventRunCompleted, RunID: run.ID, Status: string(types.RunFailed)})
	return cause
}

// publish JSON-encodes event and fans it out to runID's subscribers.
func (o *Orchestrator) publish(runID int64, event any) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}
	o.Bus.Publish(runID, body)
}

// copyTree recursively copies src into dst, preserving the relative
// directory structure, matching shutil.copytree(dirs_exist_ok=True).
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
