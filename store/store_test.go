package store

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/localops/copilot/types"
)

// openTestStore connects to a real PostgreSQL instance named by
// LOCALOPS_TEST_DATABASE_URL. Tests in this file exercise the store
// against a live schema, so they skip rather than fake a connection when
// the env var isn't set.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := strings.TrimSpace(os.Getenv("LOCALOPS_TEST_DATABASE_URL"))
	if url == "" {
		t.Skip("LOCALOPS_TEST_DATABASE_URL not set, skipping store integration test")
	}
	s, err := Open(context.Background(), url)
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStore_ProjectRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "demo", "/workspace/demo")
	if err != nil {
		t.Fatalf("CreateProject() err=%v", err)
	}

	run := &types.Run{
		ProjectID: project.ID,
		Status:    types.RunPending,
		Sandbox:   types.DefaultSandboxMeta(),
		RiskLevel: types.LevelLow,
	}
	steps := []types.RunStep{
		{StepNo: 1, Type: "shell", Command: "echo hi", Status: types.StepQueued},
	}
	run, err = s.CreateRunWithSteps(ctx, run, steps)
	if err != nil {
		t.Fatalf("CreateRunWithSteps() err=%v", err)
	}
	if run.ID == 0 {
		t.Fatalf("expected run ID to be populated")
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() err=%v", err)
	}
	if got.Status != types.RunPending {
		t.Fatalf("Status = %q, want %q", got.Status, types.RunPending)
	}

	now := time.Now().UTC()
	if err := s.UpdateRunStatus(ctx, run.ID, types.RunRunning, &now, nil); err != nil {
		t.Fatalf("UpdateRunStatus() err=%v", err)
	}
	got, err = s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() err=%v", err)
	}
	if got.Status != types.RunRunning {
		t.Fatalf("Status = %q, want %q", got.Status, types.RunRunning)
	}
	if got.StartedAt == nil {
		t.Fatalf("expected StartedAt to be set")
	}

	stepsGot, err := s.ListRunSteps(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListRunSteps() err=%v", err)
	}
	if len(stepsGot) != 1 {
		t.Fatalf("len(steps) = %d, want 1", len(stepsGot))
	}

	stepsGot[0].Status = types.StepSucceeded
	exitCode := 0
	stepsGot[0].ExitCode = &exitCode
	if err := s.UpdateStep(ctx, &stepsGot[0]); err != nil {
		t.Fatalf("UpdateStep() err=%v", err)
	}

	if _, err := s.CreateAudit(ctx, run.ID, types.ActorWorker, types.ActionStepExecuted, map[string]any{"step_no": 1}); err != nil {
		t.Fatalf("CreateAudit() err=%v", err)
	}
	audits, err := s.ListAudits(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListAudits() err=%v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("len(audits) = %d, want 1", len(audits))
	}

	artifact := &types.Artifact{RunID: run.ID, Kind: types.ArtifactKindReport, Path: "report.md", SHA256: strings.Repeat("a", 64), Size: 10}
	if err := s.CreateArtifact(ctx, artifact); err != nil {
		t.Fatalf("CreateArtifact() err=%v", err)
	}
	artifacts, err := s.ListArtifacts(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListArtifacts() err=%v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("len(artifacts) = %d, want 1", len(artifacts))
	}
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), -1)
	if err == nil {
		t.Fatalf("expected error for missing run")
	}
}
