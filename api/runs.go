package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/localops/copilot/statemachine"
	"github.com/localops/copilot/store"
	"github.com/localops/copilot/types"
)

type createRunRequest struct {
	PlanID int64 `json:"plan_id"`
}

// runActionResponse is the shape every run mutation route replies with,
// matching the original service's RunActionResponse.
type runActionResponse struct {
	RunID  int64  `json:"run_id"`
	Status string `json:"status"`
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "project_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}

	var req createRunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.Store.GetProject(r.Context(), projectID); err != nil {
		writeNotFoundOr500(w, err, "project not found")
		return
	}
	plan, err := s.Store.GetPlan(r.Context(), projectID, req.PlanID)
	if err != nil {
		writeNotFoundOr500(w, err, "plan not found")
		return
	}

	// Sanity-checked the same way the original route does: the run is
	// created directly in AWAITING_REVIEW, but both transitions leading up
	// to it must still be legal moves in the table.
	if !statemachine.CanTransitionRun(types.RunPending, types.RunPlanned) ||
		!statemachine.CanTransitionRun(types.RunPlanned, types.RunAwaitingReview) {
		writeError(w, http.StatusInternalServerError, "invalid run transition table")
		return
	}

	riskLevel := plan.Document.RiskLevel
	if riskLevel == "" {
		riskLevel = types.LevelMedium
	}
	run := &types.Run{
		ProjectID: projectID,
		PlanID:    &plan.ID,
		Status:    types.RunAwaitingReview,
		Sandbox:   types.DefaultSandboxMeta(),
		RiskLevel: riskLevel,
	}

	var steps []types.RunStep
	stepNo := 1
	for _, planStep := range plan.Document.Steps {
		for _, command := range planStep.Commands {
			steps = append(steps, types.RunStep{
				StepNo:  stepNo,
				Type:    planStep.Type,
				Command: command,
				Status:  types.StepQueued,
			})
			stepNo++
		}
	}

	run, err = s.Store.CreateRunWithSteps(r.Context(), run, steps)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating run")
		return
	}
	if _, err := s.Store.CreateAudit(r.Context(), run.ID, types.ActorUser, types.ActionRunCreated,
		map[string]any{"plan_id": plan.ID}); err != nil {
		writeError(w, http.StatusInternalServerError, "recording run.created audit")
		return
	}

	writeJSON(w, http.StatusCreated, runActionResponse{RunID: run.ID, Status: string(run.Status)})
}

func (s *Server) approveRun(w http.ResponseWriter, r *http.Request) {
	runID, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if !statemachine.CanTransitionRun(run.Status, types.RunRunning) {
		writeError(w, http.StatusBadRequest, "invalid transition "+string(run.Status)+" -> RUNNING")
		return
	}

	now := nowUTC()
	if err := s.Store.UpdateRunStatus(r.Context(), runID, types.RunRunning, &now, nil); err != nil {
		writeError(w, http.StatusInternalServerError, "updating run status")
		return
	}
	if _, err := s.Store.CreateAudit(r.Context(), runID, types.ActorUser, types.ActionRunApproved, map[string]any{}); err != nil {
		writeError(w, http.StatusInternalServerError, "recording run.approved audit")
		return
	}

	if s.Queue != nil {
		if err := s.Queue.Enqueue(r.Context(), runID); err != nil {
			writeError(w, http.StatusInternalServerError, "enqueueing run")
			return
		}
	}

	writeJSON(w, http.StatusOK, runActionResponse{RunID: runID, Status: string(types.RunRunning)})
}

func (s *Server) cancelRun(w http.ResponseWriter, r *http.Request) {
	runID, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if !statemachine.CanTransitionRun(run.Status, types.RunCancelled) {
		writeError(w, http.StatusBadRequest, "invalid transition "+string(run.Status)+" -> CANCELLED")
		return
	}

	now := nowUTC()
	if err := s.Store.UpdateRunStatus(r.Context(), runID, types.RunCancelled, nil, &now); err != nil {
		writeError(w, http.StatusInternalServerError, "updating run status")
		return
	}
	if _, err := s.Store.CreateAudit(r.Context(), runID, types.ActorUser, types.ActionRunCancelled, map[string]any{}); err != nil {
		writeError(w, http.StatusInternalServerError, "recording run.cancelled audit")
		return
	}

	writeJSON(w, http.StatusOK, runActionResponse{RunID: runID, Status: string(types.RunCancelled)})
}

// runDetail is the joined view get_run returns: the run row plus its
// ordered steps, audits, and artifacts, with the text contents of the
// report/diff/audit artifacts inlined when the underlying file still
// exists on disk.
type runDetail struct {
	*types.Run
	Steps     []types.RunStep  `json:"steps"`
	Audits    []types.Audit    `json:"audits"`
	Artifacts []types.Artifact `json:"artifacts"`

	ReportContent *string `json:"report_content"`
	DiffContent   *string `json:"diff_content"`
	AuditContent  *string `json:"audit_content"`
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runID, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	steps, err := s.Store.ListRunSteps(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading steps")
		return
	}
	audits, err := s.Store.ListAudits(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading audits")
		return
	}
	artifacts, err := s.Store.ListArtifacts(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "loading artifacts")
		return
	}

	detail := runDetail{Run: run, Steps: steps, Audits: audits, Artifacts: artifacts}
	for _, a := range artifacts {
		content, err := readArtifactText(a.Path)
		if err != nil {
			continue
		}
		switch a.Kind {
		case types.ArtifactKindReport:
			detail.ReportContent = &content
		case types.ArtifactKindDiff:
			detail.DiffContent = &content
		case types.ArtifactKindAudit:
			detail.AuditContent = &content
		}
	}

	writeJSON(w, http.StatusOK, detail)
}

// postRunEvent is the internal-only ingress the worker process posts to
// when it runs as a separate process and can't reach this server's
// eventbus.Bus directly (see orchestrator.HTTPEmitter). It forwards the
// payload verbatim to the run's live WebSocket subscribers.
func (s *Server) postRunEvent(w http.ResponseWriter, r *http.Request) {
	runID, err := strconv.ParseInt(chi.URLParam(r, "run_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run_id")
		return
	}
	if _, err := s.Store.GetRun(r.Context(), runID); err != nil {
		writeNotFoundOr500(w, err, "run not found")
		return
	}

	body, err := readAll(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.Bus.Publish(runID, body)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadRun parses {run_id} from the route and fetches it, writing an error
// response and returning ok=false on any failure.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (int64, *types.Run, bool) {
	runID, err := strconv.ParseInt(chi.URLParam(r, "run_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run_id")
		return 0, nil, false
	}
	run, err := s.Store.GetRun(r.Context(), runID)
	if err != nil {
		writeNotFoundOr500(w, err, "run not found")
		return 0, nil, false
	}
	return runID, run, true
}

func writeNotFoundOr500(w http.ResponseWriter, err error, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFoundMessage)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func readArtifactText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
