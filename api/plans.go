package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/localops/copilot/statemachine"
	"github.com/localops/copilot/store"
	"github.com/localops/copilot/types"
)

type createPlanRequest struct {
	IntentText string `json:"intent_text"`
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "project_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}

	var req createPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IntentText == "" {
		writeError(w, http.StatusBadRequest, "intent_text is required")
		return
	}

	if _, err := s.Store.GetProject(r.Context(), projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "loading project")
		return
	}

	doc := s.Planner.Plan(req.IntentText)

	// Sanity-checked the same way the original route does before
	// persisting: the transition table must allow PENDING -> PLANNED even
	// though no Run row exists yet at plan-creation time.
	if !statemachine.CanTransitionRun(types.RunPending, types.RunPlanned) {
		writeError(w, http.StatusInternalServerError, "invalid run transition table")
		return
	}

	plan, err := s.Store.CreatePlan(r.Context(), projectID, req.IntentText, doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating plan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}
