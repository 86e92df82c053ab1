package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/localops/copilot/eventbus"
)

// watchRun upgrades to a WebSocket and streams runID's live events until
// the client disconnects. It intentionally sits outside the x-api-key
// group: a browser WebSocket handshake can't set arbitrary headers, the
// same constraint the original service's run_ws route works around by
// leaving the socket route unauthenticated.
func (s *Server) watchRun(w http.ResponseWriter, r *http.Request) {
	runID, err := eventbus.RunIDFromPath(chi.URLParam(r, "run_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run_id")
		return
	}
	_ = eventbus.ServeWS(s.Bus, runID, w, r)
}
