// Package api implements the control API: the HTTP surface a human or CI
// caller uses to register projects, generate plans, create/approve/cancel
// runs, and watch a run's progress live. It is the Go-native equivalent of
// the original service's FastAPI app.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/localops/copilot/artifact"
	"github.com/localops/copilot/eventbus"
	"github.com/localops/copilot/log"
	"github.com/localops/copilot/planner"
	"github.com/localops/copilot/queue"
	"github.com/localops/copilot/store"
	"github.com/localops/copilot/types"
)

// Planner generates a plan document from a free-text intent. planner.RuleBased
// satisfies this; the control API accepts any implementation in this shape.
type Planner interface {
	Plan(intent string) types.PlanDocument
}

// Server holds every dependency a control API handler needs.
type Server struct {
	Store     *store.Store
	Bus       *eventbus.Bus
	Artifacts *artifact.Store
	Queue     *queue.Queue
	Planner   Planner
	APIKey    string
}

// New returns a Server whose Planner is planner.RuleBased; callers that
// want another planner set the Planner field afterwards.
func New(st *store.Store, bus *eventbus.Bus, artifacts *artifact.Store, q *queue.Queue, apiKey string) *Server {
	return &Server{
		Store:     st,
		Bus:       bus,
		Artifacts: artifacts,
		Queue:     q,
		Planner:   planner.RuleBased{},
		APIKey:    apiKey,
	}
}

// Router builds the chi router for this Server, including the internal
// events ingress the worker process posts to and the per-run WebSocket
// feed live subscribers connect to.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log.NewLogger(&types.RunMeta{RunID: "api"})))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAPIKey)

			r.Post("/projects", s.createProject)
			r.Get("/projects", s.listProjects)

			r.Post("/projects/{project_id}/plans", s.createPlan)
			r.Post("/projects/{project_id}/runs", s.createRun)

			r.Get("/runs/{run_id}", s.getRun)
			r.Post("/runs/{run_id}/approve", s.approveRun)
			r.Post("/runs/{run_id}/cancel", s.cancelRun)

			r.Post("/internal/runs/{run_id}/events", s.postRunEvent)
		})

		r.Get("/ws/runs/{run_id}", s.watchRun)
	})

	return r
}
