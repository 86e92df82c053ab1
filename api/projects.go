package api

import (
	"net/http"
)

type createProjectRequest struct {
	Name     string `json:"name"`
	RootPath string `json:"root_path"`
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.RootPath == "" {
		writeError(w, http.StatusBadRequest, "name and root_path are required")
		return
	}

	project, err := s.Store.CreateProject(r.Context(), req.Name, req.RootPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating project")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// listProjects returns every project newest-first, matching the original
// service's Project.id.desc() ordering.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing projects")
		return
	}
	for i, j := 0, len(projects)-1; i < j; i, j = i+1, j-1 {
		projects[i], projects[j] = projects[j], projects[i]
	}
	writeJSON(w, http.StatusOK, projects)
}
