package api

import "net/http"

// requireAPIKey compares the x-api-key header against Server.APIKey,
// matching the original service's require_api_key dependency.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != s.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing x-api-key")
			return
		}
		next.ServeHTTP(w, r)
	})
}
