package api

import (
	"net/http"
	"time"

	"github.com/intake-backend/internal/storage"
)

// handleListUsers handles GET /api/users with pagination, sorting and
// date-range filters
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.UserFilter{
		Limit:     queryInt(r, "limit", 50),
		Offset:    queryInt(r, "offset", 0),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	if raw := q.Get("createdAfter"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.respondBadRequest(w, r, "createdAfter must be an RFC 3339 timestamp")
			return
		}
		filter.CreatedAfter = &t
	}
	if raw := q.Get("createdBefore"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.respondBadRequest(w, r, "createdBefore must be an RFC 3339 timestamp")
			return
		}
		filter.CreatedBefore = &t
	}

	users, err := s.users.List(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: users})
}

// handleSearchUsers handles GET /api/users/search?email&name
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users, err := s.users.Search(r.Context(), q.Get("email"), q.Get("name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: users})
}

// handleGetUser handles GET /api/users/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondBadRequest(w, r, "Invalid user ID")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: user})
}

// handleUserProjects handles GET /api/users/{id}/projects
func (s *Server) handleUserProjects(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondBadRequest(w, r, "Invalid user ID")
		return
	}

	projects, err := s.users.Projects(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: projects})
}

// handleUserSubmissions handles GET /api/users/{id}/submissions
func (s *Server) handleUserSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondBadRequest(w, r, "Invalid user ID")
		return
	}

	subs, err := s.users.Submissions(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: subs})
}
