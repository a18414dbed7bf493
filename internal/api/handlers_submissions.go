package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/intake-backend/internal/service"
)

// parseID extracts and validates the {id} path variable
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def on
// absent or malformed input
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// handleCreateSubmission handles POST /api/submissions - the public
// intake form endpoint
func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := parseJSONBody(r, &body); err != nil {
		s.respondBadRequest(w, r, "Invalid request body")
		return
	}

	sub, err := s.submissions.Create(r.Context(), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, SuccessResponse{
		Message: "Submission received successfully",
		Data:    sub,
	})
}

// handleListSubmissions handles GET /api/submissions - the paginated
// admin listing with filters and dashboard stats
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.ListFilter{
		Page:                 queryInt(r, "page", 1),
		PageSize:             queryInt(r, "pageSize", service.DefaultPageSize),
		Status:               q.Get("status"),
		BuyerCategory:        q.Get("buyer_category"),
		BuildBudget:          q.Get("build_budget"),
		ConstructionTimeline: q.Get("construction_timeline"),
	}

	result, err := s.submissions.List(r.Context(), filter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{
		Data:       result.Data,
		Pagination: &result.Pagination,
		Stats:      result.Stats,
	})
}

// handleGetSubmission handles GET /api/submissions/{id}
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondBadRequest(w, r, "Invalid submission ID")
		return
	}

	sub, err := s.submissions.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: sub})
}

// handleUpdateSubmissionStatus handles PUT /api/submissions/{id}/status
func (s *Server) handleUpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondBadRequest(w, r, "Invalid submission ID")
		return
	}

	var body struct {
		Status     string  `json:"status"`
		AdminNotes *string `json:"admin_notes"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		s.respondBadRequest(w, r, "Invalid request body")
		return
	}
	if body.Status == "" {
		s.respondBadRequest(w, r, "Status is required")
		return
	}

	sub, err := s.submissions.UpdateStatus(r.Context(), id, body.Status, body.AdminNotes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{
		Message: "Submission status updated",
		Data:    sub,
	})
}

// handleDeleteSubmission handles DELETE /api/submissions/{id}
func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondBadRequest(w, r, "Invalid submission ID")
		return
	}

	sub, err := s.submissions.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{
		Message: "Submission deleted",
		Data:    sub,
	})
}

// handleSearchSubmissions handles GET /api/submissions/search?q=
func (s *Server) handleSearchSubmissions(w http.ResponseWriter, r *http.Request) {
	page, err := s.submissions.Search(
		r.Context(),
		r.URL.Query().Get("q"),
		queryInt(r, "page", 1),
		queryInt(r, "pageSize", service.DefaultPageSize),
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{
		Data:       page.Data,
		Pagination: &page.Pagination,
	})
}

// handleSubmissionStats handles GET /api/submissions/stats
func (s *Server) handleSubmissionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.submissions.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: stats})
}

// handleRecentSubmissions handles GET /api/submissions/recent?days&limit
func (s *Server) handleRecentSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.submissions.Recent(
		r.Context(),
		queryInt(r, "days", service.DefaultRecentDays),
		queryInt(r, "limit", service.DefaultRecentLimit),
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{Data: subs})
}

// handleSubmissionsByStatus handles GET /api/submissions/status/{status}
func (s *Server) handleSubmissionsByStatus(w http.ResponseWriter, r *http.Request) {
	page, err := s.submissions.ByStatus(
		r.Context(),
		mux.Vars(r)["status"],
		queryInt(r, "page", 1),
		queryInt(r, "pageSize", service.DefaultPageSize),
	)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SuccessResponse{
		Data:       page.Data,
		Pagination: &page.Pagination,
	})
}

// handlePromoteSubmission handles POST /api/submissions/{id}/promote
func (s *Server) handlePromoteSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		s.respondBadRequest(w, r, "Invalid submission ID")
		return
	}

	project, err := s.submissions.PromoteToProject(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, SuccessResponse{
		Message: "Submission promoted to project",
		Data:    project,
	})
}
