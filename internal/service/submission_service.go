// Package service implements the application logic between the HTTP
// handlers and the repositories: input sanitization, duplicate
// detection, filter handling and aggregate shaping.
package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/intake-backend/internal/apperrors"
	"github.com/intake-backend/internal/models"
	"github.com/intake-backend/internal/storage"
)

// Listing bounds applied to every paginated endpoint
const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	DefaultRecentDays  = 7
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100

	MinSearchTermLength = 2
)

// SubmissionStore is the persistence surface the submission service
// depends on. Satisfied by storage.SubmissionRepository.
type SubmissionStore interface {
	Create(ctx context.Context, fields map[string]any) (*models.Submission, error)
	FindByID(ctx context.Context, id int64) (*models.Submission, error)
	FindByEmail(ctx context.Context, email string) (*models.Submission, error)
	Paginate(ctx context.Context, page, pageSize int, conditions map[string]any, orderBy string) (*storage.Page[models.Submission], error)
	UpdateByID(ctx context.Context, id int64, fields map[string]any) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Submission, error)
	DeleteByID(ctx context.Context, id int64) (*models.Submission, error)
	Search(ctx context.Context, term string, page, pageSize int) (*storage.Page[models.Submission], error)
	Stats(ctx context.Context) (*storage.SubmissionStats, error)
	BudgetBreakdown(ctx context.Context) (map[string]int, error)
	Recent(ctx context.Context, days, limit int) ([]models.Submission, error)
}

// ProjectCreator promotes intake submissions into project records
type ProjectCreator interface {
	CreateFromSubmission(ctx context.Context, sub *models.Submission) (*models.Project, error)
}

// SubmissionService handles the intake submission lifecycle
type SubmissionService struct {
	repo     SubmissionStore
	projects ProjectCreator
}

// NewSubmissionService creates a new submission service. projects may
// be nil when project promotion is not wired.
func NewSubmissionService(repo SubmissionStore, projects ProjectCreator) *SubmissionService {
	return &SubmissionService{repo: repo, projects: projects}
}

// Create sanitizes and validates raw form input, rejects duplicate
// emails and persists the submission.
func (s *SubmissionService) Create(ctx context.Context, data map[string]any) (*models.Submission, error) {
	fields := models.SanitizeSubmission(data)
	if err := models.ValidateSubmission(fields); err != nil {
		return nil, err
	}

	email, _ := fields["email_address"].(string)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("A submission with this email address already exists")
	}

	sub, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("submission_id", sub.ID).
		Str("buyer_category", sub.BuyerCategory).
		Str("land_status", sub.LandStatus).
		Msg("intake submission created")

	return sub, nil
}

// GetByID returns a single submission or a not-found error
func (s *SubmissionService) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("Submission not found")
	}
	return sub, nil
}

// ListFilter holds the optional exact-match filters for List. Blank
// values mean "no filter".
type ListFilter struct {
	Page                 int
	PageSize             int
	Status               string
	BuyerCategory        string
	BuildBudget          string
	ConstructionTimeline string
}

// ListResult is a page of submissions plus the dashboard aggregates
type ListResult struct {
	Data       []models.Submission      `json:"data"`
	Pagination storage.Pagination       `json:"pagination"`
	Stats      *storage.SubmissionStats `json:"stats"`
}

// List returns one page of submissions, newest first, filtered by the
// given criteria, together with the aggregate counters.
func (s *SubmissionService) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	page, pageSize := clampPage(filter.Page, filter.PageSize)

	conditions := map[string]any{}
	if filter.Status != "" {
		if !models.IsValidStatus(filter.Status) {
			return nil, invalidEnumError("Status", models.SubmissionStatuses)
		}
		conditions["status"] = filter.Status
	}
	if filter.BuyerCategory != "" {
		conditions["buyer_category"] = filter.BuyerCategory
	}
	if filter.BuildBudget != "" {
		conditions["build_budget"] = filter.BuildBudget
	}
	if filter.ConstructionTimeline != "" {
		conditions["construction_timeline"] = filter.ConstructionTimeline
	}

	result, err := s.repo.Paginate(ctx, page, pageSize, conditions, "created_at DESC")
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Data:       result.Data,
		Pagination: result.Pagination,
		Stats:      stats,
	}, nil
}

// ByStatus returns one page of submissions in the given status,
// newest first.
func (s *SubmissionService) ByStatus(ctx context.Context, status string, page, pageSize int) (*storage.Page[models.Submission], error) {
	if !models.IsValidStatus(status) {
		return nil, invalidEnumError("Status", models.SubmissionStatuses)
	}

	page, pageSize = clampPage(page, pageSize)
	return s.repo.Paginate(ctx, page, pageSize, map[string]any{"status": status}, "created_at DESC")
}

// UpdateStatus transitions a submission to a new status, optionally
// replacing the admin notes. Nil or empty notes leave the stored notes
// unchanged.
func (s *SubmissionService) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Submission, error) {
	sub, err := s.repo.UpdateStatus(ctx, id, status, adminNotes)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("Submission not found")
	}

	log.Info().
		Int64("submission_id", sub.ID).
		Str("status", sub.Status).
		Msg("submission status updated")

	return sub, nil
}

// Delete removes a submission, returning the deleted record
func (s *SubmissionService) Delete(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("Submission not found")
	}
	return sub, nil
}

// Search runs a substring match across name, email, company and
// description. Terms shorter than two characters are rejected.
func (s *SubmissionService) Search(ctx context.Context, term string, page, pageSize int) (*storage.Page[models.Submission], error) {
	term = strings.TrimSpace(term)
	if len(term) < MinSearchTermLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Search term must be at least %d characters", MinSearchTermLength))
	}

	page, pageSize = clampPage(page, pageSize)
	return s.repo.Search(ctx, term, page, pageSize)
}

// StatsResult extends the raw counters with derived percentages. The
// percentages are present only when at least one submission exists.
type StatsResult struct {
	storage.SubmissionStats
	ByBuildBudget       map[string]int `json:"by_build_budget,omitempty"`
	NewPercentage       *float64       `json:"new_percentage,omitempty"`
	QualifiedPercentage *float64       `json:"qualified_percentage,omitempty"`
	HomebuyerPercentage *float64       `json:"homebuyer_percentage,omitempty"`
	DeveloperPercentage *float64       `json:"developer_percentage,omitempty"`
}

// Stats returns the dashboard counters with derived percentages and
// the per-budget breakdown
func (s *SubmissionService) Stats(ctx context.Context) (*StatsResult, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.repo.BudgetBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	result := &StatsResult{SubmissionStats: *stats, ByBuildBudget: breakdown}
	if stats.Total > 0 {
		result.NewPercentage = percentage(stats.NewCount, stats.Total)
		result.QualifiedPercentage = percentage(stats.QualifiedCount, stats.Total)
		result.HomebuyerPercentage = percentage(stats.HomebuyerCount, stats.Total)
		result.DeveloperPercentage = percentage(stats.DeveloperCount, stats.Total)
	}
	return result, nil
}

// Recent returns submissions from the last `days` days, newest first.
// Non-positive inputs fall back to the defaults; limit is capped.
func (s *SubmissionService) Recent(ctx context.Context, days, limit int) ([]models.Submission, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return s.repo.Recent(ctx, days, limit)
}

// PromoteToProject creates a project from a qualified submission and
// links the submission to it.
func (s *SubmissionService) PromoteToProject(ctx context.Context, id int64) (*models.Project, error) {
	if s.projects == nil {
		return nil, apperrors.NewValidationError("Project promotion is not configured")
	}

	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.ProjectID != nil {
		return nil, apperrors.NewConflictError("Submission is already linked to a project")
	}

	project, err := s.projects.CreateFromSubmission(ctx, sub)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateByID(ctx, sub.ID, map[string]any{"project_id": project.ID}); err != nil {
		return nil, err
	}

	log.Info().
		Int64("submission_id", sub.ID).
		Int64("project_id", project.ID).
		Msg("submission promoted to project")

	return project, nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func invalidEnumError(field string, valid []string) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("%s must be one of: %s", field, strings.Join(valid, ", ")))
}

func percentage(count, total int) *float64 {
	v := math.Round(float64(count)/float64(total)*1000) / 10
	return &v
}
