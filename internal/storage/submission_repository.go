package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/intake-backend/internal/apperrors"
	"github.com/intake-backend/internal/models"
)

const submissionsTable = "intake_submissions"

// searchPredicate is shared between the search page query and its
// count query so totals always match the returned rows.
const searchPredicate = `full_name ILIKE $1
		OR email_address ILIKE $1
		OR company_name ILIKE $1
		OR project_description ILIKE $1`

// SubmissionRepository handles intake submission persistence
type SubmissionRepository struct {
	*Store[models.Submission]
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *PostgresDB) *SubmissionRepository {
	return &SubmissionRepository{Store: NewStore[models.Submission](db, submissionsTable)}
}

// FindByEmail returns the submission with the given (case-normalized)
// email, or nil when none exists. Blank input is treated as not found.
func (r *SubmissionRepository) FindByEmail(ctx context.Context, email string) (*models.Submission, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE LOWER(email_address) = $1 LIMIT 1", submissionsTable)
	return queryOne[models.Submission](ctx, r.DB(), "select "+submissionsTable, sql, email)
}

// UpdateStatus applies a validated status transition. adminNotes nil
// or empty means the stored notes stay unchanged. Returns nil when the
// submission does not exist.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Submission, error) {
	if !models.IsValidStatus(status) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Status must be one of: %s", strings.Join(models.SubmissionStatuses, ", ")))
	}

	fields := map[string]any{"status": status}
	if adminNotes != nil && strings.TrimSpace(*adminNotes) != "" {
		fields["admin_notes"] = *adminNotes
	}

	return r.UpdateByID(ctx, id, fields)
}

// Search performs a case-insensitive substring match across name,
// email, company and description, returning one page plus a total
// computed from the identical predicate.
func (r *SubmissionRepository) Search(ctx context.Context, term string, page, pageSize int) (*Page[models.Submission], error) {
	pattern := "%" + term + "%"

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", submissionsTable, searchPredicate)
	totalCount, err := queryCount(ctx, r.DB(), "count "+submissionsTable, countSQL, pattern)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`SELECT * FROM %s
	WHERE %s
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`, submissionsTable, searchPredicate)

	offset := (page - 1) * pageSize
	data, err := queryAll[models.Submission](ctx, r.DB(), "select "+submissionsTable, sql, pattern, pageSize, offset)
	if err != nil {
		return nil, err
	}

	return &Page[models.Submission]{
		Data:       data,
		Pagination: NewPagination(page, pageSize, totalCount),
	}, nil
}

// SubmissionStats holds the aggregate counters for the admin dashboard
type SubmissionStats struct {
	Total             int `json:"total" db:"total"`
	NewCount          int `json:"new_count" db:"new_count"`
	ReviewedCount     int `json:"reviewed_count" db:"reviewed_count"`
	QualifiedCount    int `json:"qualified_count" db:"qualified_count"`
	DisqualifiedCount int `json:"disqualified_count" db:"disqualified_count"`
	ContactedCount    int `json:"contacted_count" db:"contacted_count"`
	HomebuyerCount    int `json:"homebuyer_count" db:"homebuyer_count"`
	DeveloperCount    int `json:"developer_count" db:"developer_count"`
	RecentCount       int `json:"recent_count" db:"recent_count"`
}

// Stats computes all dashboard counters in a single aggregate query
func (r *SubmissionRepository) Stats(ctx context.Context) (*SubmissionStats, error) {
	sql := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'new') AS new_count,
		COUNT(*) FILTER (WHERE status = 'reviewed') AS reviewed_count,
		COUNT(*) FILTER (WHERE status = 'qualified') AS qualified_count,
		COUNT(*) FILTER (WHERE status = 'disqualified') AS disqualified_count,
		COUNT(*) FILTER (WHERE status = 'contacted') AS contacted_count,
		COUNT(*) FILTER (WHERE buyer_category = 'homebuyer') AS homebuyer_count,
		COUNT(*) FILTER (WHERE buyer_category = 'developer') AS developer_count,
		COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days') AS recent_count
	FROM %s`, submissionsTable)

	stats, err := queryOne[SubmissionStats](ctx, r.DB(), "stats "+submissionsTable, sql)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		// COUNT(*) aggregates always yield a row
		return &SubmissionStats{}, nil
	}
	return stats, nil
}

// BudgetBreakdown returns submission counts grouped by build budget
func (r *SubmissionRepository) BudgetBreakdown(ctx context.Context) (map[string]int, error) {
	sql := fmt.Sprintf("SELECT build_budget, COUNT(*) AS count FROM %s GROUP BY build_budget", submissionsTable)
	rows, err := queryMaps(ctx, r.DB(), "stats "+submissionsTable, sql)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		budget, _ := row["build_budget"].(string)
		switch v := row["count"].(type) {
		case int64:
			out[budget] = int(v)
		case int32:
			out[budget] = int(v)
		case int:
			out[budget] = v
		}
	}
	return out, nil
}

// Recent returns submissions created within the last `days` days,
// newest first, capped at `limit`. The cutoff is applied in SQL so the
// count is exact regardless of volume.
func (r *SubmissionRepository) Recent(ctx context.Context, days, limit int) ([]models.Submission, error) {
	sql := fmt.Sprintf(`SELECT * FROM %s
	WHERE created_at >= NOW() - make_interval(days => $1)
	ORDER BY created_at DESC
	LIMIT $2`, submissionsTable)

	return queryAll[models.Submission](ctx, r.DB(), "select "+submissionsTable, sql, days, limit)
}
