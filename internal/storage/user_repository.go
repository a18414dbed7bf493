package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/intake-backend/internal/models"
)

const usersTable = "users"

// UserRepository handles user persistence and relationship queries
type UserRepository struct {
	*Store[models.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *PostgresDB) *UserRepository {
	return &UserRepository{Store: NewStore[models.User](db, usersTable)}
}

// EmailExists reports whether a user with the given email exists,
// comparing case-insensitively. Blank input reads as not found.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}

	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE LOWER(email_address) = LOWER($1)", usersTable)
	count, err := queryCount(ctx, r.DB(), "count "+usersTable, sql, email)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByEmail returns the user with the given email, case-insensitive,
// or nil when none exists. Blank input reads as not found.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE LOWER(email_address) = LOWER($1) LIMIT 1", usersTable)
	return queryOne[models.User](ctx, r.DB(), "select "+usersTable, sql, email)
}

// Projects returns the user's projects, newest first. A non-positive
// id yields an empty result, never an error.
func (r *UserRepository) Projects(ctx context.Context, userID int64) ([]models.Project, error) {
	if userID <= 0 {
		return []models.Project{}, nil
	}

	sql := `SELECT * FROM projects WHERE user_id = $1 ORDER BY created_at DESC`
	return queryAll[models.Project](ctx, r.DB(), "select projects", sql, userID)
}

// Submissions returns the user's submissions, newest first, each
// joined with the linked project name when one exists. A non-positive
// id yields an empty result, never an error.
func (r *UserRepository) Submissions(ctx context.Context, userID int64) ([]models.UserSubmission, error) {
	if userID <= 0 {
		return []models.UserSubmission{}, nil
	}

	sql := `SELECT s.*, p.name AS project_name
	FROM intake_submissions s
	LEFT JOIN projects p ON s.project_id = p.id
	WHERE s.user_id = $1
	ORDER BY s.created_at DESC`

	return queryAll[models.UserSubmission](ctx, r.DB(), "select "+submissionsTable, sql, userID)
}

// UserSearchCriteria holds the partial-match search inputs. At least
// one must be provided; an empty criteria set deliberately matches
// nothing rather than everything.
type UserSearchCriteria struct {
	Email string
	Name  string
}

// Search finds users by case-insensitive partial email and/or name
// match, both criteria ANDed when present.
func (r *UserRepository) Search(ctx context.Context, criteria UserSearchCriteria) ([]models.User, error) {
	email := strings.TrimSpace(criteria.Email)
	name := strings.TrimSpace(criteria.Name)
	if email == "" && name == "" {
		return []models.User{}, nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE 1=1", usersTable)
	var args []any

	if email != "" {
		args = append(args, "%"+email+"%")
		sql += fmt.Sprintf(" AND email_address ILIKE $%d", len(args))
	}
	if name != "" {
		args = append(args, "%"+name+"%")
		sql += fmt.Sprintf(" AND full_name ILIKE $%d", len(args))
	}

	sql += " ORDER BY full_name ASC"
	return queryAll[models.User](ctx, r.DB(), "select "+usersTable, sql, args...)
}

// UserFilter holds listing options for FindWithFilters
type UserFilter struct {
	Limit         int
	Offset        int
	SortBy        string
	SortOrder     string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// FindWithFilters lists users with pagination, date-range filters and
// allow-listed sorting. Invalid pagination yields an empty result; an
// unrecognized sort field falls back to the default rather than being
// interpolated.
func (r *UserRepository) FindWithFilters(ctx context.Context, filter UserFilter) ([]models.User, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return []models.User{}, nil
	}

	sortBy := models.SafeUserSortField(filter.SortBy)
	sortOrder := models.SafeSortOrder(filter.SortOrder)

	sql := fmt.Sprintf("SELECT * FROM %s WHERE 1=1", usersTable)
	var args []any

	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		sql += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		sql += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	sql += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)
	args = append(args, filter.Limit)
	sql += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	sql += fmt.Sprintf(" OFFSET $%d", len(args))

	return queryAll[models.User](ctx, r.DB(), "select "+usersTable, sql, args...)
}
