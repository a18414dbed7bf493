package service

import (
	"context"
	"strings"

	"github.com/intake-backend/internal/apperrors"
	"github.com/intake-backend/internal/models"
	"github.com/intake-backend/internal/storage"
)

// UserStore is the persistence surface the user service depends on.
// Satisfied by storage.UserRepository.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindWithFilters(ctx context.Context, filter storage.UserFilter) ([]models.User, error)
	Search(ctx context.Context, criteria storage.UserSearchCriteria) ([]models.User, error)
	Projects(ctx context.Context, userID int64) ([]models.Project, error)
	Submissions(ctx context.Context, userID int64) ([]models.UserSubmission, error)
}

// UserService handles user lookups and relationship queries
type UserService struct {
	repo UserStore
}

// NewUserService creates a new user service
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// GetByID returns a single user or a not-found error
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	return user, nil
}

// List returns users with pagination, sorting and date-range filters
func (s *UserService) List(ctx context.Context, filter storage.UserFilter) ([]models.User, error) {
	return s.repo.FindWithFilters(ctx, filter)
}

// Search finds users matching a partial email and/or name. With no
// criteria the result is empty rather than an error; the repository
// short-circuits without touching the database.
func (s *UserService) Search(ctx context.Context, email, name string) ([]models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	return s.repo.Search(ctx, storage.UserSearchCriteria{Email: email, Name: name})
}

// Projects returns the projects belonging to a user. The user must
// exist.
func (s *UserService) Projects(ctx context.Context, userID int64) ([]models.Project, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.Projects(ctx, userID)
}

// Submissions returns the submissions belonging to a user, each joined
// with its linked project name. The user must exist.
func (s *UserService) Submissions(ctx context.Context, userID int64) ([]models.UserSubmission, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.Submissions(ctx, userID)
}
