package storage

import (
	"strings"
	"testing"

	"github.com/intake-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTestUser(t *testing.T, repo *UserRepository, name, email string) *models.User {
	t.Helper()
	ctx := testContext(t)

	user, err := repo.Create(ctx, map[string]any{
		"full_name":     name,
		"email_address": email,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	t.Cleanup(func() {
		_, _ = repo.DeleteByID(testContext(t), user.ID)
	})
	return user
}

func TestUserRepositoryEmailLookups(t *testing.T) {
	db := testDB(t)
	ctx := testContext(t)
	repo := NewUserRepository(db)

	email := uniqueEmail("user-lookup")
	user := insertTestUser(t, repo, "Lookup User", email)

	exists, err := repo.EmailExists(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, "nobody@nowhere.example")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.EmailExists(ctx, "  ")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := repo.FindByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.FindByEmail(ctx, "nobody@nowhere.example")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepositoryRelationships(t *testing.T) {
	db := testDB(t)
	ctx := testContext(t)
	userRepo := NewUserRepository(db)
	subRepo := NewSubmissionRepository(db)
	projectRepo := NewProjectRepository(db)

	user := insertTestUser(t, userRepo, "Relation User", uniqueEmail("user-rel"))

	sub := insertTestSubmission(t, subRepo, map[string]any{"user_id": user.ID})

	project, err := projectRepo.CreateFromSubmission(ctx, sub)
	require.NoError(t, err)
	require.NotNil(t, project)
	t.Cleanup(func() {
		_, _ = projectRepo.DeleteByID(testContext(t), project.ID)
	})

	_, err = subRepo.UpdateByID(ctx, sub.ID, map[string]any{"project_id": project.ID})
	require.NoError(t, err)

	projects, err := userRepo.Projects(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, project.ID, projects[0].ID)

	subs, err := userRepo.Submissions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub.ID, subs[0].ID)
	require.NotNil(t, subs[0].ProjectName)
	assert.Equal(t, project.Name, *subs[0].ProjectName)

	// Non-positive ids read as empty, not as errors
	empty, err := userRepo.Projects(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepositorySearch(t *testing.T) {
	db := testDB(t)
	ctx := testContext(t)
	repo := NewUserRepository(db)

	email := uniqueEmail("user-search")
	insertTestUser(t, repo, "Searchable Zebra", email)

	byEmail, err := repo.Search(ctx, UserSearchCriteria{Email: strings.ToUpper(email)})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	both, err := repo.Search(ctx, UserSearchCriteria{Email: email, Name: "zebra"})
	require.NoError(t, err)
	require.Len(t, both, 1)

	mismatch, err := repo.Search(ctx, UserSearchCriteria{Email: email, Name: "aardvark"})
	require.NoError(t, err)
	assert.Empty(t, mismatch)

	none, err := repo.Search(ctx, UserSearchCriteria{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserRepositoryFindWithFilters(t *testing.T) {
	db := testDB(t)
	ctx := testContext(t)
	repo := NewUserRepository(db)

	insertTestUser(t, repo, "Filter User A", uniqueEmail("user-filter-a"))
	insertTestUser(t, repo, "Filter User B", uniqueEmail("user-filter-b"))

	users, err := repo.FindWithFilters(ctx, UserFilter{Limit: 1, SortBy: "email_address", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	// Negative pagination yields an empty result rather than an error
	empty, err := repo.FindWithFilters(ctx, UserFilter{Limit: -1})
	require.NoError(t, err)
	assert.Empty(t, empty)

	empty, err = repo.FindWithFilters(ctx, UserFilter{Offset: -5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
