package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intake-backend/internal/apperrors"
	"github.com/intake-backend/internal/models"
	"github.com/intake-backend/internal/storage"
)

// In-memory mocks for testing

type mockSubmissionStore struct {
	submissions map[int64]*models.Submission
	nextID      int64
	statsResult *storage.SubmissionStats
}

func newMockSubmissionStore() *mockSubmissionStore {
	return &mockSubmissionStore{
		submissions: map[int64]*models.Submission{},
		nextID:      1,
		statsResult: &storage.SubmissionStats{},
	}
}

func (m *mockSubmissionStore) Create(ctx context.Context, fields map[string]any) (*models.Submission, error) {
	sub := &models.Submission{
		ID:           m.nextID,
		FullName:     fields["full_name"].(string),
		EmailAddress: fields["email_address"].(string),
		Status:       fields["status"].(string),
		CreatedAt:    time.Now(),
	}
	if v, ok := fields["buyer_category"].(string); ok {
		sub.BuyerCategory = v
	}
	if v, ok := fields["land_status"].(string); ok {
		sub.LandStatus = v
	}
	m.nextID++
	m.submissions[sub.ID] = sub
	return sub, nil
}

func (m *mockSubmissionStore) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	return m.submissions[id], nil
}

func (m *mockSubmissionStore) FindByEmail(ctx context.Context, email string) (*models.Submission, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, sub := range m.submissions {
		if strings.ToLower(sub.EmailAddress) == email {
			return sub, nil
		}
	}
	return nil, nil
}

func (m *mockSubmissionStore) Paginate(ctx context.Context, page, pageSize int, conditions map[string]any, orderBy string) (*storage.Page[models.Submission], error) {
	var data []models.Submission
	for _, sub := range m.submissions {
		if status, ok := conditions["status"]; ok && sub.Status != status {
			continue
		}
		data = append(data, *sub)
	}
	return &storage.Page[models.Submission]{
		Data:       data,
		Pagination: storage.NewPagination(page, pageSize, len(data)),
	}, nil
}

func (m *mockSubmissionStore) UpdateByID(ctx context.Context, id int64, fields map[string]any) (*models.Submission, error) {
	sub, ok := m.submissions[id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["project_id"].(int64); ok {
		sub.ProjectID = &v
	}
	return sub, nil
}

func (m *mockSubmissionStore) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Submission, error) {
	if !models.IsValidStatus(status) {
		return nil, apperrors.NewValidationError("Status must be one of: " + strings.Join(models.SubmissionStatuses, ", "))
	}
	sub, ok := m.submissions[id]
	if !ok {
		return nil, nil
	}
	sub.Status = status
	if adminNotes != nil && strings.TrimSpace(*adminNotes) != "" {
		sub.AdminNotes = adminNotes
	}
	return sub, nil
}

func (m *mockSubmissionStore) DeleteByID(ctx context.Context, id int64) (*models.Submission, error) {
	sub, ok := m.submissions[id]
	if !ok {
		return nil, nil
	}
	delete(m.submissions, id)
	return sub, nil
}

func (m *mockSubmissionStore) Search(ctx context.Context, term string, page, pageSize int) (*storage.Page[models.Submission], error) {
	var data []models.Submission
	for _, sub := range m.submissions {
		if strings.Contains(strings.ToLower(sub.FullName), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(sub.EmailAddress), strings.ToLower(term)) {
			data = append(data, *sub)
		}
	}
	return &storage.Page[models.Submission]{
		Data:       data,
		Pagination: storage.NewPagination(page, pageSize, len(data)),
	}, nil
}

func (m *mockSubmissionStore) Stats(ctx context.Context) (*storage.SubmissionStats, error) {
	return m.statsResult, nil
}

func (m *mockSubmissionStore) BudgetBreakdown(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, sub := range m.submissions {
		out[sub.BuildBudget]++
	}
	return out, nil
}

func (m *mockSubmissionStore) Recent(ctx context.Context, days, limit int) ([]models.Submission, error) {
	var data []models.Submission
	for _, sub := range m.submissions {
		data = append(data, *sub)
		if len(data) == limit {
			break
		}
	}
	return data, nil
}

type mockProjectCreator struct {
	created []*models.Project
}

func (m *mockProjectCreator) CreateFromSubmission(ctx context.Context, sub *models.Submission) (*models.Project, error) {
	project := &models.Project{
		ID:     int64(len(m.created) + 1),
		Name:   sub.FullName + " build",
		Status: models.DefaultProjectStatus,
	}
	m.created = append(m.created, project)
	return project, nil
}

func validSubmissionInput() map[string]any {
	return map[string]any{
		"full_name":             "Jane Builder",
		"email_address":         "jane@example.com",
		"phone_number":          "555-867-5309",
		"buyer_category":        "homebuyer",
		"financing_plan":        "self_funding",
		"land_status":           "own_land",
		"lot_address":           "12 Ridge Road",
		"build_budget":          "250k_350k",
		"construction_timeline": "3_to_6_months",
		"project_description":   "two story modern farmhouse",
	}
}

func TestSubmissionServiceCreate(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	sub, err := svc.Create(ctx, validSubmissionInput())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", sub.EmailAddress)
	assert.Equal(t, models.StatusNew, sub.Status)
}

func TestSubmissionServiceCreateRejectsInvalidInput(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)

	input := validSubmissionInput()
	delete(input, "full_name")
	input["email_address"] = "not-an-email"

	_, err := svc.Create(context.Background(), input)
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.GreaterOrEqual(t, len(vErr.Details), 2, "all violations should be reported together")
	assert.Empty(t, store.submissions, "nothing should be persisted on validation failure")
}

func TestSubmissionServiceCreateRejectsDuplicateEmail(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, validSubmissionInput())
	require.NoError(t, err)

	// Same address with different casing still collides
	input := validSubmissionInput()
	input["email_address"] = "JANE@Example.com"
	_, err = svc.Create(ctx, input)

	var cErr *apperrors.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Len(t, store.submissions, 1)
}

func TestSubmissionServiceGetByID(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validSubmissionInput())
	require.NoError(t, err)

	found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByID(ctx, 999)
	var nfErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestSubmissionServiceListClampsPagination(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	result, err := svc.List(ctx, ListFilter{Page: -3, PageSize: 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, MaxPageSize, result.Pagination.PageSize)

	result, err = svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, result.Pagination.PageSize)
	require.NotNil(t, result.Stats)
}

func TestSubmissionServiceListRejectsUnknownStatus(t *testing.T) {
	svc := NewSubmissionService(newMockSubmissionStore(), nil)

	_, err := svc.List(context.Background(), ListFilter{Status: "archived"})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestSubmissionServiceUpdateStatus(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validSubmissionInput())
	require.NoError(t, err)

	notes := "called back"
	updated, err := svc.UpdateStatus(ctx, created.ID, models.StatusContacted, &notes)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, updated.Status)

	_, err = svc.UpdateStatus(ctx, 999, models.StatusReviewed, nil)
	var nfErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestSubmissionServiceSearchTermGuard(t *testing.T) {
	svc := NewSubmissionService(newMockSubmissionStore(), nil)
	ctx := context.Background()

	for _, term := range []string{"", " ", "a", " a "} {
		_, err := svc.Search(ctx, term, 1, 10)
		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr, "term %q should be rejected", term)
	}

	_, err := svc.Search(ctx, "ok", 1, 10)
	require.NoError(t, err)
}

func TestSubmissionServiceStatsPercentages(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	// Empty data set carries no percentages
	result, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Nil(t, result.NewPercentage)
	assert.Nil(t, result.HomebuyerPercentage)

	store.statsResult = &storage.SubmissionStats{
		Total:          8,
		NewCount:       2,
		QualifiedCount: 1,
		HomebuyerCount: 6,
		DeveloperCount: 2,
	}

	result, err = svc.Stats(ctx)
	require.NoError(t, err)
	require.NotNil(t, result.NewPercentage)
	assert.InDelta(t, 25.0, *result.NewPercentage, 0.01)
	require.NotNil(t, result.QualifiedPercentage)
	assert.InDelta(t, 12.5, *result.QualifiedPercentage, 0.01)
	require.NotNil(t, result.HomebuyerPercentage)
	assert.InDelta(t, 75.0, *result.HomebuyerPercentage, 0.01)
}

func TestSubmissionServiceRecentDefaults(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		input := validSubmissionInput()
		input["email_address"] = strings.Replace("user-N@example.com", "N", string(rune('a'+i)), 1)
		_, err := svc.Create(ctx, input)
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentLimit)
}

func TestSubmissionServiceDelete(t *testing.T) {
	store := newMockSubmissionStore()
	svc := NewSubmissionService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validSubmissionInput())
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.Delete(ctx, created.ID)
	var nfErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestSubmissionServicePromoteToProject(t *testing.T) {
	store := newMockSubmissionStore()
	projects := &mockProjectCreator{}
	svc := NewSubmissionService(store, projects)
	ctx := context.Background()

	created, err := svc.Create(ctx, validSubmissionInput())
	require.NoError(t, err)

	project, err := svc.PromoteToProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Builder build", project.Name)
	require.NotNil(t, store.submissions[created.ID].ProjectID)
	assert.Equal(t, project.ID, *store.submissions[created.ID].ProjectID)

	// A second promotion of the same submission conflicts
	_, err = svc.PromoteToProject(ctx, created.ID)
	var cErr *apperrors.ConflictError
	require.ErrorAs(t, err, &cErr)
}
