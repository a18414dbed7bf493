package storage

import (
	"context"
	"fmt"

	"github.com/intake-backend/internal/models"
)

const projectsTable = "projects"

// ProjectRepository handles project persistence
type ProjectRepository struct {
	*Store[models.Project]
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *PostgresDB) *ProjectRepository {
	return &ProjectRepository{Store: NewStore[models.Project](db, projectsTable)}
}

// CreateFromSubmission promotes a qualified intake into a project,
// carrying over the shared vocabulary fields and the user link.
func (r *ProjectRepository) CreateFromSubmission(ctx context.Context, sub *models.Submission) (*models.Project, error) {
	fields := map[string]any{
		"name":                           fmt.Sprintf("%s build", sub.FullName),
		"status":                         models.DefaultProjectStatus,
		"buyer_category":                 sub.BuyerCategory,
		"financing_plan":                 sub.FinancingPlan,
		"interested_in_preferred_lender": sub.InterestedInPreferredLender,
		"land_status":                    sub.LandStatus,
		"build_budget":                   sub.BuildBudget,
		"construction_timeline":          sub.ConstructionTimeline,
	}
	if sub.ProjectDescription != nil {
		fields["description"] = *sub.ProjectDescription
	}
	if sub.LotAddress != nil {
		fields["lot_address"] = *sub.LotAddress
	}
	if sub.NeedsHelpFindingLand != nil {
		fields["needs_help_finding_land"] = *sub.NeedsHelpFindingLand
	}
	if sub.PreferredAreaDescription != nil {
		fields["preferred_area_description"] = *sub.PreferredAreaDescription
	}
	if sub.UserID != nil {
		fields["user_id"] = *sub.UserID
	}

	return r.Create(ctx, fields)
}
