package models

import "time"

// DefaultProjectStatus is applied at creation time when absent
const DefaultProjectStatus = "planning"

// Project represents a build project, optionally owned by a user.
// Projects mirror the submission vocabulary so an intake can be
// promoted into a project without translation, and carry ClickUp
// correlation ids for the external task tracker.
type Project struct {
	ID                          int64     `json:"id" db:"id"`
	Name                        string    `json:"name" db:"name"`
	Description                 *string   `json:"description,omitempty" db:"description"`
	Status                      string    `json:"status" db:"status"`
	UserID                      *int64    `json:"user_id,omitempty" db:"user_id"`
	BuyerCategory               *string   `json:"buyer_category,omitempty" db:"buyer_category"`
	FinancingPlan               *string   `json:"financing_plan,omitempty" db:"financing_plan"`
	InterestedInPreferredLender bool      `json:"interested_in_preferred_lender" db:"interested_in_preferred_lender"`
	LandStatus                  *string   `json:"land_status,omitempty" db:"land_status"`
	LotAddress                  *string   `json:"lot_address,omitempty" db:"lot_address"`
	NeedsHelpFindingLand        bool      `json:"needs_help_finding_land" db:"needs_help_finding_land"`
	PreferredAreaDescription    *string   `json:"preferred_area_description,omitempty" db:"preferred_area_description"`
	BuildBudget                 *string   `json:"build_budget,omitempty" db:"build_budget"`
	ConstructionTimeline        *string   `json:"construction_timeline,omitempty" db:"construction_timeline"`
	ClickupTaskID               *string   `json:"clickup_task_id,omitempty" db:"clickup_task_id"`
	ClickupListID               *string   `json:"clickup_list_id,omitempty" db:"clickup_list_id"`
	CreatedAt                   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at" db:"updated_at"`
}
