// Package models provides data models and domain validation for the
// intake backend.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/intake-backend/internal/apperrors"
)

// Submission statuses. The lifecycle is a flat validated set: any
// status may move to any other, the only guard is membership.
const (
	StatusNew          = "new"
	StatusReviewed     = "reviewed"
	StatusQualified    = "qualified"
	StatusDisqualified = "disqualified"
	StatusContacted    = "contacted"
)

// DefaultReferralSource is the lead attribution tag applied when a
// submission arrives without one.
const DefaultReferralSource = "Ritz-Craft"

// Closed enumerations for the categorical submission fields
var (
	BuyerCategories       = []string{"homebuyer", "developer"}
	FinancingPlans        = []string{"self_funding", "finance_build"}
	LandStatuses          = []string{"own_land", "need_land"}
	BuildBudgets          = []string{"200k_250k", "250k_350k", "350k_400k", "400k_500k", "500k_plus"}
	ConstructionTimelines = []string{"less_than_3_months", "3_to_6_months", "6_to_12_months", "more_than_12_months"}
	SubmissionStatuses    = []string{StatusNew, StatusReviewed, StatusQualified, StatusDisqualified, StatusContacted}
)

// Submission represents an intake submission record
type Submission struct {
	ID                          int64     `json:"id" db:"id"`
	FullName                    string    `json:"full_name" db:"full_name"`
	EmailAddress                string    `json:"email_address" db:"email_address"`
	PhoneNumber                 string    `json:"phone_number" db:"phone_number"`
	CompanyName                 *string   `json:"company_name,omitempty" db:"company_name"`
	BuyerCategory               string    `json:"buyer_category" db:"buyer_category"`
	FinancingPlan               string    `json:"financing_plan" db:"financing_plan"`
	InterestedInPreferredLender bool      `json:"interested_in_preferred_lender" db:"interested_in_preferred_lender"`
	LandStatus                  string    `json:"land_status" db:"land_status"`
	LotAddress                  *string   `json:"lot_address,omitempty" db:"lot_address"`
	NeedsHelpFindingLand        *bool     `json:"needs_help_finding_land,omitempty" db:"needs_help_finding_land"`
	PreferredAreaDescription    *string   `json:"preferred_area_description,omitempty" db:"preferred_area_description"`
	BuildBudget                 string    `json:"build_budget" db:"build_budget"`
	ConstructionTimeline        string    `json:"construction_timeline" db:"construction_timeline"`
	ProjectDescription          *string   `json:"project_description,omitempty" db:"project_description"`
	Status                      string    `json:"status" db:"status"`
	AdminNotes                  *string   `json:"admin_notes,omitempty" db:"admin_notes"`
	ReferralSource              string    `json:"referral_source" db:"referral_source"`
	UserID                      *int64    `json:"user_id,omitempty" db:"user_id"`
	ProjectID                   *int64    `json:"project_id,omitempty" db:"project_id"`
	CreatedAt                   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at" db:"updated_at"`
}

// UserSubmission is a submission joined with its linked project name,
// as returned by the user relationship queries.
type UserSubmission struct {
	Submission
	ProjectName *string `json:"project_name,omitempty" db:"project_name"`
}

var submissionRequiredFields = []string{
	"full_name", "email_address", "phone_number",
	"buyer_category", "financing_plan", "land_status",
	"build_budget", "construction_timeline", "project_description",
}

var submissionStringFields = []string{
	"full_name", "email_address", "phone_number", "company_name",
	"lot_address", "preferred_area_description", "project_description",
	"admin_notes", "referral_source", "status",
}

// submissionWritableFields is the allow-list of columns a caller may
// set on insert. Keys outside this list never reach the query builder.
var submissionWritableFields = map[string]bool{
	"full_name":                      true,
	"email_address":                  true,
	"phone_number":                   true,
	"company_name":                   true,
	"buyer_category":                 true,
	"financing_plan":                 true,
	"interested_in_preferred_lender": true,
	"land_status":                    true,
	"lot_address":                    true,
	"needs_help_finding_land":        true,
	"preferred_area_description":     true,
	"build_budget":                   true,
	"construction_timeline":          true,
	"project_description":            true,
	"status":                         true,
	"admin_notes":                    true,
	"referral_source":                true,
	"user_id":                        true,
	"project_id":                     true,
}

var (
	submissionEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex           = regexp.MustCompile(`^[\d\s().+-]{10,}$`)
)

// SanitizeSubmission trims string fields, lower-cases the email, fills
// defaults and strips nil values and unknown keys. It is a pure
// function and idempotent.
func SanitizeSubmission(data map[string]any) map[string]any {
	sanitized := make(map[string]any, len(data))
	for key, value := range data {
		if value == nil || !submissionWritableFields[key] {
			continue
		}
		sanitized[key] = value
	}

	for _, field := range submissionStringFields {
		if s, ok := sanitized[field].(string); ok {
			sanitized[field] = strings.TrimSpace(s)
		}
	}

	if email, ok := sanitized["email_address"].(string); ok {
		sanitized["email_address"] = strings.ToLower(email)
	}

	if !truthy(sanitized["status"]) {
		sanitized["status"] = StatusNew
	}
	if !truthy(sanitized["referral_source"]) {
		sanitized["referral_source"] = DefaultReferralSource
	}
	if !truthy(sanitized["interested_in_preferred_lender"]) {
		sanitized["interested_in_preferred_lender"] = false
	}
	if !truthy(sanitized["needs_help_finding_land"]) {
		sanitized["needs_help_finding_land"] = false
	}

	return sanitized
}

// ValidateSubmission checks required fields, email and phone patterns,
// enum membership and the conditional land rules. All violations are
// collected into a single ValidationError rather than stopping at the
// first failure.
func ValidateSubmission(data map[string]any) error {
	var errs []string

	for _, field := range submissionRequiredFields {
		if !truthy(data[field]) {
			errs = append(errs, fmt.Sprintf("%s is required", field))
		}
	}

	if email := stringValue(data["email_address"]); email != "" && !submissionEmailRegex.MatchString(email) {
		errs = append(errs, "email_address must be a valid email")
	}

	if phone := stringValue(data["phone_number"]); phone != "" && !phoneRegex.MatchString(phone) {
		errs = append(errs, "phone_number must be a valid phone number")
	}

	errs = appendEnumViolation(errs, data, "buyer_category", BuyerCategories)
	errs = appendEnumViolation(errs, data, "financing_plan", FinancingPlans)
	errs = appendEnumViolation(errs, data, "land_status", LandStatuses)
	errs = appendEnumViolation(errs, data, "build_budget", BuildBudgets)
	errs = appendEnumViolation(errs, data, "construction_timeline", ConstructionTimelines)

	if stringValue(data["land_status"]) == "own_land" && !truthy(data["lot_address"]) {
		errs = append(errs, "lot_address is required when land_status is own_land")
	}

	if stringValue(data["land_status"]) == "need_land" {
		if needsHelp, ok := data["needs_help_finding_land"].(bool); ok && needsHelp && !truthy(data["preferred_area_description"]) {
			errs = append(errs, "preferred_area_description is required when needs_help_finding_land is true")
		}
	}

	if len(errs) > 0 {
		return apperrors.NewValidationError("Validation failed", errs...)
	}
	return nil
}

// IsValidStatus reports whether s is a member of the status set
func IsValidStatus(s string) bool {
	return contains(SubmissionStatuses, s)
}

func appendEnumViolation(errs []string, data map[string]any, field string, valid []string) []string {
	raw, present := data[field]
	if !present {
		return errs
	}
	s, ok := raw.(string)
	if !ok || (s != "" && !contains(valid, s)) {
		errs = append(errs, fmt.Sprintf("%s must be one of: %s", field, strings.Join(valid, ", ")))
	}
	return errs
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// truthy mirrors the presence semantics of the intake form payloads:
// nil, empty or whitespace-only strings, false and zero all count as
// absent.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}
