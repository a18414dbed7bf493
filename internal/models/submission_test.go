package models

import (
	"strings"
	"testing"

	"github.com/intake-backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"full_name":             "Jane Smith",
		"email_address":         "jane@example.com",
		"phone_number":          "555-123-4567",
		"buyer_category":        "homebuyer",
		"financing_plan":        "self_funding",
		"land_status":           "own_land",
		"lot_address":           "123 Main St, Scranton PA",
		"build_budget":          "250k_350k",
		"construction_timeline": "3_to_6_months",
		"project_description":   "Three bedroom ranch",
	}
}

func TestValidateSubmissionAcceptsValidPayload(t *testing.T) {
	data := SanitizeSubmission(validPayload())
	assert.NoError(t, ValidateSubmission(data))
}

func TestValidateSubmissionCollectsAllMissingFields(t *testing.T) {
	data := validPayload()
	delete(data, "full_name")
	delete(data, "phone_number")
	delete(data, "build_budget")

	err := ValidateSubmission(SanitizeSubmission(data))
	require.Error(t, err)

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details, "full_name is required")
	assert.Contains(t, vErr.Details, "phone_number is required")
	assert.Contains(t, vErr.Details, "build_budget is required")
}

func TestValidateSubmissionEnumMembership(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{"buyer_category", "flipper"},
		{"financing_plan", "cash_under_mattress"},
		{"land_status", "renting"},
		{"build_budget", "1m_plus"},
		{"construction_timeline", "someday"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			data := validPayload()
			data[tt.field] = tt.value

			err := ValidateSubmission(SanitizeSubmission(data))
			require.Error(t, err)

			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			found := false
			for _, d := range vErr.Details {
				if strings.HasPrefix(d, tt.field+" must be one of") {
					found = true
				}
			}
			assert.True(t, found, "expected enum violation for %s, got %v", tt.field, vErr.Details)
		})
	}
}

func TestValidateSubmissionEmailAndPhonePatterns(t *testing.T) {
	data := validPayload()
	data["email_address"] = "not-an-email"
	data["phone_number"] = "123"

	err := ValidateSubmission(SanitizeSubmission(data))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details, "email_address must be a valid email")
	assert.Contains(t, vErr.Details, "phone_number must be a valid phone number")
}

func TestValidateSubmissionLotAddressConditional(t *testing.T) {
	data := validPayload()
	data["land_status"] = "own_land"
	data["lot_address"] = "   "

	err := ValidateSubmission(SanitizeSubmission(data))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details, "lot_address is required when land_status is own_land")

	data["lot_address"] = "456 Elm Street"
	assert.NoError(t, ValidateSubmission(SanitizeSubmission(data)))
}

func TestValidateSubmissionPreferredAreaConditional(t *testing.T) {
	data := validPayload()
	data["land_status"] = "need_land"
	delete(data, "lot_address")
	data["needs_help_finding_land"] = true

	err := ValidateSubmission(SanitizeSubmission(data))
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Details, "preferred_area_description is required when needs_help_finding_land is true")

	data["preferred_area_description"] = "downtown area"
	assert.NoError(t, ValidateSubmission(SanitizeSubmission(data)))

	// No help requested means no preferred area required
	data["needs_help_finding_land"] = false
	delete(data, "preferred_area_description")
	assert.NoError(t, ValidateSubmission(SanitizeSubmission(data)))
}

func TestSanitizeSubmissionDefaults(t *testing.T) {
	data := SanitizeSubmission(validPayload())

	assert.Equal(t, StatusNew, data["status"])
	assert.Equal(t, DefaultReferralSource, data["referral_source"])
	assert.Equal(t, false, data["interested_in_preferred_lender"])
	assert.Equal(t, false, data["needs_help_finding_land"])
}

func TestSanitizeSubmissionDoesNotOverwriteProvidedValues(t *testing.T) {
	payload := validPayload()
	payload["status"] = "reviewed"
	payload["referral_source"] = "word of mouth"
	payload["needs_help_finding_land"] = true

	data := SanitizeSubmission(payload)
	assert.Equal(t, "reviewed", data["status"])
	assert.Equal(t, "word of mouth", data["referral_source"])
	assert.Equal(t, true, data["needs_help_finding_land"])
}

func TestSanitizeSubmissionNormalizes(t *testing.T) {
	payload := validPayload()
	payload["full_name"] = "  Jane Smith  "
	payload["email_address"] = "  Jane.Smith@Example.COM "
	payload["company_name"] = nil
	payload["drop_me"] = "unknown column"

	data := SanitizeSubmission(payload)
	assert.Equal(t, "Jane Smith", data["full_name"])
	assert.Equal(t, "jane.smith@example.com", data["email_address"])
	assert.NotContains(t, data, "company_name")
	assert.NotContains(t, data, "drop_me")
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range SubmissionStatuses {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus("archived"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("New"))
}
