package models

import (
	"regexp"
	"strings"
	"time"
)

// User represents a user account. The email address is unique at the
// storage layer, case-insensitively.
type User struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	EmailAddress string    `json:"email_address" db:"email_address"`
	PhoneNumber  *string   `json:"phone_number,omitempty" db:"phone_number"`
	CompanyName  *string   `json:"company_name,omitempty" db:"company_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// EmailValidation is the structured result of an email format check.
// This is a query result, not a guard: callers decide what to do with
// an invalid address.
type EmailValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// UserSortFields is the allow-list of columns user listings may sort
// by. Anything else falls back to created_at.
var UserSortFields = []string{"full_name", "email_address", "created_at", "updated_at"}

// DefaultUserSortField is used when an unrecognized sort field is requested
const DefaultUserSortField = "created_at"

var userEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks an email address against the account email
// rules: non-empty after trimming, no consecutive dots, no leading or
// trailing dot, and local@domain.tld shape with a TLD of at least two
// letters.
func ValidateEmail(email string) EmailValidation {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return EmailValidation{Valid: false, Reason: "email cannot be empty"}
	}

	if strings.Contains(trimmed, "..") || strings.HasPrefix(trimmed, ".") || strings.HasSuffix(trimmed, ".") {
		return EmailValidation{Valid: false, Reason: "invalid dot placement"}
	}

	if !userEmailRegex.MatchString(trimmed) {
		return EmailValidation{Valid: false, Reason: "does not match required pattern"}
	}

	return EmailValidation{Valid: true}
}

// IsValidEmail is the boolean shortcut around ValidateEmail
func IsValidEmail(email string) bool {
	return ValidateEmail(email).Valid
}

// SafeUserSortField returns sortBy when it is allow-listed, otherwise
// the safe default. Column names are never interpolated from
// untrusted input without passing through here.
func SafeUserSortField(sortBy string) string {
	if contains(UserSortFields, sortBy) {
		return sortBy
	}
	return DefaultUserSortField
}

// SafeSortOrder normalizes a sort direction, defaulting to DESC
func SafeSortOrder(order string) string {
	if strings.EqualFold(order, "ASC") {
		return "ASC"
	}
	return "DESC"
}
