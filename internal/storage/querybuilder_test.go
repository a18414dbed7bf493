package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name       string
		conditions map[string]any
		orderBy    string
		limit      int
		offset     int
		wantSQL    string
		wantArgs   []any
	}{
		{
			name:     "no conditions",
			wantSQL:  "SELECT * FROM intake_submissions",
			wantArgs: []any{},
		},
		{
			name:       "single condition with order and limit",
			conditions: map[string]any{"status": "new"},
			orderBy:    "created_at DESC",
			limit:      20,
			wantSQL:    "SELECT * FROM intake_submissions WHERE status = $1 ORDER BY created_at DESC LIMIT $2",
			wantArgs:   []any{"new", 20},
		},
		{
			name:       "multiple conditions are sorted and ANDed",
			conditions: map[string]any{"status": "new", "buyer_category": "developer"},
			wantSQL:    "SELECT * FROM intake_submissions WHERE buyer_category = $1 AND status = $2",
			wantArgs:   []any{"developer", "new"},
		},
		{
			name:       "limit and offset",
			conditions: map[string]any{"status": "reviewed"},
			orderBy:    "created_at DESC",
			limit:      10,
			offset:     30,
			wantSQL:    "SELECT * FROM intake_submissions WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
			wantArgs:   []any{"reviewed", 10, 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := BuildSelect("intake_submissions", tt.conditions, tt.orderBy, tt.limit, tt.offset)
			assert.Equal(t, tt.wantSQL, sql)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestBuildCountMirrorsSelectPredicate(t *testing.T) {
	conditions := map[string]any{"status": "new", "build_budget": "250k_350k"}

	selectSQL, selectArgs := BuildSelect("intake_submissions", conditions, "created_at DESC", 10, 20)
	countSQL, countArgs := BuildCount("intake_submissions", conditions)

	assert.Equal(t, "SELECT COUNT(*) FROM intake_submissions WHERE build_budget = $1 AND status = $2", countSQL)
	assert.Equal(t, countArgs, selectArgs[:len(countArgs)])
	assert.Contains(t, selectSQL, "WHERE build_budget = $1 AND status = $2")
}

func TestBuildInsert(t *testing.T) {
	sql, args := BuildInsert("users", map[string]any{
		"full_name":     "Jane Smith",
		"email_address": "jane@example.com",
	})

	assert.Equal(t, "INSERT INTO users (email_address, full_name) VALUES ($1, $2) RETURNING *", sql)
	assert.Equal(t, []any{"jane@example.com", "Jane Smith"}, args)
}

func TestBuildUpdate(t *testing.T) {
	sql, args := BuildUpdate("intake_submissions", 42, map[string]any{
		"status":      "qualified",
		"admin_notes": "strong lead",
	})

	assert.Equal(t, "UPDATE intake_submissions SET admin_notes = $2, status = $3 WHERE id = $1 RETURNING *", sql)
	assert.Equal(t, []any{int64(42), "strong lead", "qualified"}, args)
}

func TestBuildSelectDeterministic(t *testing.T) {
	conditions := map[string]any{"a": 1, "b": 2, "c": 3, "d": 4}
	first, _ := BuildSelect("t", conditions, "", 0, 0)
	for i := 0; i < 50; i++ {
		again, _ := BuildSelect("t", conditions, "", 0, 0)
		assert.Equal(t, first, again)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		totalCount int
		want       Pagination
	}{
		{
			name: "first of several pages",
			page: 1, pageSize: 10, totalCount: 35,
			want: Pagination{Page: 1, PageSize: 10, TotalCount: 35, TotalPages: 4, HasNext: true, HasPrev: false},
		},
		{
			name: "middle page",
			page: 2, pageSize: 10, totalCount: 35,
			want: Pagination{Page: 2, PageSize: 10, TotalCount: 35, TotalPages: 4, HasNext: true, HasPrev: true},
		},
		{
			name: "last page",
			page: 4, pageSize: 10, totalCount: 35,
			want: Pagination{Page: 4, PageSize: 10, TotalCount: 35, TotalPages: 4, HasNext: false, HasPrev: true},
		},
		{
			name: "exact multiple",
			page: 3, pageSize: 10, totalCount: 30,
			want: Pagination{Page: 3, PageSize: 10, TotalCount: 30, TotalPages: 3, HasNext: false, HasPrev: true},
		},
		{
			name: "empty result set",
			page: 1, pageSize: 10, totalCount: 0,
			want: Pagination{Page: 1, PageSize: 10, TotalCount: 0, TotalPages: 0, HasNext: false, HasPrev: false},
		},
		{
			name: "page beyond empty set keeps both flags false",
			page: 3, pageSize: 10, totalCount: 0,
			want: Pagination{Page: 3, PageSize: 10, TotalCount: 0, TotalPages: 0, HasNext: false, HasPrev: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.pageSize, tt.totalCount))
		})
	}
}
