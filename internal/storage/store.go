package storage

import (
	"context"
	"fmt"
)

// Pagination describes the position of a page within a result set
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalCount int  `json:"totalCount"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is one page of records plus its pagination block
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPagination computes the pagination block for a 1-based page.
// An empty result set yields zero total pages and both flags false.
func NewPagination(page, pageSize, totalCount int) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalCount > 0,
	}
}

// Store is a generic record store parameterized by table name.
// The table identity is fixed at construction; it is never built from
// untrusted input.
type Store[T any] struct {
	db    *PostgresDB
	table string
}

// NewStore creates a record store for the given table
func NewStore[T any](db *PostgresDB, table string) *Store[T] {
	return &Store[T]{db: db, table: table}
}

// Table returns the table this store operates on
func (s *Store[T]) Table() string {
	return s.table
}

// DB returns the underlying database handle
func (s *Store[T]) DB() *PostgresDB {
	return s.db
}

// FindByID returns the record with the given id, or nil when none exists
func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	sql := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", s.table)
	return queryOne[T](ctx, s.db, "select "+s.table, sql, id)
}

// FindAll returns records matching the exact-match conditions, all ANDed
func (s *Store[T]) FindAll(ctx context.Context, conditions map[string]any, orderBy string, limit int) ([]T, error) {
	sql, args := BuildSelect(s.table, conditions, orderBy, limit, 0)
	return queryAll[T](ctx, s.db, "select "+s.table, sql, args...)
}

// Count counts records matching the conditions
func (s *Store[T]) Count(ctx context.Context, conditions map[string]any) (int, error) {
	sql, args := BuildCount(s.table, conditions)
	return queryCount(ctx, s.db, "count "+s.table, sql, args...)
}

// Create inserts a record and returns the full inserted row
func (s *Store[T]) Create(ctx context.Context, fields map[string]any) (*T, error) {
	sql, args := BuildInsert(s.table, fields)
	return queryOne[T](ctx, s.db, "insert "+s.table, sql, args...)
}

// UpdateByID applies a partial update by primary key. Returns nil when
// no row matched.
func (s *Store[T]) UpdateByID(ctx context.Context, id int64, fields map[string]any) (*T, error) {
	sql, args := BuildUpdate(s.table, id, fields)
	return queryOne[T](ctx, s.db, "update "+s.table, sql, args...)
}

// DeleteByID hard-deletes a record, returning the deleted row or nil
// when none matched
func (s *Store[T]) DeleteByID(ctx context.Context, id int64) (*T, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING *", s.table)
	return queryOne[T](ctx, s.db, "delete "+s.table, sql, id)
}

// Exists reports whether any record matches the conditions
func (s *Store[T]) Exists(ctx context.Context, conditions map[string]any) (bool, error) {
	count, err := s.Count(ctx, conditions)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Paginate returns one 1-based page of records together with a total
// count computed from the identical predicate.
func (s *Store[T]) Paginate(ctx context.Context, page, pageSize int, conditions map[string]any, orderBy string) (*Page[T], error) {
	totalCount, err := s.Count(ctx, conditions)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	sql, args := BuildSelect(s.table, conditions, orderBy, pageSize, offset)
	data, err := queryAll[T](ctx, s.db, "select "+s.table, sql, args...)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Data:       data,
		Pagination: NewPagination(page, pageSize, totalCount),
	}, nil
}
