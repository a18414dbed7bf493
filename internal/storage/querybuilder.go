package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/intake-backend/internal/apperrors"
	"github.com/jackc/pgx/v5"
)

// The query builder turns structured inputs into parameterized SQL.
// Values only ever flow through positional bindings; the column names
// that reach these functions come from compile-time constants or
// allow-listed fields, never raw user input.

// BuildSelect produces a SELECT for the given table. conditions map
// column names to exact-match values (ANDed together); orderBy is an
// "column DIRECTION" descriptor; limit/offset of zero are omitted.
// Map keys are sorted so the generated SQL is deterministic.
func BuildSelect(table string, conditions map[string]any, orderBy string, limit, offset int) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)

	where, args := buildWhere(conditions)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}

	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	if offset > 0 {
		args = append(args, offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args
}

// BuildCount produces the COUNT query mirroring BuildSelect's WHERE
// clause, so pagination totals always match the page predicate.
func BuildCount(table string, conditions map[string]any) (string, []any) {
	sql := "SELECT COUNT(*) FROM " + table
	where, args := buildWhere(conditions)
	if where != "" {
		sql += " WHERE " + where
	}
	return sql, args
}

// BuildInsert produces an INSERT returning the full inserted row
func BuildInsert(table string, fields map[string]any) (string, []any) {
	keys := sortedKeys(fields)
	args := make([]any, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	for i, key := range keys {
		args = append(args, fields[key])
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table,
		strings.Join(keys, ", "),
		strings.Join(placeholders, ", "),
	)
	return sql, args
}

// BuildUpdate produces an UPDATE by primary key returning the full
// updated row. Zero rows affected surfaces as no row from the
// RETURNING clause.
func BuildUpdate(table string, id int64, fields map[string]any) (string, []any) {
	keys := sortedKeys(fields)
	args := make([]any, 0, len(keys)+1)
	args = append(args, id)

	setClauses := make([]string, 0, len(keys))
	for i, key := range keys {
		args = append(args, fields[key])
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, i+2))
	}

	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $1 RETURNING *",
		table,
		strings.Join(setClauses, ", "),
	)
	return sql, args
}

func buildWhere(conditions map[string]any) (string, []any) {
	if len(conditions) == 0 {
		return "", nil
	}

	keys := sortedKeys(conditions)
	args := make([]any, 0, len(keys))
	clauses := make([]string, 0, len(keys))
	for i, key := range keys {
		args = append(args, conditions[key])
		clauses = append(clauses, fmt.Sprintf("%s = $%d", key, i+1))
	}
	return strings.Join(clauses, " AND "), args
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// queryAll runs a query and collects every row into T. Store errors
// are wrapped so callers never see a raw driver error.
func queryAll[T any](ctx context.Context, db *PostgresDB, op, sql string, args ...any) ([]T, error) {
	rows, err := db.Pool().Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.WrapStore(op, err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, apperrors.WrapStore(op, err)
	}
	return items, nil
}

// queryOne runs a query expected to return at most one row. A missing
// row yields (nil, nil), the caller decides whether that is an error.
func queryOne[T any](ctx context.Context, db *PostgresDB, op, sql string, args ...any) (*T, error) {
	rows, err := db.Pool().Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.WrapStore(op, err)
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WrapStore(op, err)
	}
	return &item, nil
}

// queryMaps runs a query and normalizes the result to a uniform list
// of key-value records.
func queryMaps(ctx context.Context, db *PostgresDB, op, sql string, args ...any) ([]map[string]any, error) {
	rows, err := db.Pool().Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.WrapStore(op, err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, apperrors.WrapStore(op, err)
	}
	return records, nil
}

// queryCount runs a single-value count query
func queryCount(ctx context.Context, db *PostgresDB, op, sql string, args ...any) (int, error) {
	var count int
	if err := db.Pool().QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, apperrors.WrapStore(op, err)
	}
	return count, nil
}
