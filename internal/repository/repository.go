// Package repository implements the domain repositories and the query
// engine on top of a migrated SQLite handle.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lewtec/pinacoteca/internal/domain"
	"modernc.org/sqlite"
)

// SQLite extended result codes relevant to the error taxonomy.
const (
	sqliteConstraintForeignKey = 787
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// querier abstracts *sql.DB and *sql.Tx so helpers can run inside or
// outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		return code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqliteConstraintForeignKey
	}
	return false
}

// storageErr wraps an engine failure so callers can match
// domain.ErrStorage while the original error stays in the chain.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

// Timestamps are stored as Unix nanoseconds. Integer order is exact,
// which the sort and monotonic updated_at guarantees rely on.
func toUnixNano(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// touchImage advances an image's updated_at. The max() keeps the column
// monotonically non-decreasing even if the wall clock steps backwards.
func touchImage(ctx context.Context, q querier, imageID int64, now time.Time) error {
	_, err := q.ExecContext(ctx,
		"UPDATE images SET updated_at = max(updated_at, ?) WHERE id = ?",
		toUnixNano(now), imageID)
	return err
}
