package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrStatusMismatch is returned by a conditional update whose expected
	// status no longer matches the stored row.
	ErrStatusMismatch = errors.New("status precondition failed")

	// ErrMissingReference is returned when a write points at a row that does
	// not exist, such as an unknown vehicle_id.
	ErrMissingReference = errors.New("referenced row does not exist")
)

const sqlstateForeignKeyViolation = "23503"

// annotate wraps a store error with the operation and, for Postgres, its SQLSTATE.
func annotate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == sqlstateForeignKeyViolation {
			return fmt.Errorf("%s: %w (%s): %w", op, ErrMissingReference, pgErr.ConstraintName, err)
		}
		return fmt.Errorf("%s: sqlstate %s: %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
