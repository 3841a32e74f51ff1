package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

var (
	// ErrNotFound is returned when the addressed row doesn't exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write collides with a unique constraint.
	ErrConflict = errors.New("record already exists")
	// ErrInUse is returned when a row is still referenced by another table.
	ErrInUse = errors.New("record is referenced by other records")
	// ErrInvalidQuery is returned for filter parameters the grammar rejects.
	ErrInvalidQuery = errors.New("invalid query")
)

// classify maps driver errors onto the repository's sentinel errors, keeping
// the original error in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrConflict, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrInUse, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
