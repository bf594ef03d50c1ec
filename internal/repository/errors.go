package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by lookups and updates addressing an absent row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateTicketNumber is returned when a ticket number is already taken.
	ErrDuplicateTicketNumber = errors.New("duplicate ticket number")
	// ErrInvalidReference is returned when a foreign id does not exist.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrVersionConflict is returned when the stored version stamp moved underneath the caller.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned for other unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	ticketNumberIndex     = "tickets_number_key"
)

// mapPgError translates driver errors into repository sentinels.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == ticketNumberIndex {
				return ErrDuplicateTicketNumber
			}
			return ErrDuplicate
		case pgForeignKeyViolation:
			return ErrInvalidReference
		}
	}
	return err
}
