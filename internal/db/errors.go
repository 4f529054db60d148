package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
)

// Classify maps driver errors onto the apperr categories. sql.ErrNoRows and
// context errors pass through unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrStoreUnavailable) || errors.Is(err, apperr.ErrValidation) {
		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code&0xff == sqlite3.SQLITE_CONSTRAINT {
			return classifyConstraint(code, err)
		}
		switch code & 0xff {
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return unavailable(err)
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
		case pgErr.Code == "23503":
			return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
		case pgErr.Code == "23514" || pgErr.Code == "23502":
			return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return unavailable(err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr),
		errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return unavailable(err)
	}
	return err
}

// classifyConstraint prefers the extended result code and falls back to the
// message when only the primary code is reported.
func classifyConstraint(code int, err error) error {
	msg := err.Error()
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	case code == sqlite3.SQLITE_CONSTRAINT_CHECK, code == sqlite3.SQLITE_CONSTRAINT_NOTNULL,
		strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
}

func unavailable(err error) error {
	if errors.Is(err, apperr.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
}
