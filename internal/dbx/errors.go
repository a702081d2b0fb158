package dbx

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE Postgres reports for a unique index hit.
const pgUniqueViolation = "23505"

// Classify maps transport-level database failures (timeouts, dropped or
// refused connections) onto common.ErrStoreUnavailable and returns every
// other error unchanged. A canceled context is the caller giving up and stays
// context.Canceled.
func Classify(err error) error {
	if err == nil || errors.Is(err, common.ErrStoreUnavailable) {
		return err
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	// pgx reports canceled queries as timeouts too.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// UniqueViolation reports whether err is a unique-constraint violation and,
// when the driver exposes it, the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == pgUniqueViolation
	}
	message := strings.ToLower(err.Error())
	return "", strings.Contains(message, "duplicate key value violates unique constraint")
}
