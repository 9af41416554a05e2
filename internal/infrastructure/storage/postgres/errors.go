package postgres

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"

	"stockgrid/internal/core/apperror"
)

// PostgreSQL SQLSTATE codes the transaction layer cares about.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateLockNotAvailable     = "55P03"
	sqlstateUniqueViolation      = "23505"
	sqlstateCheckViolation       = "23514"
)

// ClassifyError maps low-level pgx errors onto domain error codes.
//
// Serialization failures, deadlocks and lock timeouts are transient: the
// engine retries them, and if the budget runs out the caller sees
// CONCURRENCY_CONFLICT. Connection-level failures become
// STORAGE_UNAVAILABLE. Errors that already carry a domain code pass
// through untouched.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateSerializationFailure, sqlstateDeadlockDetected, sqlstateLockNotAvailable:
			return apperror.NewConcurrencyConflict(err)
		case sqlstateCheckViolation:
			// The quantity >= 0 table constraint is the storage-level
			// backstop for the engine's availability check.
			if strings.Contains(pgErr.ConstraintName, "quantity") {
				return apperror.NewConcurrencyConflict(err)
			}
		}
		// Class 08 covers broken and refused connections.
		if strings.HasPrefix(pgErr.Code, "08") {
			return apperror.NewStorageUnavailable(err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperror.NewStorageUnavailable(err)
	}
	if errors.Is(err, puddle.ErrClosedPool) {
		return apperror.NewStorageUnavailable(err)
	}

	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != sqlstateUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
