package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
)

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsLockNotAvailable reports whether err is a postgres lock wait timeout
// (SQLSTATE 55P03), raised when lock_timeout expires under SELECT FOR UPDATE.
func IsLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeLockNotAvailable
}
