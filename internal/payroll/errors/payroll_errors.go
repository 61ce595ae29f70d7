package payrollerrors

import (
	"net/http"

	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/apperror"
)

var (
	ErrInvalidContractID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid contract id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year or month",
		http.StatusBadRequest,
	)
	ErrContractNotFound = apperror.New(
		apperror.CodeNotFound,
		"contract not found",
		http.StatusNotFound,
	)
	ErrNoCompletedShifts = apperror.New(
		apperror.CodeNotFound,
		"no completed shifts in the pay period",
		http.StatusNotFound,
	)
	ErrSummaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay summary not found",
		http.StatusNotFound,
	)
	// ErrPeriodLocked is transient: another recomputation holds the row
	// lock past the lock_timeout bound. Safe to retry.
	ErrPeriodLocked = apperror.NewRetryable(
		apperror.CodeLockTimeout,
		"pay summary is locked by another recomputation",
		http.StatusServiceUnavailable,
	)
)
