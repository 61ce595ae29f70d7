package shifterrors

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
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidClockFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time format, expected HH:MM",
		http.StatusBadRequest,
	)
	ErrNegativeWorkMinutes = apperror.New(
		apperror.CodeInvalidInput,
		"break minutes exceed the worked span",
		http.StatusBadRequest,
	)
	ErrShiftOverlap = apperror.New(
		apperror.CodeConflict,
		"shift overlaps an existing shift on the same date",
		http.StatusConflict,
	)
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"shift not found",
		http.StatusNotFound,
	)
	ErrContractNotFound = apperror.New(
		apperror.CodeNotFound,
		"contract not found",
		http.StatusNotFound,
	)
	ErrAlreadyCompleted = apperror.New(
		apperror.CodeInvalidState,
		"shift is already completed",
		http.StatusBadRequest,
	)
	ErrAwaitingApproval = apperror.New(
		apperror.CodeInvalidState,
		"shift is awaiting approval",
		http.StatusBadRequest,
	)
	ErrNotPendingApproval = apperror.New(
		apperror.CodeInvalidState,
		"shift is not pending approval",
		http.StatusBadRequest,
	)
	ErrShiftDeleted = apperror.New(
		apperror.CodeInvalidState,
		"shift has been deleted",
		http.StatusBadRequest,
	)
	ErrInconsistentPay = apperror.New(
		apperror.CodeInternalError,
		"decomposed pay failed consistency check",
		http.StatusInternalServerError,
	)
)
