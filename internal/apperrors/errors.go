package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrForbidden indicates the operation is never allowed on the target resource.
var ErrForbidden = errors.New("operation not permitted")

// ErrInternal indicates an unexpected failure (storage unavailable, etc.).
var ErrInternal = errors.New("internal error")

// Kind is a named ledger error. It unwraps to one of the generic errors above so
// callers can match either the precise kind or its broad category with errors.Is.
type Kind struct {
	Code    string
	Message string
	Status  int
	parent  error
}

func newKind(code, message string, status int, parent error) *Kind {
	return &Kind{Code: code, Message: message, Status: status, parent: parent}
}

func (k *Kind) Error() string { return k.Message }

func (k *Kind) Unwrap() error { return k.parent }

// Chart of accounts.
var (
	ErrDuplicateAccountCode   = newKind("DuplicateAccountCode", "account code already in use", http.StatusConflict, ErrDuplicate)
	ErrInvalidParentAccount   = newKind("InvalidParentAccount", "parent account is missing or would create a cycle", http.StatusBadRequest, ErrValidation)
	ErrAccountTypeImmutable   = newKind("AccountTypeImmutable", "account type cannot be changed", http.StatusBadRequest, ErrValidation)
	ErrSystemAccountProtected = newKind("SystemAccountProtected", "system accounts cannot be deactivated or recoded", http.StatusForbidden, ErrForbidden)
)

// Journal engine.
var (
	ErrUnbalancedJournalEntry     = newKind("UnbalancedJournalEntry", "journal entry debits and credits do not balance", http.StatusBadRequest, ErrValidation)
	ErrInsufficientJournalLines   = newKind("InsufficientJournalLines", "journal entry needs at least two lines", http.StatusBadRequest, ErrValidation)
	ErrInvalidJournalLine         = newKind("InvalidJournalLine", "journal line must carry exactly one positive debit or credit", http.StatusBadRequest, ErrValidation)
	ErrInactiveOrMissingAccount   = newKind("InactiveOrMissingAccount", "account does not exist or is inactive", http.StatusBadRequest, ErrValidation)
	ErrAccountMappingMissing      = newKind("AccountMappingMissing", "no account mapped for category", http.StatusBadRequest, ErrValidation)
	ErrTransactionNotFound        = newKind("TransactionNotFound", "transaction not found", http.StatusNotFound, ErrNotFound)
	ErrTransactionAlreadyReversed = newKind("TransactionAlreadyReversed", "transaction has already been reversed or is itself a reversal", http.StatusConflict, ErrConflict)
	ErrJournalNumberCollision     = newKind("JournalNumberCollision", "journal number already allocated", http.StatusConflict, ErrConflict)
	ErrPostingPeriodClosed        = newKind("PostingPeriodClosed", "posting date falls inside a closed financial period", http.StatusConflict, ErrConflict)
)

// Financial periods.
var (
	ErrPeriodAlreadyClosed      = newKind("PeriodAlreadyClosed", "financial period is already closed", http.StatusConflict, ErrConflict)
	ErrPeriodNotCurrentEligible = newKind("PeriodNotCurrentEligible", "a closed period cannot be made current", http.StatusConflict, ErrConflict)
	ErrPeriodOverlap            = newKind("PeriodOverlap", "financial period overlaps an existing period", http.StatusConflict, ErrConflict)
)

// AppError carries an HTTP status alongside an unexpected failure.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// KindCode returns the ledger error code carried by err, or "" when err has none.
func KindCode(err error) string {
	var k *Kind
	if errors.As(err, &k) {
		return k.Code
	}
	return ""
}

// HTTPStatus maps an error to the status code a transport should answer with.
func HTTPStatus(err error) int {
	var k *Kind
	if errors.As(err, &k) {
		return k.Status
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
