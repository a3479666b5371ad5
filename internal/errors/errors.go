package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidInput       ErrorCode = "invalid_input"
	InvalidAmount      ErrorCode = "invalid_amount"
	InsufficientFunds  ErrorCode = "insufficient_funds"
	AccountNotFound    ErrorCode = "account_not_found"
	AccountHasEntries  ErrorCode = "account_has_entries"
	UserNotFound       ErrorCode = "user_not_found"
	EntryNotFound      ErrorCode = "entry_not_found"
	DuplicateUser      ErrorCode = "duplicate_user"
	InvalidCredentials ErrorCode = "invalid_credentials"
	Unauthorized       ErrorCode = "unauthorized"
	InternalError      ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps an error code to the response status. Business-rule
// failures are 4xx so the caller can correct the request; storage-layer
// failures surface as a generic 500 without leaking details.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidInput, InvalidAmount, InsufficientFunds, InvalidCredentials:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case AccountNotFound, UserNotFound, EntryNotFound:
		return http.StatusNotFound
	case DuplicateUser, AccountHasEntries:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrInvalidAmount          = NewAppError(InvalidAmount, "amount must be greater than zero")
	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "insufficient funds")
	ErrAccountNotFound        = NewAppError(AccountNotFound, "checking account not found")
	ErrAccountHasEntries      = NewAppError(AccountHasEntries, "checking account has statement entries")
	ErrUserNotFound           = NewAppError(UserNotFound, "user not found")
	ErrEntryNotFound          = NewAppError(EntryNotFound, "statement entry not found")
	ErrDuplicateUser          = NewAppError(DuplicateUser, "user already exists")
	ErrInvalidCredentials     = NewAppError(InvalidCredentials, "user or password invalid")
	ErrUnauthorized           = NewAppError(Unauthorized, "token not provided or invalid")
	ErrInvalidPeriod          = NewAppError(InvalidInput, "invalid statement period")
	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin transaction from within a transaction")
)
