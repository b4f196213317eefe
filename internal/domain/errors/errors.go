package errors

import (
	"errors"
	"net/http"

	"yieldvault.backend/pkg/money"
)

// Domain errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrAlreadyExists         = errors.New("resource already exists")
	ErrBadRequest            = errors.New("bad request")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidAmount         = money.ErrInvalidAmount
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidState          = errors.New("invalid state for operation")
	ErrNotPending            = errors.New("transaction is not pending")
	ErrRecipientNotFound     = errors.New("recipient not found")
	ErrSelfTransferForbidden = errors.New("cannot transfer to yourself")
	ErrPlanInactive          = errors.New("plan is not active")
	ErrAmountOutOfPlanRange  = errors.New("amount outside plan range")
	ErrPlanInUse             = errors.New("plan is referenced by investments")
	ErrDuplicateReference    = errors.New("external reference already recorded")
	ErrLedgerUnavailable     = errors.New("ledger temporarily unavailable")
	ErrInvariantViolation    = errors.New("ledger invariant violation")
)

// Machine-readable error codes returned to API clients
const (
	CodeBadRequest            = "BAD_REQUEST"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeInvalidAmount         = "INVALID_AMOUNT"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeInsufficientFunds     = "INSUFFICIENT_FUNDS"
	CodeInvalidState          = "INVALID_STATE"
	CodeNotPending            = "NOT_PENDING"
	CodeRecipientNotFound     = "RECIPIENT_NOT_FOUND"
	CodeSelfTransferForbidden = "SELF_TRANSFER_FORBIDDEN"
	CodePlanInactive          = "PLAN_INACTIVE"
	CodeAmountOutOfPlanRange  = "AMOUNT_OUT_OF_PLAN_RANGE"
	CodePlanInUse             = "PLAN_IN_USE"
	CodeDuplicateReference    = "DUPLICATE_REFERENCE"
	CodeLedgerUnavailable     = "LEDGER_UNAVAILABLE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrBadRequest)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	mapped := FromDomain(err)
	return &AppError{
		Status:  mapped.Status,
		Code:    mapped.Code,
		Message: message,
		Err:     err,
	}
}

type mapping struct {
	err    error
	status int
	code   string
}

// ordered: more specific sentinels first
var mappings = []mapping{
	{ErrInvalidAmount, http.StatusBadRequest, CodeInvalidAmount},
	{ErrInsufficientFunds, http.StatusUnprocessableEntity, CodeInsufficientFunds},
	{ErrNotPending, http.StatusConflict, CodeNotPending},
	{ErrInvalidState, http.StatusConflict, CodeInvalidState},
	{ErrRecipientNotFound, http.StatusNotFound, CodeRecipientNotFound},
	{ErrSelfTransferForbidden, http.StatusBadRequest, CodeSelfTransferForbidden},
	{ErrPlanInactive, http.StatusUnprocessableEntity, CodePlanInactive},
	{ErrAmountOutOfPlanRange, http.StatusUnprocessableEntity, CodeAmountOutOfPlanRange},
	{ErrPlanInUse, http.StatusConflict, CodePlanInUse},
	{ErrDuplicateReference, http.StatusConflict, CodeDuplicateReference},
	{ErrLedgerUnavailable, http.StatusServiceUnavailable, CodeLedgerUnavailable},
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrAlreadyExists, http.StatusConflict, CodeConflict},
	{ErrBadRequest, http.StatusBadRequest, CodeBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{ErrForbidden, http.StatusForbidden, CodeForbidden},
}

// FromDomain maps any error to an AppError with a stable code and HTTP status.
// Invariant violations and unknown errors are reported as internal errors.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewAppError(m.status, m.code, err.Error(), err)
		}
	}
	return InternalError(err)
}
