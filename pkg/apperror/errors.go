package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Category is the short error label shown next to the status code, e.g. "Not Found".
func (e *AppError) Category() string {
	if text := http.StatusText(e.HTTPStatus); text != "" {
		return text
	}
	return http.StatusText(http.StatusInternalServerError)
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation reports a malformed or missing request field.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrAmountOutOfRange() *AppError {
	return New("VAL_001", "Amount must have at most 8 decimal places and an absolute value below 10^30", http.StatusBadRequest)
}

func ErrInvalidWalletID(walletID string) *AppError {
	return New("VAL_002", fmt.Sprintf("Invalid wallet id: %q", walletID), http.StatusBadRequest)
}

func ErrPayloadTooLarge() *AppError {
	return New("VAL_003", "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Wallet Business Logic (WAL) ----

func ErrWalletNotFound(walletID string) *AppError {
	return New("WAL_001", "Wallet not found: "+walletID, http.StatusNotFound)
}

func ErrWalletAlreadyExists(err error) *AppError {
	return Wrap("WAL_002", "Wallet ID already exists", http.StatusConflict, err)
}

// ErrInsufficientBalance carries the pre-adjustment balance in its message.
// err is the domain error so callers can still errors.As the typed value.
func ErrInsufficientBalance(current string, err error) *AppError {
	return Wrap("WAL_003", "Insufficient balance. Current: "+current, http.StatusBadRequest, err)
}

func ErrBalanceLimitExceeded(current string, err error) *AppError {
	return Wrap("WAL_004", "Balance limit exceeded. Current: "+current, http.StatusBadRequest, err)
}

// ---- Request handling (REQ) ----

func ErrRequestInProgress() *AppError {
	return New("REQ_001", "A request with this Idempotency-Key is already being processed", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
