package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("WAL_001", "Wallet not found: WALLET-x", http.StatusNotFound),
			expected: "[WAL_001] Wallet not found: WALLET-x",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestAppError_Category(t *testing.T) {
	assert.Equal(t, "Not Found", ErrWalletNotFound("WALLET-x").Category())
	assert.Equal(t, "Conflict", ErrWalletAlreadyExists(nil).Category())
	assert.Equal(t, "Bad Request", Validation("bad").Category())
	assert.Equal(t, "Internal Server Error", New("X", "unknown status", 999).Category())
}

func TestWalletErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Validation", Validation("Owner name is required"), "VAL_001", 400},
		{"AmountOutOfRange", ErrAmountOutOfRange(), "VAL_001", 400},
		{"InvalidWalletID", ErrInvalidWalletID("bad id"), "VAL_002", 400},
		{"PayloadTooLarge", ErrPayloadTooLarge(), "VAL_003", 413},
		{"WalletNotFound", ErrWalletNotFound("WALLET-1"), "WAL_001", 404},
		{"WalletAlreadyExists", ErrWalletAlreadyExists(nil), "WAL_002", 409},
		{"InsufficientBalance", ErrInsufficientBalance("50", nil), "WAL_003", 400},
		{"BalanceLimitExceeded", ErrBalanceLimitExceeded("1", nil), "WAL_004", 400},
		{"RequestInProgress", ErrRequestInProgress(), "REQ_001", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInsufficientBalance_CarriesCurrentBalance(t *testing.T) {
	cause := errors.New("domain cause")
	err := ErrInsufficientBalance("50.00", cause)

	assert.Equal(t, "Insufficient balance. Current: 50.00", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestWalletNotFound_Message(t *testing.T) {
	err := ErrWalletNotFound("WALLET-doesnotexist")
	assert.Equal(t, "Wallet not found: WALLET-doesnotexist", err.Message)
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	lockErr := ErrLockTimeout(inner)
	assert.Equal(t, "SYS_002", lockErr.Code)
	assert.Equal(t, 503, lockErr.HTTPStatus)

	internal := InternalError(inner)
	assert.Equal(t, "SYS_001", internal.Code)
	assert.Equal(t, "Internal server error", internal.Message)
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}
