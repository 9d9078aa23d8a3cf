package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrWalletNotFound is returned by stores when no record matches a wallet id.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrDuplicateWalletID is returned by stores when the wallet id is already taken.
	ErrDuplicateWalletID = errors.New("duplicate wallet id")
	// ErrAmountOutOfRange is returned for amounts with more than AmountScale
	// decimal places or an absolute value of MaxMagnitude or more.
	ErrAmountOutOfRange = errors.New("amount out of range")
	// ErrBalanceLimit is returned when a credit would push a balance to MaxMagnitude.
	ErrBalanceLimit = errors.New("balance limit exceeded")
)

// InsufficientBalanceError reports an adjustment that would drive a balance below zero.
type InsufficientBalanceError struct {
	WalletID string
	Current  decimal.Decimal
	Amount   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in %s: current %s, adjustment %s",
		e.WalletID, e.Current.String(), e.Amount.String())
}
