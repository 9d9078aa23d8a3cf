package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletIDPrefix starts every externally visible wallet identifier.
const WalletIDPrefix = "WALLET-"

// Amounts and balances are stored as NUMERIC(38, 8).
const (
	AmountScale    = 8
	IntegerDigits  = 30
	maxExponentGap = 38
)

// MaxMagnitude is the smallest absolute value a balance or amount may not reach.
var MaxMagnitude = decimal.New(1, IntegerDigits)

// Wallet is a named account holding a non-negative decimal balance.
type Wallet struct {
	ID        int64           `json:"id"` // store-assigned internal key
	WalletID  string          `json:"wallet_id"`
	OwnerName string          `json:"owner_name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWalletID returns "WALLET-" followed by a random UUID in canonical form.
func NewWalletID() string {
	return WalletIDPrefix + uuid.New().String()
}

// NewWallet builds an unsaved wallet with a zero balance.
func NewWallet(walletID, ownerName string, now time.Time) *Wallet {
	return &Wallet{
		WalletID:  walletID,
		OwnerName: ownerName,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeAmount checks that amount fits the stored precision and returns it
// with an exponent no smaller than -AmountScale. Exponents are checked before any
// arithmetic so that values like 1e-200000000 are rejected without rescaling.
func NormalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, nil
	}
	exp := amount.Exponent()
	if exp < -maxExponentGap || exp >= IntegerDigits {
		return decimal.Zero, ErrAmountOutOfRange
	}
	truncated := amount.Truncate(AmountScale)
	if !truncated.Equal(amount) || truncated.Abs().GreaterThanOrEqual(MaxMagnitude) {
		return decimal.Zero, ErrAmountOutOfRange
	}
	return truncated, nil
}

// ApplyAdjustment adds a signed amount to the balance. If the result would be
// negative the wallet is left untouched and an *InsufficientBalanceError is returned.
// amount must already have passed NormalizeAmount.
func (w *Wallet) ApplyAdjustment(amount decimal.Decimal, now time.Time) error {
	next := w.Balance.Add(amount)
	if next.GreaterThanOrEqual(MaxMagnitude) {
		return ErrBalanceLimit
	}
	if next.IsNegative() {
		return &InsufficientBalanceError{
			WalletID: w.WalletID,
			Current:  w.Balance,
			Amount:   amount,
		}
	}
	w.Balance = next
	w.UpdatedAt = now
	return nil
}

// Clone returns an independent copy.
func (w *Wallet) Clone() *Wallet {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}
