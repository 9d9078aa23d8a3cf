package dto

import (
	"time"
	"unicode/utf8"

	"wallet-service/internal/core/domain"
	"wallet-service/pkg/apperror"

	"github.com/shopspring/decimal"
)

const maxOwnerNameLen = 255

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	OwnerName string `json:"owner_name"`
}

// Validate trims the request and rejects a blank or oversized owner name.
func (r *CreateWalletRequest) Validate() error {
	SanitizeStruct(r)
	if r.OwnerName == "" {
		return apperror.Validation("Owner name is required")
	}
	if utf8.RuneCountInString(r.OwnerName) > maxOwnerNameLen {
		return apperror.Validation("Owner name must be at most 255 characters")
	}
	return nil
}

// AdjustBalanceRequest is the request body for a balance adjustment.
// Amount is signed: positive credits, negative debits. It may be sent as a
// JSON number or a decimal string.
type AdjustBalanceRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// Validate rejects a missing amount or one that does not fit the stored
// precision, and normalizes the exponent of an accepted amount.
func (r *AdjustBalanceRequest) Validate() error {
	if r.Amount == nil {
		return apperror.Validation("Amount is required")
	}
	amount, err := domain.NormalizeAmount(*r.Amount)
	if err != nil {
		return apperror.ErrAmountOutOfRange()
	}
	r.Amount = &amount
	return nil
}

// WalletResponse is the response body for a wallet.
type WalletResponse struct {
	ID        int64  `json:"id"`
	WalletID  string `json:"wallet_id"`
	OwnerName string `json:"owner_name"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NewWalletResponse converts a domain wallet for the wire.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		WalletID:  w.WalletID,
		OwnerName: w.OwnerName,
		Balance:   w.Balance.String(),
		CreatedAt: w.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
