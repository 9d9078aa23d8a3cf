package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	// ExistsByWalletID is the uniqueness fast path; the store's unique
	// constraint on wallet_id remains the authority.
	ExistsByWalletID(ctx context.Context, walletID string) (bool, error)
	// Create inserts a wallet and assigns its internal ID.
	// Returns domain.ErrDuplicateWalletID on a wallet_id collision.
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	// GetByWalletID is a non-locking read. Returns domain.ErrWalletNotFound.
	GetByWalletID(ctx context.Context, walletID string) (*domain.Wallet, error)
	// GetByWalletIDForUpdate reads the wallet and holds its row lock until tx ends.
	GetByWalletIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error)
	// Update persists a full replacement of a wallet fetched with GetByWalletIDForUpdate.
	Update(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
