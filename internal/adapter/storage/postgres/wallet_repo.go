package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE unique_violation.
const uniqueViolation = "23505"

const selectWallet = `SELECT id, wallet_id, owner_name, balance, created_at, updated_at FROM wallets`

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// ExistsByWalletID reports whether a wallet with the external id is stored.
func (r *WalletRepo) ExistsByWalletID(ctx context.Context, walletID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM wallets WHERE wallet_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, walletID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wallet exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new wallet within a transaction and sets w.ID from the
// generated key. The wallets_wallet_id_key constraint is the uniqueness authority.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (wallet_id, owner_name, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := tx.QueryRow(ctx, query,
		w.WalletID, w.OwnerName, w.Balance, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert wallet %s: %w", w.WalletID, domain.ErrDuplicateWalletID)
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByWalletID fetches a wallet by its external id (without locking).
func (r *WalletRepo) GetByWalletID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	w, err := scanWallet(r.pool.QueryRow(ctx, selectWallet+` WHERE wallet_id = $1`, walletID))
	if err != nil {
		return nil, fmt.Errorf("get wallet by wallet id: %w", err)
	}
	return w, nil
}

// GetByWalletIDForUpdate fetches a wallet with pessimistic locking.
// This MUST be called within a transaction; the row stays locked until it ends.
func (r *WalletRepo) GetByWalletIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error) {
	w, err := scanWallet(tx.QueryRow(ctx, selectWallet+` WHERE wallet_id = $1 FOR UPDATE`, walletID))
	if err != nil {
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// Update writes the mutable columns of a locked wallet.
func (r *WalletRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `UPDATE wallets SET owner_name = $1, balance = $2, updated_at = $3 WHERE wallet_id = $4`

	tag, err := tx.Exec(ctx, query, w.OwnerName, w.Balance, w.UpdatedAt, w.WalletID)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet %s: %w", w.WalletID, domain.ErrWalletNotFound)
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.WalletID, &w.OwnerName, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return w, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
