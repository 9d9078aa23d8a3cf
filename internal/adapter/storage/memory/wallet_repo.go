package memory

import (
	"context"
	"fmt"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository on a Store.
type WalletRepo struct {
	store *Store
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{store: store}
}

func (r *WalletRepo) ExistsByWalletID(ctx context.Context, walletID string) (bool, error) {
	_, ok := r.store.get(walletID)
	return ok, nil
}

// Create stages w inside tx. The id is reserved immediately so a concurrent
// insert of the same id fails even before either commits.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}
	if !r.store.reserve(w.WalletID) {
		return fmt.Errorf("insert wallet %s: %w", w.WalletID, domain.ErrDuplicateWalletID)
	}

	mtx.mu.Lock()
	defer mtx.mu.Unlock()
	if mtx.closed {
		r.store.unreserve([]*domain.Wallet{w})
		return pgx.ErrTxClosed
	}
	w.ID = r.store.nextID.Add(1)
	mtx.inserts = append(mtx.inserts, w.Clone())
	return nil
}

func (r *WalletRepo) GetByWalletID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	w, ok := r.store.get(walletID)
	if !ok {
		return nil, fmt.Errorf("get wallet by wallet id: %w", domain.ErrWalletNotFound)
	}
	return w, nil
}

// GetByWalletIDForUpdate locks walletID until tx ends and returns the
// latest version, including this transaction's staged writes.
func (r *WalletRepo) GetByWalletIDForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error) {
	mtx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if w, ok := mtx.staged(walletID); ok {
		return w, nil
	}
	if _, ok := r.store.get(walletID); !ok {
		return nil, fmt.Errorf("get wallet for update: %w", domain.ErrWalletNotFound)
	}
	if err := mtx.lock(ctx, walletID); err != nil {
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	// Re-read: another transaction may have committed while we waited.
	w, ok := r.store.get(walletID)
	if !ok {
		return nil, fmt.Errorf("get wallet for update: %w", domain.ErrWalletNotFound)
	}
	return w, nil
}

// Update stages a replacement of w. The row must have been locked by
// GetByWalletIDForUpdate in the same transaction, or inserted by it.
func (r *WalletRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mtx, err := asTx(tx)
	if err != nil {
		return err
	}

	mtx.mu.Lock()
	defer mtx.mu.Unlock()
	if mtx.closed {
		return pgx.ErrTxClosed
	}
	for i, ins := range mtx.inserts {
		if ins.WalletID == w.WalletID {
			mtx.inserts[i] = w.Clone()
			return nil
		}
	}
	if _, ok := mtx.held[w.WalletID]; !ok {
		if _, exists := r.store.get(w.WalletID); !exists {
			return fmt.Errorf("update wallet %s: %w", w.WalletID, domain.ErrWalletNotFound)
		}
		return fmt.Errorf("update wallet %s: %w", w.WalletID, errNotLocked)
	}
	mtx.updates[w.WalletID] = w.Clone()
	return nil
}
