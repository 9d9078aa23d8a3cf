package memory

import (
	"context"
	"errors"
	"sync"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

var (
	errForeignTx = errors.New("memory: transaction was not started by this store")
	errNotLocked = errors.New("memory: row is not locked by this transaction")
)

// Tx stages writes until Commit and holds the row locks it took.
// Only Commit and Rollback of pgx.Tx are supported.
type Tx struct {
	pgx.Tx

	store *Store

	mu      sync.Mutex
	held    map[string]struct{}
	inserts []*domain.Wallet
	updates map[string]*domain.Wallet
	closed  bool
}

// Transactor implements ports.DBTransactor for the memory store.
type Transactor struct {
	store *Store
}

// NewTransactor creates a Transactor over store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin starts a transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:   t.store,
		held:    make(map[string]struct{}),
		updates: make(map[string]*domain.Wallet),
	}, nil
}

// Commit publishes staged writes and releases all row locks.
func (tx *Tx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.store.apply(tx.inserts, tx.updates)
	tx.releaseAll()
	return nil
}

// Rollback discards staged writes and releases all row locks.
func (tx *Tx) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.store.unreserve(tx.inserts)
	tx.releaseAll()
	return nil
}

func (tx *Tx) releaseAll() {
	for id := range tx.held {
		tx.store.release(id)
	}
	tx.held = nil
	tx.inserts = nil
	tx.updates = nil
}

// lock takes the row lock for walletID unless tx already holds it.
func (tx *Tx) lock(ctx context.Context, walletID string) error {
	tx.mu.Lock()
	if tx.closed {
		tx.mu.Unlock()
		return pgx.ErrTxClosed
	}
	if _, ok := tx.held[walletID]; ok {
		tx.mu.Unlock()
		return nil
	}
	tx.mu.Unlock()

	if err := tx.store.acquire(ctx, walletID); err != nil {
		return err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.closed {
		tx.store.release(walletID)
		return pgx.ErrTxClosed
	}
	tx.held[walletID] = struct{}{}
	return nil
}

// staged returns this transaction's own uncommitted version of walletID.
func (tx *Tx) staged(walletID string) (*domain.Wallet, bool) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if w, ok := tx.updates[walletID]; ok {
		return w.Clone(), true
	}
	for _, w := range tx.inserts {
		if w.WalletID == walletID {
			return w.Clone(), true
		}
	}
	return nil, false
}

func asTx(tx pgx.Tx) (*Tx, error) {
	mtx, ok := tx.(*Tx)
	if !ok || mtx == nil {
		return nil, errForeignTx
	}
	return mtx, nil
}
