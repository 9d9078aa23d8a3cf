// Package memory is an in-process wallet store with the same locking
// contract as the PostgreSQL adapter. It backs local runs and tests.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"wallet-service/internal/core/domain"
)

// Store holds committed wallets keyed by wallet id.
type Store struct {
	mu       sync.RWMutex
	wallets  map[string]*domain.Wallet
	reserved map[string]struct{} // ids claimed by uncommitted inserts
	locks    map[string]chan struct{}
	nextID   atomic.Int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		wallets:  make(map[string]*domain.Wallet),
		reserved: make(map[string]struct{}),
		locks:    make(map[string]chan struct{}),
	}
}

// Len returns the number of committed wallets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wallets)
}

func (s *Store) get(walletID string) (*domain.Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// lockFor returns the 1-slot semaphore guarding walletID.
func (s *Store) lockFor(walletID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[walletID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[walletID] = ch
	}
	return ch
}

// acquire blocks until the row lock for walletID is held or ctx is done.
func (s *Store) acquire(ctx context.Context, walletID string) error {
	ch := s.lockFor(walletID)
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release(walletID string) {
	s.mu.RLock()
	ch := s.locks[walletID]
	s.mu.RUnlock()
	<-ch
}

// reserve claims walletID for an insert. It fails if the id is committed or
// already claimed by another open transaction.
func (s *Store) reserve(walletID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[walletID]; ok {
		return false
	}
	if _, ok := s.reserved[walletID]; ok {
		return false
	}
	s.reserved[walletID] = struct{}{}
	return true
}

func (s *Store) apply(inserts []*domain.Wallet, updates map[string]*domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range inserts {
		delete(s.reserved, w.WalletID)
		s.wallets[w.WalletID] = w
	}
	for id, w := range updates {
		s.wallets[id] = w
	}
}

func (s *Store) unreserve(inserts []*domain.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range inserts {
		delete(s.reserved, w.WalletID)
	}
}
