package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Store, *WalletRepo, *Transactor) {
	t.Helper()
	store := NewStore()
	return store, NewWalletRepo(store), NewTransactor(store)
}

func createCommitted(t *testing.T, repo *WalletRepo, transactor *Transactor, owner string) *domain.Wallet {
	t.Helper()
	ctx := context.Background()
	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)
	w := domain.NewWallet(domain.NewWalletID(), owner, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, tx, w))
	require.NoError(t, tx.Commit(ctx))
	return w
}

func TestCreate_VisibleOnlyAfterCommit(t *testing.T) {
	store, repo, transactor := setup(t)
	ctx := context.Background()

	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)

	w := domain.NewWallet(domain.NewWalletID(), "Alice", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, tx, w))
	assert.NotZero(t, w.ID)

	_, err = repo.GetByWalletID(ctx, w.WalletID)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByWalletID(ctx, w.WalletID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.OwnerName)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, 1, store.Len())
}

func TestCreate_AssignsIncreasingIDs(t *testing.T) {
	_, repo, transactor := setup(t)

	a := createCommitted(t, repo, transactor, "Alice")
	b := createCommitted(t, repo, transactor, "Bob")
	assert.Less(t, a.ID, b.ID)
}

func TestCreate_DuplicateWalletID(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()

	existing := createCommitted(t, repo, transactor, "Alice")

	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	dup := domain.NewWallet(existing.WalletID, "Mallory", time.Now().UTC())
	err = repo.Create(ctx, tx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateWalletID)
}

func TestCreate_DuplicateAgainstOpenTransaction(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()
	id := domain.NewWalletID()

	tx1, err := transactor.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx1, domain.NewWallet(id, "Alice", time.Now())))

	tx2, err := transactor.Begin(ctx)
	require.NoError(t, err)
	err = repo.Create(ctx, tx2, domain.NewWallet(id, "Bob", time.Now()))
	assert.ErrorIs(t, err, domain.ErrDuplicateWalletID)
	require.NoError(t, tx2.Rollback(ctx))

	// Rolling back the first insert frees the id.
	require.NoError(t, tx1.Rollback(ctx))
	tx3, err := transactor.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx3, domain.NewWallet(id, "Carol", time.Now())))
	require.NoError(t, tx3.Commit(ctx))

	got, err := repo.GetByWalletID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Carol", got.OwnerName)
}

func TestExistsByWalletID(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()

	w := createCommitted(t, repo, transactor, "Alice")

	exists, err := repo.ExistsByWalletID(ctx, w.WalletID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByWalletID(ctx, "WALLET-doesnotexist")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdate_RollbackDiscards(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()
	w := createCommitted(t, repo, transactor, "Alice")

	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)
	locked, err := repo.GetByWalletIDForUpdate(ctx, tx, w.WalletID)
	require.NoError(t, err)
	require.NoError(t, locked.ApplyAdjustment(decimal.NewFromInt(100), time.Now()))
	require.NoError(t, repo.Update(ctx, tx, locked))
	require.NoError(t, tx.Rollback(ctx))

	got, err := repo.GetByWalletID(ctx, w.WalletID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestUpdate_CommitPublishes(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()
	w := createCommitted(t, repo, transactor, "Alice")

	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)
	locked, err := repo.GetByWalletIDForUpdate(ctx, tx, w.WalletID)
	require.NoError(t, err)
	require.NoError(t, locked.ApplyAdjustment(decimal.RequireFromString("12.50"), time.Now()))
	require.NoError(t, repo.Update(ctx, tx, locked))

	again, err := repo.GetByWalletIDForUpdate(ctx, tx, w.WalletID)
	require.NoError(t, err)
	assert.True(t, again.Balance.Equal(decimal.RequireFromString("12.5")), "tx sees its own write")

	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByWalletID(ctx, w.WalletID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("12.50")))
}

func TestUpdate_NotFound(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()

	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = repo.Update(ctx, tx, domain.NewWallet("WALLET-missing", "x", time.Now()))
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	_, err = repo.GetByWalletIDForUpdate(ctx, tx, "WALLET-missing")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestUpdate_RequiresRowLock(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()
	w := createCommitted(t, repo, transactor, "Alice")

	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	w.Balance = decimal.NewFromInt(10)
	err = repo.Update(ctx, tx, w)
	assert.ErrorIs(t, err, errNotLocked)
}

func TestTx_ClosedAfterCommit(t *testing.T) {
	_, _, transactor := setup(t)
	ctx := context.Background()

	tx, err := transactor.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.ErrorIs(t, tx.Rollback(ctx), pgx.ErrTxClosed)
	assert.ErrorIs(t, tx.Commit(ctx), pgx.ErrTxClosed)
}

func TestForUpdate_BlocksSecondWriter(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()
	w := createCommitted(t, repo, transactor, "Alice")

	tx1, err := transactor.Begin(ctx)
	require.NoError(t, err)
	_, err = repo.GetByWalletIDForUpdate(ctx, tx1, w.WalletID)
	require.NoError(t, err)

	tx2, err := transactor.Begin(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = repo.GetByWalletIDForUpdate(waitCtx, tx2, w.WalletID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tx1.Commit(ctx))

	_, err = repo.GetByWalletIDForUpdate(ctx, tx2, w.WalletID)
	assert.NoError(t, err)
}

func TestForUpdate_ConcurrentIncrements(t *testing.T) {
	_, repo, transactor := setup(t)
	ctx := context.Background()
	w := createCommitted(t, repo, transactor, "Alice")

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := transactor.Begin(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer tx.Rollback(ctx)

			locked, err := repo.GetByWalletIDForUpdate(ctx, tx, w.WalletID)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, locked.ApplyAdjustment(decimal.NewFromInt(1), time.Now()))
			assert.NoError(t, repo.Update(ctx, tx, locked))
			assert.NoError(t, tx.Commit(ctx))
		}()
	}
	wg.Wait()

	got, err := repo.GetByWalletID(ctx, w.WalletID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(workers)), "got %s", got.Balance)
}

func TestForeignTransaction(t *testing.T) {
	_, repo, _ := setup(t)
	ctx := context.Background()

	err := repo.Create(ctx, nil, domain.NewWallet(domain.NewWalletID(), "Alice", time.Now()))
	assert.ErrorIs(t, err, errForeignTx)
}

func TestHealthCheck(t *testing.T) {
	hc := NewHealthCheck()
	assert.Equal(t, "memory", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
}
