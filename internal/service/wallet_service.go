package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
	now        func() time.Time
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		transactor: transactor,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateWallet opens a wallet with a zero balance under a freshly generated id.
// An id collision fails the request; it is never retried.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, ownerName string) (*domain.Wallet, error) {
	if strings.TrimSpace(ownerName) == "" {
		return nil, apperror.Validation("Owner name is required")
	}

	walletID := domain.NewWalletID()

	exists, err := s.walletRepo.ExistsByWalletID(ctx, walletID)
	if err != nil {
		return nil, s.storageError("check wallet id", err)
	}
	if exists {
		s.log.Warn().Str("wallet_id", walletID).Msg("generated wallet id already exists")
		return nil, apperror.ErrWalletAlreadyExists(nil)
	}

	wallet := domain.NewWallet(walletID, ownerName, s.now())

	err = withinTx(ctx, s.transactor, func(tx pgx.Tx) error {
		return s.walletRepo.Create(ctx, tx, wallet)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateWalletID) {
			s.log.Warn().Str("wallet_id", walletID).Msg("wallet id collided on insert")
			return nil, apperror.ErrWalletAlreadyExists(err)
		}
		return nil, s.storageError("create wallet", err)
	}

	s.log.Info().
		Str("wallet_id", wallet.WalletID).
		Int64("id", wallet.ID).
		Msg("wallet created")

	return wallet, nil
}

// GetWallet returns the current state of a wallet.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByWalletID(ctx, walletID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return nil, apperror.ErrWalletNotFound(walletID)
		}
		return nil, s.storageError("get wallet", err)
	}
	return wallet, nil
}

// AdjustBalance applies a signed amount under the wallet's row lock.
// A result below zero is rejected and nothing is written.
func (s *WalletServiceImpl) AdjustBalance(ctx context.Context, walletID string, amount decimal.Decimal) (*domain.Wallet, error) {
	amount, err := domain.NormalizeAmount(amount)
	if err != nil {
		return nil, apperror.ErrAmountOutOfRange()
	}

	var (
		wallet  *domain.Wallet
		current decimal.Decimal
	)
	err = withinTx(ctx, s.transactor, func(tx pgx.Tx) error {
		w, err := s.walletRepo.GetByWalletIDForUpdate(ctx, tx, walletID)
		if err != nil {
			return err
		}
		current = w.Balance
		if err := w.ApplyAdjustment(amount, s.now()); err != nil {
			return err
		}
		if err := s.walletRepo.Update(ctx, tx, w); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		var insufficient *domain.InsufficientBalanceError
		switch {
		case errors.As(err, &insufficient):
			s.log.Warn().
				Str("wallet_id", walletID).
				Str("amount", amount.String()).
				Str("balance", insufficient.Current.String()).
				Msg("adjustment rejected: insufficient balance")
			return nil, apperror.ErrInsufficientBalance(insufficient.Current.String(), err)
		case errors.Is(err, domain.ErrBalanceLimit):
			s.log.Warn().
				Str("wallet_id", walletID).
				Str("amount", amount.String()).
				Str("balance", current.String()).
				Msg("adjustment rejected: balance limit")
			return nil, apperror.ErrBalanceLimitExceeded(current.String(), err)
		case errors.Is(err, domain.ErrWalletNotFound):
			return nil, apperror.ErrWalletNotFound(walletID)
		case errors.Is(err, context.DeadlineExceeded):
			s.log.Error().Err(err).Str("wallet_id", walletID).Msg("timed out waiting for wallet lock")
			return nil, apperror.ErrLockTimeout(err)
		}
		return nil, s.storageError("adjust balance", err)
	}

	s.log.Info().
		Str("wallet_id", wallet.WalletID).
		Str("amount", amount.String()).
		Str("balance", wallet.Balance.String()).
		Msg("balance adjusted")

	return wallet, nil
}

func (s *WalletServiceImpl) storageError(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("wallet storage failure")
	return apperror.ErrDatabaseError(fmt.Errorf("%s: %w", op, err))
}
