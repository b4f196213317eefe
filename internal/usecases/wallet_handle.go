package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/money"
)

// walletHandle is a wallet row locked by the current unit of work.
// Balances only change through its methods.
type walletHandle struct {
	w *entities.Wallet
}

func (h *walletHandle) credit(x money.Amount) {
	h.w.Balance = h.w.Balance.Add(x)
}

func (h *walletHandle) debit(x money.Amount) error {
	if x.GreaterThan(h.w.Balance) {
		return fmt.Errorf("%w: need %s %s, available %s", domainerrors.ErrInsufficientFunds, x, h.w.Currency, h.w.Balance)
	}
	h.w.Balance = h.w.Balance.Sub(x)
	return nil
}

func (h *walletHandle) lock(x money.Amount) error {
	if x.GreaterThan(h.w.Balance) {
		return fmt.Errorf("%w: need %s %s, available %s", domainerrors.ErrInsufficientFunds, x, h.w.Currency, h.w.Balance)
	}
	h.w.Balance = h.w.Balance.Sub(x)
	h.w.LockedBalance = h.w.LockedBalance.Add(x)
	return nil
}

// unlock removes x from the locked pool without re-crediting it
func (h *walletHandle) unlock(ctx context.Context, x money.Amount) error {
	if x.GreaterThan(h.w.LockedBalance) {
		logger.Critical(ctx, "Unlock exceeds locked balance",
			zap.String("wallet_id", h.w.ID.String()),
			zap.String("unlock", x.String()),
			zap.String("locked", h.w.LockedBalance.String()),
		)
		return fmt.Errorf("%w: unlock %s exceeds locked %s", domainerrors.ErrInvariantViolation, x, h.w.LockedBalance)
	}
	h.w.LockedBalance = h.w.LockedBalance.Sub(x)
	return nil
}

func (h *walletHandle) requireActive() error {
	if !h.w.IsActive {
		return fmt.Errorf("%w: wallet %s is deactivated", domainerrors.ErrInvalidState, h.w.ID)
	}
	return nil
}

func (h *walletHandle) snapshot() *entities.Wallet {
	cp := *h.w
	return &cp
}
