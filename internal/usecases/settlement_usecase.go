package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/pkg/logger"
)

// SettlementUsecase lets operators finalize pending deposits and withdrawals
type SettlementUsecase struct {
	ledger *LedgerUsecase
}

// NewSettlementUsecase creates a new settlement usecase
func NewSettlementUsecase(ledger *LedgerUsecase) *SettlementUsecase {
	return &SettlementUsecase{ledger: ledger}
}

// Approve completes a pending withdrawal or deposit
func (s *SettlementUsecase) Approve(ctx context.Context, txID uuid.UUID) (*entities.Transaction, error) {
	u := s.ledger
	var event entities.LedgerEventType
	var tx *entities.Transaction
	err := u.run(ctx, "settlement_approve", func(ctx context.Context) error {
		var err error
		if tx, err = s.lockPending(ctx, txID); err != nil {
			return err
		}
		switch tx.Type {
		case entities.TransactionTypeWithdrawal:
			event = entities.EventWithdrawalCompleted
			return u.completeWithdrawal(ctx, tx)
		case entities.TransactionTypeDeposit:
			event = entities.EventDepositCompleted
			tx, _, err = u.confirmDeposit(ctx, tx.ID)
			return err
		default:
			return fmt.Errorf("%w: %s transactions are not settled", domainerrors.ErrInvalidState, tx.Type)
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Transaction approved", zap.String("transaction_id", tx.ID.String()), zap.String("type", string(tx.Type)))
	u.publish(ctx, u.txEvent(event, tx))
	return tx, nil
}

// Reject fails a pending transaction. A rejected withdrawal returns its held funds.
func (s *SettlementUsecase) Reject(ctx context.Context, txID uuid.UUID, remarks string) (*entities.Transaction, error) {
	u := s.ledger
	var event entities.LedgerEventType
	var tx *entities.Transaction
	err := u.run(ctx, "settlement_reject", func(ctx context.Context) error {
		var err error
		if tx, err = s.lockPending(ctx, txID); err != nil {
			return err
		}
		switch tx.Type {
		case entities.TransactionTypeWithdrawal:
			event = entities.EventWithdrawalFailed
			return u.releaseWithdrawal(ctx, tx, entities.TransactionStatusFailed, remarks)
		case entities.TransactionTypeDeposit:
			event = entities.EventDepositFailed
			if err := u.txRepo.Finalize(ctx, tx.ID, entities.TransactionStatusFailed, remarks); err != nil {
				return err
			}
			tx.Status = entities.TransactionStatusFailed
			return nil
		default:
			return fmt.Errorf("%w: %s transactions are not settled", domainerrors.ErrInvalidState, tx.Type)
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Transaction rejected", zap.String("transaction_id", tx.ID.String()), zap.String("remarks", remarks))
	u.publish(ctx, u.txEvent(event, tx))
	return tx, nil
}

// MarkProcessing records that an operator has started paying out
func (s *SettlementUsecase) MarkProcessing(ctx context.Context, txID uuid.UUID) (*entities.Transaction, error) {
	u := s.ledger
	var tx *entities.Transaction
	err := u.run(ctx, "settlement_processing", func(ctx context.Context) error {
		var err error
		if tx, err = u.txRepo.LockByID(ctx, txID); err != nil {
			return err
		}
		if tx.Status != entities.TransactionStatusPending {
			return fmt.Errorf("%w: transaction %s is %s", domainerrors.ErrNotPending, tx.ID, tx.Status)
		}
		if err := u.txRepo.MarkProcessing(ctx, tx.ID); err != nil {
			return err
		}
		tx.Status = entities.TransactionStatusProcessing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *SettlementUsecase) lockPending(ctx context.Context, txID uuid.UUID) (*entities.Transaction, error) {
	tx, err := s.ledger.txRepo.LockByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if !tx.Status.IsPending() {
		return nil, fmt.Errorf("%w: transaction %s is %s", domainerrors.ErrNotPending, tx.ID, tx.Status)
	}
	return tx, nil
}
