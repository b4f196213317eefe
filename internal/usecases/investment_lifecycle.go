package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/money"
	"yieldvault.backend/pkg/utils"
)

// CreateInvestment locks the principal and opens an investment on the plan's current terms
func (u *LedgerUsecase) CreateInvestment(ctx context.Context, in entities.CreateInvestmentInput) (*entities.Investment, error) {
	if err := requirePositive(in.Amount); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}

	var (
		inv *entities.Investment
		tx  *entities.Transaction
	)
	err = u.run(ctx, "create_investment", func(ctx context.Context) error {
		plan, err := u.planRepo.GetByID(ctx, in.PlanID)
		if err != nil {
			return err
		}
		if err := checkPlan(plan, in.Amount); err != nil {
			return err
		}

		h, err := u.lockWallet(ctx, in.UserID, currency)
		if err != nil {
			return err
		}
		if err := h.requireActive(); err != nil {
			return err
		}
		inv, tx, err = u.openInvestment(ctx, h, plan, in, currency, nil)
		if err != nil {
			return err
		}
		return u.save(ctx, h)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Investment created",
		zap.String("investment_id", inv.ID.String()),
		zap.Int64("plan_id", inv.PlanID),
		zap.String("amount", inv.Amount.String()),
	)
	u.publish(ctx, u.txEvent(entities.EventInvestmentCreated, tx))
	return inv, nil
}

func checkPlan(plan *entities.Plan, amount money.Amount) error {
	if !plan.IsActive {
		return fmt.Errorf("%w: plan %d", domainerrors.ErrPlanInactive, plan.ID)
	}
	if !plan.InRange(amount) {
		return fmt.Errorf("%w: %s outside [%s, %s]", domainerrors.ErrAmountOutOfPlanRange, amount, plan.MinAmount, plan.MaxAmount)
	}
	return nil
}

// openInvestment locks principal on h and writes the investment with its ledger record.
// h is saved by the caller.
func (u *LedgerUsecase) openInvestment(
	ctx context.Context,
	h *walletHandle,
	plan *entities.Plan,
	in entities.CreateInvestmentInput,
	currency string,
	renewedFrom *uuid.UUID,
) (*entities.Investment, *entities.Transaction, error) {
	if err := h.lock(in.Amount); err != nil {
		return nil, nil, err
	}

	inv := entities.NewInvestment(utils.GenerateUUIDv7(), in.UserID, plan, in.Amount, currency, in.AutoRenew, u.now())
	inv.RenewedFromID = renewedFrom
	if err := u.investmentRepo.Create(ctx, inv); err != nil {
		return nil, nil, err
	}

	tx := u.newTx(in.UserID, entities.TransactionTypeInvestment, in.Amount, currency, entities.TransactionStatusCompleted)
	tx.InvestmentID = &inv.ID
	tx.Metadata = map[string]string{"plan_id": fmt.Sprint(plan.ID)}
	if renewedFrom != nil {
		tx.Metadata["renewed_from_id"] = renewedFrom.String()
	}
	if err := u.txRepo.Create(ctx, tx); err != nil {
		return nil, nil, err
	}
	return inv, tx, nil
}

// AccruePayout pays every elapsed period of an active investment, up to the catch-up
// bound, and matures it once the term is over and fully paid. Calling it when
// nothing is due is a no-op.
func (u *LedgerUsecase) AccruePayout(ctx context.Context, investmentID uuid.UUID) (*entities.AccrualResult, error) {
	var result *entities.AccrualResult
	err := u.run(ctx, "accrue_payout", func(ctx context.Context) error {
		inv, err := u.investmentRepo.LockByID(ctx, investmentID)
		if err != nil {
			return err
		}
		result = &entities.AccrualResult{Investment: inv}
		now := u.now()
		if !inv.PayoutDue(now) && !inv.MaturityDue(now) {
			return nil
		}

		h, err := u.lockWallet(ctx, inv.UserID, inv.Currency)
		if err != nil {
			return err
		}

		for periods := 0; periods < u.policy.MaxCatchUpPeriods && inv.PayoutDue(now); periods++ {
			tx, err := u.accrueOnePeriod(ctx, h, inv)
			if err != nil {
				return err
			}
			if tx != nil {
				result.Earnings = append(result.Earnings, tx)
			}
		}

		if inv.MaturityDue(now) {
			renewed, err := u.mature(ctx, h, inv, now)
			if err != nil {
				return err
			}
			result.Matured = true
			result.Renewed = renewed
		}

		if err := u.save(ctx, h); err != nil {
			return err
		}
		return u.investmentRepo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	u.publishAccrual(ctx, result)
	return result, nil
}

// accrueOnePeriod credits the earnings of [AccruedThrough, NextPayoutDate) and advances the schedule
func (u *LedgerUsecase) accrueOnePeriod(ctx context.Context, h *walletHandle, inv *entities.Investment) (*entities.Transaction, error) {
	from := inv.AccruedThrough()
	to := inv.NextPayoutDate
	earnings := inv.EarningsBetween(from, to)

	inv.EarnedAmount = inv.EarnedAmount.Add(earnings)
	inv.LastPayoutDate = &to
	inv.NextPayoutDate = entities.NextPayoutDate(inv.StartDate, to, inv.PayoutFrequency, inv.EndDate)

	if earnings.IsZero() {
		return nil, nil
	}
	h.credit(earnings)

	tx := u.newTx(inv.UserID, entities.TransactionTypeInvestmentEarning, earnings, inv.Currency, entities.TransactionStatusCompleted)
	tx.InvestmentID = &inv.ID
	tx.Metadata = map[string]string{
		"period_start": from.Format(time.RFC3339),
		"period_end":   to.Format(time.RFC3339),
	}
	if err := u.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// mature releases the principal, closes the investment and, when asked to, reinvests
// it on the plan's current terms. A renewal that fails its preconditions is skipped.
func (u *LedgerUsecase) mature(ctx context.Context, h *walletHandle, inv *entities.Investment, now time.Time) (*entities.Investment, error) {
	if err := h.unlock(ctx, inv.Amount); err != nil {
		return nil, err
	}
	h.credit(inv.Amount)

	inv.Status = entities.InvestmentStatusCompleted
	inv.ClosedAt = &now

	ret := u.newTx(inv.UserID, entities.TransactionTypeInvestmentReturn, inv.Amount, inv.Currency, entities.TransactionStatusCompleted)
	ret.InvestmentID = &inv.ID
	ret.Metadata = map[string]string{"earned": inv.EarnedAmount.String()}
	if err := u.txRepo.Create(ctx, ret); err != nil {
		return nil, err
	}

	if !inv.AutoRenew {
		return nil, nil
	}

	plan, err := u.planRepo.GetByID(ctx, inv.PlanID)
	if err == nil {
		err = checkPlan(plan, inv.Amount)
	}
	if err == nil && !h.w.IsActive {
		err = fmt.Errorf("%w: wallet %s is deactivated", domainerrors.ErrInvalidState, h.w.ID)
	}
	if err != nil {
		if isRenewalSkip(err) {
			logger.Warn(ctx, "Auto-renewal skipped",
				zap.String("investment_id", inv.ID.String()),
				zap.Error(err),
			)
			return nil, nil
		}
		return nil, err
	}

	renewedFrom := inv.ID
	renewed, _, err := u.openInvestment(ctx, h, plan, entities.CreateInvestmentInput{
		UserID:    inv.UserID,
		PlanID:    plan.ID,
		Amount:    inv.Amount,
		Currency:  inv.Currency,
		AutoRenew: true,
	}, inv.Currency, &renewedFrom)
	if err != nil {
		return nil, err
	}
	return renewed, nil
}

func isRenewalSkip(err error) bool {
	return errors.Is(err, domainerrors.ErrPlanInactive) ||
		errors.Is(err, domainerrors.ErrAmountOutOfPlanRange) ||
		errors.Is(err, domainerrors.ErrNotFound) ||
		errors.Is(err, domainerrors.ErrInvalidState)
}

func (u *LedgerUsecase) publishAccrual(ctx context.Context, result *entities.AccrualResult) {
	var events []entities.LedgerEvent
	for _, tx := range result.Earnings {
		events = append(events, u.txEvent(entities.EventInvestmentEarning, tx))
	}
	if result.Matured {
		inv := result.Investment
		events = append(events, u.investmentEvent(entities.EventInvestmentMatured, inv))
		if result.Renewed != nil {
			events = append(events, u.investmentEvent(entities.EventInvestmentRenewed, result.Renewed))
		}
	}
	if len(events) > 0 {
		u.publish(ctx, events...)
	}
}

func (u *LedgerUsecase) investmentEvent(t entities.LedgerEventType, inv *entities.Investment) entities.LedgerEvent {
	id := inv.ID
	return entities.LedgerEvent{
		Type:         t,
		UserID:       inv.UserID,
		InvestmentID: &id,
		Amount:       inv.Amount.String(),
		Currency:     inv.Currency,
		OccurredAt:   u.now(),
	}
}

// EarlyWithdraw cancels an active investment. The principal leaves the locked pool,
// principal minus penalty returns to the free pool and the penalty is burned.
func (u *LedgerUsecase) EarlyWithdraw(ctx context.Context, userID, investmentID uuid.UUID) (*entities.EarlyWithdrawResult, error) {
	var result *entities.EarlyWithdrawResult
	err := u.run(ctx, "early_withdraw", func(ctx context.Context) error {
		inv, err := u.investmentRepo.LockByID(ctx, investmentID)
		if err != nil {
			return err
		}
		if inv.UserID != userID {
			return domainerrors.ErrNotFound
		}
		if !inv.IsActive() {
			return fmt.Errorf("%w: investment %s is %s", domainerrors.ErrInvalidState, inv.ID, inv.Status)
		}

		penalty := inv.Amount.MulRate(u.policy.EarlyWithdrawalRate)
		returned := inv.Amount.Sub(penalty)

		h, err := u.lockWallet(ctx, inv.UserID, inv.Currency)
		if err != nil {
			return err
		}
		if err := h.unlock(ctx, inv.Amount); err != nil {
			return err
		}
		h.credit(returned)
		if err := u.save(ctx, h); err != nil {
			return err
		}

		now := u.now()
		inv.Status = entities.InvestmentStatusCancelled
		inv.ClosedAt = &now
		if err := u.investmentRepo.Update(ctx, inv); err != nil {
			return err
		}

		tx := u.newTx(inv.UserID, entities.TransactionTypeWithdrawal, returned, inv.Currency, entities.TransactionStatusCompleted)
		tx.Fee = penalty
		tx.InvestmentID = &inv.ID
		tx.Remarks = null.StringFrom("early withdrawal")
		tx.Metadata = map[string]string{"principal": inv.Amount.String()}
		if err := u.txRepo.Create(ctx, tx); err != nil {
			return err
		}

		result = &entities.EarlyWithdrawResult{
			Investment:  inv,
			Transaction: tx,
			Returned:    returned,
			Penalty:     penalty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Investment withdrawn early",
		zap.String("investment_id", investmentID.String()),
		zap.String("returned", result.Returned.String()),
		zap.String("penalty", result.Penalty.String()),
	)
	u.publish(ctx, u.investmentEvent(entities.EventInvestmentCancelled, result.Investment))
	return result, nil
}
