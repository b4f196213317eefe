package usecases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/domain/repositories"
	"yieldvault.backend/pkg/logger"
	"yieldvault.backend/pkg/money"
	"yieldvault.backend/pkg/utils"
)

const notifyTimeout = 5 * time.Second

// AddressGenerator derives the deposit address of a new wallet
type AddressGenerator interface {
	DepositAddress(userID uuid.UUID, currency string) (string, error)
}

// EventNotifier receives ledger events after commit
type EventNotifier interface {
	Notify(ctx context.Context, event entities.LedgerEvent) error
}

// LedgerMetrics observes engine calls
type LedgerMetrics interface {
	ObserveOperation(op string, started time.Time, err error)
	NotifyFailed()
}

// LedgerPolicy holds the fee and penalty rates and the accrual catch-up bound
type LedgerPolicy struct {
	WithdrawalFeeRate   decimal.Decimal
	TransferFeeRate     decimal.Decimal
	EarlyWithdrawalRate decimal.Decimal
	MaxCatchUpPeriods   int
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, time.Time, error) {}
func (noopMetrics) NotifyFailed() {}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, entities.LedgerEvent) error { return nil }

// LedgerUsecase moves money between wallet pools and records every movement.
// Each public operation is one unit of work.
type LedgerUsecase struct {
	walletRepo     repositories.WalletRepository
	txRepo         repositories.TransactionRepository
	investmentRepo repositories.InvestmentRepository
	planRepo       repositories.PlanRepository
	userRepo       repositories.UserRepository
	uow            repositories.UnitOfWork
	addresses      AddressGenerator
	policy         LedgerPolicy
	notifier       EventNotifier
	metrics        LedgerMetrics
	now            func() time.Time
}

// NewLedgerUsecase creates a new ledger usecase
func NewLedgerUsecase(
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	investmentRepo repositories.InvestmentRepository,
	planRepo repositories.PlanRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
	addresses AddressGenerator,
	policy LedgerPolicy,
) *LedgerUsecase {
	if policy.MaxCatchUpPeriods < 1 {
		policy.MaxCatchUpPeriods = 366
	}
	return &LedgerUsecase{
		walletRepo:     walletRepo,
		txRepo:         txRepo,
		investmentRepo: investmentRepo,
		planRepo:       planRepo,
		userRepo:       userRepo,
		uow:            uow,
		addresses:      addresses,
		policy:         policy,
		notifier:       noopNotifier{},
		metrics:        noopMetrics{},
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier sets the post-commit event sink
func (u *LedgerUsecase) SetNotifier(n EventNotifier) {
	if n == nil {
		n = noopNotifier{}
	}
	u.notifier = n
}

// SetMetrics sets the operation observer
func (u *LedgerUsecase) SetMetrics(m LedgerMetrics) {
	if m == nil {
		m = noopMetrics{}
	}
	u.metrics = m
}

// SetClock overrides the time source
func (u *LedgerUsecase) SetClock(now func() time.Time) {
	u.now = func() time.Time { return now().UTC() }
}

// run executes fn as one unit of work. The caller's cancellation is detached so a
// disconnecting client cannot interrupt a unit that is already applying mutations.
func (u *LedgerUsecase) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	started := time.Now()
	ctx = logger.WithOperation(context.WithoutCancel(ctx), op)
	err := u.uow.Do(ctx, fn)
	u.metrics.ObserveOperation(op, started, err)
	if errors.Is(err, domainerrors.ErrInvariantViolation) {
		logger.Critical(ctx, "Ledger unit of work aborted", zap.Error(err))
	}
	return err
}

func (u *LedgerUsecase) publish(ctx context.Context, events ...entities.LedgerEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	for _, ev := range events {
		if err := u.notifier.Notify(ctx, ev); err != nil {
			u.metrics.NotifyFailed()
			logger.Warn(ctx, "Failed to publish ledger event",
				zap.String("event", string(ev.Type)),
				zap.String("user_id", ev.UserID.String()),
				zap.Error(err),
			)
		}
	}
}

func (u *LedgerUsecase) txEvent(t entities.LedgerEventType, tx *entities.Transaction) entities.LedgerEvent {
	id := tx.ID
	return entities.LedgerEvent{
		Type:          t,
		UserID:        tx.UserID,
		TransactionID: &id,
		InvestmentID:  tx.InvestmentID,
		Amount:        tx.Amount.String(),
		Currency:      tx.Currency,
		OccurredAt:    u.now(),
	}
}

// lockWallet returns the user's wallet locked for this unit, creating it first if needed
func (u *LedgerUsecase) lockWallet(ctx context.Context, userID uuid.UUID, currency string) (*walletHandle, error) {
	w, err := u.ensureWallet(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	locked, err := u.walletRepo.LockByID(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	return &walletHandle{w: locked}, nil
}

func (u *LedgerUsecase) ensureWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	w, err := u.walletRepo.GetByUserAndCurrency(ctx, userID, currency)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	address := ""
	if u.addresses != nil {
		if address, err = u.addresses.DepositAddress(userID, currency); err != nil {
			return nil, fmt.Errorf("derive deposit address: %w", err)
		}
	}
	return u.walletRepo.GetOrCreate(ctx, userID, currency, address)
}

// lockWalletPair locks two wallets in ascending id order and returns them in argument order
func (u *LedgerUsecase) lockWalletPair(ctx context.Context, a, b *entities.Wallet) (*walletHandle, *walletHandle, error) {
	first, second := a, b
	if bytes.Compare(b.ID[:], a.ID[:]) < 0 {
		first, second = b, a
	}
	lockedFirst, err := u.walletRepo.LockByID(ctx, first.ID)
	if err != nil {
		return nil, nil, err
	}
	lockedSecond, err := u.walletRepo.LockByID(ctx, second.ID)
	if err != nil {
		return nil, nil, err
	}
	if first == a {
		return &walletHandle{w: lockedFirst}, &walletHandle{w: lockedSecond}, nil
	}
	return &walletHandle{w: lockedSecond}, &walletHandle{w: lockedFirst}, nil
}

func (u *LedgerUsecase) save(ctx context.Context, handles ...*walletHandle) error {
	for _, h := range handles {
		if h == nil {
			continue
		}
		if h.w.Balance.IsNegative() || h.w.LockedBalance.IsNegative() {
			return fmt.Errorf("%w: wallet %s would go negative", domainerrors.ErrInvariantViolation, h.w.ID)
		}
		if err := u.walletRepo.SaveBalances(ctx, h.w); err != nil {
			return err
		}
	}
	return nil
}

func (u *LedgerUsecase) newTx(userID uuid.UUID, typ entities.TransactionType, amount money.Amount, currency string, status entities.TransactionStatus) *entities.Transaction {
	return &entities.Transaction{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Type:      typ,
		Amount:    amount,
		Fee:       money.Zero,
		Currency:  currency,
		Status:    status,
		CreatedAt: u.now(),
	}
}

func normalizeCurrency(c string) (string, error) {
	c = entities.NormalizeCurrency(c)
	if c == "" {
		return "", fmt.Errorf("%w: currency is required", domainerrors.ErrBadRequest)
	}
	return c, nil
}

func requirePositive(a money.Amount) error {
	if !a.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", domainerrors.ErrInvalidAmount)
	}
	return nil
}

// Deposit credits a trusted deposit immediately or records a pending on-chain deposit.
// A repeated on-chain deposit with the same external reference returns the original record.
func (u *LedgerUsecase) Deposit(ctx context.Context, in entities.DepositInput) (*entities.Transaction, error) {
	if err := requirePositive(in.Amount); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	externalRef := strings.TrimSpace(in.ExternalRef)

	switch in.Rail {
	case entities.DepositRailTrusted:
		return u.trustedDeposit(ctx, in, currency, externalRef)
	case entities.DepositRailOnchain:
		if externalRef == "" {
			return nil, fmt.Errorf("%w: external reference is required for on-chain deposits", domainerrors.ErrBadRequest)
		}
		return u.onchainDeposit(ctx, in, currency, externalRef)
	default:
		return nil, fmt.Errorf("%w: unknown deposit rail %q", domainerrors.ErrBadRequest, in.Rail)
	}
}

func (u *LedgerUsecase) trustedDeposit(ctx context.Context, in entities.DepositInput, currency, externalRef string) (*entities.Transaction, error) {
	var tx *entities.Transaction
	err := u.run(ctx, "deposit", func(ctx context.Context) error {
		h, err := u.lockWallet(ctx, in.UserID, currency)
		if err != nil {
			return err
		}
		if err := h.requireActive(); err != nil {
			return err
		}
		h.credit(in.Amount)
		h.w.TotalDeposited = h.w.TotalDeposited.Add(in.Amount)
		if err := u.save(ctx, h); err != nil {
			return err
		}

		tx = u.newTx(in.UserID, entities.TransactionTypeDeposit, in.Amount, currency, entities.TransactionStatusCompleted)
		tx.ExternalRef = null.NewString(externalRef, externalRef != "")
		tx.FromAddress = null.NewString(in.FromAddress, in.FromAddress != "")
		tx.Metadata = map[string]string{"rail": string(entities.DepositRailTrusted)}
		return u.txRepo.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Deposit credited",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("amount", tx.Amount.String()),
		zap.String("currency", currency),
	)
	u.publish(ctx, u.txEvent(entities.EventDepositCompleted, tx))
	return tx, nil
}

func (u *LedgerUsecase) onchainDeposit(ctx context.Context, in entities.DepositInput, currency, externalRef string) (*entities.Transaction, error) {
	var (
		tx      *entities.Transaction
		created bool
	)
	err := u.run(ctx, "deposit", func(ctx context.Context) error {
		created = false
		existing, err := u.txRepo.GetByExternalRef(ctx, externalRef)
		if err == nil {
			tx = existing
			return nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		w, err := u.ensureWallet(ctx, in.UserID, currency)
		if err != nil {
			return err
		}
		if !w.IsActive {
			return fmt.Errorf("%w: wallet %s is deactivated", domainerrors.ErrInvalidState, w.ID)
		}

		tx = u.newTx(in.UserID, entities.TransactionTypeDeposit, in.Amount, currency, entities.TransactionStatusPending)
		tx.ExternalRef = null.StringFrom(externalRef)
		tx.FromAddress = null.NewString(in.FromAddress, in.FromAddress != "")
		tx.ToAddress = w.DepositAddress
		tx.Metadata = map[string]string{"rail": string(entities.DepositRailOnchain)}
		created = true
		return u.txRepo.Create(ctx, tx)
	})
	if errors.Is(err, domainerrors.ErrDuplicateReference) {
		// lost the insert race; the winner's row is visible once our unit has rolled back
		tx, err = u.txRepo.GetByExternalRef(context.WithoutCancel(ctx), externalRef)
		created = false
	}
	if err != nil {
		return nil, err
	}

	if tx.UserID != in.UserID || tx.Type != entities.TransactionTypeDeposit {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrDuplicateReference, externalRef)
	}
	if created {
		logger.Info(ctx, "On-chain deposit recorded",
			zap.String("transaction_id", tx.ID.String()),
			zap.String("external_ref", externalRef),
		)
		u.publish(ctx, u.txEvent(entities.EventDepositPending, tx))
	}
	return tx, nil
}

// ConfirmDeposit completes a pending deposit and credits the wallet. Confirming an
// already completed deposit returns it unchanged.
func (u *LedgerUsecase) ConfirmDeposit(ctx context.Context, txID uuid.UUID) (*entities.Transaction, error) {
	var (
		tx        *entities.Transaction
		confirmed bool
	)
	err := u.run(ctx, "confirm_deposit", func(ctx context.Context) error {
		var err error
		tx, confirmed, err = u.confirmDeposit(ctx, txID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if confirmed {
		u.publish(ctx, u.txEvent(entities.EventDepositCompleted, tx))
	}
	return tx, nil
}

// ConfirmDepositByReference is ConfirmDeposit keyed by the external reference
func (u *LedgerUsecase) ConfirmDepositByReference(ctx context.Context, externalRef string) (*entities.Transaction, error) {
	externalRef = strings.TrimSpace(externalRef)
	if externalRef == "" {
		return nil, fmt.Errorf("%w: external reference is required", domainerrors.ErrBadRequest)
	}

	var (
		tx        *entities.Transaction
		confirmed bool
	)
	err := u.run(ctx, "confirm_deposit", func(ctx context.Context) error {
		found, err := u.txRepo.GetByExternalRef(ctx, externalRef)
		if err != nil {
			return err
		}
		tx, confirmed, err = u.confirmDeposit(ctx, found.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if confirmed {
		u.publish(ctx, u.txEvent(entities.EventDepositCompleted, tx))
	}
	return tx, nil
}

// confirmDeposit runs inside a unit. It reports whether this call did the crediting.
func (u *LedgerUsecase) confirmDeposit(ctx context.Context, txID uuid.UUID) (*entities.Transaction, bool, error) {
	tx, err := u.txRepo.LockByID(ctx, txID)
	if err != nil {
		return nil, false, err
	}
	if tx.Type != entities.TransactionTypeDeposit {
		return nil, false, fmt.Errorf("%w: transaction %s is a %s", domainerrors.ErrInvalidState, tx.ID, tx.Type)
	}
	if tx.Status == entities.TransactionStatusCompleted {
		return tx, false, nil
	}
	if !tx.Status.IsPending() {
		return nil, false, fmt.Errorf("%w: deposit %s is %s", domainerrors.ErrNotPending, tx.ID, tx.Status)
	}

	h, err := u.lockWallet(ctx, tx.UserID, tx.Currency)
	if err != nil {
		return nil, false, err
	}
	h.credit(tx.Amount)
	h.w.TotalDeposited = h.w.TotalDeposited.Add(tx.Amount)
	if err := u.save(ctx, h); err != nil {
		return nil, false, err
	}
	if err := u.txRepo.Finalize(ctx, tx.ID, entities.TransactionStatusCompleted, ""); err != nil {
		return nil, false, err
	}

	now := u.now()
	tx.Status = entities.TransactionStatusCompleted
	tx.CompletedAt = &now
	tx.UpdatedAt = now
	return tx, true, nil
}

// Withdraw holds amount plus fee in the locked pool and records a pending withdrawal
func (u *LedgerUsecase) Withdraw(ctx context.Context, in entities.WithdrawInput) (*entities.Transaction, error) {
	if err := requirePositive(in.Amount); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	toAddress := strings.TrimSpace(in.ToAddress)
	if toAddress == "" {
		return nil, fmt.Errorf("%w: destination address is required", domainerrors.ErrBadRequest)
	}
	fee := in.Amount.MulRate(u.policy.WithdrawalFeeRate)

	var tx *entities.Transaction
	err = u.run(ctx, "withdraw", func(ctx context.Context) error {
		h, err := u.lockWallet(ctx, in.UserID, currency)
		if err != nil {
			return err
		}
		if err := h.requireActive(); err != nil {
			return err
		}
		if err := h.lock(in.Amount.Add(fee)); err != nil {
			return err
		}
		if err := u.save(ctx, h); err != nil {
			return err
		}

		tx = u.newTx(in.UserID, entities.TransactionTypeWithdrawal, in.Amount, currency, entities.TransactionStatusPending)
		tx.Fee = fee
		tx.ToAddress = null.StringFrom(toAddress)
		return u.txRepo.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Withdrawal requested",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("amount", tx.Amount.String()),
		zap.String("fee", fee.String()),
	)
	u.publish(ctx, u.txEvent(entities.EventWithdrawalRequested, tx))
	return tx, nil
}

// CancelWithdrawal lets the owner withdraw a request that settlement has not picked up
func (u *LedgerUsecase) CancelWithdrawal(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error) {
	var tx *entities.Transaction
	err := u.run(ctx, "cancel_withdrawal", func(ctx context.Context) error {
		var err error
		tx, err = u.txRepo.LockByID(ctx, txID)
		if err != nil {
			return err
		}
		if tx.UserID != userID {
			return domainerrors.ErrNotFound
		}
		if tx.Type != entities.TransactionTypeWithdrawal {
			return fmt.Errorf("%w: transaction %s is a %s", domainerrors.ErrInvalidState, tx.ID, tx.Type)
		}
		if tx.Status != entities.TransactionStatusPending {
			return fmt.Errorf("%w: withdrawal %s is %s", domainerrors.ErrNotPending, tx.ID, tx.Status)
		}
		return u.releaseWithdrawal(ctx, tx, entities.TransactionStatusCancelled, "cancelled by owner")
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, u.txEvent(entities.EventWithdrawalCancelled, tx))
	return tx, nil
}

// releaseWithdrawal returns the held gross amount to the free pool and closes the record
func (u *LedgerUsecase) releaseWithdrawal(ctx context.Context, tx *entities.Transaction, status entities.TransactionStatus, remarks string) error {
	h, err := u.lockWallet(ctx, tx.UserID, tx.Currency)
	if err != nil {
		return err
	}
	gross := tx.Gross()
	if err := h.unlock(ctx, gross); err != nil {
		return err
	}
	h.credit(gross)
	if err := u.save(ctx, h); err != nil {
		return err
	}
	if err := u.txRepo.Finalize(ctx, tx.ID, status, remarks); err != nil {
		return err
	}
	tx.Status = status
	tx.Remarks = null.NewString(remarks, remarks != "")
	tx.UpdatedAt = u.now()
	return nil
}

// completeWithdrawal burns the held gross amount once funds have left the platform
func (u *LedgerUsecase) completeWithdrawal(ctx context.Context, tx *entities.Transaction) error {
	h, err := u.lockWallet(ctx, tx.UserID, tx.Currency)
	if err != nil {
		return err
	}
	if err := h.unlock(ctx, tx.Gross()); err != nil {
		return err
	}
	h.w.TotalWithdrawn = h.w.TotalWithdrawn.Add(tx.Amount)
	if err := u.save(ctx, h); err != nil {
		return err
	}
	if err := u.txRepo.Finalize(ctx, tx.ID, entities.TransactionStatusCompleted, ""); err != nil {
		return err
	}
	now := u.now()
	tx.Status = entities.TransactionStatusCompleted
	tx.CompletedAt = &now
	tx.UpdatedAt = now
	return nil
}

// Transfer moves funds to another user by email. Both legs share one reference.
func (u *LedgerUsecase) Transfer(ctx context.Context, in entities.TransferInput) (*entities.TransferResult, error) {
	if err := requirePositive(in.Amount); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.RecipientEmail))
	if email == "" {
		return nil, fmt.Errorf("%w: recipient email is required", domainerrors.ErrBadRequest)
	}

	recipient, err := u.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrRecipientNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	if recipient.ID == in.SenderID {
		return nil, domainerrors.ErrSelfTransferForbidden
	}
	fee := in.Amount.MulRate(u.policy.TransferFeeRate)

	var result *entities.TransferResult
	err = u.run(ctx, "transfer", func(ctx context.Context) error {
		senderWallet, err := u.ensureWallet(ctx, in.SenderID, currency)
		if err != nil {
			return err
		}
		recipientWallet, err := u.ensureWallet(ctx, recipient.ID, currency)
		if err != nil {
			return err
		}
		from, to, err := u.lockWalletPair(ctx, senderWallet, recipientWallet)
		if err != nil {
			return err
		}
		if err := from.requireActive(); err != nil {
			return err
		}
		if err := to.requireActive(); err != nil {
			return err
		}
		if err := from.debit(in.Amount.Add(fee)); err != nil {
			return err
		}
		to.credit(in.Amount)
		if err := u.save(ctx, from, to); err != nil {
			return err
		}

		reference := utils.GenerateUUIDv7().String()
		out := u.newTx(in.SenderID, entities.TransactionTypeTransferOut, in.Amount, currency, entities.TransactionStatusCompleted)
		inc := u.newTx(recipient.ID, entities.TransactionTypeTransferIn, in.Amount, currency, entities.TransactionStatusCompleted)
		out.Fee = fee
		out.Reference = null.StringFrom(reference)
		inc.Reference = null.StringFrom(reference)
		out.Metadata = map[string]string{
			"counterparty_user_id":        recipient.ID.String(),
			"counterparty_transaction_id": inc.ID.String(),
		}
		inc.Metadata = map[string]string{
			"counterparty_user_id":        in.SenderID.String(),
			"counterparty_transaction_id": out.ID.String(),
		}
		if err := u.txRepo.Create(ctx, out); err != nil {
			return err
		}
		if err := u.txRepo.Create(ctx, inc); err != nil {
			return err
		}
		result = &entities.TransferResult{Reference: reference, Outgoing: out, Incoming: inc}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Transfer completed",
		zap.String("reference", result.Reference),
		zap.String("amount", in.Amount.String()),
		zap.String("fee", fee.String()),
	)
	u.publish(ctx,
		u.txEvent(entities.EventTransferCompleted, result.Outgoing),
		u.txEvent(entities.EventTransferCompleted, result.Incoming),
	)
	return result, nil
}

// GetWallets lists the user's wallets
func (u *LedgerUsecase) GetWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return u.walletRepo.ListByUser(ctx, userID)
}

// GetWallet returns the user's wallet in one currency, opening it on first use
func (u *LedgerUsecase) GetWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	return u.ensureWallet(ctx, userID, currency)
}

// ListTransactions pages through the user's history
func (u *LedgerUsecase) ListTransactions(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, utils.PaginationMeta, error) {
	pagination := utils.GetPaginationParams(filter.Page, filter.Limit)
	filter.Page, filter.Limit = pagination.Page, pagination.Limit
	if filter.Currency != "" {
		filter.Currency = entities.NormalizeCurrency(filter.Currency)
	}
	txs, total, err := u.txRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return txs, utils.CalculateMeta(total, pagination), nil
}

// GetTransaction returns one of the user's transactions
func (u *LedgerUsecase) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error) {
	tx, err := u.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, domainerrors.ErrNotFound
	}
	return tx, nil
}

// ListInvestments lists the user's investments, optionally by status
func (u *LedgerUsecase) ListInvestments(ctx context.Context, userID uuid.UUID, status entities.InvestmentStatus) ([]*entities.Investment, error) {
	return u.investmentRepo.ListByUser(ctx, userID, status)
}

// GetInvestment returns one of the user's investments
func (u *LedgerUsecase) GetInvestment(ctx context.Context, userID, id uuid.UUID) (*entities.Investment, error) {
	inv, err := u.investmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, domainerrors.ErrNotFound
	}
	return inv, nil
}
