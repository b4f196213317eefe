package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/pkg/money"
)

func TestSettlement_ApproveProcessingWithdrawal(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice@mail.com")
	f.fund(t, alice, "USDT", "200")

	tx, err := f.ledger.Withdraw(ctx, entities.WithdrawInput{UserID: alice, Currency: "USDT", Amount: money.FromInt(100), ToAddress: "0xdest"})
	require.NoError(t, err)

	processing, err := f.settlement.MarkProcessing(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusProcessing, processing.Status)

	_, err = f.settlement.MarkProcessing(ctx, tx.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotPending)

	approved, err := f.settlement.Approve(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, approved.Status)
	f.requireBalances(t, alice, "USDT", "99", "0")

	_, err = f.settlement.Reject(ctx, tx.ID, "too late")
	assert.ErrorIs(t, err, domainerrors.ErrNotPending)
	_, err = f.settlement.MarkProcessing(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSettlement_DepositApproveAndReject(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice@mail.com")

	onchain := func(ref, amount string) *entities.Transaction {
		tx, err := f.ledger.Deposit(ctx, entities.DepositInput{
			UserID:      alice,
			Currency:    "USDC",
			Amount:      money.MustParse(amount),
			Rail:        entities.DepositRailOnchain,
			ExternalRef: ref,
		})
		require.NoError(t, err)
		return tx
	}
	good := onchain("0xaaa", "70")
	bad := onchain("0xbbb", "30")

	approved, err := f.settlement.Approve(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, approved.Status)

	rejected, err := f.settlement.Reject(ctx, bad.ID, "amount mismatch")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusFailed, rejected.Status)

	f.requireBalances(t, alice, "USDC", "70", "0")
	stored, err := f.ledger.GetTransaction(ctx, alice, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, "amount mismatch", stored.Remarks.String)

	assert.Equal(t, []entities.LedgerEventType{
		entities.EventDepositPending,
		entities.EventDepositPending,
		entities.EventDepositCompleted,
		entities.EventDepositFailed,
	}, f.events.Types())
}

func TestSettlement_CompletedRecordsAreFinal(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice@mail.com")
	f.fund(t, alice, "USDT", "10")

	deposit := f.history(t, alice, entities.TransactionTypeDeposit)[0]
	_, err := f.settlement.Approve(ctx, deposit.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotPending)
	_, err = f.settlement.Reject(ctx, deposit.ID, "")
	assert.ErrorIs(t, err, domainerrors.ErrNotPending)

	f.requireBalances(t, alice, "USDT", "10", "0")
}
