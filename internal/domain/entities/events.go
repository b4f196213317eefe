package entities

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEventType names a committed ledger change
type LedgerEventType string

const (
	EventDepositPending      LedgerEventType = "deposit.pending"
	EventDepositCompleted    LedgerEventType = "deposit.completed"
	EventDepositFailed       LedgerEventType = "deposit.failed"
	EventWithdrawalRequested LedgerEventType = "withdrawal.requested"
	EventWithdrawalCompleted LedgerEventType = "withdrawal.completed"
	EventWithdrawalFailed    LedgerEventType = "withdrawal.failed"
	EventWithdrawalCancelled LedgerEventType = "withdrawal.cancelled"
	EventTransferCompleted   LedgerEventType = "transfer.completed"
	EventInvestmentCreated   LedgerEventType = "investment.created"
	EventInvestmentEarning   LedgerEventType = "investment.earning"
	EventInvestmentMatured   LedgerEventType = "investment.matured"
	EventInvestmentRenewed   LedgerEventType = "investment.renewed"
	EventInvestmentCancelled LedgerEventType = "investment.cancelled"
)

// LedgerEvent is published after a unit of work commits
type LedgerEvent struct {
	Type          LedgerEventType `json:"type"`
	UserID        uuid.UUID       `json:"userId"`
	TransactionID *uuid.UUID      `json:"transactionId,omitempty"`
	InvestmentID  *uuid.UUID      `json:"investmentId,omitempty"`
	Amount        string          `json:"amount,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
