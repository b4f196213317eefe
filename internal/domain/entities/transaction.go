package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"yieldvault.backend/pkg/money"
)

// TransactionType classifies a ledger record
type TransactionType string

const (
	TransactionTypeDeposit           TransactionType = "deposit"
	TransactionTypeWithdrawal        TransactionType = "withdrawal"
	TransactionTypeTransferIn        TransactionType = "transfer_in"
	TransactionTypeTransferOut       TransactionType = "transfer_out"
	TransactionTypeInvestment        TransactionType = "investment"
	TransactionTypeInvestmentEarning TransactionType = "investment_earning"
	TransactionTypeInvestmentReturn  TransactionType = "investment_return"
	TransactionTypeReferralBonus     TransactionType = "referral_bonus"
	TransactionTypeFee               TransactionType = "fee"
)

// Valid reports whether t is a known type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransferIn,
		TransactionTypeTransferOut, TransactionTypeInvestment, TransactionTypeInvestmentEarning,
		TransactionTypeInvestmentReturn, TransactionTypeReferralBonus, TransactionTypeFee:
		return true
	}
	return false
}

// TransactionStatus represents the settlement state of a record
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// IsPending is true for pending and its processing sub-state
func (s TransactionStatus) IsPending() bool {
	return s == TransactionStatusPending || s == TransactionStatusProcessing
}

// IsTerminal is true once the record can no longer change
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// Transaction is an append-only ledger record
type Transaction struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"userId"`
	Type         TransactionType   `json:"type"`
	Amount       money.Amount      `json:"amount"`
	Fee          money.Amount      `json:"fee"`
	Currency     string            `json:"currency"`
	Status       TransactionStatus `json:"status"`
	InvestmentID *uuid.UUID        `json:"investmentId,omitempty"`
	Reference    null.String       `json:"reference"`
	ExternalRef  null.String       `json:"externalRef"`
	FromAddress  null.String       `json:"fromAddress"`
	ToAddress    null.String       `json:"toAddress"`
	Remarks      null.String       `json:"remarks"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

// Gross is amount plus fee, the sum held for a pending withdrawal
func (t *Transaction) Gross() money.Amount {
	return t.Amount.Add(t.Fee)
}

// TransactionFilter narrows a user's transaction history
type TransactionFilter struct {
	Type     TransactionType
	Status   TransactionStatus
	Currency string
	Page     int
	Limit    int
}
