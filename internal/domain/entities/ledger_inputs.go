package entities

import (
	"github.com/google/uuid"
	"yieldvault.backend/pkg/money"
)

// DepositRail selects how a deposit is settled
type DepositRail string

const (
	// DepositRailTrusted credits immediately (admin credit, test funds)
	DepositRailTrusted DepositRail = "trusted"
	// DepositRailOnchain waits for an external confirmation
	DepositRailOnchain DepositRail = "onchain"
)

type DepositInput struct {
	UserID      uuid.UUID
	Currency    string
	Amount      money.Amount
	Rail        DepositRail
	ExternalRef string
	FromAddress string
}

type WithdrawInput struct {
	UserID    uuid.UUID
	Currency  string
	Amount    money.Amount
	ToAddress string
}

type TransferInput struct {
	SenderID       uuid.UUID
	RecipientEmail string
	Amount         money.Amount
	Currency       string
}

// TransferResult holds both legs of a transfer
type TransferResult struct {
	Reference string       `json:"reference"`
	Outgoing  *Transaction `json:"outgoing"`
	Incoming  *Transaction `json:"incoming"`
}

type CreateInvestmentInput struct {
	UserID    uuid.UUID
	PlanID    int64
	Amount    money.Amount
	Currency  string
	AutoRenew bool
}

// AccrualResult describes what a single AccruePayout call did
type AccrualResult struct {
	Investment *Investment    `json:"investment"`
	Earnings   []*Transaction `json:"earnings,omitempty"`
	Matured    bool           `json:"matured"`
	Renewed    *Investment    `json:"renewed,omitempty"`
}

// EarlyWithdrawResult reports the released principal and the penalty kept
type EarlyWithdrawResult struct {
	Investment  *Investment  `json:"investment"`
	Transaction *Transaction `json:"transaction"`
	Returned    money.Amount `json:"returned"`
	Penalty     money.Amount `json:"penalty"`
}

// PlanInput creates or updates a plan
type PlanInput struct {
	Name            string
	MinAmount       money.Amount
	MaxAmount       money.Amount
	InterestRate    string
	DurationDays    int
	PayoutFrequency PayoutFrequency
	IsActive        bool
}

// Holding is one currency position in a portfolio valuation
type Holding struct {
	Currency       string       `json:"currency"`
	Balance        money.Amount `json:"balance"`
	LockedBalance  money.Amount `json:"lockedBalance"`
	Invested       money.Amount `json:"invested"`
	Earned         money.Amount `json:"earned"`
	PriceUSD       *string      `json:"priceUsd"`
	ValueUSD       *string      `json:"valueUsd"`
	PriceAvailable bool         `json:"priceAvailable"`
}

// Portfolio values a user's holdings
type Portfolio struct {
	UserID        uuid.UUID  `json:"userId"`
	Holdings      []*Holding `json:"holdings"`
	TotalValueUSD string     `json:"totalValueUsd"`
	Complete      bool       `json:"complete"`
}
