package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"yieldvault.backend/pkg/money"
)

// Wallet holds one user's funds in one currency.
// Balance is the free pool; LockedBalance is held for investment principal
// and pending withdrawals. The two pools never overlap.
type Wallet struct {
	ID             uuid.UUID    `json:"id"`
	UserID         uuid.UUID    `json:"userId"`
	Currency       string       `json:"currency"`
	Balance        money.Amount `json:"balance"`
	LockedBalance  money.Amount `json:"lockedBalance"`
	TotalDeposited money.Amount `json:"totalDeposited"`
	TotalWithdrawn money.Amount `json:"totalWithdrawn"`
	IsActive       bool         `json:"isActive"`
	DepositAddress null.String  `json:"depositAddress"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Available is the amount that can be spent, locked or transferred
func (w *Wallet) Available() money.Amount {
	return w.Balance
}

// Total is everything the user holds in this currency
func (w *Wallet) Total() money.Amount {
	return w.Balance.Add(w.LockedBalance)
}

// NormalizeCurrency canonicalizes a currency code (trimmed, upper case)
func NormalizeCurrency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}
