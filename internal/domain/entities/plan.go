package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"yieldvault.backend/pkg/money"
)

// PayoutFrequency is how often an investment accrues earnings
type PayoutFrequency string

const (
	PayoutDaily    PayoutFrequency = "daily"
	PayoutWeekly   PayoutFrequency = "weekly"
	PayoutMonthly  PayoutFrequency = "monthly"
	PayoutMaturity PayoutFrequency = "maturity"
)

func (f PayoutFrequency) Valid() bool {
	switch f {
	case PayoutDaily, PayoutWeekly, PayoutMonthly, PayoutMaturity:
		return true
	}
	return false
}

// Plan is an investment product
type Plan struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	MinAmount       money.Amount    `json:"minAmount"`
	MaxAmount       money.Amount    `json:"maxAmount"`
	InterestRate    decimal.Decimal `json:"interestRate"` // annual percent
	DurationDays    int             `json:"durationDays"`
	PayoutFrequency PayoutFrequency `json:"payoutFrequency"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// InRange reports min <= amount <= max
func (p *Plan) InRange(amount money.Amount) bool {
	return !amount.LessThan(p.MinAmount) && !amount.GreaterThan(p.MaxAmount)
}
