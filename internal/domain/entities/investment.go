package entities

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"yieldvault.backend/pkg/money"
)

// InvestmentStatus represents the lifecycle state of an investment
type InvestmentStatus string

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusMatured   InvestmentStatus = "matured"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

const daysPerYear = 365

var (
	hundred    = decimal.NewFromInt(100)
	yearLength = decimal.NewFromInt(daysPerYear)
)

// Investment is principal locked under a plan for a fixed term
type Investment struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"userId"`
	PlanID          int64            `json:"planId"`
	Amount          money.Amount     `json:"amount"`
	Currency        string           `json:"currency"`
	InterestRate    decimal.Decimal  `json:"interestRate"`
	DurationDays    int              `json:"durationDays"`
	PayoutFrequency PayoutFrequency  `json:"payoutFrequency"`
	Status          InvestmentStatus `json:"status"`
	StartDate       time.Time        `json:"startDate"`
	EndDate         time.Time        `json:"endDate"`
	EarnedAmount    money.Amount     `json:"earnedAmount"`
	LastPayoutDate  *time.Time       `json:"lastPayoutDate,omitempty"`
	NextPayoutDate  time.Time        `json:"nextPayoutDate"`
	AutoRenew       bool             `json:"autoRenew"`
	RenewedFromID   *uuid.UUID       `json:"renewedFromId,omitempty"`
	ClosedAt        *time.Time       `json:"closedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// NewInvestment opens an investment on the plan's current terms
func NewInvestment(id, userID uuid.UUID, plan *Plan, amount money.Amount, currency string, autoRenew bool, start time.Time) *Investment {
	start = start.UTC()
	end := start.AddDate(0, 0, plan.DurationDays)
	return &Investment{
		ID:              id,
		UserID:          userID,
		PlanID:          plan.ID,
		Amount:          amount,
		Currency:        currency,
		InterestRate:    plan.InterestRate,
		DurationDays:    plan.DurationDays,
		PayoutFrequency: plan.PayoutFrequency,
		Status:          InvestmentStatusActive,
		StartDate:       start,
		EndDate:         end,
		EarnedAmount:    money.Zero,
		NextPayoutDate:  NextPayoutDate(start, start, plan.PayoutFrequency, end),
		AutoRenew:       autoRenew,
		CreatedAt:       start,
		UpdatedAt:       start,
	}
}

func (i *Investment) IsActive() bool {
	return i.Status == InvestmentStatusActive
}

// AccruedThrough is the instant up to which earnings have been paid
func (i *Investment) AccruedThrough() time.Time {
	if i.LastPayoutDate != nil {
		return *i.LastPayoutDate
	}
	return i.StartDate
}

// FullyAccrued is true once earnings have been paid up to the end date
func (i *Investment) FullyAccrued() bool {
	return !i.AccruedThrough().Before(i.EndDate)
}

// PayoutDue reports whether a payout period has elapsed and is unpaid
func (i *Investment) PayoutDue(now time.Time) bool {
	return i.IsActive() && !i.FullyAccrued() && !now.Before(i.NextPayoutDate)
}

// MaturityDue reports whether the term is over and every period paid
func (i *Investment) MaturityDue(now time.Time) bool {
	return i.IsActive() && i.FullyAccrued() && !now.Before(i.EndDate)
}

// EarningsBetween is amount × rate/100 × days/365 for the whole days in [from, to)
func (i *Investment) EarningsBetween(from, to time.Time) money.Amount {
	days := PeriodDays(from, to)
	if days <= 0 {
		return money.Zero
	}
	num := i.InterestRate.Mul(decimal.NewFromInt(int64(days)))
	return i.Amount.MulFrac(num, hundred.Mul(yearLength))
}

// ProjectedEarnings is the simple interest over the full term
func (i *Investment) ProjectedEarnings() money.Amount {
	return i.EarningsBetween(i.StartDate, i.EndDate)
}

// PeriodDays counts the whole days between two instants
func PeriodDays(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// NextPayoutDate returns the first payout instant after from on the schedule
// anchored at start, never later than end. Monthly payouts fall on start's day
// of month, or the month's last day when that day does not exist.
func NextPayoutDate(start, from time.Time, freq PayoutFrequency, end time.Time) time.Time {
	var next time.Time
	switch freq {
	case PayoutDaily:
		next = from.AddDate(0, 0, 1)
	case PayoutWeekly:
		next = from.AddDate(0, 0, 7)
	case PayoutMonthly:
		sy, sm, _ := start.Date()
		fy, fm, _ := from.Date()
		n := max((fy-sy)*12+int(fm-sm), 1)
		next = AddMonthsClamped(start, n)
		for !next.After(from) {
			n++
			next = AddMonthsClamped(start, n)
		}
	default:
		next = end
	}
	if next.After(end) {
		return end
	}
	return next
}

// AddMonthsClamped moves t forward n calendar months, keeping its day of month
// unless the target month is shorter
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
