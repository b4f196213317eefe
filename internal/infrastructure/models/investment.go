package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"yieldvault.backend/pkg/money"
)

type Investment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanID          int64           `gorm:"not null;index"`
	Amount          money.Amount    `gorm:"type:decimal(54,18);not null"`
	Currency        string          `gorm:"type:varchar(16);not null"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	DurationDays    int             `gorm:"not null"`
	PayoutFrequency string          `gorm:"type:varchar(20);not null"`
	Status          string          `gorm:"type:varchar(20);not null;index:idx_investments_due,priority:1"`
	StartDate       time.Time       `gorm:"not null"`
	EndDate         time.Time       `gorm:"not null"`
	EarnedAmount    money.Amount    `gorm:"type:decimal(54,18);not null"`
	LastPayoutDate  *time.Time
	NextPayoutDate  time.Time  `gorm:"not null;index:idx_investments_due,priority:2"`
	AutoRenew       bool       `gorm:"not null"`
	RenewedFromID   *uuid.UUID `gorm:"type:uuid"`
	ClosedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
	Plan Plan `gorm:"foreignKey:PlanID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (Investment) TableName() string { return "investments" }
