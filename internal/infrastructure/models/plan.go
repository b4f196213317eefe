package models

import (
	"time"

	"github.com/shopspring/decimal"
	"yieldvault.backend/pkg/money"
)

type Plan struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	Name            string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	MinAmount       money.Amount    `gorm:"type:decimal(54,18);not null"`
	MaxAmount       money.Amount    `gorm:"type:decimal(54,18);not null"`
	InterestRate    decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	DurationDays    int             `gorm:"not null"`
	PayoutFrequency string          `gorm:"type:varchar(20);not null"`
	IsActive        bool            `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Plan) TableName() string { return "plans" }
