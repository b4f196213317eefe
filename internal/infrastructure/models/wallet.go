package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"yieldvault.backend/pkg/money"
)

type Wallet struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_wallets_user_currency"`
	Currency       string       `gorm:"type:varchar(16);not null;uniqueIndex:idx_wallets_user_currency"`
	Balance        money.Amount `gorm:"type:decimal(54,18);not null"`
	LockedBalance  money.Amount `gorm:"type:decimal(54,18);not null"`
	TotalDeposited money.Amount `gorm:"type:decimal(54,18);not null"`
	TotalWithdrawn money.Amount `gorm:"type:decimal(54,18);not null"`
	IsActive       bool         `gorm:"not null"`
	DepositAddress null.String  `gorm:"type:varchar(255)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (Wallet) TableName() string { return "wallets" }
