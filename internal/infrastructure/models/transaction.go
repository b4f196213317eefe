package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"yieldvault.backend/pkg/money"
)

type Transaction struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type         string            `gorm:"type:varchar(32);not null;index"`
	Amount       money.Amount      `gorm:"type:decimal(54,18);not null"`
	Fee          money.Amount      `gorm:"type:decimal(54,18);not null"`
	Currency     string            `gorm:"type:varchar(16);not null"`
	Status       string            `gorm:"type:varchar(20);not null;index"`
	InvestmentID *uuid.UUID        `gorm:"type:uuid;index"`
	Reference    null.String       `gorm:"type:varchar(64);index"`
	ExternalRef  null.String       `gorm:"type:varchar(255);uniqueIndex"`
	FromAddress  null.String       `gorm:"type:varchar(255)"`
	ToAddress    null.String       `gorm:"type:varchar(255)"`
	Remarks      null.String       `gorm:"type:text"`
	Metadata     map[string]string `gorm:"serializer:json;type:text"`
	CreatedAt    time.Time         `gorm:"index"`
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func (Transaction) TableName() string { return "transactions" }
