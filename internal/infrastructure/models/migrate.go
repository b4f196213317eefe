package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Plan{},
		&Wallet{},
		&Transaction{},
		&Investment{},
	}
}

// AutoMigrate creates or updates the ledger schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
