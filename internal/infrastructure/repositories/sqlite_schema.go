package repositories

import "gorm.io/gorm"

// sqliteSchema mirrors the postgres schema for local runs and tests.
// Amount columns are TEXT so sqlite keeps every decimal digit.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		min_amount TEXT NOT NULL,
		max_amount TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		payout_frequency TEXT NOT NULL,
		is_active BOOLEAN NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		currency TEXT NOT NULL,
		balance TEXT NOT NULL,
		locked_balance TEXT NOT NULL,
		total_deposited TEXT NOT NULL,
		total_withdrawn TEXT NOT NULL,
		is_active BOOLEAN NOT NULL,
		deposit_address TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (user_id, currency)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		fee TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		investment_id TEXT,
		reference TEXT,
		external_ref TEXT UNIQUE,
		from_address TEXT,
		to_address TEXT,
		remarks TEXT,
		metadata TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		completed_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS investments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		plan_id INTEGER NOT NULL REFERENCES plans(id) ON DELETE RESTRICT,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		payout_frequency TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		earned_amount TEXT NOT NULL,
		last_payout_date DATETIME,
		next_payout_date DATETIME NOT NULL,
		auto_renew BOOLEAN NOT NULL,
		renewed_from_id TEXT,
		closed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_investments_due ON investments (status, next_payout_date)`,
}

// CreateSQLiteSchema creates the ledger tables on a sqlite database
func CreateSQLiteSchema(db *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
