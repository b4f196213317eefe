package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	domainRepos "yieldvault.backend/internal/domain/repositories"
)

type contextKey string

const (
	txKey contextKey = "tx_db"
)

var commitTx = func(tx *gorm.DB) error {
	return tx.Commit().Error
}

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// UnitOfWorkOption configures a UnitOfWorkImpl
type UnitOfWorkOption func(*UnitOfWorkImpl)

// WithLockTimeout bounds how long a statement waits for a row lock (postgres only)
func WithLockTimeout(d time.Duration) UnitOfWorkOption {
	return func(u *UnitOfWorkImpl) {
		u.lockTimeout = d
	}
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB, opts ...UnitOfWorkOption) *UnitOfWorkImpl {
	u := &UnitOfWorkImpl{db: db}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

var _ domainRepos.UnitOfWork = (*UnitOfWorkImpl)(nil)

// Do executes fn within a transaction. A Do nested inside another joins the outer transaction.
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if hasTx(ctx) {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if u.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
		if err := tx.Exec(stmt).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := commitTx(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDB returns the transaction bound to ctx, or the base DB outside a unit of work
func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB is the package-level helper every repository uses so that its
// queries join the caller's transaction when there is one.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

func hasTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey).(*gorm.DB)
	return ok
}
