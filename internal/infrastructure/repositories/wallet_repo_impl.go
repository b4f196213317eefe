package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/infrastructure/models"
	"yieldvault.backend/pkg/money"
	"yieldvault.backend/pkg/utils"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreate inserts the wallet if missing and returns the stored row.
// ON CONFLICT DO NOTHING keeps a concurrent creator from aborting the surrounding transaction.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, currency, depositAddress string) (*entities.Wallet, error) {
	now := time.Now().UTC()
	m := &models.Wallet{
		ID:             utils.GenerateUUIDv7(),
		UserID:         userID,
		Currency:       currency,
		Balance:        money.Zero,
		LockedBalance:  money.Zero,
		TotalDeposited: money.Zero,
		TotalWithdrawn: money.Zero,
		IsActive:       true,
		DepositAddress: null.NewString(depositAddress, depositAddress != ""),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := GetDB(ctx, r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "currency"}},
			DoNothing: true,
		}).
		Create(m).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: wallet owner %s", domainerrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	return r.GetByUserAndCurrency(ctx, userID, currency)
}

// GetByID gets a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	return r.first(GetDB(ctx, r.db).Where("id = ?", id))
}

// GetByUserAndCurrency gets the user's wallet in one currency
func (r *WalletRepository) GetByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	return r.first(GetDB(ctx, r.db).Where("user_id = ? AND currency = ?", userID, currency))
}

// ListByUser lists all wallets of a user ordered by currency
func (r *WalletRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	var ms []models.Wallet
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("currency ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	wallets := make([]*entities.Wallet, 0, len(ms))
	for i := range ms {
		wallets = append(wallets, r.toEntity(&ms[i]))
	}
	return wallets, nil
}

// LockByID selects the wallet FOR UPDATE inside the current unit of work
func (r *WalletRepository) LockByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	q, err := lockingQuery(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return r.first(q.Where("id = ?", id))
}

// LockForUpdate selects the user's wallet FOR UPDATE inside the current unit of work
func (r *WalletRepository) LockForUpdate(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	q, err := lockingQuery(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return r.first(q.Where("user_id = ? AND currency = ?", userID, currency))
}

// SaveBalances persists the four counters of a locked wallet
func (r *WalletRepository) SaveBalances(ctx context.Context, wallet *entities.Wallet) error {
	wallet.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":         wallet.Balance,
			"locked_balance":  wallet.LockedBalance,
			"total_deposited": wallet.TotalDeposited,
			"total_withdrawn": wallet.TotalWithdrawn,
			"updated_at":      wallet.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetActive activates or deactivates a wallet. Wallets are never deleted.
func (r *WalletRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *WalletRepository) first(q *gorm.DB) (*entities.Wallet, error) {
	var m models.Wallet
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *WalletRepository) toEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:             m.ID,
		UserID:         m.UserID,
		Currency:       m.Currency,
		Balance:        m.Balance,
		LockedBalance:  m.LockedBalance,
		TotalDeposited: m.TotalDeposited,
		TotalWithdrawn: m.TotalWithdrawn,
		IsActive:       m.IsActive,
		DepositAddress: m.DepositAddress,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// lockingQuery returns a FOR UPDATE query bound to the current transaction.
// Row locks outside a unit of work would be released immediately, so they are refused.
func lockingQuery(ctx context.Context, fallback *gorm.DB) (*gorm.DB, error) {
	if !hasTx(ctx) {
		return nil, fmt.Errorf("%w: row lock requested outside a unit of work", domainerrors.ErrInvariantViolation)
	}
	return GetDB(ctx, fallback).Clauses(clause.Locking{Strength: "UPDATE"}), nil
}
