package repositories

import (
	"context"

	"github.com/google/uuid"
	"yieldvault.backend/internal/domain/entities"
)

// WalletRepository stores per-(user, currency) balances
type WalletRepository interface {
	// GetOrCreate returns the user's wallet, creating it with depositAddress if absent.
	// Concurrent callers converge on the same row.
	GetOrCreate(ctx context.Context, userID uuid.UUID, currency, depositAddress string) (*entities.Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	GetByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	// LockByID and LockForUpdate take a row lock held until the unit of work ends.
	LockByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	LockForUpdate(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error)
	// SaveBalances persists balance, locked_balance, total_deposited and total_withdrawn.
	SaveBalances(ctx context.Context, wallet *entities.Wallet) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
