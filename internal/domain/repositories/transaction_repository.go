package repositories

import (
	"context"

	"github.com/google/uuid"
	"yieldvault.backend/internal/domain/entities"
)

// TransactionRepository is the append-then-finalize transaction log
type TransactionRepository interface {
	// Create appends a record. Only pending or completed records may be created.
	Create(ctx context.Context, tx *entities.Transaction) error
	// Finalize moves a pending/processing record to a terminal status.
	Finalize(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, remarks string) error
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	LockByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	GetByExternalRef(ctx context.Context, externalRef string) (*entities.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, int64, error)
	ListByReference(ctx context.Context, reference string) ([]*entities.Transaction, error)
}
