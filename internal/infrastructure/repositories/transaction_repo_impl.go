package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
	"yieldvault.backend/internal/infrastructure/models"
	"yieldvault.backend/pkg/utils"
)

var pendingStatuses = []string{
	string(entities.TransactionStatusPending),
	string(entities.TransactionStatusProcessing),
}

// TransactionRepository implements the append-then-finalize transaction log
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a record. Records start either pending or already completed.
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if tx.Status != entities.TransactionStatusPending && tx.Status != entities.TransactionStatusCompleted {
		return fmt.Errorf("%w: transactions cannot be created as %s", domainerrors.ErrInvalidState, tx.Status)
	}
	if tx.Amount.IsNegative() || tx.Fee.IsNegative() {
		return fmt.Errorf("%w: negative amount or fee", domainerrors.ErrInvalidAmount)
	}
	if tx.ID == uuid.Nil {
		tx.ID = utils.GenerateUUIDv7()
	}
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = tx.CreatedAt
	if tx.Status == entities.TransactionStatusCompleted && tx.CompletedAt == nil {
		completed := tx.CreatedAt
		tx.CompletedAt = &completed
	}

	if err := GetDB(ctx, r.db).Create(r.toModel(tx)).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domainerrors.ErrDuplicateReference, tx.ExternalRef.String)
		}
		return err
	}
	return nil
}

// Finalize moves a pending or processing record to a terminal status.
// The status guard lives in the UPDATE so a terminal record can never be rewritten.
func (r *TransactionRepository) Finalize(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, remarks string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %s is not a terminal status", domainerrors.ErrInvalidState, status)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": now,
	}
	if remarks != "" {
		updates["remarks"] = remarks
	}
	if status == entities.TransactionStatusCompleted {
		updates["completed_at"] = now
	}

	result := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", id, pendingStatuses).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrState(ctx, id)
	}
	return nil
}

// MarkProcessing moves a pending record to processing
func (r *TransactionRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, string(entities.TransactionStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entities.TransactionStatusProcessing),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrState(ctx, id)
	}
	return nil
}

// GetByID gets a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return r.first(GetDB(ctx, r.db).Where("id = ?", id))
}

// LockByID selects the transaction FOR UPDATE inside the current unit of work
func (r *TransactionRepository) LockByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	q, err := lockingQuery(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return r.first(q.Where("id = ?", id))
}

// GetByExternalRef finds the record carrying an external reference (e.g. an on-chain hash)
func (r *TransactionRepository) GetByExternalRef(ctx context.Context, externalRef string) (*entities.Transaction, error) {
	return r.first(GetDB(ctx, r.db).Where("external_ref = ?", externalRef))
}

// ListByUser lists a user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if filter.Type != "" {
			db = db.Where("type = ?", string(filter.Type))
		}
		if filter.Status != "" {
			db = db.Where("status = ?", string(filter.Status))
		}
		if filter.Currency != "" {
			db = db.Where("currency = ?", filter.Currency)
		}
		return db
	}

	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Transaction{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagination := utils.GetPaginationParams(filter.Page, filter.Limit)
	var ms []models.Transaction
	if err := GetDB(ctx, r.db).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Limit(pagination.Limit).Offset(pagination.CalculateOffset()).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, r.toEntity(&ms[i]))
	}
	return txs, total, nil
}

// ListByReference returns every record sharing a logical reference, e.g. both legs of a transfer
func (r *TransactionRepository) ListByReference(ctx context.Context, reference string) ([]*entities.Transaction, error) {
	var ms []models.Transaction
	if err := GetDB(ctx, r.db).Where("reference = ?", reference).Order("type ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	txs := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, r.toEntity(&ms[i]))
	}
	return txs, nil
}

func (r *TransactionRepository) missOrState(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: transaction %s is no longer pending", domainerrors.ErrInvalidState, id)
}

func (r *TransactionRepository) first(q *gorm.DB) (*entities.Transaction, error) {
	var m models.Transaction
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *TransactionRepository) toModel(tx *entities.Transaction) *models.Transaction {
	return &models.Transaction{
		ID:           tx.ID,
		UserID:       tx.UserID,
		Type:         string(tx.Type),
		Amount:       tx.Amount,
		Fee:          tx.Fee,
		Currency:     tx.Currency,
		Status:       string(tx.Status),
		InvestmentID: tx.InvestmentID,
		Reference:    tx.Reference,
		ExternalRef:  emptyToNull(tx.ExternalRef),
		FromAddress:  tx.FromAddress,
		ToAddress:    tx.ToAddress,
		Remarks:      tx.Remarks,
		Metadata:     tx.Metadata,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
		CompletedAt:  tx.CompletedAt,
	}
}

func (r *TransactionRepository) toEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:           m.ID,
		UserID:       m.UserID,
		Type:         entities.TransactionType(m.Type),
		Amount:       m.Amount,
		Fee:          m.Fee,
		Currency:     m.Currency,
		Status:       entities.TransactionStatus(m.Status),
		InvestmentID: m.InvestmentID,
		Reference:    m.Reference,
		ExternalRef:  m.ExternalRef,
		FromAddress:  m.FromAddress,
		ToAddress:    m.ToAddress,
		Remarks:      m.Remarks,
		Metadata:     m.Metadata,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		CompletedAt:  m.CompletedAt,
	}
}

// unique indexes treat NULLs as distinct, empty strings are not
func emptyToNull(s null.String) null.String {
	if s.Valid && s.String == "" {
		return null.String{}
	}
	return s
}
