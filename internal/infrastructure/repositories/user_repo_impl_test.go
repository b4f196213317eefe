package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"yieldvault.backend/internal/domain/entities"
	domainerrors "yieldvault.backend/internal/domain/errors"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := newLedgerDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &entities.User{ID: uuid.New(), Email: " Alice@Mail.com ", Name: "Alice"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "alice@mail.com", u.Email)
	assert.Equal(t, entities.UserRoleUser, u.Role)

	byEmail, err := repo.GetByEmail(ctx, "ALICE@mail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	dup := &entities.User{ID: uuid.New(), Email: "alice@mail.com", Name: "Other"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)

	_, err = repo.GetByEmail(ctx, "nobody@mail.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
