package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes fn within one transaction. Repository calls made with the
	// ctx passed to fn join that transaction; any error rolls it back.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
