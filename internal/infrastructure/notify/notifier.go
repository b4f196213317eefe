package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"yieldvault.backend/internal/domain/entities"
	"yieldvault.backend/pkg/logger"
)

// Notifier publishes committed ledger events
type Notifier interface {
	Notify(ctx context.Context, event entities.LedgerEvent) error
}

// LogNotifier writes events to the application log
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (LogNotifier) Notify(ctx context.Context, event entities.LedgerEvent) error {
	fields := []zap.Field{
		zap.String("event", string(event.Type)),
		zap.String("user_id", event.UserID.String()),
	}
	if event.TransactionID != nil {
		fields = append(fields, zap.String("transaction_id", event.TransactionID.String()))
	}
	if event.InvestmentID != nil {
		fields = append(fields, zap.String("investment_id", event.InvestmentID.String()))
	}
	if event.Amount != "" {
		fields = append(fields, zap.String("amount", event.Amount), zap.String("currency", event.Currency))
	}
	logger.Info(ctx, "Ledger event", fields...)
	return nil
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, entities.LedgerEvent) error { return nil }

// Multi fans an event out to every notifier and joins their errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event entities.LedgerEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Closer is implemented by notifiers holding broker connections
type Closer interface {
	Close() error
}

var errUnknownDriver = errors.New("unknown notify driver")

func unknownDriver(name string) error {
	return fmt.Errorf("%w: %q", errUnknownDriver, name)
}
