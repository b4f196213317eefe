package repositories

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	domainerrors "yieldvault.backend/internal/domain/errors"
	domainRepos "yieldvault.backend/internal/domain/repositories"
	"yieldvault.backend/pkg/logger"
)

// RetryPolicy bounds how often a unit of work is re-run after a transient storage error
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is used when a zero policy is given
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}

// RetryingUnitOfWork re-runs the whole unit on lock timeouts, deadlocks and
// serialization failures with exponential backoff.
type RetryingUnitOfWork struct {
	inner    domainRepos.UnitOfWork
	policy   RetryPolicy
	classify func(error) bool
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRetryingUnitOfWork wraps inner with the given policy
func NewRetryingUnitOfWork(inner domainRepos.UnitOfWork, policy RetryPolicy) *RetryingUnitOfWork {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	return &RetryingUnitOfWork{
		inner:    inner,
		policy:   policy,
		classify: IsTransient,
		sleep:    sleepCtx,
	}
}

var _ domainRepos.UnitOfWork = (*RetryingUnitOfWork)(nil)

func (r *RetryingUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if hasTx(ctx) {
		return r.inner.Do(ctx, fn)
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = r.inner.Do(ctx, fn)
		if err == nil || !r.classify(err) {
			return err
		}
		if attempt >= r.policy.MaxAttempts {
			break
		}

		delay := r.policy.BaseDelay << (attempt - 1)
		logger.Warn(ctx, "Retrying unit of work after transient error",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrLedgerUnavailable, sleepErr)
		}
	}

	logger.Error(ctx, "Unit of work retries exhausted",
		zap.Int("attempts", r.policy.MaxAttempts),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", domainerrors.ErrLedgerUnavailable, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
