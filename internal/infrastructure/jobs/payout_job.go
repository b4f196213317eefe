package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yieldvault.backend/internal/domain/entities"
	"yieldvault.backend/pkg/logger"
)

// DueLister finds investments with an elapsed payout period or end date
type DueLister interface {
	ListDue(ctx context.Context, now time.Time, after uuid.UUID, limit int) ([]*entities.Investment, error)
}

// Accruer settles one investment
type Accruer interface {
	AccruePayout(ctx context.Context, investmentID uuid.UUID) (*entities.AccrualResult, error)
}

// PayoutMetrics observes scheduler runs
type PayoutMetrics interface {
	PayoutRun()
	PayoutResult(err error)
}

type nopPayoutMetrics struct{}

func (nopPayoutMetrics) PayoutRun() {}

func (nopPayoutMetrics) PayoutResult(error) {}

// PayoutJob periodically settles due investments through the ledger engine.
// A failed investment is logged and retried on the next tick.
type PayoutJob struct {
	lister   DueLister
	accruer  Accruer
	metrics  PayoutMetrics
	interval time.Duration
	batch    int
	workers  int
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPayoutJob(lister DueLister, accruer Accruer, interval time.Duration, batch, workers int, metrics PayoutMetrics) *PayoutJob {
	if interval <= 0 {
		interval = time.Minute
	}
	if batch <= 0 {
		batch = 200
	}
	if workers <= 0 {
		workers = 1
	}
	if metrics == nil {
		metrics = nopPayoutMetrics{}
	}
	return &PayoutJob{
		lister:   lister,
		accruer:  accruer,
		metrics:  metrics,
		interval: interval,
		batch:    batch,
		workers:  workers,
		now:      func() time.Time { return time.Now().UTC() },
		stop:     make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval until ctx ends or Stop is called
func (j *PayoutJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting payout job",
		zap.Duration("interval", j.interval),
		zap.Int("batch", j.batch),
		zap.Int("workers", j.workers),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Payout job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Payout job stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *PayoutJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// RunOnce walks every due investment page by page and reports how many were
// attempted and how many failed. Each investment is visited at most once per run.
func (j *PayoutJob) RunOnce(ctx context.Context) (processed, failed int) {
	j.metrics.PayoutRun()

	now := j.now()
	var after uuid.UUID
	for ctx.Err() == nil {
		due, err := j.lister.ListDue(ctx, now, after, j.batch)
		if err != nil {
			logger.Error(ctx, "Failed to list due investments", zap.Error(err))
			break
		}
		if len(due) == 0 {
			break
		}

		failed += j.settle(ctx, due)
		processed += len(due)
		after = due[len(due)-1].ID
		if len(due) < j.batch {
			break
		}
	}

	if processed > 0 {
		logger.Info(ctx, "Payout run finished", zap.Int("due", processed), zap.Int("failed", failed))
	}
	return processed, failed
}

// settle accrues one page concurrently; failures stay per investment
func (j *PayoutJob) settle(ctx context.Context, due []*entities.Investment) int {
	var (
		mu     sync.Mutex
		errCnt int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)
	for _, inv := range due {
		id := inv.ID
		g.Go(func() error {
			err := j.accrueOne(gctx, id)
			j.metrics.PayoutResult(err)
			if err != nil {
				mu.Lock()
				errCnt++
				mu.Unlock()
				logger.Error(gctx, "Payout failed", zap.String("investment_id", id.String()), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return errCnt
}

func (j *PayoutJob) accrueOne(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("payout panicked: %v", r)
		}
	}()
	_, err = j.accruer.AccruePayout(ctx, id)
	return err
}
