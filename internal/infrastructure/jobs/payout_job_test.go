package jobs

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"yieldvault.backend/internal/domain/entities"
)

type dueListerStub struct {
	mu     sync.Mutex
	due    []*entities.Investment
	err    error
	calls  int
	limits []int
}

func (s *dueListerStub) ListDue(_ context.Context, _ time.Time, after uuid.UUID, limit int) ([]*entities.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}
	sorted := append([]*entities.Investment(nil), s.due...)
	sort.Slice(sorted, func(i, k int) bool { return bytes.Compare(sorted[i].ID[:], sorted[k].ID[:]) < 0 })
	var page []*entities.Investment
	for _, inv := range sorted {
		if bytes.Compare(inv.ID[:], after[:]) > 0 && len(page) < limit {
			page = append(page, inv)
		}
	}
	return page, nil
}

func (s *dueListerStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type accruerStub struct {
	mu      sync.Mutex
	seen    []uuid.UUID
	failFor map[uuid.UUID]error
	panicOn uuid.UUID
}

func (s *accruerStub) AccruePayout(_ context.Context, id uuid.UUID) (*entities.AccrualResult, error) {
	if id == s.panicOn {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, id)
	if err := s.failFor[id]; err != nil {
		return nil, err
	}
	return &entities.AccrualResult{}, nil
}

type payoutMetricsStub struct {
	mu     sync.Mutex
	runs   int
	ok     int
	failed int
}

func (m *payoutMetricsStub) PayoutRun() {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
}

func (m *payoutMetricsStub) PayoutResult(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failed++
		return
	}
	m.ok++
}

func investments(ids ...uuid.UUID) []*entities.Investment {
	out := make([]*entities.Investment, 0, len(ids))
	for _, id := range ids {
		out = append(out, &entities.Investment{ID: id})
	}
	return out
}

func TestRunOnce_NoItems(t *testing.T) {
	lister := &dueListerStub{}
	accruer := &accruerStub{}
	job := NewPayoutJob(lister, accruer, time.Millisecond, 50, 2, nil)

	processed, failed := job.RunOnce(context.Background())
	require.Zero(t, processed)
	require.Zero(t, failed)
	require.Empty(t, accruer.seen)
	require.Equal(t, []int{50}, lister.limits)
}

func TestRunOnce_AccruesEveryDueInvestment(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	lister := &dueListerStub{due: investments(ids...)}
	accruer := &accruerStub{}
	metrics := &payoutMetricsStub{}
	job := NewPayoutJob(lister, accruer, time.Millisecond, 10, 3, metrics)

	processed, failed := job.RunOnce(context.Background())
	require.Equal(t, 4, processed)
	require.Zero(t, failed)
	require.ElementsMatch(t, ids, accruer.seen)
	require.Equal(t, 1, metrics.runs)
	require.Equal(t, 4, metrics.ok)
}

func TestRunOnce_FailuresAndPanicsAreIsolated(t *testing.T) {
	okID, failID, panicID := uuid.New(), uuid.New(), uuid.New()
	lister := &dueListerStub{due: investments(failID, panicID, okID)}
	accruer := &accruerStub{
		failFor: map[uuid.UUID]error{failID: errors.New("ledger unavailable")},
		panicOn: panicID,
	}
	metrics := &payoutMetricsStub{}
	job := NewPayoutJob(lister, accruer, time.Millisecond, 10, 1, metrics)

	processed, failed := job.RunOnce(context.Background())
	require.Equal(t, 3, processed)
	require.Equal(t, 2, failed)
	require.ElementsMatch(t, []uuid.UUID{failID, okID}, accruer.seen)
	require.Equal(t, 1, metrics.ok)
	require.Equal(t, 2, metrics.failed)
}

func TestRunOnce_PersistentFailuresDoNotStarveLaterPages(t *testing.T) {
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
	}
	sort.Slice(ids, func(i, k int) bool { return bytes.Compare(ids[i][:], ids[k][:]) < 0 })
	broken := errors.New("wallet frozen")
	lister := &dueListerStub{due: investments(ids...)}
	accruer := &accruerStub{failFor: map[uuid.UUID]error{ids[0]: broken, ids[1]: broken}}
	job := NewPayoutJob(lister, accruer, time.Millisecond, 2, 2, nil)

	for run := 0; run < 2; run++ {
		accruer.seen = nil
		processed, failed := job.RunOnce(context.Background())
		require.Equal(t, 5, processed)
		require.Equal(t, 2, failed)
		require.ElementsMatch(t, ids, accruer.seen)
	}
	// two full pages, one short page, per run
	require.Equal(t, 6, lister.Calls())
}

func TestRunOnce_ListError(t *testing.T) {
	lister := &dueListerStub{err: errors.New("db down")}
	accruer := &accruerStub{}
	job := NewPayoutJob(lister, accruer, time.Millisecond, 10, 1, nil)

	processed, failed := job.RunOnce(context.Background())
	require.Zero(t, processed)
	require.Zero(t, failed)
	require.Empty(t, accruer.seen)
}

func TestNewPayoutJob_Defaults(t *testing.T) {
	job := NewPayoutJob(&dueListerStub{}, &accruerStub{}, 0, 0, 0, nil)
	require.Equal(t, time.Minute, job.interval)
	require.Equal(t, 200, job.batch)
	require.Equal(t, 1, job.workers)
}

func TestStartStop_StopsByContext(t *testing.T) {
	lister := &dueListerStub{}
	job := NewPayoutJob(lister, &accruerStub{}, time.Millisecond, 10, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return lister.Calls() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after context cancel")
	}
}

func TestStartStop_StopsByStopChannel(t *testing.T) {
	lister := &dueListerStub{}
	job := NewPayoutJob(lister, &accruerStub{}, time.Hour, 10, 1, nil)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return lister.Calls() == 1 }, time.Second, time.Millisecond)
	job.Stop()
	job.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after Stop")
	}
}
