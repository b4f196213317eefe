package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	domainerrors "yieldvault.backend/internal/domain/errors"
)

func TestLedger_ObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedger(reg)

	m.ObserveOperation("withdraw", time.Now(), nil)
	m.ObserveOperation("withdraw", time.Now(), fmt.Errorf("lock: %w", domainerrors.ErrInsufficientFunds))
	m.ObserveOperation("withdraw", time.Now(), errors.New("disk on fire"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("withdraw", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("withdraw", domainerrors.CodeInsufficientFunds)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("withdraw", domainerrors.CodeInternalError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestLedger_PayoutAndNotify(t *testing.T) {
	m := NewLedger(prometheus.NewRegistry())

	m.PayoutRun()
	m.PayoutResult(nil)
	m.PayoutResult(errors.New("x"))
	m.PayoutResult(errors.New("y"))
	m.NotifyFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.payoutRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payouts.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.payouts.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifyErrors))
}

func TestLedger_NilIsNoop(t *testing.T) {
	var m *Ledger
	assert.NotPanics(t, func() {
		m.ObserveOperation("deposit", time.Now(), nil)
		m.PayoutRun()
		m.PayoutResult(nil)
		m.NotifyFailed()
	})
}

func TestNewLedger_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewLedger(reg)
	assert.Panics(t, func() { NewLedger(reg) })
}
