package auditobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"trade-auditor/internal/audit"
	"trade-auditor/internal/metrics"
	"trade-auditor/internal/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestWrapRecordsAuditMetrics(t *testing.T) {
	m := metrics.New()
	a := Wrap(audit.NewAuditor(0.01), m)

	inst := types.Option("SPY", "2024-03-15", types.RightPut, 229)
	t0 := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	rep, err := a.Run(context.Background(), []types.Fill{
		{Instrument: inst, Time: t0, Qty: -1, CashFlow: decimal.NewFromInt(350)},
		{Instrument: inst, Qty: 1, CashFlow: decimal.NewFromInt(-50)},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Closed) != 1 {
		t.Fatalf("Expected 1 closed position, got %d", len(rep.Closed))
	}

	if got := testutil.ToFloat64(m.FillsTotal); got != 2 {
		t.Errorf("Expected 2 fills, got %v", got)
	}
	if got := testutil.ToFloat64(m.UndatedFills); got != 1 {
		t.Errorf("Expected 1 undated fill, got %v", got)
	}
	if got := testutil.ToFloat64(m.StrategiesTotal.WithLabelValues("Short Put")); got != 1 {
		t.Errorf("Expected 1 short put strategy, got %v", got)
	}
	if got := testutil.ToFloat64(m.RealizedPnL); got != 300 {
		t.Errorf("Expected realized 300, got %v", got)
	}
}

func TestWrapPassesInputErrors(t *testing.T) {
	m := metrics.New()
	_, err := Wrap(audit.NewAuditor(0.01), m).Run(context.Background(), nil)

	var ie *types.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected InputError, got %v", err)
	}
	if got := testutil.ToFloat64(m.FillsTotal); got != 0 {
		t.Errorf("Expected nothing recorded on failure, got %v", got)
	}
}
