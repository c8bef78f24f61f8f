package marketdataobs

import (
	"context"
	"errors"
	"testing"

	"trade-auditor/internal/metrics"
	"trade-auditor/internal/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubSource struct {
	quotes map[string]types.Quote
	err    error
}

func (s stubSource) Quotes(ctx context.Context, symbols []string, lookbackDays int) (map[string]types.Quote, error) {
	return s.quotes, s.err
}

func TestWrapCountsFetches(t *testing.T) {
	m := metrics.New()
	ok := Wrap(stubSource{quotes: map[string]types.Quote{"SPY": {Last: 1}}}, m)
	bad := Wrap(stubSource{err: errors.New("down")}, m)

	got, err := ok.Quotes(context.Background(), []string{"SPY", "QQQ"}, 30)
	if err != nil || got["SPY"].Last != 1 {
		t.Fatalf("Expected passthrough quotes, got %v %v", got, err)
	}
	if _, err := bad.Quotes(context.Background(), []string{"SPY"}, 30); err == nil {
		t.Error("Expected error passthrough")
	}

	if got := testutil.ToFloat64(m.FetchErrorsTotal); got != 1 {
		t.Errorf("Expected 1 fetch error, got %v", got)
	}
	if got := testutil.CollectAndCount(m.FetchDur); got != 1 {
		t.Errorf("Expected fetch histogram, got %d series", got)
	}
}
