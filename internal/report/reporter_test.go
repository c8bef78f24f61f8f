package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trade-auditor/internal/types"

	"github.com/shopspring/decimal"
)

var generated = time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)

func sampleAudit() *types.AuditReport {
	put := &types.Position{
		Instrument: types.Option("SPY", "2024-03-15", types.RightPut, 229),
		PnL:        decimal.NewFromInt(300),
		Closed:     true,
	}
	long := &types.Position{
		Instrument: types.Option("SPY", "2024-03-15", types.RightPut, 224),
		PnL:        decimal.NewFromInt(-110),
		Closed:     true,
	}
	st := &types.Strategy{
		ID: 1, Underlying: "SPY", Expiry: "2024-03-15", Type: "Put Vertical (Credit)",
		Positions: []*types.Position{put, long}, PnL: decimal.NewFromInt(190),
		HoldingDays: 2, RealizedTheta: 95, Entry: generated.Add(-48 * time.Hour), Exit: generated,
	}
	return &types.AuditReport{
		RunID:       "run-1",
		GeneratedAt: generated,
		Closed:      []*types.Position{put, long},
		Strategies:  []*types.Strategy{st},
		Summary: types.PerformanceSummary{
			FillCount: 4, ClosedCount: 2, StrategyCount: 1, Wins: 1, WinRate: 100,
			RealizedPnL: decimal.NewFromInt(190),
			ByType:      map[string]types.TypeSummary{"Put Vertical (Credit)": {Count: 1, PnL: decimal.NewFromInt(190), AvgTheta: 95, AvgHoldingDay: 2}},
		},
	}
}

func sampleRisk() *types.RiskReport {
	strike := 229.0
	return &types.RiskReport{
		RunID: "risk-1",
		AsOf:  generated,
		Positions: []types.PositionRisk{
			{
				Position:  types.RiskPosition{Underlying: "SPY", Qty: -1, Strike: &strike, Right: types.RightPut, Expiry: "2024-03-15", Multiplier: 100},
				Available: true, Spot: 230, Volatility: 0.4, VolDefaulted: true, TimeToExpiry: 0.03,
				UnitPrice: 4.1, Value: -410, Greeks: types.Greeks{Delta: 45},
			},
			{
				Position: types.RiskPosition{Underlying: "QQQ", Qty: 10, Multiplier: 1},
				Note:     types.PriceUnavailable,
			},
		},
		Totals:      types.Greeks{Delta: 45},
		Value:       -410,
		Sweep:       []types.Scenario{{MovePct: -1, Value: -450, Change: -40, ChangePct: -9.75}, {MovePct: 0, Value: -410}},
		Unavailable: []string{"QQQ"},
	}
}

func TestAuditText(t *testing.T) {
	out, err := NewReporter("").Audit(sampleAudit(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"TRADE AUDIT REPORT", "Realized P&L: 190.00", "#1 SPY 2024-03-15 Put Vertical (Credit)", "Win rate: 100.0%", "END OF REPORT"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text report to contain %q", want)
		}
	}
}

func TestAuditCSV(t *testing.T) {
	out, err := NewReporter("").Audit(sampleAudit(), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("Expected valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 member rows, got %d", len(rows))
	}
	if rows[1][1] != "Put Vertical (Credit)" || rows[1][6] != "300.00" || rows[2][7] != "190.00" {
		t.Errorf("Unexpected rows %v", rows[1:])
	}
}

func TestAuditJSON(t *testing.T) {
	out, err := NewReporter("").Audit(sampleAudit(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if back["run_id"] != "run-1" {
		t.Errorf("Expected run_id run-1, got %v", back["run_id"])
	}
}

func TestRiskText(t *testing.T) {
	out, err := NewReporter("").Risk(sampleRisk(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"PORTFOLIO RISK REPORT", "Price unavailable: QQQ", "QQQ", types.PriceUnavailable, "vol 40.0%*", "WHAT-IF SWEEP", "-1%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected risk report to contain %q", want)
		}
	}
}

func TestRiskCSV(t *testing.T) {
	out, err := NewReporter("").Risk(sampleRisk(), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	r := csv.NewReader(strings.NewReader(out))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("Expected valid CSV: %v", err)
	}
	// header, 2 positions, sweep header, 2 scenarios
	if len(rows) != 6 {
		t.Fatalf("Expected 6 rows, got %d: %v", len(rows), rows)
	}
	if rows[2][18] != types.PriceUnavailable {
		t.Errorf("Expected unavailable note, got %q", rows[2][18])
	}
	if rows[4][0] != "-1" || rows[4][2] != "-40" {
		t.Errorf("Unexpected sweep row %v", rows[4])
	}
}

func TestSaveReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := NewReporter(dir)

	path, err := r.SaveAudit(sampleAudit(), FormatJSON)
	if err != nil {
		t.Fatalf("SaveAudit: %v", err)
	}
	if filepath.Base(path) != "audit_2024-03-04_16-00-00.json" {
		t.Errorf("Unexpected file name %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected file on disk: %v", err)
	}

	path, err = r.SaveRisk(sampleRisk(), FormatCSV)
	if err != nil || filepath.Ext(path) != ".csv" {
		t.Errorf("Expected csv risk report, got %s (%v)", path, err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("csv"); err != nil || f != FormatCSV {
		t.Errorf("Expected csv, got %v %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("Expected error for pdf")
	}
	if _, err := NewReporter("").Audit(sampleAudit(), "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
