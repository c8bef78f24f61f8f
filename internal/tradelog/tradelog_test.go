package tradelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trade-auditor/internal/types"

	"github.com/shopspring/decimal"
)

const sample = `{"time":"2024-03-01T14:30:00Z","symbol":"spy","expiry":"20240315","right":"PUT","strike":229,"qty":-1,"price":"3.50","fee":"0.65"}
{"time":"2024-03-01 14:30:30","symbol":"SPY","expiry":"2024-03-15","right":"P","strike":224,"qty":1,"price":1.20,"fee":0.65,"cash_flow":-120.65}

# adjustments below
not json at all
{"time":"yesterday","symbol":"SPY","qty":100,"price":"229.10"}
{"symbol":"","qty":1}
{"time":"2024-03-04T10:00:00Z","symbol":"QQQ","qty":0,"fee":"1.30","note":"adr fee"}
`

func TestReadFillLog(t *testing.T) {
	fills, st, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if st.Lines != 6 || st.Skipped != 2 {
		t.Errorf("Expected 6 lines with 2 skipped, got %+v", st)
	}
	if len(fills) != 4 {
		t.Fatalf("Expected 4 fills, got %d", len(fills))
	}

	short := fills[0]
	wantInst := types.Option("SPY", "2024-03-15", types.RightPut, 229)
	if short.Instrument != wantInst {
		t.Errorf("Expected %v, got %v", wantInst, short.Instrument)
	}
	if !short.Time.Equal(time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected time %v", short.Time)
	}
	// -(-1 x 3.50 x 100) - 0.65
	if !short.CashFlow.Equal(decimal.RequireFromString("349.35")) {
		t.Errorf("Expected derived cash flow 349.35, got %s", short.CashFlow)
	}

	long := fills[1]
	if long.Instrument.Right != types.RightPut || long.Instrument.Strike != 224 {
		t.Errorf("Unexpected instrument %v", long.Instrument)
	}
	if !long.CashFlow.Equal(decimal.RequireFromString("-120.65")) {
		t.Errorf("Expected explicit cash flow -120.65, got %s", long.CashFlow)
	}
	if long.Time.IsZero() {
		t.Error("Expected space-separated time to parse")
	}
}

func TestEquityAndUndatedFill(t *testing.T) {
	fills, _, _ := Read(strings.NewReader(sample))
	eq := fills[2]
	if !eq.Instrument.IsEquity() || eq.Instrument.Underlying != "SPY" {
		t.Errorf("Expected SPY equity, got %v", eq.Instrument)
	}
	if eq.Dated() {
		t.Errorf("Expected bad time to be undated, got %v", eq.Time)
	}
	if !eq.CashFlow.Equal(decimal.RequireFromString("-22910")) {
		t.Errorf("Expected multiplier 1 cash flow -22910, got %s", eq.CashFlow)
	}

	adj := fills[3]
	if adj.Qty != 0 || !adj.CashFlow.Equal(decimal.RequireFromString("-1.30")) || adj.Note != "adr fee" {
		t.Errorf("Expected fee-only adjustment, got %+v", adj)
	}
}

func TestExplicitMultiplier(t *testing.T) {
	rec := Record{Symbol: "NIFTY", Right: "C", Strike: 22000, Expiry: "2024-03-28", Qty: 2,
		Price: decimal.NewNullDecimal(decimal.RequireFromString("110")), Multiplier: 50}
	f := rec.Fill()
	if !f.CashFlow.Equal(decimal.NewFromInt(-11000)) {
		t.Errorf("Expected -11000, got %s", f.CashFlow)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fills.jsonl")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	fills, _, err := ReadFile(path)
	if err != nil || len(fills) != 4 {
		t.Errorf("Expected 4 fills, got %d (%v)", len(fills), err)
	}
	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("Expected error for missing file")
	}
}
