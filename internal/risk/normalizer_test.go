package risk

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"trade-auditor/internal/types"
)

func TestNormalizePositionRecord(t *testing.T) {
	pos := &types.Position{
		Instrument: types.Option("SPY", "2024-03-15", types.RightPut, 229),
		NetQty:     -2,
	}
	got, err := Normalize([]types.RiskRecord{
		types.PositionRecord(pos),
		types.PositionRecord(&types.Position{Instrument: types.Equity("QQQ"), NetQty: 50}),
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	opt := got[0]
	if opt.Underlying != "SPY" || opt.Qty != -2 || opt.Right != types.RightPut || opt.Expiry != "2024-03-15" {
		t.Errorf("Unexpected option normalization: %+v", opt)
	}
	if opt.Strike == nil || *opt.Strike != 229 || opt.Multiplier != 100 {
		t.Errorf("Expected strike 229 multiplier 100, got %v %v", opt.Strike, opt.Multiplier)
	}

	eq := got[1]
	if eq.Strike != nil || eq.Right != types.RightNone || eq.Multiplier != 1 || eq.Expiry != "" {
		t.Errorf("Expected plain equity, got %+v", eq)
	}
}

func TestNormalizeFieldRecords(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   types.RiskPosition
		strike float64
	}{
		{
			name:   "qty_net and type",
			fields: map[string]any{"symbol": "SPY", "qty_net": -1.0, "strike": 229, "type": "put", "expiry": "20240315"},
			want:   types.RiskPosition{Underlying: "SPY", Qty: -1, Right: types.RightPut, Expiry: "2024-03-15", Multiplier: 100},
			strike: 229,
		},
		{
			name:   "right wins over type",
			fields: map[string]any{"underlying": "QQQ", "qty": "3", "strike": "400.5", "right": "Call", "type": "P", "expiry": "2024-04-19T20:00:00Z"},
			want:   types.RiskPosition{Underlying: "QQQ", Qty: 3, Right: types.RightCall, Expiry: "2024-04-19", Multiplier: 100},
			strike: 400.5,
		},
		{
			name:   "time expiry",
			fields: map[string]any{"symbol": "IWM", "qty": json.Number("2"), "strike": 190.0, "right": "c", "expiry": time.Date(2024, 5, 17, 21, 0, 0, 0, time.UTC)},
			want:   types.RiskPosition{Underlying: "IWM", Qty: 2, Right: types.RightCall, Expiry: "2024-05-17", Multiplier: 100},
			strike: 190,
		},
		{
			name:   "strike without right is not an option",
			fields: map[string]any{"symbol": "SPY", "qty": 1, "strike": 229, "expiry": "garbage"},
			want:   types.RiskPosition{Underlying: "SPY", Qty: 1, Multiplier: 1},
			strike: 229,
		},
		{
			name:   "equity",
			fields: map[string]any{"symbol": "SPY", "qty": int64(100), "type": "STK"},
			want:   types.RiskPosition{Underlying: "SPY", Qty: 100, Multiplier: 1},
		},
	}

	for _, tc := range cases {
		got, err := Normalize([]types.RiskRecord{types.FieldsRecord(tc.fields)})
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		p := got[0]
		if p.Underlying != tc.want.Underlying || p.Qty != tc.want.Qty || p.Right != tc.want.Right ||
			p.Expiry != tc.want.Expiry || p.Multiplier != tc.want.Multiplier {
			t.Errorf("%s: expected %+v, got %+v", tc.name, tc.want, p)
		}
		if tc.strike == 0 && p.Strike != nil {
			t.Errorf("%s: expected no strike, got %v", tc.name, *p.Strike)
		}
		if tc.strike != 0 && (p.Strike == nil || *p.Strike != tc.strike) {
			t.Errorf("%s: expected strike %v, got %v", tc.name, tc.strike, p.Strike)
		}
	}
}

func TestNormalizeRejectsBadShape(t *testing.T) {
	cases := []struct {
		records []types.RiskRecord
		want    string
	}{
		{[]types.RiskRecord{types.FieldsRecord(map[string]any{"qty": 1})}, "records[0].symbol"},
		{[]types.RiskRecord{
			types.FieldsRecord(map[string]any{"symbol": "SPY", "qty": 1}),
			types.FieldsRecord(map[string]any{"symbol": "SPY"}),
		}, "records[1].qty"},
		{[]types.RiskRecord{types.FieldsRecord(map[string]any{"symbol": "SPY", "qty_net": "lots"})}, "records[0].qty_net"},
		{[]types.RiskRecord{types.FieldsRecord(map[string]any{"symbol": "SPY", "qty": 1, "strike": "high"})}, "records[0].strike"},
		{[]types.RiskRecord{types.PositionRecord(nil)}, "records[0].position"},
		{[]types.RiskRecord{{}}, "records[0].kind"},
	}

	for _, tc := range cases {
		_, err := Normalize(tc.records)
		var ie *types.InputError
		if !errors.As(err, &ie) {
			t.Errorf("%s: expected InputError, got %v", tc.want, err)
			continue
		}
		if ie.Requirement != tc.want {
			t.Errorf("Expected requirement %s, got %s", tc.want, ie.Requirement)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("Expected message to name %s, got %s", tc.want, err)
		}
	}
}
