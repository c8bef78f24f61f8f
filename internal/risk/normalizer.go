package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"trade-auditor/internal/types"
)

// OptionMultiplier is the contract size applied when both strike and right
// are known.
const OptionMultiplier = 100

var expiryLayouts = []string{
	"2006-01-02",
	"20060102",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Normalize turns caller records of either shape into canonical risk
// positions. It is the only place loose field names are interpreted.
func Normalize(records []types.RiskRecord) ([]types.RiskPosition, error) {
	out := make([]types.RiskPosition, 0, len(records))
	for i, rec := range records {
		var (
			p   types.RiskPosition
			err *fieldError
		)
		switch rec.Kind {
		case types.RecordPosition:
			p, err = fromPosition(rec.Position)
		case types.RecordFields:
			p, err = fromFields(rec.Fields)
		default:
			err = &fieldError{field: "kind", reason: fmt.Sprintf("unknown record kind %d", rec.Kind)}
		}
		if err != nil {
			return nil, &types.InputError{
				Requirement: fmt.Sprintf("records[%d].%s", i, err.field),
				Reason:      err.reason,
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// fieldError names the offending field of a single record.
type fieldError struct {
	field  string
	reason string
}

func fromPosition(pos *types.Position) (types.RiskPosition, *fieldError) {
	if pos == nil {
		return types.RiskPosition{}, &fieldError{field: "position", reason: "missing"}
	}
	inst := pos.Instrument
	if strings.TrimSpace(inst.Underlying) == "" {
		return types.RiskPosition{}, &fieldError{field: "underlying", reason: "missing"}
	}

	p := types.RiskPosition{
		Underlying: inst.Underlying,
		Qty:        pos.NetQty,
	}
	if !inst.IsEquity() {
		strike := inst.Strike
		p.Strike = &strike
		p.Right = normalizeRight(string(inst.Right))
		p.Expiry = normalizeExpiry(inst.Expiry)
	}
	p.Multiplier = multiplier(p)
	return p, nil
}

func fromFields(fields map[string]any) (types.RiskPosition, *fieldError) {
	if fields == nil {
		return types.RiskPosition{}, &fieldError{field: "fields", reason: "missing"}
	}
	var p types.RiskPosition

	sym, ok := firstString(fields, "symbol", "underlying")
	if !ok || strings.TrimSpace(sym) == "" {
		return p, &fieldError{field: "symbol", reason: "missing underlying symbol"}
	}
	p.Underlying = strings.TrimSpace(sym)

	raw, key, ok := first(fields, "qty", "qty_net")
	if !ok {
		return p, &fieldError{field: "qty", reason: "missing quantity"}
	}
	qty, ok := toFloat(raw)
	if !ok {
		return p, &fieldError{field: key, reason: fmt.Sprintf("not a number: %v", raw)}
	}
	p.Qty = qty

	if raw, ok := fields["strike"]; ok && raw != nil {
		strike, ok := toFloat(raw)
		if !ok {
			return p, &fieldError{field: "strike", reason: fmt.Sprintf("not a number: %v", raw)}
		}
		p.Strike = &strike
	}

	if raw, _, ok := first(fields, "right", "type"); ok {
		if s, ok := raw.(string); ok {
			p.Right = normalizeRight(s)
		}
	}

	if raw, ok := fields["expiry"]; ok {
		switch v := raw.(type) {
		case string:
			p.Expiry = normalizeExpiry(v)
		case time.Time:
			if !v.IsZero() {
				p.Expiry = v.UTC().Format("2006-01-02")
			}
		}
	}

	p.Multiplier = multiplier(p)
	return p, nil
}

func multiplier(p types.RiskPosition) float64 {
	if p.Strike != nil && p.Right != types.RightNone {
		return OptionMultiplier
	}
	return 1
}

// normalizeRight keeps the leading character. Anything not C or P is no right.
func normalizeRight(s string) types.Right {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.RightNone
	}
	switch strings.ToUpper(s[:1]) {
	case "C":
		return types.RightCall
	case "P":
		return types.RightPut
	}
	return types.RightNone
}

// normalizeExpiry returns an ISO date, or empty when the value is unusable.
func normalizeExpiry(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func first(fields map[string]any, keys ...string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v, k, true
		}
	}
	return nil, "", false
}

func firstString(fields map[string]any, keys ...string) (string, bool) {
	v, _, ok := first(fields, keys...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
