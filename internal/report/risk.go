package report

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trade-auditor/internal/types"
)

func riskText(rep *types.RiskReport) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("PORTFOLIO RISK REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString(fmt.Sprintf("Run: %s\n", rep.RunID))
	sb.WriteString(fmt.Sprintf("As of: %s\n\n", rep.AsOf.Format("2006-01-02 15:04:05")))

	t := rep.Totals
	sb.WriteString(fmt.Sprintf("Value: %.2f\n", rep.Value))
	sb.WriteString(fmt.Sprintf("Delta %.4f  Gamma %.6f  Theta %.4f/day  Vega %.4f  Rho %.4f\n",
		t.Delta, t.Gamma, t.Theta, t.Vega, t.Rho))
	if len(rep.Unavailable) > 0 {
		sb.WriteString(fmt.Sprintf("Price unavailable: %s\n", strings.Join(rep.Unavailable, ", ")))
	}

	sb.WriteString("\nPOSITIONS\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, pr := range rep.Positions {
		sb.WriteString(fmt.Sprintf("%-30s qty %8g  ", describe(pr.Position), pr.Position.Qty))
		if !pr.Available {
			sb.WriteString(pr.Note + "\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("value %12.2f  delta %10.4f", pr.Value, pr.Greeks.Delta))
		if pr.Position.IsOption() {
			vol := fmt.Sprintf("%.1f%%", pr.Volatility*100)
			if pr.VolDefaulted {
				vol += "*"
			}
			sb.WriteString(fmt.Sprintf("  vol %s  T %.4f", vol, pr.TimeToExpiry))
		}
		if pr.PricingError != "" {
			sb.WriteString("  error: " + pr.PricingError)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nWHAT-IF SWEEP\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, s := range rep.Sweep {
		sb.WriteString(fmt.Sprintf("%+4d%%  value %14.2f  change %+12.2f (%+.2f%%)\n", s.MovePct, s.Value, s.Change, s.ChangePct))
	}

	sb.WriteString("\n" + strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("END OF REPORT\n")
	return sb.String()
}

// riskCSV writes the per-position table, a blank line, then the sweep.
func riskCSV(rep *types.RiskReport) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write([]string{"underlying", "right", "strike", "expiry", "qty", "multiplier", "available",
		"spot", "volatility", "vol_defaulted", "time_to_expiry", "unit_price", "value",
		"delta", "gamma", "theta", "vega", "rho", "note"})
	for _, pr := range rep.Positions {
		p := pr.Position
		strike := ""
		if p.Strike != nil {
			strike = num(*p.Strike)
		}
		note := pr.Note
		if pr.PricingError != "" {
			note = pr.PricingError
		}
		w.Write([]string{
			p.Underlying, string(p.Right), strike, p.Expiry, num(p.Qty), num(p.Multiplier),
			strconv.FormatBool(pr.Available), num(pr.Spot), num(pr.Volatility),
			strconv.FormatBool(pr.VolDefaulted), num(pr.TimeToExpiry), num(pr.UnitPrice), num(pr.Value),
			num(pr.Greeks.Delta), num(pr.Greeks.Gamma), num(pr.Greeks.Theta), num(pr.Greeks.Vega), num(pr.Greeks.Rho),
			note,
		})
	}
	w.Write(nil)
	w.Write([]string{"move_pct", "value", "change", "change_pct"})
	for _, s := range rep.Sweep {
		w.Write([]string{strconv.Itoa(s.MovePct), num(s.Value), num(s.Change), num(s.ChangePct)})
	}
	w.Flush()
	return sb.String(), w.Error()
}

func describe(p types.RiskPosition) string {
	if !p.IsOption() {
		return p.Underlying
	}
	return fmt.Sprintf("%s %s %g%s", p.Underlying, p.Expiry, *p.Strike, p.Right)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func timeCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
