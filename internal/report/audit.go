package report

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"trade-auditor/internal/types"
)

const ruleWidth = 80

func auditText(rep *types.AuditReport) string {
	var sb strings.Builder
	s := rep.Summary

	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("TRADE AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString(fmt.Sprintf("Run: %s\n", rep.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", rep.GeneratedAt.Format("2006-01-02 15:04:05")))

	sb.WriteString(fmt.Sprintf("Fills: %d (undated %d, orphaned %d)\n", s.FillCount, s.UndatedFills, s.OrphanFills))
	sb.WriteString(fmt.Sprintf("Positions: %d closed, %d open\n", s.ClosedCount, s.OpenCount))
	sb.WriteString(fmt.Sprintf("Strategies: %d\n", s.StrategyCount))
	sb.WriteString(fmt.Sprintf("Realized P&L: %s (fees %s)\n", s.RealizedPnL.StringFixed(2), s.Fees.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Win rate: %.1f%% (%d wins, %d losses)\n", s.WinRate, s.Wins, s.Losses))
	sb.WriteString(fmt.Sprintf("Avg win: %s  Avg loss: %s  Profit factor: %.2f\n",
		s.AvgWin.StringFixed(2), s.AvgLoss.StringFixed(2), s.ProfitFactor))

	if len(s.ByType) > 0 {
		sb.WriteString("\nBY STRATEGY TYPE\n")
		sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		labels := make([]string, 0, len(s.ByType))
		for l := range s.ByType {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			ts := s.ByType[l]
			sb.WriteString(fmt.Sprintf("%-24s %4d  P&L %12s  theta/day %10.2f  days %6.2f\n",
				l, ts.Count, ts.PnL.StringFixed(2), ts.AvgTheta, ts.AvgHoldingDay))
		}
	}

	sb.WriteString("\nSTRATEGIES\n")
	sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	if len(rep.Strategies) == 0 {
		sb.WriteString("No strategies identified.\n")
	}
	for _, st := range rep.Strategies {
		sb.WriteString(fmt.Sprintf("#%d %s %s %s\n", st.ID, st.Underlying, st.Expiry, st.Type))
		sb.WriteString(fmt.Sprintf("   P&L %s over %.2f days, realized theta %.2f/day\n",
			st.PnL.StringFixed(2), st.HoldingDays, st.RealizedTheta))
		for _, p := range st.Positions {
			state := "open"
			if p.Closed {
				state = "closed"
			}
			sb.WriteString(fmt.Sprintf("   - %-28s %-6s P&L %s\n", p.Instrument, state, p.PnL.StringFixed(2)))
		}
	}

	if len(rep.Open) > 0 {
		sb.WriteString("\nOPEN POSITIONS\n")
		sb.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		for _, p := range rep.Open {
			sb.WriteString(fmt.Sprintf("%-28s net %g  cash %s\n", p.Instrument, p.NetQty, p.PnL.StringFixed(2)))
		}
	}

	sb.WriteString("\n" + strings.Repeat("=", ruleWidth) + "\n")
	sb.WriteString("END OF REPORT\n")
	return sb.String()
}

// auditCSV emits one row per strategy member so the file stays flat.
func auditCSV(rep *types.AuditReport) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write([]string{"strategy_id", "type", "underlying", "expiry", "instrument", "closed",
		"position_pnl", "strategy_pnl", "holding_days", "realized_theta", "entry", "exit"})
	for _, st := range rep.Strategies {
		for _, p := range st.Positions {
			w.Write([]string{
				strconv.Itoa(st.ID),
				st.Type,
				st.Underlying,
				st.Expiry,
				p.Instrument.String(),
				strconv.FormatBool(p.Closed),
				p.PnL.StringFixed(2),
				st.PnL.StringFixed(2),
				strconv.FormatFloat(st.HoldingDays, 'f', 4, 64),
				strconv.FormatFloat(st.RealizedTheta, 'f', 4, 64),
				timeCell(st.Entry),
				timeCell(st.Exit),
			})
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}
