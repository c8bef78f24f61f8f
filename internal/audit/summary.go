package audit

import (
	"trade-auditor/internal/matcher"
	"trade-auditor/internal/types"

	"github.com/shopspring/decimal"
)

// Summarize computes realized performance. Strategies with any open member
// are counted but excluded from win/loss and per-type figures.
func Summarize(res matcher.Result, strategies []*types.Strategy) types.PerformanceSummary {
	s := types.PerformanceSummary{
		FillCount:     res.Fills,
		UndatedFills:  res.Undated,
		OrphanFills:   res.Orphans,
		ClosedCount:   len(res.Closed),
		OpenCount:     len(res.Open),
		StrategyCount: len(strategies),
		RealizedPnL:   decimal.Zero,
		Fees:          decimal.Zero,
		AvgWin:        decimal.Zero,
		AvgLoss:       decimal.Zero,
		ByType:        map[string]types.TypeSummary{},
	}

	for _, p := range res.Closed {
		s.RealizedPnL = s.RealizedPnL.Add(p.PnL)
		s.Fees = s.Fees.Add(p.Fees)
	}

	grossWin, grossLoss := decimal.Zero, decimal.Zero
	var best, worst *types.Strategy
	realized := 0

	for _, st := range strategies {
		if !allClosed(st) {
			continue
		}
		realized++

		switch {
		case st.PnL.IsPositive():
			s.Wins++
			grossWin = grossWin.Add(st.PnL)
		case st.PnL.IsNegative():
			s.Losses++
			grossLoss = grossLoss.Add(st.PnL)
		}
		if best == nil || st.PnL.GreaterThan(best.PnL) {
			best = st
		}
		if worst == nil || st.PnL.LessThan(worst.PnL) {
			worst = st
		}

		ts := s.ByType[st.Type]
		ts.Count++
		ts.PnL = ts.PnL.Add(st.PnL)
		ts.AvgTheta += st.RealizedTheta
		ts.AvgHoldingDay += st.HoldingDays
		s.ByType[st.Type] = ts
	}

	for label, ts := range s.ByType {
		ts.AvgTheta /= float64(ts.Count)
		ts.AvgHoldingDay /= float64(ts.Count)
		s.ByType[label] = ts
	}

	if realized > 0 {
		s.WinRate = float64(s.Wins) / float64(realized) * 100
	}
	if s.Wins > 0 {
		s.AvgWin = grossWin.Div(decimal.NewFromInt(int64(s.Wins)))
	}
	if s.Losses > 0 {
		s.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(s.Losses)))
		s.ProfitFactor = grossWin.Div(grossLoss.Abs()).InexactFloat64()
	}
	if best != nil {
		s.BestStrategyID = best.ID
		s.WorstStrategyID = worst.ID
	}
	return s
}

func allClosed(st *types.Strategy) bool {
	for _, p := range st.Positions {
		if !p.Closed {
			return false
		}
	}
	return len(st.Positions) > 0
}
