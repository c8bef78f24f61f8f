package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditReport is the output of one audit run over a fill log
type AuditReport struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Closed      []*Position        `json:"closed"`
	Open        []*Position        `json:"open"`
	Strategies  []*Strategy        `json:"strategies"`
	Summary     PerformanceSummary `json:"summary"`
}

// PerformanceSummary holds realized metrics. Open positions never contribute.
type PerformanceSummary struct {
	FillCount     int `json:"fill_count"`
	UndatedFills  int `json:"undated_fills"`  // Fills whose timestamp could not be parsed
	OrphanFills   int `json:"orphan_fills"`   // Zero-quantity fills with no open position
	ClosedCount   int `json:"closed_count"`
	OpenCount     int `json:"open_count"`
	StrategyCount int `json:"strategy_count"`

	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Fees        decimal.Decimal `json:"fees"`

	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	WinRate      float64         `json:"win_rate"` // Percentage of strategies with P&L > 0
	AvgWin       decimal.Decimal `json:"avg_win"`
	AvgLoss      decimal.Decimal `json:"avg_loss"`
	ProfitFactor float64         `json:"profit_factor"` // Gross wins / gross losses, 0 when no losses

	BestStrategyID  int `json:"best_strategy_id,omitempty"`
	WorstStrategyID int `json:"worst_strategy_id,omitempty"`

	ByType map[string]TypeSummary `json:"by_type"`
}

// TypeSummary aggregates strategies sharing one classification label
type TypeSummary struct {
	Count         int             `json:"count"`
	PnL           decimal.Decimal `json:"pnl"`
	AvgTheta      float64         `json:"avg_realized_theta"`
	AvgHoldingDay float64         `json:"avg_holding_days"`
}
