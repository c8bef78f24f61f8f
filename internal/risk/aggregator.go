package risk

import (
	"context"
	"math"
	"sort"
	"time"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/pricing"
	"trade-auditor/internal/ta"
	"trade-auditor/internal/types"

	"github.com/google/uuid"
)

// SweepRange is the largest absolute price move of the what-if sweep, in
// whole percent.
const SweepRange = 10

type Config struct {
	RiskFreeRate       float64
	DefaultVolatility  float64
	MinVolatility      float64
	VolWindow          int
	LookbackDays       int
	TradingDaysPerYear float64
}

func DefaultConfig() Config {
	return Config{
		RiskFreeRate:       0.05,
		DefaultVolatility:  0.40,
		MinVolatility:      0.01,
		VolWindow:          30,
		LookbackDays:       90,
		TradingDaysPerYear: 252,
	}
}

type Analyzer struct {
	cfg Config
	md  interfaces.MarketData
	now func() time.Time
}

var _ interfaces.RiskAnalyzer = (*Analyzer)(nil)

func NewAnalyzer(cfg Config, md interfaces.MarketData) *Analyzer {
	return &Analyzer{cfg: cfg, md: md, now: time.Now}
}

// WithClock fixes the valuation instant used for time to expiry.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Analyze normalizes records, fetches market data once for every underlying,
// prices each position and runs the what-if sweep. Only malformed records
// fail the call; missing prices are reported per position.
func (a *Analyzer) Analyze(ctx context.Context, records []types.RiskRecord) (*types.RiskReport, error) {
	positions, err := Normalize(records)
	if err != nil {
		return nil, err
	}

	asOf := a.now().UTC()
	quotes := a.fetch(ctx, positions)

	report := &types.RiskReport{
		RunID:     uuid.NewString(),
		AsOf:      asOf,
		Positions: make([]types.PositionRisk, 0, len(positions)),
	}

	missing := map[string]bool{}
	for _, p := range positions {
		pr := a.price(p, quotes, asOf)
		if pr.Available {
			report.Totals = report.Totals.Add(pr.Greeks)
			report.Value += pr.Value
		} else if !missing[p.Underlying] {
			missing[p.Underlying] = true
			report.Unavailable = append(report.Unavailable, p.Underlying)
			logger.Risk(ctx, p.Underlying, "price_unavailable")
		}
		report.Positions = append(report.Positions, pr)
	}
	sort.Strings(report.Unavailable)

	report.Sweep = a.sweep(report.Positions)
	return report, nil
}

func (a *Analyzer) fetch(ctx context.Context, positions []types.RiskPosition) map[string]types.Quote {
	seen := map[string]bool{}
	symbols := make([]string, 0)
	for _, p := range positions {
		if !seen[p.Underlying] {
			seen[p.Underlying] = true
			symbols = append(symbols, p.Underlying)
		}
	}
	if len(symbols) == 0 || a.md == nil {
		return nil
	}

	quotes, err := a.md.Quotes(ctx, symbols, a.cfg.LookbackDays)
	if err != nil {
		// Every position degrades to unavailable
		logger.ErrorWithErr(ctx, "Market data lookup failed", err, "symbols", symbols)
		return nil
	}
	return quotes
}

func (a *Analyzer) price(p types.RiskPosition, quotes map[string]types.Quote, asOf time.Time) types.PositionRisk {
	pr := types.PositionRisk{Position: p}

	q, ok := quotes[p.Underlying]
	if !ok || !(q.Last > 0) || math.IsInf(q.Last, 0) {
		pr.Note = types.PriceUnavailable
		return pr
	}
	pr.Available = true
	pr.Spot = q.Last

	if !p.IsOption() {
		pr.UnitPrice = q.Last
		pr.Value = p.Qty * p.Multiplier * q.Last
		pr.Greeks = types.Greeks{Delta: p.Qty}
		return pr
	}

	pr.Volatility, pr.VolDefaulted = a.volatility(q.Closes)
	pr.TimeToExpiry = TimeToExpiry(p.Expiry, asOf)

	res := pricing.Price(a.input(p, q.Last, pr.TimeToExpiry, pr.Volatility))
	scale := p.Qty * p.Multiplier
	pr.UnitPrice = res.Price
	pr.Value = res.Price * scale
	pr.Greeks = res.Greeks.Scale(scale)
	pr.PricingError = res.Err
	return pr
}

func (a *Analyzer) input(p types.RiskPosition, spot, t, vol float64) pricing.Input {
	return pricing.Input{
		Spot:   spot,
		Strike: *p.Strike,
		T:      t,
		Rate:   a.cfg.RiskFreeRate,
		Vol:    vol,
		Right:  p.Right,
	}
}

func (a *Analyzer) volatility(closes []float64) (float64, bool) {
	vol := ta.AnnualizedVolatility(closes, a.cfg.VolWindow, a.cfg.TradingDaysPerYear)
	if math.IsNaN(vol) || math.IsInf(vol, 0) || vol < a.cfg.MinVolatility {
		return a.cfg.DefaultVolatility, true
	}
	return vol, false
}

// sweep revalues every available position at spot moves of -10%..+10%,
// holding volatility and time to expiry fixed.
func (a *Analyzer) sweep(positions []types.PositionRisk) []types.Scenario {
	values := make([]float64, 0, 2*SweepRange+1)
	for move := -SweepRange; move <= SweepRange; move++ {
		factor := 1 + float64(move)/100
		total := 0.0
		for _, pr := range positions {
			if !pr.Available {
				continue
			}
			total += a.valueAt(pr, pr.Spot*factor)
		}
		values = append(values, total)
	}

	base := values[SweepRange]
	out := make([]types.Scenario, 0, len(values))
	for i, v := range values {
		s := types.Scenario{MovePct: i - SweepRange, Value: v, Change: v - base}
		if base != 0 {
			s.ChangePct = s.Change / math.Abs(base) * 100
		}
		out = append(out, s)
	}
	return out
}

func (a *Analyzer) valueAt(pr types.PositionRisk, spot float64) float64 {
	p := pr.Position
	if !p.IsOption() {
		return p.Qty * p.Multiplier * spot
	}
	res := pricing.Price(a.input(p, spot, pr.TimeToExpiry, pr.Volatility))
	return res.Price * p.Qty * p.Multiplier
}

// TimeToExpiry is the year fraction from asOf to the end of the expiry date
// in UTC. An unparseable or empty expiry counts as already expired.
func TimeToExpiry(expiry string, asOf time.Time) float64 {
	d, err := time.Parse("2006-01-02", expiry)
	if err != nil {
		return 0
	}
	end := d.Add(24 * time.Hour)
	t := end.Sub(asOf).Hours() / 24 / 365
	if t < 0 {
		return 0
	}
	return t
}
