package types

import "time"

// RecordKind discriminates the shapes a caller may hand the risk pipeline.
type RecordKind int

const (
	// RecordPosition wraps an already matched Position, reused read-only.
	RecordPosition RecordKind = iota + 1
	// RecordFields is a free-form mapping with loosely named keys.
	RecordFields
)

// RiskRecord is a caller-supplied position in either shape. Only the
// normalizer interprets Fields.
type RiskRecord struct {
	Kind     RecordKind
	Position *Position
	Fields   map[string]any
}

func PositionRecord(p *Position) RiskRecord {
	return RiskRecord{Kind: RecordPosition, Position: p}
}

func FieldsRecord(fields map[string]any) RiskRecord {
	return RiskRecord{Kind: RecordFields, Fields: fields}
}

// RiskPosition is the canonical pricing-ready position.
type RiskPosition struct {
	Underlying string   `json:"underlying"`
	Qty        float64  `json:"qty"`
	Strike     *float64 `json:"strike,omitempty"`
	Right      Right    `json:"right,omitempty"`
	Expiry     string   `json:"expiry,omitempty"` // ISO date, empty for equities
	Multiplier float64  `json:"multiplier"`
}

// IsOption reports whether both strike and right are known.
func (r RiskPosition) IsOption() bool {
	return r.Strike != nil && r.Right != RightNone
}

// Greeks holds option sensitivities. Theta is per day, Vega and Rho per one
// percentage point.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

func (g Greeks) Add(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Theta: g.Theta + o.Theta,
		Vega:  g.Vega + o.Vega,
		Rho:   g.Rho + o.Rho,
	}
}

func (g Greeks) Scale(k float64) Greeks {
	return Greeks{
		Delta: g.Delta * k,
		Gamma: g.Gamma * k,
		Theta: g.Theta * k,
		Vega:  g.Vega * k,
		Rho:   g.Rho * k,
	}
}

// Quote is what the market-data collaborator returns per underlying.
type Quote struct {
	Symbol string    `json:"symbol" yaml:"symbol"`
	Last   float64   `json:"last" yaml:"last"`
	Closes []float64 `json:"closes" yaml:"closes"` // Oldest first
}

const PriceUnavailable = "price unavailable"

// PositionRisk is the per-position result of a risk run.
type PositionRisk struct {
	Position     RiskPosition `json:"position"`
	Available    bool         `json:"available"`
	Note         string       `json:"note,omitempty"`
	Spot         float64      `json:"spot"`
	Volatility   float64      `json:"volatility"`
	VolDefaulted bool         `json:"vol_defaulted,omitempty"`
	TimeToExpiry float64      `json:"time_to_expiry"` // Years
	UnitPrice    float64      `json:"unit_price"`
	Value        float64      `json:"value"`
	Greeks       Greeks       `json:"greeks"` // Scaled by qty x multiplier
	PricingError string       `json:"pricing_error,omitempty"`
}

// Scenario is one point of the what-if sweep.
type Scenario struct {
	MovePct   int     `json:"move_pct"`
	Value     float64 `json:"value"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// RiskReport is the output of one risk run.
type RiskReport struct {
	RunID       string         `json:"run_id"`
	AsOf        time.Time      `json:"as_of"`
	Positions   []PositionRisk `json:"positions"`
	Totals      Greeks         `json:"totals"`
	Value       float64        `json:"value"`
	Sweep       []Scenario     `json:"sweep"`
	Unavailable []string       `json:"unavailable,omitempty"`
}
