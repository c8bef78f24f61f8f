package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Right is the option side. RightNone marks an equity.
type Right string

const (
	RightNone Right = ""
	RightCall Right = "C"
	RightPut  Right = "P"
)

// Instrument is the identity fills are matched against. The zero Expiry,
// Right and Strike together are the equity sentinel.
type Instrument struct {
	Underlying string  `json:"underlying"`
	Expiry     string  `json:"expiry,omitempty"` // 2006-01-02
	Right      Right   `json:"right,omitempty"`
	Strike     float64 `json:"strike,omitempty"`
}

func Equity(symbol string) Instrument {
	return Instrument{Underlying: symbol}
}

func Option(symbol, expiry string, right Right, strike float64) Instrument {
	return Instrument{Underlying: symbol, Expiry: expiry, Right: right, Strike: strike}
}

// IsEquity reports whether the identity carries neither a right nor a strike.
func (i Instrument) IsEquity() bool {
	return i.Right == RightNone && i.Strike == 0
}

func (i Instrument) String() string {
	if i.IsEquity() {
		return i.Underlying + " STK"
	}
	return fmt.Sprintf("%s %s %g%s", i.Underlying, i.Expiry, i.Strike, i.Right)
}

// Fill is one execution. Qty is signed (positive bought, negative sold) and
// CashFlow is signed (negative cash out, positive cash in), fees included.
type Fill struct {
	Instrument Instrument          `json:"instrument"`
	Time       time.Time           `json:"time"`
	Qty        float64             `json:"qty"`
	Price      decimal.NullDecimal `json:"price"`
	Fee        decimal.Decimal     `json:"fee"`
	CashFlow   decimal.Decimal     `json:"cash_flow"`
	Note       string              `json:"note,omitempty"`
}

// Dated reports whether the fill carried a usable timestamp.
func (f Fill) Dated() bool {
	return !f.Time.IsZero()
}

// Position is the FIFO-matched exposure in one instrument from its opening
// fill until it flattens.
type Position struct {
	Instrument Instrument      `json:"instrument"`
	Fills      []Fill          `json:"fills"`
	NetQty     float64         `json:"net_qty"`
	Fees       decimal.Decimal `json:"fees"`
	PnL        decimal.Decimal `json:"pnl"`
	Entry      time.Time       `json:"entry"`
	Exit       time.Time       `json:"exit"`
	Closed     bool            `json:"closed"`
}

// Opening returns the chronologically first member fill.
func (p *Position) Opening() Fill {
	if len(p.Fills) == 0 {
		return Fill{Instrument: p.Instrument}
	}
	return p.Fills[0]
}

// Strategy is a time-clustered group of positions opened as one trade idea.
type Strategy struct {
	ID            int             `json:"id"`
	Underlying    string          `json:"underlying"`
	Expiry        string          `json:"expiry,omitempty"`
	Positions     []*Position     `json:"positions"`
	PnL           decimal.Decimal `json:"pnl"`
	Fees          decimal.Decimal `json:"fees"`
	Entry         time.Time       `json:"entry"`
	Exit          time.Time       `json:"exit"`
	HoldingDays   float64         `json:"holding_days"`
	RealizedTheta float64         `json:"realized_theta"`
	Type          string          `json:"type"`
}

// InputError is the only hard failure of the pipelines: the top-level input
// did not have the required shape.
type InputError struct {
	Requirement string
	Reason      string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Requirement, e.Reason)
}
