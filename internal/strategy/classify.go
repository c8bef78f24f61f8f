package strategy

import (
	"trade-auditor/internal/types"

	"github.com/shopspring/decimal"
)

const (
	Unclassified = "Unclassified"
	ShortPut     = "Short Put"
	LongPut      = "Long Put"
	ShortCall    = "Short Call"
	LongCall     = "Long Call"
	PutVertical  = "Put Vertical"
	CallVertical = "Call Vertical"
	IronCondor   = "Iron Condor"
	MultiLeg     = "Multi-leg"
)

// leg is what classification sees of a member: its opening fill only.
type leg struct {
	right types.Right
	qty   float64
	cash  decimal.Decimal
}

// Classify labels a strategy from its members' opening fills. Closing fills
// and member order have no influence.
func Classify(members []*types.Position) string {
	legs := make([]leg, 0, len(members))
	for _, p := range members {
		open := p.Opening()
		if open.Instrument.IsEquity() {
			continue
		}
		legs = append(legs, leg{right: open.Instrument.Right, qty: open.Qty, cash: open.CashFlow})
	}

	switch len(legs) {
	case 0:
		return Unclassified
	case 1:
		return naked(legs[0])
	case 2:
		return vertical(legs[0], legs[1])
	case 4:
		return condor(legs)
	default:
		return MultiLeg
	}
}

func naked(l leg) string {
	short := l.qty < 0
	switch {
	case l.right == types.RightPut && short:
		return ShortPut
	case l.right == types.RightPut:
		return LongPut
	case l.right == types.RightCall && short:
		return ShortCall
	case l.right == types.RightCall:
		return LongCall
	}
	// Strike without a right
	return Unclassified
}

func vertical(a, b leg) string {
	if a.right != b.right || a.right == types.RightNone {
		return MultiLeg
	}
	if (a.qty < 0) == (b.qty < 0) {
		return MultiLeg
	}
	name := CallVertical
	if a.right == types.RightPut {
		name = PutVertical
	}
	return name + creditSuffix(a, b)
}

func condor(legs []leg) string {
	puts, calls := 0, 0
	for _, l := range legs {
		switch l.right {
		case types.RightPut:
			puts++
		case types.RightCall:
			calls++
		}
	}
	if puts != 2 || calls != 2 {
		return MultiLeg
	}
	return IronCondor + creditSuffix(legs...)
}

func creditSuffix(legs ...leg) string {
	net := decimal.Zero
	for _, l := range legs {
		net = net.Add(l.cash)
	}
	if net.IsPositive() {
		return " (Credit)"
	}
	return " (Debit)"
}
