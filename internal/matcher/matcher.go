// Package matcher reconstructs positions from a chronological fill sequence.
//
// A fill is routed to the first still-open position of the same instrument
// whose net quantity has the opposite sign. Without one, the fill opens a new
// position. A fill is never split across positions, so closing 3 lots
// against separate open 2-lot and 1-lot positions leaves the first one
// flipped to -1 rather than closing both.
package matcher

import (
	"math"
	"sort"
	"time"

	"trade-auditor/internal/types"
)

// Epsilon below which a net quantity counts as flat
const Epsilon = 1e-9

// WorkingSet holds the positions of one matching run. It is owned by the
// caller and must not be shared between concurrent runs.
type WorkingSet struct {
	byInstrument map[types.Instrument][]*types.Position
	order        []*types.Position // Global open order across instruments

	fills   int
	undated int
	orphans int
}

// Result separates closed from still-open positions, each in open order.
type Result struct {
	Closed  []*types.Position
	Open    []*types.Position
	Fills   int // Fills applied
	Undated int // Fills without a usable timestamp
	Orphans int // Zero-quantity fills dropped for lack of an open position
}

func NewWorkingSet() *WorkingSet {
	return &WorkingSet{
		byInstrument: make(map[types.Instrument][]*types.Position),
	}
}

// Apply routes one fill and returns the position it landed in, or nil for
// an orphaned zero-quantity fill. Fills must be applied in chronological
// order.
func (ws *WorkingSet) Apply(f types.Fill) *types.Position {
	ws.fills++
	if !f.Dated() {
		ws.undated++
	}

	positions := ws.byInstrument[f.Instrument]

	// Fee or cash adjustment with no quantity
	if f.Qty == 0 {
		for _, p := range positions {
			if !p.Closed {
				add(p, f)
				return p
			}
		}
		ws.orphans++
		return nil
	}

	for _, p := range positions {
		if !p.Closed && opposite(p.NetQty, f.Qty) {
			add(p, f)
			return p
		}
	}

	p := &types.Position{Instrument: f.Instrument}
	add(p, f)

	ws.byInstrument[f.Instrument] = append(positions, p)
	ws.order = append(ws.order, p)
	return p
}

// Positions returns every position for one instrument in open order.
func (ws *WorkingSet) Positions(inst types.Instrument) []*types.Position {
	return ws.byInstrument[inst]
}

// Result snapshots the working set.
func (ws *WorkingSet) Result() Result {
	res := Result{
		Fills:   ws.fills,
		Undated: ws.undated,
		Orphans: ws.orphans,
	}
	for _, p := range ws.order {
		if p.Closed {
			res.Closed = append(res.Closed, p)
		} else {
			res.Open = append(res.Open, p)
		}
	}
	return res
}

// Match sorts a copy of fills and runs them through a fresh working set.
func Match(fills []types.Fill) Result {
	sorted := make([]types.Fill, len(fills))
	copy(sorted, fills)
	SortFills(sorted)

	ws := NewWorkingSet()
	for _, f := range sorted {
		ws.Apply(f)
	}
	return ws.Result()
}

// SortFills orders fills ascending by time. Undated fills go last, keeping
// their relative order.
func SortFills(fills []types.Fill) {
	sort.SliceStable(fills, func(i, j int) bool {
		return Before(fills[i].Time, fills[j].Time)
	})
}

// Before orders timestamps with the zero time after every real one.
func Before(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	if b.IsZero() {
		return true
	}
	return a.Before(b)
}

func opposite(net, qty float64) bool {
	return (net > 0 && qty < 0) || (net < 0 && qty > 0)
}

func add(p *types.Position, f types.Fill) {
	p.Fills = append(p.Fills, f)
	p.NetQty += f.Qty
	p.Fees = p.Fees.Add(f.Fee)
	p.PnL = p.PnL.Add(f.CashFlow)

	if f.Dated() {
		if p.Entry.IsZero() || f.Time.Before(p.Entry) {
			p.Entry = f.Time
		}
		if f.Time.After(p.Exit) {
			p.Exit = f.Time
		}
	}

	if math.Abs(p.NetQty) < Epsilon {
		p.Closed = true
	}
}
