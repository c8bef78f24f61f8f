package strategy

import (
	"sort"
	"time"

	"trade-auditor/internal/matcher"
	"trade-auditor/internal/types"

	"github.com/shopspring/decimal"
)

// Window is how far after the anchor's entry a position may open and still
// join the anchor's strategy.
const Window = 2 * time.Hour

// DefaultMinHoldingDays floors the holding period used for realized theta.
const DefaultMinHoldingDays = 0.01

// Clusterer groups positions into strategies.
type Clusterer struct {
	minHoldingDays float64
}

func NewClusterer(minHoldingDays float64) *Clusterer {
	if minHoldingDays <= 0 {
		minHoldingDays = DefaultMinHoldingDays
	}
	return &Clusterer{minHoldingDays: minHoldingDays}
}

// Candidates picks the positions to cluster: the closed ones, or all of them
// when nothing has closed yet.
func Candidates(closed, open []*types.Position) []*types.Position {
	if len(closed) > 0 {
		return closed
	}
	return open
}

// Cluster partitions positions into strategies, classifying each. The input
// slice is not reordered.
func (c *Clusterer) Cluster(positions []*types.Position) []*types.Strategy {
	sorted := make([]*types.Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return matcher.Before(sorted[i].Entry, sorted[j].Entry)
	})

	assigned := make([]bool, len(sorted))
	strategies := make([]*types.Strategy, 0)

	for i, anchor := range sorted {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []*types.Position{anchor}

		for j := i + 1; j < len(sorted); j++ {
			if assigned[j] {
				continue
			}
			cand := sorted[j]
			if !cand.Entry.IsZero() && cand.Entry.Sub(anchor.Entry) > Window {
				break // sorted by entry, nothing later can qualify
			}
			if joins(anchor, cand) {
				assigned[j] = true
				members = append(members, cand)
			}
		}

		s := c.build(len(strategies)+1, anchor, members)
		s.Type = Classify(s.Positions)
		strategies = append(strategies, s)
	}

	return strategies
}

func joins(anchor, cand *types.Position) bool {
	if anchor.Entry.IsZero() || cand.Entry.IsZero() {
		return false
	}
	if cand.Instrument.Underlying != anchor.Instrument.Underlying ||
		cand.Instrument.Expiry != anchor.Instrument.Expiry {
		return false
	}
	d := cand.Entry.Sub(anchor.Entry)
	return d >= 0 && d <= Window
}

func (c *Clusterer) build(id int, anchor *types.Position, members []*types.Position) *types.Strategy {
	s := &types.Strategy{
		ID:         id,
		Underlying: anchor.Instrument.Underlying,
		Expiry:     anchor.Instrument.Expiry,
		Positions:  members,
		PnL:        decimal.Zero,
		Fees:       decimal.Zero,
	}

	for _, p := range members {
		s.PnL = s.PnL.Add(p.PnL)
		s.Fees = s.Fees.Add(p.Fees)
		if !p.Entry.IsZero() && (s.Entry.IsZero() || p.Entry.Before(s.Entry)) {
			s.Entry = p.Entry
		}
		if p.Exit.After(s.Exit) {
			s.Exit = p.Exit
		}
	}

	days := 0.0
	if !s.Entry.IsZero() {
		days = s.Exit.Sub(s.Entry).Hours() / 24
	}
	if days < c.minHoldingDays {
		days = c.minHoldingDays
	}
	s.HoldingDays = days
	s.RealizedTheta = s.PnL.InexactFloat64() / days

	return s
}
