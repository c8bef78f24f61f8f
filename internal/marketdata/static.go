package marketdata

import (
	"context"
	"fmt"
	"os"
	"strings"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/types"

	"gopkg.in/yaml.v3"
)

// Static serves quotes from a fixed snapshot, usually a YAML file:
//
//	quotes:
//	  - symbol: SPY
//	    last: 512.3
//	    closes: [505.1, 508.9, 512.3]
type Static struct {
	quotes map[string]types.Quote
}

var _ interfaces.MarketData = (*Static)(nil)

func NewStatic(quotes []types.Quote) *Static {
	s := &Static{quotes: make(map[string]types.Quote, len(quotes))}
	for _, q := range quotes {
		s.quotes[strings.ToUpper(q.Symbol)] = q
	}
	return s
}

func LoadStatic(path string) (*Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Quotes []types.Quote `yaml:"quotes"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse quotes file %s: %w", path, err)
	}
	return NewStatic(doc.Quotes), nil
}

// Quotes returns the snapshot's entries for symbols, trimming closes to the
// last lookbackDays values.
func (s *Static) Quotes(ctx context.Context, symbols []string, lookbackDays int) (map[string]types.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]types.Quote, len(symbols))
	for _, sym := range symbols {
		q, ok := s.quotes[strings.ToUpper(sym)]
		if !ok {
			continue
		}
		closes := q.Closes
		if lookbackDays > 0 && len(closes) > lookbackDays {
			closes = closes[len(closes)-lookbackDays:]
		}
		out[sym] = types.Quote{Symbol: sym, Last: q.Last, Closes: closes}
	}
	return out, nil
}
