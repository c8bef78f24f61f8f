package tradelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"trade-auditor/internal/types"

	"github.com/shopspring/decimal"
)

// Record is one line of a JSONL fill log. Numbers may be JSON numbers or
// strings; price and cash_flow may be absent.
type Record struct {
	Time       string              `json:"time"`
	Symbol     string              `json:"symbol"`
	Expiry     string              `json:"expiry,omitempty"`
	Right      string              `json:"right,omitempty"`
	Strike     float64             `json:"strike,omitempty"`
	Qty        float64             `json:"qty"`
	Price      decimal.NullDecimal `json:"price"`
	Fee        decimal.Decimal     `json:"fee"`
	CashFlow   decimal.NullDecimal `json:"cash_flow"`
	Multiplier float64             `json:"multiplier,omitempty"`
	Note       string              `json:"note,omitempty"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Stats describes what the reader dropped.
type Stats struct {
	Lines   int // Non-blank lines seen
	Skipped int // Lines that were not a usable fill
}

// Read decodes every fill in a JSONL stream. Malformed lines are skipped and
// counted; only I/O errors fail the read.
func Read(r io.Reader) ([]types.Fill, Stats, error) {
	fills := make([]types.Fill, 0)
	var st Stats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		st.Lines++

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil || strings.TrimSpace(rec.Symbol) == "" {
			st.Skipped++
			continue
		}
		fills = append(fills, rec.Fill())
	}
	if err := sc.Err(); err != nil {
		return nil, st, fmt.Errorf("read fill log: %w", err)
	}
	return fills, st, nil
}

func ReadFile(path string) ([]types.Fill, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()
	return Read(f)
}

// Fill converts the record. An unparseable time yields the zero time; a
// missing cash flow is derived from price, quantity and multiplier.
func (rec Record) Fill() types.Fill {
	inst := instrument(rec)
	f := types.Fill{
		Instrument: inst,
		Time:       parseTime(rec.Time),
		Qty:        rec.Qty,
		Price:      rec.Price,
		Fee:        rec.Fee,
		Note:       rec.Note,
	}

	switch {
	case rec.CashFlow.Valid:
		f.CashFlow = rec.CashFlow.Decimal
	case rec.Price.Valid:
		mult := rec.Multiplier
		if mult <= 0 {
			mult = 1
			if !inst.IsEquity() {
				mult = 100
			}
		}
		gross := rec.Price.Decimal.Mul(decimal.NewFromFloat(rec.Qty)).Mul(decimal.NewFromFloat(mult))
		f.CashFlow = gross.Neg().Sub(rec.Fee)
	default:
		f.CashFlow = rec.Fee.Neg()
	}
	return f
}

func instrument(rec Record) types.Instrument {
	sym := strings.ToUpper(strings.TrimSpace(rec.Symbol))
	right := types.RightNone
	if r := strings.TrimSpace(rec.Right); r != "" {
		switch strings.ToUpper(r[:1]) {
		case "C":
			right = types.RightCall
		case "P":
			right = types.RightPut
		}
	}
	if right == types.RightNone && rec.Strike == 0 {
		return types.Equity(sym)
	}
	return types.Option(sym, parseExpiry(rec.Expiry), right, rec.Strike)
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseExpiry(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "20060102", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
