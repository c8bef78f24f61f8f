package pricing

import (
	"math"

	"trade-auditor/internal/types"
)

// MinVolatility is the floor applied to non-positive volatility.
const MinVolatility = 1e-5

// Input is one Black-Scholes pricing request. T is in years.
type Input struct {
	Spot   float64
	Strike float64
	T      float64
	Rate   float64
	Vol    float64
	Right  types.Right
}

// Result is a per-unit price with Greeks. Theta is per calendar day, Vega and
// Rho per one percentage point. Err is set, with every number zero, when the
// input could not be priced at all.
type Result struct {
	Price float64
	types.Greeks
	Err string
}

// Price values a European option. It never panics and never returns NaN for
// finite input.
func Price(in Input) Result {
	if msg := invalid(in); msg != "" {
		return Result{Err: msg}
	}

	if in.T <= 0 {
		return expired(in)
	}

	vol := in.Vol
	if vol <= 0 {
		vol = MinVolatility
	}

	sqrtT := math.Sqrt(in.T)
	d1 := (math.Log(in.Spot/in.Strike) + (in.Rate+0.5*vol*vol)*in.T) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT
	disc := in.Strike * math.Exp(-in.Rate*in.T)

	var r Result
	r.Gamma = normPdf(d1) / (in.Spot * vol * sqrtT)
	r.Vega = in.Spot * normPdf(d1) * sqrtT / 100

	decay := -in.Spot * normPdf(d1) * vol / (2 * sqrtT)
	if in.Right == types.RightCall {
		r.Price = in.Spot*normCdf(d1) - disc*normCdf(d2)
		r.Delta = normCdf(d1)
		r.Theta = (decay - in.Rate*disc*normCdf(d2)) / 365
		r.Rho = in.T * disc * normCdf(d2) / 100
	} else {
		r.Price = disc*normCdf(-d2) - in.Spot*normCdf(-d1)
		r.Delta = normCdf(d1) - 1
		r.Theta = (decay + in.Rate*disc*normCdf(-d2)) / 365
		r.Rho = -in.T * disc * normCdf(-d2) / 100
	}
	return r
}

// expired prices at intrinsic value with an indicator delta.
func expired(in Input) Result {
	var r Result
	if in.Right == types.RightCall {
		r.Price = math.Max(in.Spot-in.Strike, 0)
		if in.Spot > in.Strike {
			r.Delta = 1
		}
	} else {
		r.Price = math.Max(in.Strike-in.Spot, 0)
		if in.Spot < in.Strike {
			r.Delta = -1
		}
	}
	return r
}

func invalid(in Input) string {
	for _, v := range []float64{in.Spot, in.Strike, in.T, in.Rate, in.Vol} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "non-finite input"
		}
	}
	switch {
	case in.Right != types.RightCall && in.Right != types.RightPut:
		return "unknown option right"
	case in.Spot <= 0:
		return "spot must be positive"
	case in.Strike <= 0:
		return "strike must be positive"
	}
	return ""
}

func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
