package ta

import "math"

// LogReturns returns ln(p[i]/p[i-1]) for consecutive closes. Pairs with a
// non-positive or non-finite close are skipped.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 || math.IsInf(prev, 0) || math.IsInf(cur, 0) || math.IsNaN(prev) || math.IsNaN(cur) {
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// SampleStdDev is the n-1 standard deviation of the last n values, or of the
// whole slice when it is shorter. NaN with fewer than two values.
func SampleStdDev(vals []float64, n int) float64 {
	if n <= 0 || n > len(vals) {
		n = len(vals)
	}
	if n < 2 {
		return math.NaN()
	}
	window := vals[len(vals)-n:]
	m := Mean(window)
	s := 0.0
	for _, v := range window {
		d := v - m
		s += d * d
	}
	return math.Sqrt(s / float64(n-1))
}

// AnnualizedVolatility is the rolling standard deviation of log returns over
// the last window returns scaled by sqrt(periodsPerYear).
func AnnualizedVolatility(closes []float64, window int, periodsPerYear float64) float64 {
	sd := SampleStdDev(LogReturns(closes), window)
	if math.IsNaN(sd) {
		return sd
	}
	return sd * math.Sqrt(periodsPerYear)
}
