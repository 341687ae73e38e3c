package analytics

import (
	"math"
	"sort"
)

// z-score of a two-sided 95% confidence interval.
const z95 = 1.96

func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return &m
}

// sampleStdDev returns the n-1 standard deviation, or nil for fewer than two values.
func sampleStdDev(xs []float64) *float64 {
	if len(xs) < 2 {
		return nil
	}
	m := *mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(xs)-1))
	return &sd
}

// percentile interpolates linearly between closest ranks; p is in [0, 100].
func percentile(xs []float64, p float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	v := sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
	return &v
}

func minOf(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Min(m, x)
	}
	return &m
}

func maxOf(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	m := xs[0]
	for _, x := range xs[1:] {
		m = math.Max(m, x)
	}
	return &m
}

func marginOfError(sd *float64, n int) *float64 {
	if sd == nil || n == 0 {
		return nil
	}
	moe := z95 * *sd / math.Sqrt(float64(n))
	return &moe
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round2p(x *float64) *float64 {
	if x == nil {
		return nil
	}
	v := round2(*x)
	return &v
}
