package composite

import (
	"fmt"
	"math"
	"sort"
)

// median returns the middle value of an unsorted sample; the sample is
// sorted in place.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// percentile returns the p-th percentile (0 < p < 100) of a sorted sample
// using linear interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// bandKey formats a percentile band label, e.g. 25 -> "p25", 2.5 -> "p2.5".
func bandKey(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("p%d", int(p))
	}
	return fmt.Sprintf("p%g", p)
}

// bands computes the requested percentile bands over an unsorted sample;
// the sample is sorted in place.
func bands(values []float64, percentiles []float64) map[string]float64 {
	if len(percentiles) == 0 || len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	out := make(map[string]float64, len(percentiles))
	for _, p := range percentiles {
		out[bandKey(p)] = percentile(values, p)
	}
	return out
}
