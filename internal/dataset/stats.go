package dataset

import (
	"sort"
)

// Compact returns the non-null values of a masked column.
func Compact(values []float64, valid []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if valid == nil || valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean. ok is false for an empty slice.
func Mean(values []float64) (mean float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Median returns the middle value, averaging the two central values
// for even-length input. ok is false for an empty slice.
func Median(values []float64) (median float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2, true
	}
	return sorted[n/2], true
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear
// interpolation between order statistics. ok is false for an empty
// slice.
func Quantile(values []float64, q float64) (value float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0], true
	}
	if q >= 1 {
		return sorted[len(sorted)-1], true
	}

	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo], true
	}
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac, true
}

// MinMax returns the minimum and maximum values. ok is false for an
// empty slice.
func MinMax(values []float64) (min, max float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, true
}

// Mode returns the most frequent value, breaking frequency ties with
// the lexicographically smallest value. ok is false for an empty
// slice.
func Mode(values []string) (mode string, ok bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := "", -1
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best, true
}
