// Package ranks provides whole-collection percentile ranking. Percentile
// scores need every row resident before any rank can be computed, so callers
// must gather the full slice first; there is no streaming form.
package ranks

import "sort"

// Percentile returns each value's percentile rank in (0, 1]: average rank of
// ties divided by N. An empty input yields an empty result rather than
// panicking, so "no qualifying players" propagates cleanly downstream.
func Percentile(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return []float64{}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	out := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Ties share the average of their 1-based positions.
		avgRank := float64(i+j+2) / 2.0
		for k := i; k <= j; k++ {
			out[order[k]] = avgRank / float64(n)
		}
		i = j + 1
	}
	return out
}

// Median returns the middle value (mean of the two middles for even length).
// Zero for empty input; callers guard the empty case separately.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// MinMax returns the extremes of a non-empty slice.
func MinMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
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
	return min, max
}
