// Package stats folds already-fetched, already-scoped rows into the counts
// and rates shown on dashboard stat cards. Pure functions only: no network
// access and no role logic; scoping happens upstream.
package stats

// AttendanceRate returns present/total as a percentage. An empty input
// yields 0, never NaN.
func AttendanceRate(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

// Rate returns numerator/denominator, guarding the zero denominator.
func Rate(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// CountWhere counts rows satisfying the predicate.
func CountWhere[T any](rows []T, pred func(T) bool) int {
	n := 0
	for _, row := range rows {
		if pred(row) {
			n++
		}
	}
	return n
}

// SumBy folds amounts out of rows.
func SumBy[T any](rows []T, amount func(T) float64) float64 {
	var total float64
	for _, row := range rows {
		total += amount(row)
	}
	return total
}

// GroupCount tallies rows per key.
func GroupCount[T any, K comparable](rows []T, key func(T) K) map[K]int {
	out := make(map[K]int, len(rows))
	for _, row := range rows {
		out[key(row)]++
	}
	return out
}
