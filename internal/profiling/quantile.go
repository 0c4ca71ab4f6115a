package profiling

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of values by linear interpolation between
// closest ranks (h = (n-1)p), the estimator most spreadsheet tools default to.
// values must be sorted ascending and non-empty.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Quartiles returns Q1 and Q3 of values, which need not be sorted
func Quartiles(values []float64) (q1, q3 float64) {
	sorted := sortedCopy(values)
	return Quantile(sorted, 0.25), Quantile(sorted, 0.75)
}

// TukeyFences returns the IQR outlier bounds Q1 − 1.5·IQR and Q3 + 1.5·IQR
func TukeyFences(q1, q3 float64) (lower, upper float64) {
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
