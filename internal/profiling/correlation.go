package profiling

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
	apperrors "aivaceo/internal/errors"
)

// FindCorrelations computes the Pearson matrix over the numeric columns and
// lists every unordered pair with |r| >= threshold, in matrix order.
func (s *Scanner) FindCorrelations(threshold float64) (*profile.CorrelationResult, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("correlation threshold %v outside [0, 1]", threshold))
	}

	names := s.ds.ColumnsOfKind(dataset.KindNumeric)
	if len(names) < 2 {
		return nil, apperrors.InsufficientData("Need at least 2 numeric columns for correlation analysis")
	}

	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		cols[i], _ = s.ds.Column(name)
	}

	n := len(cols)
	matrix := make([][]profile.Measure, n)
	for i := range matrix {
		matrix[i] = make([]profile.Measure, n)
	}

	strong := make([]profile.CorrelationPair, 0)
	sum, pairs := 0.0, 0
	for i := 0; i < n; i++ {
		matrix[i][i] = profile.Measure(Pearson(cols[i], cols[i]))
		for j := i + 1; j < n; j++ {
			r := Pearson(cols[i], cols[j])
			matrix[i][j] = profile.Measure(r)
			matrix[j][i] = profile.Measure(r)

			sum += r
			pairs++

			if math.Abs(r) >= threshold {
				strong = append(strong, profile.CorrelationPair{
					Column1:     names[i],
					Column2:     names[j],
					Correlation: r,
					Strength:    profile.StrengthOf(r),
				})
			}
		}
	}

	return &profile.CorrelationResult{
		Columns:            names,
		Matrix:             matrix,
		StrongCorrelations: strong,
		AverageCorrelation: profile.Measure(sum / float64(pairs)),
	}, nil
}

// Pearson correlates two numeric columns over the rows where both have a
// value. The result is NaN with fewer than two such rows or zero variance.
func Pearson(a, b *dataset.Column) float64 {
	x, y := pairedFloats(a, b)
	if len(x) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	return math.Max(-1, math.Min(1, r))
}

// pairedFloats returns the values of rows where both columns are present
func pairedFloats(a, b *dataset.Column) (x, y []float64) {
	for i := 0; i < a.Len(); i++ {
		va, okA := a.Float(i)
		vb, okB := b.Float(i)
		if okA && okB {
			x = append(x, va)
			y = append(y, vb)
		}
	}
	return x, y
}
