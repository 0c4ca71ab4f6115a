package profiling

import (
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"

	"aivaceo/domain/dataset"
)

func drawNumeric(t *rapid.T, label string, rows int) *dataset.Column {
	values := rapid.SliceOfN(rapid.Float64Range(-1e6, 1e6), rows, rows).Draw(t, label)
	missing := rapid.SliceOfN(rapid.Bool(), rows, rows).Draw(t, label+"_missing")
	for i := range values {
		if missing[i] {
			values[i] = math.NaN()
		}
	}
	return dataset.NewNumeric(label, values)
}

func TestPropertyOutliersLieOutsideFences(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOfN(rapid.Float64Range(-1e6, 1e6), 1, 80).Draw(t, "values")
		s := NewScanner(dataset.MustNew(dataset.NewNumeric("v", values)))

		analysis, err := s.AnalyzeColumn("v")
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		num := analysis.Numeric
		iqr := num.Q75 - num.Q25
		if num.Outliers.LowerBound != num.Q25-1.5*iqr || num.Outliers.UpperBound != num.Q75+1.5*iqr {
			t.Fatalf("bounds [%v, %v] do not follow q25=%v q75=%v", num.Outliers.LowerBound, num.Outliers.UpperBound, num.Q25, num.Q75)
		}
		for _, v := range num.Outliers.Values {
			if v >= num.Outliers.LowerBound && v <= num.Outliers.UpperBound {
				t.Fatalf("outlier %v inside bounds", v)
			}
		}
		if len(num.Outliers.Values) > 20 || len(num.Outliers.Values) > num.Outliers.Count {
			t.Fatalf("listed %d of %d outliers", len(num.Outliers.Values), num.Outliers.Count)
		}
	})
}

func TestPropertyQualityScoreRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(1, 30).Draw(t, "rows")
		ds := dataset.MustNew(drawNumeric(t, "a", rows), drawNumeric(t, "b", rows))

		overview, err := NewScanner(ds).ScanOverview()
		if err != nil {
			t.Fatalf("overview: %v", err)
		}
		score := overview.DataQualityScore
		if score < 0 || score > 100 {
			t.Fatalf("score %v out of range", score)
		}
		if (ds.NullCount() == 0) != (score == 100) {
			t.Fatalf("score %v with %d missing cells", score, ds.NullCount())
		}
	})
}

func TestPropertyEveryPairOnce(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(2, 20).Draw(t, "rows")
		k := rapid.IntRange(2, 6).Draw(t, "columns")
		cols := make([]*dataset.Column, k)
		for i := range cols {
			cols[i] = drawNumeric(t, fmt.Sprintf("c%d", i), rows)
		}

		res, err := NewScanner(dataset.MustNew(cols...)).FindCorrelations(0)
		if err != nil {
			t.Fatalf("correlations: %v", err)
		}
		seen := make(map[[2]string]bool)
		for _, p := range res.StrongCorrelations {
			a, b := p.Column1, p.Column2
			if a > b {
				a, b = b, a
			}
			if seen[[2]string{a, b}] {
				t.Fatalf("pair %s/%s reported twice", a, b)
			}
			seen[[2]string{a, b}] = true
		}
		if len(seen) > k*(k-1)/2 {
			t.Fatalf("%d pairs for %d columns", len(seen), k)
		}
	})
}

func TestPropertyInsightsBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(0, 25).Draw(t, "rows")
		k := rapid.IntRange(1, 8).Draw(t, "columns")
		cols := make([]*dataset.Column, k)
		for i := range cols {
			cols[i] = drawNumeric(t, fmt.Sprintf("c%d", i), rows)
		}
		insights := NewScanner(dataset.MustNew(cols...)).GenerateInsights()
		if rows == 0 && len(insights) != 1 {
			t.Fatalf("empty dataset produced %d insights", len(insights))
		}
		if len(insights) > 10 {
			t.Fatalf("%d insights", len(insights))
		}
	})
}

func TestPropertyDistinctColumnIsPotentialID(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.IntRange(1, 30).Draw(t, "rows")
		names := make([]string, rows)
		for i := range names {
			names[i] = fmt.Sprintf("name-%d", i)
		}
		ds := dataset.MustNew(dataset.NewText("name", names), drawNumeric(t, "v", rows))
		ids := NewScanner(ds).DetectPatterns().DuplicatePatterns.PotentialIDColumns
		for _, id := range ids {
			if id == "name" {
				return
			}
		}
		t.Fatalf("name missing from %v", ids)
	})
}
