package profiling

import (
	"math"
	"regexp"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
	apperrors "aivaceo/internal/errors"
)

// Presence patterns: a value counts when it contains a match anywhere.
var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	urlPattern   = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
)

// AnalyzeColumn profiles one column, branching on its kind
func (s *Scanner) AnalyzeColumn(name string) (*profile.ColumnAnalysis, error) {
	col, ok := s.ds.Column(name)
	if !ok {
		return nil, apperrors.ColumnNotFound(name)
	}

	cells := col.Len()
	nulls := col.NullCount()
	unique := col.UniqueCount()
	analysis := &profile.ColumnAnalysis{
		Column:           name,
		Kind:             col.Kind(),
		Count:            cells,
		NonNullCount:     cells - nulls,
		NullCount:        nulls,
		NullPercentage:   percentage(nulls, cells),
		UniqueCount:      unique,
		UniquePercentage: percentage(unique, cells),
	}

	switch col.Kind() {
	case dataset.KindNumeric:
		analysis.Numeric = s.numericStats(col.Floats())
	case dataset.KindText:
		analysis.Categorical = s.categoricalStats(col)
	case dataset.KindDatetime:
		analysis.Datetime = datetimeStats(col.Times())
	}
	return analysis, nil
}

// numericStats returns nil when there is nothing to summarise
func (s *Scanner) numericStats(values []float64) *profile.NumericStats {
	if len(values) == 0 {
		return nil
	}

	// the inputs are non-empty, so these cannot fail
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)

	std := math.NaN()
	if len(values) > 1 {
		std, _ = stats.StandardDeviationSample(values)
	}

	q25, q75 := Quartiles(values)

	return &profile.NumericStats{
		Min:      min,
		Max:      max,
		Mean:     mean,
		Median:   median,
		Std:      profile.Measure(std),
		Q25:      q25,
		Q75:      q75,
		Skewness: profile.Measure(skewness(values)),
		Kurtosis: profile.Measure(excessKurtosis(values)),
		Outliers: detectOutliers(values, q25, q75, s.opts.OutlierValueLimit),
	}
}

// detectOutliers applies the IQR rule; listed values keep row order
func detectOutliers(values []float64, q25, q75 float64, limit int) profile.OutlierSummary {
	lower, upper := TukeyFences(q25, q75)

	count := 0
	listed := make([]float64, 0)
	for _, x := range values {
		if x < lower || x > upper {
			count++
			if len(listed) < limit {
				listed = append(listed, x)
			}
		}
	}

	return profile.OutlierSummary{
		Count:      count,
		Percentage: percentage(count, len(values)),
		LowerBound: lower,
		UpperBound: upper,
		Values:     listed,
	}
}

// skewness is the adjusted Fisher-Pearson coefficient; undefined below 3 values
func skewness(values []float64) float64 {
	if len(values) < 3 {
		return math.NaN()
	}
	return stat.Skew(values, nil)
}

// excessKurtosis is undefined below 4 values
func excessKurtosis(values []float64) float64 {
	if len(values) < 4 {
		return math.NaN()
	}
	return stat.ExKurtosis(values, nil)
}

func (s *Scanner) categoricalStats(col *dataset.Column) *profile.CategoricalStats {
	texts := col.Texts()
	out := &profile.CategoricalStats{
		TopValues: CountValues(col, s.opts.TopValues),
		AvgLength: profile.Measure(math.NaN()),
	}
	if len(texts) == 0 {
		return out
	}

	totalLen := 0
	for _, v := range texts {
		totalLen += utf8.RuneCountInString(v)
		if emailPattern.MatchString(v) {
			out.EmailCount++
		}
		if phonePattern.MatchString(v) {
			out.PhoneCount++
		}
		if urlPattern.MatchString(v) {
			out.URLCount++
		}
	}
	out.AvgLength = profile.Measure(float64(totalLen) / float64(len(texts)))
	return out
}

// wholeDays counts complete days from lo to hi. It works in whole seconds
// because time.Duration overflows past ~292 years, borrowing one when the
// sub-second part of hi is behind lo's.
func wholeDays(lo, hi time.Time) int {
	secs := hi.Unix() - lo.Unix()
	if hi.Nanosecond() < lo.Nanosecond() {
		secs--
	}
	return int(secs / 86400)
}

func datetimeStats(times []time.Time) *profile.DatetimeStats {
	out := &profile.DatetimeStats{}
	if len(times) == 0 {
		return out
	}

	minT, maxT := times[0], times[0]
	years := make(map[int]int)
	months := make(map[int]int)
	for _, t := range times {
		if t.Before(minT) {
			minT = t
		}
		if t.After(maxT) {
			maxT = t
		}
		years[t.Year()]++
		months[int(t.Month())]++
	}

	days := wholeDays(minT, maxT)
	year := mode(years)
	month := mode(months)

	out.MinDate = &minT
	out.MaxDate = &maxT
	out.RangeDays = &days
	out.MostCommonYear = &year
	out.MostCommonMonth = &month
	return out
}

// mode returns the most frequent key, the smallest one on ties
func mode(counts map[int]int) int {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}
