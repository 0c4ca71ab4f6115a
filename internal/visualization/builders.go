package visualization

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"aivaceo/domain/chart"
	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
	"aivaceo/internal/profiling"
)

// binCount is min(50, max(10, ⌊√n⌋))
func binCount(n int) int {
	bins := int(math.Sqrt(float64(n)))
	if bins < 10 {
		bins = 10
	}
	if bins > 50 {
		bins = 50
	}
	return bins
}

// histogramBins splits values into equal-width bins over [min, max].
// A constant input yields one bin.
func histogramBins(values []float64) []chart.Bin {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []chart.Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	n := binCount(len(values))
	width := (hi - lo) / float64(n)
	bins := make([]chart.Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}

func histogram(name string, values []float64) *chart.Chart {
	return &chart.Chart{
		Kind:   chart.KindHistogram,
		Title:  fmt.Sprintf("Distribution of %s", name),
		XTitle: name,
		YTitle: "Count",
		Bins:   histogramBins(values),
		Colors: []string{chart.Color(0)},
	}
}

// valueBar charts the most frequent values of any column
func valueBar(col *dataset.Column, title, color string) *chart.Chart {
	counts := profiling.CountValues(col, maxCategories)
	labels, values := splitCounts(counts)
	return &chart.Chart{
		Kind:   chart.KindBar,
		Title:  title,
		XTitle: col.Name(),
		YTitle: "Count",
		Labels: labels,
		Values: values,
		Colors: []string{color},
	}
}

func splitCounts(counts []profile.ValueCount) ([]string, []float64) {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Value
		values[i] = float64(c.Count)
	}
	return labels, values
}

// tukeyBox summarises values with whiskers at the furthest points inside the fences
func tukeyBox(name string, values []float64) chart.Box {
	q1, q3 := profiling.Quartiles(values)
	lower, upper := profiling.TukeyFences(q1, q3)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	box := chart.Box{
		Name:         name,
		Q1:           q1,
		Median:       profiling.Quantile(sorted, 0.5),
		Q3:           q3,
		LowerWhisker: math.Inf(1),
		UpperWhisker: math.Inf(-1),
		Count:        len(values),
	}
	for _, v := range sorted {
		if v < lower || v > upper {
			box.Outliers = append(box.Outliers, v)
			continue
		}
		box.LowerWhisker = math.Min(box.LowerWhisker, v)
		box.UpperWhisker = math.Max(box.UpperWhisker, v)
	}
	return box
}

func boxChart(name string, values []float64) *chart.Chart {
	return &chart.Chart{
		Kind:   chart.KindBox,
		Title:  fmt.Sprintf("Box Plot of %s", name),
		YTitle: name,
		Boxes:  []chart.Box{tukeyBox(name, values)},
		Colors: []string{chart.Color(2)},
	}
}

// indexSeries pairs each present value with its row index
func indexSeries(col *dataset.Column, color string) chart.Series {
	s := chart.Series{Name: col.Name(), Color: color}
	for i := 0; i < col.Len(); i++ {
		if v, ok := col.Float(i); ok {
			s.X = append(s.X, float64(i))
			s.Y = append(s.Y, v)
		}
	}
	return s
}

// monthlyCounts buckets times by calendar month, oldest first
func monthlyCounts(times []time.Time) ([]string, []float64) {
	counts := make(map[string]int)
	for _, t := range times {
		counts[t.Format("2006-01")]++
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)
	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = float64(counts[m])
	}
	return months, values
}

func timeline(col *dataset.Column, title string) *chart.Chart {
	months, values := monthlyCounts(col.Times())
	if len(months) == 0 {
		return nil
	}
	return &chart.Chart{
		Kind:   chart.KindLine,
		Title:  title,
		XTitle: "Month",
		YTitle: "Count",
		Series: []chart.Series{{Name: col.Name(), Categories: months, Y: values, Color: chart.Color(3)}},
	}
}

// formatCount renders n with thousands separators
func formatCount(n int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
