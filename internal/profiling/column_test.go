package profiling

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
	apperrors "aivaceo/internal/errors"
)

func TestAnalyzeColumnNotFound(t *testing.T) {
	s := NewScanner(dataset.MustNew(dataset.NewNumeric("age", []float64{1})))
	_, err := s.AnalyzeColumn("height")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrColumnNotFound)
	assert.Equal(t, "Column 'height' not found", err.Error())
}

func TestAnalyzeColumnAgeOutlier(t *testing.T) {
	s := NewScanner(dataset.MustNew(dataset.NewNumeric("age", []float64{20, 21, 22, 23, 1000})))
	analysis, err := s.AnalyzeColumn("age")
	require.NoError(t, err)
	require.NotNil(t, analysis.Numeric)

	num := analysis.Numeric
	assert.Equal(t, 20.0, num.Min)
	assert.Equal(t, 1000.0, num.Max)
	assert.Equal(t, 22.0, num.Median)
	assert.InDelta(t, 217.2, num.Mean, 1e-9)
	assert.Equal(t, 21.0, num.Q25)
	assert.Equal(t, 23.0, num.Q75)
	assert.Equal(t, 1, num.Outliers.Count)
	assert.Equal(t, 20.0, num.Outliers.Percentage)
	assert.Equal(t, 18.0, num.Outliers.LowerBound)
	assert.Equal(t, 26.0, num.Outliers.UpperBound)
	assert.Equal(t, []float64{1000}, num.Outliers.Values)
	assert.True(t, num.Skewness.Defined())
	assert.Nil(t, analysis.Categorical)
	assert.Nil(t, analysis.Datetime)
}

func TestAnalyzeColumnNumericEdgeCases(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("single", []float64{5, nan, nan}),
		dataset.NewNumeric("empty", []float64{nan, nan, nan}),
	)
	s := NewScanner(ds)

	single, err := s.AnalyzeColumn("single")
	require.NoError(t, err)
	require.NotNil(t, single.Numeric)
	assert.False(t, single.Numeric.Std.Defined())
	assert.Equal(t, 3, single.Count)
	assert.Equal(t, 1, single.NonNullCount)
	assert.InDelta(t, 66.666, single.NullPercentage, 1e-3)
	assert.Equal(t, 0, single.Numeric.Outliers.Count)

	empty, err := s.AnalyzeColumn("empty")
	require.NoError(t, err)
	assert.Nil(t, empty.Numeric)
	assert.Equal(t, 0, empty.UniqueCount)
	assert.Equal(t, 100.0, empty.NullPercentage)
}

func TestOutlierValuesAreCapped(t *testing.T) {
	values := make([]float64, 0, 130)
	for i := 0; i < 100; i++ {
		values = append(values, 50)
	}
	for i := 0; i < 30; i++ {
		values = append(values, float64(1000+i))
	}
	s := NewScanner(dataset.MustNew(dataset.NewNumeric("v", values)))
	analysis, err := s.AnalyzeColumn("v")
	require.NoError(t, err)
	assert.Equal(t, 30, analysis.Numeric.Outliers.Count)
	assert.Len(t, analysis.Numeric.Outliers.Values, 20)
	assert.Equal(t, 1000.0, analysis.Numeric.Outliers.Values[0])
}

func TestAnalyzeColumnCategorical(t *testing.T) {
	ds := dataset.MustNew(textColumn(t, "contact",
		"mail me at bob@example.com",
		"call 555-123-4567 today",
		"https://aivaceo.io/pricing",
		"plain",
		"plain",
		nil,
	))
	analysis, err := NewScanner(ds).AnalyzeColumn("contact")
	require.NoError(t, err)
	require.NotNil(t, analysis.Categorical)

	cat := analysis.Categorical
	assert.Equal(t, 1, cat.EmailCount)
	assert.Equal(t, 1, cat.PhoneCount)
	assert.Equal(t, 1, cat.URLCount)
	assert.Equal(t, profile.ValueCount{Value: "plain", Count: 2}, cat.TopValues[0])
	assert.Len(t, cat.TopValues, 4)
	assert.Equal(t, 4, analysis.UniqueCount)
	assert.Equal(t, 1, analysis.NullCount)

	expected := float64(len("mail me at bob@example.com")+len("call 555-123-4567 today")+len("https://aivaceo.io/pricing")+10) / 5
	assert.InDelta(t, expected, cat.AvgLength.Float(), 1e-9)
}

func TestTopValuesTiesKeepFirstOccurrence(t *testing.T) {
	ds := dataset.MustNew(dataset.NewText("c", []string{"b", "a", "b", "a", "c"}))
	analysis, err := NewScanner(ds).AnalyzeColumn("c")
	require.NoError(t, err)
	assert.Equal(t, []profile.ValueCount{{Value: "b", Count: 2}, {Value: "a", Count: 2}, {Value: "c", Count: 1}}, analysis.Categorical.TopValues)
}

func TestTopValuesLimit(t *testing.T) {
	values := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		values = append(values, string(rune('a'+i)))
	}
	ds := dataset.MustNew(dataset.NewText("c", values))
	analysis, err := NewScanner(ds).AnalyzeColumn("c")
	require.NoError(t, err)
	assert.Len(t, analysis.Categorical.TopValues, 10)
}

func TestAnalyzeColumnDatetime(t *testing.T) {
	ds := dataset.MustNew(dataset.NewDatetime("issued", []time.Time{
		day(2023, time.January, 15),
		day(2023, time.March, 10),
		{},
		day(2024, time.March, 1),
	}))
	analysis, err := NewScanner(ds).AnalyzeColumn("issued")
	require.NoError(t, err)
	require.NotNil(t, analysis.Datetime)

	dt := analysis.Datetime
	assert.Equal(t, day(2023, time.January, 15), *dt.MinDate)
	assert.Equal(t, day(2024, time.March, 1), *dt.MaxDate)
	assert.Equal(t, 411, *dt.RangeDays)
	assert.Equal(t, 2023, *dt.MostCommonYear)
	assert.Equal(t, 3, *dt.MostCommonMonth)
}

func TestRangeDaysCountsElapsedTime(t *testing.T) {
	lo := time.Date(2024, time.May, 1, 0, 0, 0, 600_000_000, time.UTC)
	hi := time.Date(2024, time.May, 2, 0, 0, 0, 400_000_000, time.UTC)
	ds := dataset.MustNew(dataset.NewDatetime("ts", []time.Time{lo, hi}))
	analysis, err := NewScanner(ds).AnalyzeColumn("ts")
	require.NoError(t, err)
	assert.Equal(t, 0, *analysis.Datetime.RangeDays, "23:59:59.8 is not a whole day")

	assert.Equal(t, 1, wholeDays(lo, hi.Add(200*time.Millisecond)))
	assert.Equal(t, 365_000, wholeDays(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 365_000)))
}

func TestDatetimeModeTieTakesSmallest(t *testing.T) {
	ds := dataset.MustNew(dataset.NewDatetime("d", []time.Time{
		day(2022, time.May, 1),
		day(2021, time.July, 1),
	}))
	analysis, err := NewScanner(ds).AnalyzeColumn("d")
	require.NoError(t, err)
	assert.Equal(t, 2021, *analysis.Datetime.MostCommonYear)
	assert.Equal(t, 5, *analysis.Datetime.MostCommonMonth)
}

func TestDatetimeEmptyColumn(t *testing.T) {
	ds := dataset.MustNew(dataset.NewDatetime("d", []time.Time{{}, {}}))
	analysis, err := NewScanner(ds).AnalyzeColumn("d")
	require.NoError(t, err)
	require.NotNil(t, analysis.Datetime)
	assert.Nil(t, analysis.Datetime.MinDate)
	assert.Nil(t, analysis.Datetime.MostCommonYear)
}

func TestAnalyzeColumnDeterministic(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("v", []float64{3, 1, nan, 7, 7}),
		textColumn(t, "t", "x", nil, "y", "x", "z"),
	)
	s := NewScanner(ds)
	for _, name := range ds.ColumnNames() {
		first, err := s.AnalyzeColumn(name)
		require.NoError(t, err)
		second, err := s.AnalyzeColumn(name)
		require.NoError(t, err)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b))
	}
}
