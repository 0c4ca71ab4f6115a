package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
)

func TestScanOverviewEmptyDataset(t *testing.T) {
	_, err := NewScanner(dataset.MustNew()).ScanOverview()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)

	_, err = NewScanner(nil).ScanOverview()
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)

	_, err = NewScanner(dataset.MustNew(dataset.NewNumeric("x", nil))).ScanOverview()
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestScanOverview(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("amount", []float64{10, nan, 30, 10}),
		textColumn(t, "status", "paid", "open", nil, "paid"),
		dataset.NewDatetime("issued", []time.Time{day(2024, 1, 1), day(2024, 2, 1), day(2024, 3, 1), day(2024, 1, 1)}),
	)
	overview, err := NewScanner(ds).ScanOverview()
	require.NoError(t, err)

	assert.Equal(t, 4, overview.Rows)
	assert.Equal(t, 3, overview.Columns)
	assert.Equal(t, []string{"amount", "status", "issued"}, overview.ColumnNames)
	assert.Equal(t, dataset.KindText, overview.Dtypes["status"])
	assert.Equal(t, map[string]int{"amount": 1, "status": 1, "issued": 0}, overview.NullCounts)
	assert.Equal(t, 1, overview.DuplicateRows)
	assert.Equal(t, []string{"amount"}, overview.NumericColumns)
	assert.Equal(t, []string{"status"}, overview.CategoricalColumns)
	assert.Equal(t, []string{"issued"}, overview.DatetimeColumns)
	assert.InDelta(t, 10.0/12.0*100, overview.DataQualityScore, 1e-9)
	assert.Equal(t, ds.TotalMemoryUsage(), overview.MemoryUsage)
}

func TestScanOverviewPerfectQuality(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("a", []float64{1, 2}), dataset.NewText("b", []string{"x", "y"}))
	overview, err := NewScanner(ds).ScanOverview()
	require.NoError(t, err)
	assert.Equal(t, 100.0, overview.DataQualityScore)
	assert.Equal(t, 0, overview.DuplicateRows)
	assert.Empty(t, overview.DatetimeColumns)
}

func TestCountDuplicateRowsMissingEqualsMissing(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("a", []float64{1, nan, nan, 1}),
		textColumn(t, "b", "x", nil, nil, "y"),
	)
	assert.Equal(t, 1, CountDuplicateRows(ds))
}

func TestOptionsNormalize(t *testing.T) {
	s := NewScanner(dataset.MustNew(), WithInsightLimit(0), WithCorrelationThreshold(2))
	assert.Equal(t, DefaultOptions().InsightLimit, s.Options().InsightLimit)
	assert.Equal(t, 0.5, s.Options().CorrelationThreshold)

	s = NewScanner(dataset.MustNew(), WithOptions(Options{TopValues: 3}))
	assert.Equal(t, 3, s.Options().TopValues)
	assert.Equal(t, 20, s.Options().OutlierValueLimit)
}
