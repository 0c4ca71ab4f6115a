package profiling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
)

func TestBuildReport(t *testing.T) {
	ds := dataset.MustNew(
		dataset.NewNumeric("a", []float64{1, 2, 3, 4, 5}),
		dataset.NewNumeric("b", []float64{2, 4, 6, 8, 10}),
		dataset.NewText("name", []string{"Ann", "Bob", "Cid", "Dee", "Eve"}),
	)
	report, err := BuildReport(context.Background(), NewScanner(ds), 2)
	require.NoError(t, err)

	require.Len(t, report.Columns, 3)
	for i, name := range ds.ColumnNames() {
		assert.Equal(t, name, report.Columns[i].Column)
	}
	require.NotNil(t, report.Correlations)
	assert.Len(t, report.Correlations.StrongCorrelations, 1)
	assert.Contains(t, report.Patterns.DuplicatePatterns.PotentialIDColumns, "name")
	assert.Equal(t, 5, report.Overview.Rows)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestBuildReportWithoutCorrelations(t *testing.T) {
	ds := dataset.MustNew(dataset.NewText("only", []string{"x"}))
	report, err := BuildReport(context.Background(), NewScanner(ds), 0)
	require.NoError(t, err)
	assert.Nil(t, report.Correlations)
}

func TestBuildReportEmptyDataset(t *testing.T) {
	_, err := BuildReport(context.Background(), NewScanner(dataset.MustNew()), 4)
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestBuildReportCancelled(t *testing.T) {
	ds := dataset.MustNew(dataset.NewNumeric("a", []float64{1, 2}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildReport(ctx, NewScanner(ds), 1)
	assert.ErrorIs(t, err, context.Canceled)
}
