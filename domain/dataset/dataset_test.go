package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aivaceo/internal/errors"
)

func TestNewRejectsInvalidShapes(t *testing.T) {
	_, err := New(NewNumeric("a", []float64{1, 2}), NewNumeric("b", []float64{1}))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = New(NewNumeric("a", []float64{1}), NewText("a", []string{"x"}))
	require.Error(t, err)

	_, err = New(NewNumeric(" ", []float64{1}))
	require.Error(t, err)
}

func TestEmptyDataset(t *testing.T) {
	ds, err := New()
	require.NoError(t, err)
	assert.True(t, ds.IsEmpty())
	assert.Equal(t, 0, ds.TotalCells())

	ds = MustNew(NewNumeric("a", nil))
	assert.True(t, ds.IsEmpty())
}

func TestColumnMissingHandling(t *testing.T) {
	col := NewNumeric("x", []float64{1, math.NaN(), 3, math.Inf(1)})
	assert.Equal(t, 4, col.Len())
	assert.Equal(t, 2, col.NullCount())
	assert.Equal(t, []float64{1, 3}, col.Floats())
	assert.Nil(t, col.Cell(1))

	dates := NewDatetime("d", []time.Time{{}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, 1, dates.NullCount())
	assert.Len(t, dates.Times(), 1)
}

func TestBuilderRejectsWrongKind(t *testing.T) {
	b := NewColumnBuilder("n", KindNumeric)
	b.AppendFloat(1).AppendText("oops")
	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestUniqueCountAndKeys(t *testing.T) {
	col := NewNumeric("z", []float64{0, math.Copysign(0, -1), 1, math.NaN()})
	assert.Equal(t, 2, col.UniqueCount())

	b := NewColumnBuilder("t", KindText)
	b.AppendText("a").AppendMissing().AppendText("a").AppendText("")
	text, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, text.UniqueCount())
	assert.Equal(t, 1, text.NullCount())
}

func TestRowKeyTreatsMissingAsEqual(t *testing.T) {
	b := NewColumnBuilder("name", KindText)
	b.AppendText("ann").AppendMissing().AppendMissing()
	names, err := b.Build()
	require.NoError(t, err)

	ds := MustNew(NewNumeric("v", []float64{1, math.NaN(), math.NaN()}), names)
	assert.NotEqual(t, ds.RowKey(0), ds.RowKey(1))
	assert.Equal(t, ds.RowKey(1), ds.RowKey(2))
	assert.True(t, ds.RowHasMissing(1))
	assert.False(t, ds.RowHasMissing(0))
}

func TestRowKeyFieldBoundaries(t *testing.T) {
	ds := MustNew(
		NewText("a", []string{"ab", "a"}),
		NewText("b", []string{"c", "bc"}),
	)
	assert.NotEqual(t, ds.RowKey(0), ds.RowKey(1))
}

func TestColumnsOfKindAndKinds(t *testing.T) {
	ds := MustNew(
		NewNumeric("n", []float64{1}),
		NewText("t", []string{"x"}),
		NewDatetime("d", []time.Time{time.Now()}),
		NewNumeric("m", []float64{2}),
	)
	assert.Equal(t, []string{"n", "m"}, ds.ColumnsOfKind(KindNumeric))
	assert.Equal(t, []string{"t"}, ds.ColumnsOfKind(KindText))
	assert.Equal(t, KindDatetime, ds.Kinds()["d"])
	assert.Equal(t, []string{"n", "t", "d", "m"}, ds.ColumnNames())
}

func TestMemoryUsage(t *testing.T) {
	ds := MustNew(
		NewNumeric("n", []float64{1, 2}),
		NewText("t", []string{"abc", ""}),
	)
	usage := ds.MemoryUsage()
	assert.Equal(t, int64(2*8+2), usage["n"])
	assert.Equal(t, int64(16+3+16+0+2), usage["t"])
	assert.Equal(t, usage["n"]+usage["t"], ds.TotalMemoryUsage())
}

func TestFingerprintTracksContent(t *testing.T) {
	a := MustNew(NewNumeric("v", []float64{1, 2, 3}))
	b := MustNew(NewNumeric("v", []float64{1, 2, 3}))
	c := MustNew(NewNumeric("v", []float64{1, 2, 4}))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestSnapshotSummary(t *testing.T) {
	ds := MustNew(NewNumeric("v", []float64{1, 2}))
	snap := NewSnapshot("sales", SourceDemo, "", ds)
	assert.False(t, snap.ID.IsEmpty())

	sum := snap.Summarize()
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, 1, sum.Columns)
	assert.Equal(t, ds.Fingerprint(), sum.Fingerprint)
}
