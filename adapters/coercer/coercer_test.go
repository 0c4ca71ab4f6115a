package coercer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aivaceo/domain/dataset"
)

func TestParseNumeric(t *testing.T) {
	cases := map[string]float64{
		"42":         42,
		" 3.5 ":      3.5,
		"$1,234.50":  1234.5,
		"(250)":      -250,
		"12%":        12,
		"1.234,56":   1234.56,
		"1 234,5":    1234.5,
		"1,234":      1234,
		"12,345,678": 12345678,
		"1,5":        1.5,
		"-7":         -7,
		"1e3":        1000,
		"€ 99":       99,
	}
	for in, want := range cases {
		got, ok := ParseNumeric(in)
		require.True(t, ok, "input %q", in)
		assert.InDelta(t, want, got, 1e-9, "input %q", in)
	}

	for _, in := range []string{"", "abc", "$", "12abc", "Inf", "NaN", "2024-01-05"} {
		_, ok := ParseNumeric(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-05", "03/05/2024", "3/5/2024", "2024/03/05", "05-Mar-2024", "Mar 5, 2024"} {
		got, ok := ParseTimestamp(in)
		require.True(t, ok, "input %q", in)
		assert.True(t, want.Equal(got), "input %q got %v", in, got)
	}

	got, ok := ParseTimestamp("2024-03-05T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 10, got.Hour())

	_, ok = ParseTimestamp("next tuesday")
	assert.False(t, ok)
}

func TestBuildColumnInfersKinds(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col, analysis, err := c.BuildColumn("amount", []string{"10", "$20", "N/A", "(5)", ""})
	require.NoError(t, err)
	assert.Equal(t, dataset.KindNumeric, col.Kind())
	assert.Equal(t, 3, analysis.ValidCount)
	assert.Equal(t, []float64{10, 20, -5}, col.Floats())
	assert.Equal(t, 2, col.NullCount())

	col, _, err = c.BuildColumn("issued", []string{"2024-01-01", "2024-02-01", "null"})
	require.NoError(t, err)
	assert.Equal(t, dataset.KindDatetime, col.Kind())
	assert.Equal(t, 1, col.NullCount())

	col, _, err = c.BuildColumn("name", []string{" Ann ", "Bob", "None"})
	require.NoError(t, err)
	assert.Equal(t, dataset.KindText, col.Kind())
	assert.Equal(t, []string{"Ann", "Bob"}, col.Texts())
}

func TestBuildColumnBelowThresholdIsText(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	raw := []string{"1", "2", "3", "4", "5", "6", "7", "8", "x", "y"}
	col, analysis, err := c.BuildColumn("mixed", raw)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, analysis.NumericRatio, 1e-9)
	assert.Equal(t, dataset.KindText, col.Kind())
	assert.Equal(t, 10, col.Count())
}

func TestBuildColumnCoercionFailuresBecomeMissing(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	raw := make([]string, 0, 20)
	for i := 0; i < 19; i++ {
		raw = append(raw, "5")
	}
	raw = append(raw, "oops")
	col, _, err := c.BuildColumn("n", raw)
	require.NoError(t, err)
	assert.Equal(t, dataset.KindNumeric, col.Kind())
	assert.Equal(t, 1, col.NullCount())
}

func TestAllMissingColumnIsText(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	col, analysis, err := c.BuildColumn("empty", []string{"", "NA"})
	require.NoError(t, err)
	assert.Equal(t, dataset.KindText, analysis.RecommendedKind)
	assert.Equal(t, 2, col.NullCount())
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "12", ToString(int64(12)))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "abc", ToString([]byte("abc")))
}
