package profile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureEncodesUndefinedAsNull(t *testing.T) {
	data, err := json.Marshal(struct {
		A Measure `json:"a"`
		B Measure `json:"b"`
		C Measure `json:"c"`
	}{Measure(math.NaN()), Measure(math.Inf(-1)), 1.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":null,"c":1.5}`, string(data))

	var m Measure
	require.NoError(t, json.Unmarshal([]byte("null"), &m))
	assert.False(t, m.Defined())
}

func TestStrengthBands(t *testing.T) {
	cases := map[float64]Strength{
		1.0:   StrengthVeryStrong,
		-0.85: StrengthVeryStrong,
		0.6:   StrengthStrong,
		0.45:  StrengthModerate,
		-0.2:  StrengthWeak,
		0.1:   StrengthVeryWeak,
	}
	for r, want := range cases {
		assert.Equal(t, want, StrengthOf(r), "r=%v", r)
	}
}

func TestCorrelationAt(t *testing.T) {
	res := &CorrelationResult{
		Columns: []string{"a", "b"},
		Matrix:  [][]Measure{{1, 0.5}, {0.5, 1}},
	}
	v, ok := res.At("b", "a")
	require.True(t, ok)
	assert.Equal(t, Measure(0.5), v)

	_, ok = res.At("a", "zzz")
	assert.False(t, ok)
}
