package profile

import (
	"math"
	"strconv"
)

// Measure is a statistic that may be undefined. NaN and ±Inf encode as JSON
// null, so degenerate inputs such as the std of one value survive serialization.
type Measure float64

// Float returns the raw value
func (m Measure) Float() float64 { return float64(m) }

// Defined reports whether the value is finite
func (m Measure) Defined() bool {
	f := float64(m)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Defined() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(m), 'g', -1, 64), nil
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Measure(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*m = Measure(f)
	return nil
}
