package profiling

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aivaceo/domain/dataset"
)

var nan = math.NaN()

// textColumn builds a text column where nil entries are missing
func textColumn(t *testing.T, name string, values ...interface{}) *dataset.Column {
	t.Helper()
	b := dataset.NewColumnBuilder(name, dataset.KindText)
	for _, v := range values {
		if v == nil {
			b.AppendMissing()
			continue
		}
		b.AppendText(v.(string))
	}
	col, err := b.Build()
	require.NoError(t, err)
	return col
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
