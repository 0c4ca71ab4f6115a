package profiling

import (
	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
	apperrors "aivaceo/internal/errors"
)

// Scanner computes statistics over one immutable dataset. Every method is
// pure, so a Scanner may be shared between goroutines.
type Scanner struct {
	ds   *dataset.Dataset
	opts Options
}

// NewScanner creates a scanner over ds; a nil ds behaves as an empty dataset
func NewScanner(ds *dataset.Dataset, opts ...Option) *Scanner {
	if ds == nil {
		ds = dataset.MustNew()
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Scanner{ds: ds, opts: o.Normalize()}
}

// Dataset returns the scanned dataset
func (s *Scanner) Dataset() *dataset.Dataset { return s.ds }

// Options returns the effective options
func (s *Scanner) Options() Options { return s.opts }

// ScanOverview summarises shape, types, missing cells and duplicates
func (s *Scanner) ScanOverview() (*profile.Overview, error) {
	if s.ds.IsEmpty() {
		return nil, apperrors.EmptyDataset()
	}

	nullCounts := make(map[string]int, s.ds.NumColumns())
	nullCells := 0
	for _, col := range s.ds.Columns() {
		n := col.NullCount()
		nullCounts[col.Name()] = n
		nullCells += n
	}

	total := s.ds.TotalCells()
	quality := 0.0
	if total > 0 {
		quality = float64(total-nullCells) / float64(total) * 100
	}

	return &profile.Overview{
		Rows:               s.ds.Rows(),
		Columns:            s.ds.NumColumns(),
		ColumnNames:        s.ds.ColumnNames(),
		Dtypes:             s.ds.Kinds(),
		MemoryUsage:        s.ds.TotalMemoryUsage(),
		NullCounts:         nullCounts,
		DuplicateRows:      CountDuplicateRows(s.ds),
		NumericColumns:     nonNil(s.ds.ColumnsOfKind(dataset.KindNumeric)),
		CategoricalColumns: nonNil(s.ds.ColumnsOfKind(dataset.KindText)),
		DatetimeColumns:    nonNil(s.ds.ColumnsOfKind(dataset.KindDatetime)),
		DataQualityScore:   quality,
	}, nil
}

// CountDuplicateRows counts rows equal to some earlier row, missing equal to missing
func CountDuplicateRows(ds *dataset.Dataset) int {
	seen := make(map[string]struct{}, ds.Rows())
	dups := 0
	for i := 0; i < ds.Rows(); i++ {
		key := ds.RowKey(i)
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
