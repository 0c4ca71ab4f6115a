package profiling

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
)

// BuildReport runs every analysis of the scanner in one pass. Column analyses
// fan out over at most concurrency goroutines.
func BuildReport(ctx context.Context, s *Scanner, concurrency int) (*profile.Report, error) {
	overview, err := s.ScanOverview()
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	names := s.ds.ColumnNames()
	columns := make([]*profile.ColumnAnalysis, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			analysis, err := s.AnalyzeColumn(name)
			if err != nil {
				return err
			}
			columns[i] = analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &profile.Report{
		GeneratedAt: time.Now().UTC(),
		Overview:    overview,
		Columns:     columns,
		Patterns:    s.DetectPatterns(),
		Insights:    s.GenerateInsights(),
	}
	if len(s.ds.ColumnsOfKind(dataset.KindNumeric)) >= 2 {
		corr, err := s.FindCorrelations(s.opts.CorrelationThreshold)
		if err != nil {
			return nil, err
		}
		report.Correlations = corr
	}
	return report, nil
}
