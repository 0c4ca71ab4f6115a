package profiling

import (
	"fmt"

	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
)

// GenerateInsights applies the heuristic rules in priority order and keeps
// the first InsightLimit findings. Every applicable rule fires.
func (s *Scanner) GenerateInsights() []profile.Insight {
	if s.ds.IsEmpty() {
		return []profile.Insight{{Kind: profile.InsightNoData, Message: "No data available for analysis"}}
	}

	var insights []profile.Insight
	add := func(kind profile.InsightKind, column, format string, args ...interface{}) {
		insights = append(insights, profile.Insight{Kind: kind, Column: column, Message: fmt.Sprintf(format, args...)})
	}

	overview, err := s.ScanOverview()
	if err == nil {
		if overview.DataQualityScore < s.opts.QualityWarning {
			add(profile.InsightQuality, "", "⚠️ Data quality score is %.1f%% - consider cleaning missing values", overview.DataQualityScore)
		}
		if overview.DuplicateRows > 0 {
			add(profile.InsightDuplicates, "", "🔄 Found %d duplicate rows - consider deduplication", overview.DuplicateRows)
		}
	}

	for _, name := range s.ds.ColumnNames() {
		analysis, err := s.AnalyzeColumn(name)
		if err != nil {
			continue
		}
		if analysis.NullPercentage > s.opts.MissingWarning {
			add(profile.InsightMissing, name, "❌ Column '%s' has %.1f%% missing values", name, analysis.NullPercentage)
		}
		if analysis.UniquePercentage > s.opts.IdentifierUnique && analysis.Count > s.opts.IdentifierMinRows {
			add(profile.InsightIdentifier, name, "🔑 Column '%s' might be a unique identifier", name)
		}
		if analysis.Numeric != nil && analysis.Numeric.Outliers.Percentage > s.opts.OutlierWarning {
			add(profile.InsightOutliers, name, "📊 Column '%s' has %.1f%% outliers", name, analysis.Numeric.Outliers.Percentage)
		}
	}

	if len(s.ds.ColumnsOfKind(dataset.KindNumeric)) >= 2 {
		if corr, err := s.FindCorrelations(s.opts.CorrelationThreshold); err == nil {
			for _, pair := range firstPairs(corr.StrongCorrelations, s.opts.CorrelationInsights) {
				add(profile.InsightCorrelation, pair.Column1, "🔗 Strong correlation (%.2f) between '%s' and '%s'", pair.Correlation, pair.Column1, pair.Column2)
			}
		}
	}

	if len(insights) > s.opts.InsightLimit {
		insights = insights[:s.opts.InsightLimit]
	}
	if insights == nil {
		insights = []profile.Insight{}
	}
	return insights
}

// firstPairs keeps the first n pairs in the order FindCorrelations found them
func firstPairs(pairs []profile.CorrelationPair, n int) []profile.CorrelationPair {
	if len(pairs) > n {
		return pairs[:n]
	}
	return pairs
}
