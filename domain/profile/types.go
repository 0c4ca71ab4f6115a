package profile

import (
	"time"

	"aivaceo/domain/dataset"
)

// Overview is the dataset-level summary
type Overview struct {
	Rows               int                     `json:"rows"`
	Columns            int                     `json:"columns"`
	ColumnNames        []string                `json:"column_names"`
	Dtypes             map[string]dataset.Kind `json:"dtypes"`
	MemoryUsage        int64                   `json:"memory_usage"`
	NullCounts         map[string]int          `json:"null_counts"`
	DuplicateRows      int                     `json:"duplicate_rows"`
	NumericColumns     []string                `json:"numeric_columns"`
	CategoricalColumns []string                `json:"categorical_columns"`
	DatetimeColumns    []string                `json:"datetime_columns"`
	DataQualityScore   float64                 `json:"data_quality_score"`
}

// ColumnAnalysis describes one column. Exactly one of Numeric, Categorical
// and Datetime is set, matching Kind; Numeric stays nil when the column has no values.
type ColumnAnalysis struct {
	Column           string       `json:"column"`
	Kind             dataset.Kind `json:"dtype"`
	Count            int          `json:"count"` // cells, missing included
	NonNullCount     int          `json:"non_null_count"`
	NullCount        int          `json:"null_count"`
	NullPercentage   float64      `json:"null_percentage"`
	UniqueCount      int          `json:"unique_count"`
	UniquePercentage float64      `json:"unique_percentage"`

	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
	Datetime    *DatetimeStats    `json:"datetime,omitempty"`
}

// NumericStats summarises the distribution of a numeric column
type NumericStats struct {
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	Mean     float64        `json:"mean"`
	Median   float64        `json:"median"`
	Std      Measure        `json:"std"` // sample standard deviation
	Q25      float64        `json:"q25"`
	Q75      float64        `json:"q75"`
	Skewness Measure        `json:"skewness"`
	Kurtosis Measure        `json:"kurtosis"` // excess kurtosis
	Outliers OutlierSummary `json:"outliers"`
}

// OutlierSummary is the result of the IQR rule
type OutlierSummary struct {
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
	Values     []float64 `json:"values"`
}

// ValueCount pairs a value with its frequency
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalStats summarises a text column
type CategoricalStats struct {
	TopValues  []ValueCount `json:"top_values"`
	AvgLength  Measure      `json:"avg_length"`
	EmailCount int          `json:"email_count"`
	PhoneCount int          `json:"phone_count"`
	URLCount   int          `json:"url_count"`
}

// DatetimeStats summarises a datetime column; every field is nil when the column has no values
type DatetimeStats struct {
	MinDate         *time.Time `json:"min_date"`
	MaxDate         *time.Time `json:"max_date"`
	RangeDays       *int       `json:"date_range_days"`
	MostCommonYear  *int       `json:"most_common_year"`
	MostCommonMonth *int       `json:"most_common_month"`
}

// Strength is the qualitative band of a correlation coefficient
type Strength string

const (
	StrengthVeryStrong Strength = "Very Strong"
	StrengthStrong     Strength = "Strong"
	StrengthModerate   Strength = "Moderate"
	StrengthWeak       Strength = "Weak"
	StrengthVeryWeak   Strength = "Very Weak"
)

// StrengthOf bands |r|
func StrengthOf(r float64) Strength {
	if r < 0 {
		r = -r
	}
	switch {
	case r >= 0.8:
		return StrengthVeryStrong
	case r >= 0.6:
		return StrengthStrong
	case r >= 0.4:
		return StrengthModerate
	case r >= 0.2:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// CorrelationPair is one unordered pair of numeric columns
type CorrelationPair struct {
	Column1     string   `json:"column1"`
	Column2     string   `json:"column2"`
	Correlation float64  `json:"correlation"`
	Strength    Strength `json:"strength"`
}

// CorrelationResult holds the Pearson matrix over the numeric columns
type CorrelationResult struct {
	Columns            []string          `json:"columns"`
	Matrix             [][]Measure       `json:"correlation_matrix"`
	StrongCorrelations []CorrelationPair `json:"strong_correlations"`
	AverageCorrelation Measure           `json:"avg_correlation"`
}

// At returns the coefficient for a pair of columns
func (r *CorrelationResult) At(a, b string) (Measure, bool) {
	i, j := -1, -1
	for k, c := range r.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return r.Matrix[i][j], true
}

// PatternCount is a prefix or suffix signature with its frequency
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// ColumnCount is a column with a count attached
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// MissingPatterns summarises where values are missing
type MissingPatterns struct {
	ColumnsWithMissing []ColumnCount `json:"columns_with_missing"` // missing count desc
	RowsWithMissing    int           `json:"rows_with_missing"`
	TotalMissingCells  int           `json:"total_missing_cells"`
	MissingPercentage  float64       `json:"missing_percentage"`
}

// DuplicatePatterns summarises repeated rows and identifier-like columns
type DuplicatePatterns struct {
	DuplicateRows       int      `json:"duplicate_rows"`
	DuplicatePercentage float64  `json:"duplicate_percentage"`
	PotentialIDColumns  []string `json:"potential_id_columns"`
}

// ValuePattern describes the shape of a text column's values
type ValuePattern struct {
	Column          string         `json:"column"`
	CommonPrefixes  []PatternCount `json:"common_prefixes"`
	CommonSuffixes  []PatternCount `json:"common_suffixes"`
	AvgLength       Measure        `json:"avg_length"`
	LengthVariation Measure        `json:"length_variation"`
}

// PatternResult groups missing, duplicate and value patterns
type PatternResult struct {
	MissingPatterns   MissingPatterns   `json:"missing_data_patterns"`
	DuplicatePatterns DuplicatePatterns `json:"duplicate_patterns"`
	ValuePatterns     []ValuePattern    `json:"value_patterns"`
}

// InsightKind names the rule that produced an insight
type InsightKind string

const (
	InsightNoData      InsightKind = "no_data"
	InsightQuality     InsightKind = "quality"
	InsightDuplicates  InsightKind = "duplicates"
	InsightMissing     InsightKind = "missing"
	InsightIdentifier  InsightKind = "identifier"
	InsightOutliers    InsightKind = "outliers"
	InsightCorrelation InsightKind = "correlation"
)

// Insight is a human-readable finding
type Insight struct {
	Kind    InsightKind `json:"kind"`
	Column  string      `json:"column,omitempty"`
	Message string      `json:"message"`
}

// Report bundles every analysis of a snapshot
type Report struct {
	Name         string             `json:"name,omitempty"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Overview     *Overview          `json:"overview"`
	Columns      []*ColumnAnalysis  `json:"columns"`
	Correlations *CorrelationResult `json:"correlations,omitempty"`
	Patterns     *PatternResult     `json:"patterns"`
	Insights     []Insight          `json:"insights"`
}
