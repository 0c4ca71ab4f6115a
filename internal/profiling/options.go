package profiling

// MaxInsights is the hard cap on GenerateInsights results
const MaxInsights = 10

// Options tunes the thresholds and result sizes of a Scanner
type Options struct {
	CorrelationThreshold float64 `yaml:"correlation_threshold"`
	InsightLimit         int     `yaml:"insight_limit"`
	QualityWarning       float64 `yaml:"quality_warning"`   // overall quality score below this warns
	MissingWarning       float64 `yaml:"missing_warning"`   // per-column null % above this warns
	IdentifierUnique     float64 `yaml:"identifier_unique"` // unique % above this looks like an ID
	IdentifierMinRows    int     `yaml:"identifier_min_rows"`
	OutlierWarning       float64 `yaml:"outlier_warning"` // outlier % above this warns
	CorrelationInsights  int     `yaml:"correlation_insights"`
	OutlierValueLimit    int     `yaml:"outlier_value_limit"`
	TopValues            int     `yaml:"top_values"`
	PatternTopN          int     `yaml:"pattern_top_n"`
	PatternLength        int     `yaml:"pattern_length"`
}

// DefaultOptions returns the standard profiling thresholds
func DefaultOptions() Options {
	return Options{
		CorrelationThreshold: 0.5,
		InsightLimit:         MaxInsights,
		QualityWarning:       80,
		MissingWarning:       50,
		IdentifierUnique:     95,
		IdentifierMinRows:    10,
		OutlierWarning:       10,
		CorrelationInsights:  3,
		OutlierValueLimit:    20,
		TopValues:            10,
		PatternTopN:          5,
		PatternLength:        3,
	}
}

// Normalize replaces non-positive sizes with their defaults and caps the
// insight limit at MaxInsights
func (o Options) Normalize() Options {
	d := DefaultOptions()
	if o.CorrelationThreshold < 0 || o.CorrelationThreshold > 1 {
		o.CorrelationThreshold = d.CorrelationThreshold
	}
	if o.InsightLimit <= 0 {
		o.InsightLimit = d.InsightLimit
	}
	if o.InsightLimit > MaxInsights {
		o.InsightLimit = MaxInsights
	}
	if o.CorrelationInsights < 0 {
		o.CorrelationInsights = d.CorrelationInsights
	}
	if o.OutlierValueLimit <= 0 {
		o.OutlierValueLimit = d.OutlierValueLimit
	}
	if o.TopValues <= 0 {
		o.TopValues = d.TopValues
	}
	if o.PatternTopN <= 0 {
		o.PatternTopN = d.PatternTopN
	}
	if o.PatternLength <= 0 {
		o.PatternLength = d.PatternLength
	}
	return o
}

// Option configures a Scanner
type Option func(*Options)

// WithOptions replaces every option at once
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// WithCorrelationThreshold sets the |r| used by insights and reports
func WithCorrelationThreshold(threshold float64) Option {
	return func(o *Options) { o.CorrelationThreshold = threshold }
}

// WithInsightLimit caps the number of generated insights
func WithInsightLimit(limit int) Option {
	return func(o *Options) { o.InsightLimit = limit }
}
