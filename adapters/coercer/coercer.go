package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"aivaceo/domain/dataset"
)

// TypeCoercer infers a column kind from raw cell strings and converts the
// cells, turning every unparseable or NA cell into a missing value.
type TypeCoercer struct {
	config CoercionConfig
	na     map[string]struct{}
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold" yaml:"numeric_threshold"`     // share of present values that must parse as numbers
	TimestampThreshold float64  `json:"timestamp_threshold" yaml:"timestamp_threshold"` // share of present values that must parse as timestamps
	NATokens           []string `json:"na_tokens" yaml:"na_tokens"`                     // cell texts read as missing
	TrimStrings        bool     `json:"trim_strings" yaml:"trim_strings"`
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.9,
		TimestampThreshold: 0.9,
		NATokens:           []string{"", "NA", "N/A", "n/a", "null", "NULL", "NaN", "nan", "None", "-"},
		TrimStrings:        true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	na := make(map[string]struct{}, len(config.NATokens))
	for _, tok := range config.NATokens {
		na[tok] = struct{}{}
	}
	return &TypeCoercer{config: config, na: na}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int          `json:"total_count"`
	ValidCount      int          `json:"valid_count"`
	NumericCount    int          `json:"numeric_count"`
	TimestampCount  int          `json:"timestamp_count"`
	NumericRatio    float64      `json:"numeric_ratio"`
	TimestampRatio  float64      `json:"timestamp_ratio"`
	RecommendedKind dataset.Kind `json:"recommended_kind"`
}

// IsMissing reports whether raw is an NA token
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.na[strings.TrimSpace(raw)]
	return ok
}

// AnalyzeTypeDistribution counts how many present values parse as each kind
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, raw := range values {
		if c.IsMissing(raw) {
			continue
		}
		analysis.ValidCount++
		if _, ok := ParseNumeric(raw); ok {
			analysis.NumericCount++
		}
		if _, ok := ParseTimestamp(raw); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(analysis.ValidCount)
	}
	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	return analysis
}

// determineRecommendedKind checks numbers before dates; an all-missing column is text
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) dataset.Kind {
	if analysis.ValidCount == 0 {
		return dataset.KindText
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.KindNumeric
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return dataset.KindDatetime
	}
	return dataset.KindText
}

// BuildColumn infers the kind of raw and converts every cell
func (c *TypeCoercer) BuildColumn(name string, raw []string) (*dataset.Column, TypeAnalysis, error) {
	analysis := c.AnalyzeTypeDistribution(raw)
	col, err := c.BuildColumnAs(name, analysis.RecommendedKind, raw)
	return col, analysis, err
}

// BuildColumnAs converts raw into a column of a known kind
func (c *TypeCoercer) BuildColumnAs(name string, kind dataset.Kind, raw []string) (*dataset.Column, error) {
	b := dataset.NewColumnBuilder(name, kind)
	for _, v := range raw {
		if c.IsMissing(v) {
			b.AppendMissing()
			continue
		}
		switch kind {
		case dataset.KindNumeric:
			if f, ok := ParseNumeric(v); ok {
				b.AppendFloat(f)
			} else {
				b.AppendMissing()
			}
		case dataset.KindDatetime:
			if t, ok := ParseTimestamp(v); ok {
				b.AppendTime(t)
			} else {
				b.AppendMissing()
			}
		default:
			if c.config.TrimStrings {
				v = strings.TrimSpace(v)
			}
			b.AppendText(v)
		}
	}
	return b.Build()
}

var currencySymbols = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

// ParseNumeric parses a number in accounting or international notation:
// parentheses for negatives, currency symbols, percent signs, thousands
// separators and comma decimals.
func ParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range currencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.ReplaceAll(cleanVal, "%", ""))
	if cleanVal == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the last comma ends the string with up to three digits
		commaIdx := strings.LastIndex(cleanVal, ",")
		periodIdx := strings.LastIndex(cleanVal, ".")
		if commaIdx > periodIdx && isDigits(cleanVal[commaIdx+1:]) && len(cleanVal)-commaIdx-1 <= 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		if thousandsGrouped(cleanVal) {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// thousandsGrouped reports whether s looks like 1,234 or 12,345,678
func thousandsGrouped(s string) bool {
	s = strings.TrimPrefix(s, "-")
	groups := strings.Split(s, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 || !isDigits(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !isDigits(g) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// timestampFormats are tried in order; US month-first wins over day-first
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseTimestamp parses the common spreadsheet and ISO date layouts
func ParseTimestamp(strVal string) (time.Time, bool) {
	strVal = strings.TrimSpace(strVal)
	if strVal == "" {
		return time.Time{}, false
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, strVal); err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToString converts a decoded value to its cell text
func ToString(val interface{}) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}
