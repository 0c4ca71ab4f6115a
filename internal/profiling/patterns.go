package profiling

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/montanaflynn/stats"

	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
)

// DetectPatterns summarises missing cells, duplicate rows and the shape of text values
func (s *Scanner) DetectPatterns() *profile.PatternResult {
	return &profile.PatternResult{
		MissingPatterns:   s.missingPatterns(),
		DuplicatePatterns: s.duplicatePatterns(),
		ValuePatterns:     s.valuePatterns(),
	}
}

func (s *Scanner) missingPatterns() profile.MissingPatterns {
	ranked := make([]profile.ColumnCount, 0)
	total := 0
	for _, col := range s.ds.Columns() {
		n := col.NullCount()
		total += n
		if n > 0 {
			ranked = append(ranked, profile.ColumnCount{Column: col.Name(), Count: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })

	rows := 0
	for i := 0; i < s.ds.Rows(); i++ {
		if s.ds.RowHasMissing(i) {
			rows++
		}
	}

	return profile.MissingPatterns{
		ColumnsWithMissing: ranked,
		RowsWithMissing:    rows,
		TotalMissingCells:  total,
		MissingPercentage:  percentage(total, s.ds.TotalCells()),
	}
}

func (s *Scanner) duplicatePatterns() profile.DuplicatePatterns {
	rows := s.ds.Rows()
	dups := CountDuplicateRows(s.ds)

	ids := make([]string, 0)
	if rows > 0 {
		for _, col := range s.ds.Columns() {
			if col.NullCount() == 0 && col.UniqueCount() == rows {
				ids = append(ids, col.Name())
			}
		}
	}

	return profile.DuplicatePatterns{
		DuplicateRows:       dups,
		DuplicatePercentage: percentage(dups, rows),
		PotentialIDColumns:  ids,
	}
}

func (s *Scanner) valuePatterns() []profile.ValuePattern {
	out := make([]profile.ValuePattern, 0)
	for _, name := range s.ds.ColumnsOfKind(dataset.KindText) {
		col, _ := s.ds.Column(name)
		texts := col.Texts()
		if len(texts) == 0 {
			continue
		}

		prefixes := make([]string, len(texts))
		suffixes := make([]string, len(texts))
		lengths := make([]float64, len(texts))
		for i, v := range texts {
			prefixes[i], suffixes[i] = affixes(v, s.opts.PatternLength)
			lengths[i] = float64(utf8.RuneCountInString(v))
		}

		mean, _ := stats.Mean(lengths)
		variation := math.NaN()
		if len(lengths) > 1 {
			variation, _ = stats.StandardDeviationSample(lengths)
		}

		out = append(out, profile.ValuePattern{
			Column:          name,
			CommonPrefixes:  patternCounts(prefixes, s.opts.PatternTopN),
			CommonSuffixes:  patternCounts(suffixes, s.opts.PatternTopN),
			AvgLength:       profile.Measure(mean),
			LengthVariation: profile.Measure(variation),
		})
	}
	return out
}

// affixes returns the first and last n runes of v; shorter values are their own affix
func affixes(v string, n int) (prefix, suffix string) {
	runes := []rune(v)
	if len(runes) <= n {
		return v, v
	}
	return string(runes[:n]), string(runes[len(runes)-n:])
}

func patternCounts(values []string, limit int) []profile.PatternCount {
	counts := countStrings(values, limit)
	out := make([]profile.PatternCount, len(counts))
	for i, c := range counts {
		out[i] = profile.PatternCount{Pattern: c.Value, Count: c.Count}
	}
	return out
}
