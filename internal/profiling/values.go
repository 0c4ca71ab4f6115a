package profiling

import (
	"sort"

	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
)

// CountValues tallies the non-missing cells of col, most frequent first.
// Ties keep first-occurrence order. limit <= 0 returns every value.
func CountValues(col *dataset.Column, limit int) []profile.ValueCount {
	index := make(map[string]int)
	var counts []profile.ValueCount
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		key := col.Key(i)
		if at, ok := index[key]; ok {
			counts[at].Count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, profile.ValueCount{Value: col.Format(i), Count: 1})
	}
	return rankCounts(counts, limit)
}

func countStrings(values []string, limit int) []profile.ValueCount {
	index := make(map[string]int)
	var counts []profile.ValueCount
	for _, v := range values {
		if at, ok := index[v]; ok {
			counts[at].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, profile.ValueCount{Value: v, Count: 1})
	}
	return rankCounts(counts, limit)
}

func rankCounts(counts []profile.ValueCount, limit int) []profile.ValueCount {
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
