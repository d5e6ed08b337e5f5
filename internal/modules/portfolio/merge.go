package portfolio

import (
	"sort"

	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/pkg/formulas"
)

// closesByTime indexes the finite closes of s by timestamp. A repeated
// timestamp keeps its last close.
func closesByTime(s series.Series) map[int64]float64 {
	out := make(map[int64]float64, len(s))
	for _, p := range s {
		if p.Close == nil || !formulas.IsFinite(*p.Close) {
			continue
		}
		out[p.Time] = *p.Close
	}
	return out
}

// MergeEqualWeight joins the series on timestamps present in every symbol and
// averages the closes at each one. Timestamps missing from any symbol are
// dropped, so one empty series empties the result.
func MergeEqualWeight(data map[string]series.Series) []EqualWeightRow {
	rows := []EqualWeightRow{}
	if len(data) == 0 {
		return rows
	}

	closes := make([]map[int64]float64, 0, len(data))
	counts := make(map[int64]int)
	for _, s := range data {
		byTime := closesByTime(s)
		closes = append(closes, byTime)
		for t := range byTime {
			counts[t]++
		}
	}

	common := make([]int64, 0, len(counts))
	for t, n := range counts {
		if n == len(closes) {
			common = append(common, t)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	n := float64(len(closes))
	for _, t := range common {
		sum := 0.0
		for _, byTime := range closes {
			sum += byTime[t]
		}
		rows = append(rows, EqualWeightRow{Time: t, Close: sum / n})
	}

	return rows
}

// MergeByTime lays the series side by side over the union of timestamps.
// A symbol without a usable close at a timestamp gets nil.
func MergeByTime(data map[string]series.Series) []MergedRow {
	rows := []MergedRow{}
	if len(data) == 0 {
		return rows
	}

	times := make(map[int64]struct{})
	closes := make(map[string]map[int64]float64, len(data))
	for symbol, s := range data {
		closes[symbol] = closesByTime(s)
		for _, p := range s {
			times[p.Time] = struct{}{}
		}
	}

	ordered := make([]int64, 0, len(times))
	for t := range times {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, t := range ordered {
		values := make(map[string]*float64, len(closes))
		for symbol, byTime := range closes {
			if v, ok := byTime[t]; ok {
				v := v
				values[symbol] = &v
			} else {
				values[symbol] = nil
			}
		}
		rows = append(rows, MergedRow{Time: t, Values: values})
	}

	return rows
}

// Closes extracts the close column of rows
func Closes(rows []EqualWeightRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Close
	}
	return out
}
