package analyzer

import "math"

// Summarize aggregates durations over all records and overheads over all
// records except the last one. An empty input yields NoData with NaN
// aggregates rather than a division by zero.
func Summarize(records []TransactionRecord) AggregateStats {
	stats := AggregateStats{Count: len(records)}
	if len(records) == 0 {
		stats.NoData = true
		stats.Duration = seriesOf(nil)
		stats.Overhead = seriesOf(nil)
		return stats
	}

	durations := make([]float64, len(records))
	for i, r := range records {
		durations[i] = r.Duration
	}
	overheads := make([]float64, 0, len(records)-1)
	for _, r := range records[:len(records)-1] {
		overheads = append(overheads, r.Overhead)
	}

	stats.Duration = seriesOf(durations)
	stats.Overhead = seriesOf(overheads)
	return stats
}

func seriesOf(values []float64) SeriesStats {
	if len(values) == 0 {
		nan := math.NaN()
		return SeriesStats{Mean: nan, Min: nan, Max: nan}
	}

	s := SeriesStats{Samples: len(values), Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))
	return s
}
