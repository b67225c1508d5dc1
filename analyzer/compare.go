package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// MetricChange is one aggregate compared between two logs.
type MetricChange struct {
	Metric        string
	Base          float64
	Target        float64
	Change        float64
	ChangePercent float64
}

// CompareLogs compares the aggregates of two logs (typically the same device
// before and after a firmware change) and reports the metrics that grew by at
// least threshold, a fraction (0.1 = 10%). Overheads are computed here, so
// plain parse output can be passed in.
func CompareLogs(base, target []TransactionRecord, threshold float64) (string, error) {
	if threshold <= 0 {
		threshold = 0.1 // Default threshold: 10% growth
	}

	baseStats := Summarize(ComputeOverheads(base))
	if baseStats.NoData {
		return "", fmt.Errorf("base log: %w", ErrNoData)
	}
	targetStats := Summarize(ComputeOverheads(target))
	if targetStats.NoData {
		return "", fmt.Errorf("target log: %w", ErrNoData)
	}

	changes := compareStats(baseStats, targetStats)

	regressions := make([]MetricChange, 0, len(changes))
	for _, c := range changes {
		if c.ChangePercent >= threshold*100 {
			regressions = append(regressions, c)
		}
	}
	// Largest absolute growth first
	sort.SliceStable(regressions, func(i, j int) bool {
		return regressions[i].Change > regressions[j].Change
	})

	var b strings.Builder
	b.WriteString("Transaction Comparison Report\n")
	b.WriteString("=============================\n\n")
	fmt.Fprintf(&b, "Base:   %d transaction(s)\n", baseStats.Count)
	fmt.Fprintf(&b, "Target: %d transaction(s)\n\n", targetStats.Count)

	b.WriteString(fmt.Sprintf("%-15s %-12s %-12s %-12s %s\n", "Metric", "Base", "Target", "Change", "Change %"))
	b.WriteString("--------------------------------------------------------------\n")
	for _, c := range changes {
		b.WriteString(fmt.Sprintf("%-15s %-12s %-12s %-12s %s\n",
			c.Metric, FormatSeconds(c.Base), FormatSeconds(c.Target), signedSeconds(c.Change), signedPercent(c.ChangePercent)))
	}
	b.WriteString("\n")

	if len(regressions) == 0 {
		fmt.Fprintf(&b, "No significant regression detected (threshold: %.1f%%).\n", threshold*100)
		return b.String(), nil
	}

	fmt.Fprintf(&b, "Found %d metric(s) that grew by at least %.1f%%:\n", len(regressions), threshold*100)
	for _, c := range regressions {
		fmt.Fprintf(&b, "- %s: %s -> %s (%s, %s)\n",
			c.Metric, FormatSeconds(c.Base), FormatSeconds(c.Target), signedSeconds(c.Change), signedPercent(c.ChangePercent))
	}
	return b.String(), nil
}

func compareStats(base, target AggregateStats) []MetricChange {
	metrics := []struct {
		name        string
		base, value float64
	}{
		{"avg duration", base.Duration.Mean, target.Duration.Mean},
		{"max duration", base.Duration.Max, target.Duration.Max},
		{"avg overhead", base.Overhead.Mean, target.Overhead.Mean},
		{"max overhead", base.Overhead.Max, target.Overhead.Max},
	}

	changes := make([]MetricChange, 0, len(metrics))
	for _, m := range metrics {
		// single-record logs have no overhead samples
		if math.IsNaN(m.base) || math.IsNaN(m.value) {
			continue
		}
		change := m.value - m.base
		pct := 0.0
		if m.base > 0 {
			pct = change / m.base * 100
		} else if change > 0 {
			pct = 100.0 // grew from nothing
		}
		changes = append(changes, MetricChange{
			Metric:        m.name,
			Base:          m.base,
			Target:        m.value,
			Change:        change,
			ChangePercent: pct,
		})
	}
	return changes
}

func signedSeconds(v float64) string {
	if v >= 0 {
		return "+" + FormatSeconds(v)
	}
	return FormatSeconds(v)
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
