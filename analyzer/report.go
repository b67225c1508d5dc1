package analyzer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// AnalyzeTransactions computes overheads and aggregate statistics for a parsed
// log and renders them as text, markdown, json or csv. maxRows limits the
// per-transaction table; 0 or less means all rows.
func AnalyzeTransactions(res ParseResult, maxRows int, format string) (string, error) {
	slog.Debug("analyzing transactions",
		"records", len(res.Records), "parseErrors", len(res.Errors), "maxRows", maxRows, "format", format)

	records := ComputeOverheads(res.Records)
	stats := Summarize(records)

	limit := len(records)
	if maxRows > 0 && maxRows < limit {
		limit = maxRows
	}

	switch format {
	case "text", "markdown": // 目前两者使用相似格式
		var b strings.Builder
		if format == "markdown" {
			b.WriteString("```text\n") // 使用文本块以获得更好的对齐效果
		}
		writeTextReport(&b, records, limit, stats, len(res.Errors))
		if limit < len(records) {
			fmt.Fprintf(&b, "... %d more transaction(s) not shown\n", len(records)-limit)
		}
		if format == "markdown" {
			b.WriteString("```\n")
		}
		return b.String(), nil

	case "json":
		result := TransactionAnalysisResult{
			TotalTransactions: stats.Count,
			ParseErrors:       len(res.Errors),
			NoData:            stats.NoData,
			Duration:          summaryOf(stats.Duration),
			Overhead:          summaryOf(stats.Overhead),
			ShownRows:         limit,
			Transactions:      make([]TransactionRow, 0, limit),
		}
		for i, r := range records[:limit] {
			result.Transactions = append(result.Transactions, TransactionRow{
				Number:          r.Number,
				CompletedAt:     FormatClock(r.CompletedAt),
				DurationSeconds: r.Duration,
				OverheadSeconds: r.Overhead,
				Last:            i == len(records)-1,
			})
		}

		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			slog.Error("marshal transaction analysis", "err", err)
			errorResult := ErrorResult{Error: fmt.Sprintf("Failed to marshal result to JSON: %v", err)}
			errJSONBytes, _ := json.Marshal(errorResult)
			return string(errJSONBytes), nil
		}
		return string(jsonBytes), nil

	case "csv":
		var b strings.Builder
		if err := writeCSVReport(&b, records[:limit]); err != nil {
			return "", fmt.Errorf("write csv report: %w", err)
		}
		return b.String(), nil

	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeTextReport(b *strings.Builder, records []TransactionRecord, limit int, stats AggregateStats, parseErrors int) {
	b.WriteString("Transaction Analysis\n")
	if parseErrors > 0 {
		fmt.Fprintf(b, "Parse errors (skipped lines): %d\n", parseErrors)
	}
	if stats.NoData {
		fmt.Fprintf(b, "%v\n", ErrNoData)
		return
	}

	fmt.Fprintf(b, "Total transactions: %d\n", stats.Count)
	fmt.Fprintf(b, "Average duration: %s\n", FormatSeconds(stats.Duration.Mean))
	fmt.Fprintf(b, "Average overhead: %s\n", FormatSeconds(stats.Overhead.Mean))
	fmt.Fprintf(b, "Min duration: %s\n", FormatSeconds(stats.Duration.Min))
	fmt.Fprintf(b, "Max duration: %s\n", FormatSeconds(stats.Duration.Max))
	fmt.Fprintf(b, "Min overhead: %s\n", FormatSeconds(stats.Overhead.Min))
	fmt.Fprintf(b, "Max overhead: %s\n", FormatSeconds(stats.Overhead.Max))

	b.WriteString("--------------------------------------------------\n")
	fmt.Fprintf(b, "%-10s %-14s %-12s %s\n", "#", "Completed", "Duration", "Overhead")
	b.WriteString("--------------------------------------------------\n")
	for i, r := range records[:limit] {
		overhead := FormatSeconds(r.Overhead)
		if i == len(records)-1 {
			overhead = "-"
		}
		fmt.Fprintf(b, "%-10d %-14s %-12s %s\n", r.Number, FormatClock(r.CompletedAt), FormatSeconds(r.Duration), overhead)
	}
}

func writeCSVReport(b *strings.Builder, rows []TransactionRecord) error {
	cw := csv.NewWriter(b)
	if err := cw.Write([]string{"number", "completed_at", "duration_seconds", "overhead_seconds"}); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.Number),
			FormatClock(r.CompletedAt),
			strconv.FormatFloat(r.Duration, 'f', 3, 64),
			strconv.FormatFloat(r.Overhead, 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func summaryOf(s SeriesStats) *SeriesSummary {
	if s.Samples == 0 {
		return nil
	}
	return &SeriesSummary{Samples: s.Samples, Mean: s.Mean, Min: s.Min, Max: s.Max}
}
