package analyzer

import "time"

// TransactionRecord is one completed transaction taken from a trace log.
type TransactionRecord struct {
	Number      int       // transaction sequence number, unique per log
	CompletedAt time.Time // completion time anchored on the reference date
	Duration    float64   // seconds, as logged
	Overhead    float64   // seconds; 0 for the last record (nothing to measure against)
	Line        int       // 1-based line number in the source log
}

// ParseResult holds the outcome of parsing a whole log.
type ParseResult struct {
	Records      []TransactionRecord
	Errors       []*ParseError
	TotalLines   int
	SkippedLines int // lines that produced no record, noise and parse errors alike
}

// SeriesStats summarises one series of seconds values.
// Mean, Min and Max are NaN when Samples is 0.
type SeriesStats struct {
	Samples int
	Mean    float64
	Min     float64
	Max     float64
}

// AggregateStats is the summary of an analysed log.
type AggregateStats struct {
	Count    int
	Duration SeriesStats
	Overhead SeriesStats // excludes the last record's sentinel overhead
	NoData   bool
}

// Err returns ErrNoData when the summary was computed over no records.
func (s AggregateStats) Err() error {
	if s.NoData {
		return ErrNoData
	}
	return nil
}

// --- JSON 输出结构体定义 ---

// ErrorResult 用于在 JSON 格式中返回错误信息
type ErrorResult struct {
	Error string `json:"error"`
}

// SeriesSummary is the JSON form of SeriesStats.
type SeriesSummary struct {
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// TransactionRow is a single transaction in the JSON report.
type TransactionRow struct {
	Number          int     `json:"number"`
	CompletedAt     string  `json:"completedAt"`
	DurationSeconds float64 `json:"durationSeconds"`
	OverheadSeconds float64 `json:"overheadSeconds"`
	Last            bool    `json:"last,omitempty"` // overhead is the sentinel, not a measurement
}

// TransactionAnalysisResult is the whole JSON report.
type TransactionAnalysisResult struct {
	TotalTransactions int              `json:"totalTransactions"`
	ParseErrors       int              `json:"parseErrors"`
	NoData            bool             `json:"noData,omitempty"`
	Duration          *SeriesSummary   `json:"duration,omitempty"`
	Overhead          *SeriesSummary   `json:"overhead,omitempty"` // nil when fewer than two transactions
	ShownRows         int              `json:"shownRows"`
	Transactions      []TransactionRow `json:"transactions"`
}
