package analyzer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmame/txntools/analyzer"
)

var refDate = time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)

func at(h, m, s, ms int) time.Time {
	return time.Date(2026, 1, 13, h, m, s, ms*int(time.Millisecond), time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantNums   []int
		wantErrors int
	}{
		{
			name: "two records",
			lines: []string{
				"[10:00:00.000] Transaction #1 completed (Duration: 2.000s)",
				"[10:00:05.000] Transaction #2 completed (Duration: 1.000s)",
			},
			wantNums: []int{1, 2},
		},
		{
			name: "noise is skipped silently",
			lines: []string{
				"Trace started",
				"[10:00:00.000] Transaction #7 started",
				"[10:00:00.500] Transaction #7 completed (Duration: 0.500s)",
				"",
				"[10:00:01.000] Sending request to terminal",
				"[10:00:02.250] Transaction #9 completed (Duration: 1.000s)",
			},
			wantNums: []int{7, 9},
		},
		{
			name: "record with a prefix",
			lines: []string{
				"2026-01-13 INFO [10:00:00.000] Transaction #3 completed (Duration: 0.125s) ok",
			},
			wantNums: []int{3},
		},
		{
			name: "non numeric duration",
			lines: []string{
				"[10:00:00.000] Transaction #1 completed (Duration: 2.000s)",
				"[10:00:01.000] Transaction #2 completed (Duration: abcs)",
				"[10:00:02.000] Transaction #3 completed (Duration: 0.5s)",
			},
			wantNums:   []int{1, 3},
			wantErrors: 1,
		},
		{
			name: "out of range time",
			lines: []string{
				"[25:61:00.000] Transaction #1 completed (Duration: 2.000s)",
			},
			wantErrors: 1,
		},
		{
			name: "time without two-digit fields is noise",
			lines: []string{
				"[1:00:00.000] Transaction #1 completed (Duration: 2.000s)",
				"[10:00:00.00] Transaction #2 completed (Duration: 2.000s)",
			},
		},
		{
			name: "duration outside plain decimal notation",
			lines: []string{
				"[10:00:00.000] Transaction #1 completed (Duration: 0x1p-2s)",
				"[10:00:01.000] Transaction #2 completed (Duration: 1e3s)",
				"[10:00:02.000] Transaction #3 completed (Duration: +2s)",
				"[10:00:03.000] Transaction #4 completed (Duration: -1.0s)",
				"[10:00:04.000] Transaction #5 completed (Duration: 1.2.3s)",
				"[10:00:05.000] Transaction #6 completed (Duration: .5s)",
			},
			wantNums:   []int{6},
			wantErrors: 5,
		},
		{
			name: "zero sequence number",
			lines: []string{
				"[10:00:00.000] Transaction #0 completed (Duration: 2.000s)",
			},
			wantErrors: 1,
		},
		{
			name:  "empty input",
			lines: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, errs := analyzer.Parse(tt.lines, refDate)

			nums := make([]int, 0, len(records))
			for _, r := range records {
				nums = append(nums, r.Number)
			}
			if len(tt.wantNums) == 0 {
				assert.Empty(t, records)
			} else {
				assert.Equal(t, tt.wantNums, nums)
			}
			assert.Len(t, errs, tt.wantErrors)
		})
	}
}

func TestParseRecordFields(t *testing.T) {
	records, errs := analyzer.Parse([]string{
		"[15:00:19.042] Transaction #12 completed (Duration: 1.234s)",
	}, refDate)
	require.Empty(t, errs)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, 12, r.Number)
	assert.True(t, r.CompletedAt.Equal(at(15, 0, 19, 42)), "CompletedAt = %v", r.CompletedAt)
	assert.Equal(t, 1.234, r.Duration)
	assert.Equal(t, 0.0, r.Overhead)
	assert.Equal(t, 1, r.Line)
}

func TestParseReferenceDateOnlyUsesCalendarDay(t *testing.T) {
	ref := time.Date(2026, 1, 13, 23, 59, 0, 0, time.FixedZone("CET", 3600))
	records, _ := analyzer.Parse([]string{
		"[01:02:03.004] Transaction #1 completed (Duration: 1.000s)",
	}, ref)
	require.Len(t, records, 1)
	assert.True(t, records[0].CompletedAt.Equal(at(1, 2, 3, 4)))
}

func TestParseError(t *testing.T) {
	line := "[10:00:01.000] Transaction #2 completed (Duration: abcs)"
	_, errs := analyzer.Parse([]string{"noise", line}, refDate)
	require.Len(t, errs, 1)

	perr := errs[0]
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "duration", perr.Field)
	assert.Equal(t, line, perr.Text)
	assert.Contains(t, perr.Error(), "line 2: invalid duration")

	var target *analyzer.ParseError
	assert.True(t, errors.As(error(perr), &target))
	assert.NotNil(t, errors.Unwrap(perr))
}

func TestParseDurationNotation(t *testing.T) {
	for _, d := range []string{"0x1p-2", "1e3", "+2", "Inf", "NaN"} {
		line := "[10:00:00.000] Transaction #1 completed (Duration: " + d + "s)"
		records, errs := analyzer.Parse([]string{line}, refDate)
		assert.Empty(t, records, d)
		require.Len(t, errs, 1, d)
		assert.Equal(t, "duration", errs[0].Field, d)
	}
}

func TestParseReader(t *testing.T) {
	input := strings.Join([]string{
		"=== TransactionTrace 2026-01-13 ===",
		"[10:00:00.000] Transaction #1 completed (Duration: 2.000s)",
		"[10:00:03.000] Transaction #2 completed (Duration: xs)",
		"",
		"[10:00:05.000] Transaction #3 completed (Duration: 1.000s)",
	}, "\r\n")

	res, err := analyzer.ParseReader(strings.NewReader(input), refDate)
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalLines)
	assert.Equal(t, 3, res.SkippedLines)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Records[0].Number)
	assert.Equal(t, 3, res.Records[1].Number)
	assert.Equal(t, 5, res.Records[1].Line)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Line)
}

func TestParseReaderEmpty(t *testing.T) {
	res, err := analyzer.ParseReader(strings.NewReader(""), refDate)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Errors)
	assert.Zero(t, res.TotalLines)
}

func TestParseIsDeterministic(t *testing.T) {
	lines := []string{
		"[10:00:00.000] Transaction #1 completed (Duration: 2.000s)",
		"[10:00:05.000] Transaction #2 completed (Duration: 1.000s)",
		"[10:00:06.500] Transaction #3 completed (Duration: 0.750s)",
	}

	first, _ := analyzer.Parse(lines, refDate)
	second, _ := analyzer.Parse(lines, refDate)
	assert.Equal(t, analyzer.ComputeOverheads(first), analyzer.ComputeOverheads(second))
}

func TestParseReferenceDate(t *testing.T) {
	got, err := analyzer.ParseReferenceDate("2026-01-13")
	require.NoError(t, err)
	assert.True(t, got.Equal(refDate))

	today, err := analyzer.ParseReferenceDate("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, today.Location())
	assert.Zero(t, today.Hour())

	_, err = analyzer.ParseReferenceDate("13.01.2026")
	assert.Error(t, err)
}
