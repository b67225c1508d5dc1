package analyzer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"
)

// completionRe matches a transaction completion record anywhere in a line:
//
//	[15:00:19.123] Transaction #42 completed (Duration: 1.234s)
//
// The time must have the HH:MM:SS.mmm shape. The duration capture is loose
// so that a record with a broken duration is still recognised and reported
// as a ParseError instead of being dropped as noise.
var completionRe = regexp.MustCompile(
	`\[(\d{2}:\d{2}:\d{2}\.\d{3})\] Transaction #(\d+) completed \(Duration: ([^\s)]+?)s\)`,
)

// decimalRe is the only duration spelling the trace logger produces.
// ParseFloat alone would also take "1e3", "+2" or "0x1p-2".
var decimalRe = regexp.MustCompile(`^[0-9.]+$`)

// clockLayout is the time-of-day format used by the trace logger.
const clockLayout = "15:04:05.000"

// maxLineSize bounds a single log line read by ParseReader.
const maxLineSize = 1024 * 1024

// Parse extracts transaction records from lines, in input order. Lines that do
// not look like a completion record are skipped silently. Lines that do but
// carry an unparseable value are skipped and returned as ParseErrors.
//
// Every timestamp is anchored on the calendar day of referenceDate, in UTC.
// Overheads are left at zero; see ComputeOverheads.
func Parse(lines []string, referenceDate time.Time) ([]TransactionRecord, []*ParseError) {
	var (
		records []TransactionRecord
		errs    []*ParseError
	)
	for i, line := range lines {
		rec, matched, perr := parseLine(line, i+1, referenceDate)
		switch {
		case perr != nil:
			errs = append(errs, perr)
		case matched:
			records = append(records, rec)
		}
	}
	return records, errs
}

// ParseReader is the streaming form of Parse. The returned error is only set
// when reading from r fails; per-line problems end up in ParseResult.Errors.
func ParseReader(r io.Reader, referenceDate time.Time) (ParseResult, error) {
	var result ParseResult
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		rec, matched, perr := parseLine(scanner.Text(), lineNum, referenceDate)
		switch {
		case perr != nil:
			result.Errors = append(result.Errors, perr)
			result.SkippedLines++
		case matched:
			result.Records = append(result.Records, rec)
		default:
			result.SkippedLines++
		}
	}
	result.TotalLines = lineNum

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read log at line %d: %w", lineNum+1, err)
	}
	return result, nil
}

func parseLine(line string, lineNum int, referenceDate time.Time) (TransactionRecord, bool, *ParseError) {
	m := completionRe.FindStringSubmatch(line)
	if m == nil {
		return TransactionRecord{}, false, nil
	}
	fail := func(field string, err error) (TransactionRecord, bool, *ParseError) {
		return TransactionRecord{}, true, &ParseError{Line: lineNum, Text: line, Field: field, Err: err}
	}

	clock, err := time.Parse(clockLayout, m[1])
	if err != nil {
		return fail("time", err)
	}

	number, err := strconv.Atoi(m[2])
	if err != nil {
		return fail("number", err)
	}
	if number <= 0 {
		return fail("number", fmt.Errorf("sequence number %d is not positive", number))
	}

	if !decimalRe.MatchString(m[3]) {
		return fail("duration", fmt.Errorf("%q is not a plain decimal number of seconds", m[3]))
	}
	duration, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return fail("duration", err)
	}

	y, mo, d := referenceDate.Date()
	completed := time.Date(y, mo, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC)

	return TransactionRecord{
		Number:      number,
		CompletedAt: completed,
		Duration:    duration,
		Line:        lineNum,
	}, true, nil
}

// referenceDateLayout is the calendar date accepted by ParseReferenceDate.
const referenceDateLayout = "2006-01-02"

// ParseReferenceDate parses a YYYY-MM-DD date in UTC. An empty string means
// today (UTC).
func ParseReferenceDate(s string) (time.Time, error) {
	if s == "" {
		y, m, d := time.Now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(referenceDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
