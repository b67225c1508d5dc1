package analyzer

import (
	"errors"
	"fmt"
)

// ErrNoData is reported when a log contains no transaction records.
var ErrNoData = errors.New("no data: no transaction records found")

// ParseError describes a line that has the shape of a completion record
// but carries a value that cannot be parsed. Such lines are left out of the
// parse output and reported alongside it.
type ParseError struct {
	Line  int    // 1-based line number
	Text  string // offending line
	Field string // "time", "number" or "duration"
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
